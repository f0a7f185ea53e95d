package feature

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gherkin "github.com/cucumber/gherkin/go/v26"
	"gopkg.in/yaml.v3"
)

// ParseError represents a parsing error with location info.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// IsScenarioFile reports whether path has a scenario file extension.
func IsScenarioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".feature", ".yaml", ".yml":
		return true
	}
	return false
}

// ParseFile parses a single scenario file.
func ParseFile(path string) (*Feature, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is user-provided scenario file
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data, path)
}

// Parse parses scenario content; the format follows the path's extension.
func Parse(data []byte, sourcePath string) (*Feature, error) {
	if strings.EqualFold(filepath.Ext(sourcePath), ".feature") {
		return parseGherkin(data, sourcePath)
	}
	return parseYAML(data, sourcePath)
}

// ParseDirectory parses all scenario files under dir in lexical order and
// applies the tag filters. Features left without scenarios are dropped.
func ParseDirectory(dir string, includeTags, excludeTags []string) ([]*Feature, error) {
	var features []*Feature

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !IsScenarioFile(path) {
			return nil
		}

		f, parseErr := ParseFile(path)
		if parseErr != nil {
			return parseErr
		}
		if f.Filter(includeTags, excludeTags) {
			features = append(features, f)
		}
		return nil
	})
	return features, err
}

// Load parses every path, file or directory, in the given order.
func Load(paths []string, includeTags, excludeTags []string) ([]*Feature, error) {
	var features []*Feature
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("scenario path: %w", err)
		}
		if info.IsDir() {
			fs, err := ParseDirectory(p, includeTags, excludeTags)
			if err != nil {
				return nil, err
			}
			features = append(features, fs...)
			continue
		}
		f, err := ParseFile(p)
		if err != nil {
			return nil, err
		}
		if f.Filter(includeTags, excludeTags) {
			features = append(features, f)
		}
	}
	return features, nil
}

// YAML format

type yamlFeature struct {
	Feature     string            `yaml:"feature"`
	Description string            `yaml:"description"`
	Language    string            `yaml:"language"`
	Tags        []string          `yaml:"tags"`
	Env         map[string]string `yaml:"env"`
	Background  []yamlStep        `yaml:"background"`
	Scenarios   []yamlScenario    `yaml:"scenarios"`
}

type yamlScenario struct {
	Name     string              `yaml:"name"`
	Tags     []string            `yaml:"tags"`
	Steps    []yamlStep          `yaml:"steps"`
	Examples []map[string]string `yaml:"examples"`
	line     int
}

func (s *yamlScenario) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlScenario
	if err := node.Decode((*plain)(s)); err != nil {
		return err
	}
	s.line = node.Line
	return nil
}

type yamlStep struct {
	text string
	line int
}

func (s *yamlStep) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: step must be a string", node.Line)
	}
	*s = yamlStep{text: node.Value, line: node.Line}
	return nil
}

func (s yamlStep) step(d *gherkin.Dialect) Step {
	kw, text := splitKeyword(d, s.text)
	return Step{Keyword: kw, Text: text, Line: s.line}
}

func parseYAML(data []byte, sourcePath string) (*Feature, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Path: sourcePath, Line: 1, Message: "empty scenario file"}
	}

	var raw yamlFeature
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: sourcePath, Message: err.Error()}
	}

	if raw.Language == "" {
		raw.Language = DefaultLanguage
	}
	dialect := gherkin.DialectsBuiltin().GetDialect(raw.Language)
	if dialect == nil {
		return nil, &ParseError{Path: sourcePath, Message: fmt.Sprintf("unknown language %q", raw.Language)}
	}

	f := &Feature{
		Name:        raw.Feature,
		Description: raw.Description,
		Language:    raw.Language,
		SourcePath:  sourcePath,
		Tags:        mergeTags(nil, raw.Tags),
		Env:         raw.Env,
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	}
	for _, st := range raw.Background {
		f.Background = append(f.Background, st.step(dialect))
	}

	for _, rs := range raw.Scenarios {
		if rs.Name == "" {
			return nil, &ParseError{Path: sourcePath, Line: rs.line, Message: "scenario has no name"}
		}
		if len(rs.Steps) == 0 {
			return nil, &ParseError{Path: sourcePath, Line: rs.line, Message: fmt.Sprintf("scenario %q has no steps", rs.Name)}
		}
		sc := &Scenario{Name: rs.Name, Tags: mergeTags(f.Tags, rs.Tags), Line: rs.line}
		for _, st := range rs.Steps {
			sc.Steps = append(sc.Steps, st.step(dialect))
		}
		f.Scenarios = append(f.Scenarios, expandOutline(sc, rs.Examples)...)
	}

	if len(f.Scenarios) == 0 {
		return nil, &ParseError{Path: sourcePath, Message: "no scenarios"}
	}
	return f, nil
}
