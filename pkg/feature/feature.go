// Package feature loads scenario files: Gherkin .feature text and the
// equivalent YAML format.
package feature

import (
	"strconv"
	"strings"

	gherkin "github.com/cucumber/gherkin/go/v26"
)

// DefaultLanguage is the Gherkin dialect of files without a "# language:"
// header (or a YAML "language" key).
const DefaultLanguage = "en"

// Feature is one parsed scenario file.
type Feature struct {
	Name        string
	Description string
	Language    string
	SourcePath  string
	Tags        []string
	Env         map[string]string
	Background  []Step
	Scenarios   []*Scenario
}

// Scenario is one runnable scenario. Tags include the feature's tags.
type Scenario struct {
	Name  string
	Tags  []string
	Steps []Step
	Line  int
}

// Step is one line of scenario text.
type Step struct {
	Keyword string // as written in the file's language: Given, And, *, Dado, ...
	Text    string
	Line    int

	// DocString is the content of a doc string attached to the step. It is
	// passed to the step definition as an extra last argument.
	DocString string
}

func (s Step) String() string {
	if s.Keyword == "" {
		return s.Text
	}
	return s.Keyword + " " + s.Text
}

// splitKeyword separates a leading step keyword of dialect d from the step
// text. Text without a keyword is returned as is.
func splitKeyword(d *gherkin.Dialect, line string) (keyword, text string) {
	line = strings.TrimSpace(line)
	for _, kw := range d.StepKeywords() {
		kw = strings.TrimSpace(kw)
		if line == kw {
			return kw, ""
		}
		if strings.HasPrefix(line, kw+" ") {
			return kw, strings.TrimSpace(line[len(kw)+1:])
		}
	}
	return "", line
}

// Steps returns the background steps followed by the scenario's steps.
func (f *Feature) Steps(sc *Scenario) []Step {
	steps := make([]Step, 0, len(f.Background)+len(sc.Steps))
	steps = append(steps, f.Background...)
	return append(steps, sc.Steps...)
}

// Filter drops scenarios that do not match the tag filters. It reports
// whether any scenario is left.
func (f *Feature) Filter(includeTags, excludeTags []string) bool {
	kept := f.Scenarios[:0]
	for _, sc := range f.Scenarios {
		if ShouldInclude(sc.Tags, includeTags, excludeTags) {
			kept = append(kept, sc)
		}
	}
	f.Scenarios = kept
	return len(kept) > 0
}

// ShouldInclude checks tags against include and exclude filters. A leading
// "@" is ignored on both sides.
func ShouldInclude(tags, includeTags, excludeTags []string) bool {
	if len(includeTags) > 0 {
		hasTag := false
		for _, tag := range tags {
			for _, include := range includeTags {
				if normalizeTag(tag) == normalizeTag(include) {
					hasTag = true
					break
				}
			}
		}
		if !hasTag {
			return false
		}
	}

	for _, tag := range tags {
		for _, exclude := range excludeTags {
			if normalizeTag(tag) == normalizeTag(exclude) {
				return false
			}
		}
	}
	return true
}

func normalizeTag(tag string) string {
	return strings.TrimPrefix(strings.TrimSpace(tag), "@")
}

func mergeTags(parent, own []string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, t := range append(append([]string(nil), parent...), own...) {
		t = normalizeTag(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

// expandOutline produces one scenario per examples row, substituting <name>
// placeholders in the scenario name and step text.
func expandOutline(sc *Scenario, rows []map[string]string) []*Scenario {
	if len(rows) == 0 {
		return []*Scenario{sc}
	}
	out := make([]*Scenario, 0, len(rows))
	for i, row := range rows {
		expanded := &Scenario{
			Name: substitute(sc.Name, row),
			Tags: sc.Tags,
			Line: sc.Line,
		}
		if expanded.Name == sc.Name {
			expanded.Name = sc.Name + " #" + strconv.Itoa(i+1)
		}
		for _, st := range sc.Steps {
			st.Text = substitute(st.Text, row)
			expanded.Steps = append(expanded.Steps, st)
		}
		out = append(out, expanded)
	}
	return out
}

func substitute(s string, row map[string]string) string {
	for k, v := range row {
		s = strings.ReplaceAll(s, "<"+k+">", v)
	}
	return s
}
