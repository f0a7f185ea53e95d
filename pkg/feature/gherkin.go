package feature

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	gherkin "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"
	"github.com/google/uuid"
)

// errorLocation matches a "(line:column): message" gherkin error line.
var errorLocation = regexp.MustCompile(`\((\d+):\d+\):\s*(.*)`)

// astIndex maps AST node ids, as referenced by pickles, back to the source.
type astIndex struct {
	steps map[string]*messages.Step
	lines map[string]int    // scenario and examples row ids
	names map[string]string // scenario ids, before placeholder substitution
}

// parseGherkin compiles a .feature file into one Scenario per pickle: outlines
// are expanded per examples row, background and rule steps are folded into
// each scenario, and tags are inherited from feature, rule and examples.
func parseGherkin(data []byte, sourcePath string) (*Feature, error) {
	doc, err := gherkin.ParseGherkinDocument(bytes.NewReader(data), uuid.NewString)
	if err != nil {
		return nil, gherkinError(sourcePath, err)
	}
	if doc.Feature == nil {
		return nil, &ParseError{Path: sourcePath, Line: 1, Message: "empty scenario file"}
	}

	dialect := gherkin.DialectsBuiltin().GetDialect(doc.Feature.Language)
	idx, err := indexFeature(doc.Feature, dialect, sourcePath)
	if err != nil {
		return nil, err
	}

	f := &Feature{
		Name:        doc.Feature.Name,
		Description: dedent(doc.Feature.Description),
		Language:    doc.Feature.Language,
		SourcePath:  sourcePath,
	}
	var tags []string
	for _, t := range doc.Feature.Tags {
		tags = append(tags, t.Name)
	}
	f.Tags = mergeTags(nil, tags)

	rows := make(map[string]int)
	for _, p := range gherkin.Pickles(*doc, sourcePath, uuid.NewString) {
		sc, err := scenarioFromPickle(p, idx, rows, sourcePath)
		if err != nil {
			return nil, err
		}
		f.Scenarios = append(f.Scenarios, sc)
	}

	if len(f.Scenarios) == 0 {
		return nil, &ParseError{Path: sourcePath, Message: "no scenarios"}
	}
	return f, nil
}

// indexFeature records steps, lines and names of the feature's scenarios and
// rejects scenarios that cannot run: no steps, or an outline without examples.
func indexFeature(feat *messages.Feature, dialect *gherkin.Dialect, sourcePath string) (*astIndex, error) {
	idx := &astIndex{
		steps: make(map[string]*messages.Step),
		lines: make(map[string]int),
		names: make(map[string]string),
	}

	addSteps := func(steps []*messages.Step) {
		for _, st := range steps {
			idx.steps[st.Id] = st
		}
	}
	addScenario := func(sc *messages.Scenario) error {
		line := int(sc.Location.Line)
		if len(sc.Steps) == 0 {
			return &ParseError{Path: sourcePath, Line: line, Message: fmt.Sprintf("scenario %q has no steps", sc.Name)}
		}
		if len(sc.Examples) == 0 && isOutline(dialect, sc.Keyword) {
			return &ParseError{Path: sourcePath, Line: line, Message: fmt.Sprintf("%s %q has no Examples", sc.Keyword, sc.Name)}
		}
		idx.lines[sc.Id] = line
		idx.names[sc.Id] = sc.Name
		addSteps(sc.Steps)
		for _, ex := range sc.Examples {
			for _, row := range ex.TableBody {
				idx.lines[row.Id] = int(row.Location.Line)
			}
		}
		return nil
	}

	for _, child := range feat.Children {
		switch {
		case child.Background != nil:
			addSteps(child.Background.Steps)
		case child.Scenario != nil:
			if err := addScenario(child.Scenario); err != nil {
				return nil, err
			}
		case child.Rule != nil:
			for _, rc := range child.Rule.Children {
				if rc.Background != nil {
					addSteps(rc.Background.Steps)
				}
				if rc.Scenario != nil {
					if err := addScenario(rc.Scenario); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return idx, nil
}

func isOutline(d *gherkin.Dialect, keyword string) bool {
	if d == nil {
		return false
	}
	for _, kw := range d.ScenarioOutlineKeywords() {
		if strings.TrimSpace(kw) == strings.TrimSpace(keyword) {
			return true
		}
	}
	return false
}

// scenarioFromPickle converts one pickle. rows counts pickles per outline so
// rows that do not change the scenario name get a " #N" suffix.
func scenarioFromPickle(p *messages.Pickle, idx *astIndex, rows map[string]int, sourcePath string) (*Scenario, error) {
	sc := &Scenario{Name: p.Name}

	// AstNodeIds: the scenario, then the examples row for outlines
	ids := p.AstNodeIds
	if len(ids) > 0 {
		sc.Line = idx.lines[ids[len(ids)-1]]
	}
	if len(ids) > 1 {
		rows[ids[0]]++
		if p.Name == idx.names[ids[0]] {
			sc.Name += " #" + strconv.Itoa(rows[ids[0]])
		}
	}

	var tags []string
	for _, t := range p.Tags {
		tags = append(tags, t.Name)
	}
	sc.Tags = mergeTags(nil, tags)

	for _, ps := range p.Steps {
		st := Step{Text: ps.Text}
		if len(ps.AstNodeIds) > 0 {
			if ast, ok := idx.steps[ps.AstNodeIds[0]]; ok {
				st.Keyword = strings.TrimSpace(ast.Keyword)
				st.Line = int(ast.Location.Line)
			}
		}
		if arg := ps.Argument; arg != nil {
			if arg.DataTable != nil {
				return nil, &ParseError{Path: sourcePath, Line: st.Line, Message: "data tables are not supported"}
			}
			if arg.DocString != nil {
				st.DocString = arg.DocString.Content
			}
		}
		sc.Steps = append(sc.Steps, st)
	}
	return sc, nil
}

// gherkinError converts a gherkin parse error, keeping the first one.
func gherkinError(sourcePath string, err error) error {
	perr := &ParseError{Path: sourcePath, Message: err.Error()}
	if m := errorLocation.FindStringSubmatch(err.Error()); m != nil {
		perr.Line, _ = strconv.Atoi(m[1])
		perr.Message = m[2]
	}
	return perr
}

func dedent(s string) string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}
