// Package steps binds scenario step text to UI operations.
package steps

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/devicelab-dev/appium-steps/pkg/core"
)

// Keyword is the step keyword a definition was registered with. Matching
// ignores it, as in Cucumber.
type Keyword string

const (
	Given Keyword = "Given"
	When  Keyword = "When"
	Then  Keyword = "Then"
	Any   Keyword = "*"
)

// Handler executes one step against the scenario world.
type Handler func(ctx context.Context, w *World, args Args) error

// Definition is one registered step pattern.
type Definition struct {
	Keyword Keyword
	Pattern string
	Handler Handler

	re *regexp.Regexp
}

// Registry is the step dispatch table, built once at startup.
type Registry struct {
	defs []*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Given(pattern string, h Handler) *Definition { return r.add(Given, pattern, h) }
func (r *Registry) When(pattern string, h Handler) *Definition  { return r.add(When, pattern, h) }
func (r *Registry) Then(pattern string, h Handler) *Definition  { return r.add(Then, pattern, h) }
func (r *Registry) Step(pattern string, h Handler) *Definition  { return r.add(Any, pattern, h) }

// add panics on an invalid pattern; registration happens at startup.
func (r *Registry) add(kw Keyword, pattern string, h Handler) *Definition {
	re, err := Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("step %q: %v", pattern, err))
	}
	def := &Definition{Keyword: kw, Pattern: pattern, Handler: h, re: re}
	r.defs = append(r.defs, def)
	return def
}

// Definitions returns all registered definitions in registration order.
func (r *Registry) Definitions() []*Definition {
	return append([]*Definition(nil), r.defs...)
}

// Match finds the single definition matching text.
func (r *Registry) Match(text string) (*Definition, Args, error) {
	text = strings.TrimSpace(text)

	var found *Definition
	var args Args
	var patterns []string
	for _, def := range r.defs {
		m := def.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		patterns = append(patterns, def.Pattern)
		if found == nil {
			found = def
			args = unquote(m[1:])
		}
	}

	switch len(patterns) {
	case 0:
		return nil, nil, core.ErrUndefinedStep.WithMessagef("undefined step: %s", text)
	case 1:
		return found, args, nil
	default:
		return nil, nil, core.ErrAmbiguousStep.
			WithMessagef("ambiguous step: %s", text).
			WithDetails(map[string]interface{}{"patterns": patterns})
	}
}

var parameterTypes = map[string]string{
	"string": `("[^"]*"|'[^']*')`,
	"int":    `(-?\d+)`,
	"float":  `(-?\d*\.?\d+)`,
	"word":   `([^\s]+)`,
	"":       `(.*)`,
}

var parameterRe = regexp.MustCompile(`\{([a-z]*)\}`)

// Compile turns a Cucumber expression into an anchored regexp. Patterns that
// start with ^ or end with $ are taken as regular expressions.
func Compile(pattern string) (*regexp.Regexp, error) {
	if strings.HasPrefix(pattern, "^") || strings.HasSuffix(pattern, "$") {
		return regexp.Compile(pattern)
	}

	var b strings.Builder
	b.WriteString("^")
	last := 0
	for _, loc := range parameterRe.FindAllStringSubmatchIndex(pattern, -1) {
		b.WriteString(regexp.QuoteMeta(pattern[last:loc[0]]))
		name := pattern[loc[2]:loc[3]]
		expr, ok := parameterTypes[name]
		if !ok {
			return nil, fmt.Errorf("unknown parameter type {%s}", name)
		}
		b.WriteString(expr)
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(pattern[last:]))
	b.WriteString("$")
	return regexp.Compile(b.String())
}

func unquote(raw []string) Args {
	args := make(Args, len(raw))
	for i, s := range raw {
		if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
			s = s[1 : len(s)-1]
		}
		args[i] = s
	}
	return args
}

// Args are the captured step parameters.
type Args []string

// String returns argument i, or "" when out of range.
func (a Args) String(i int) string {
	if i < 0 || i >= len(a) {
		return ""
	}
	return a[i]
}

// Int parses argument i as an integer.
func (a Args) Int(i int) (int, error) {
	n, err := strconv.Atoi(a.String(i))
	if err != nil {
		return 0, core.ErrUndefinedStep.WithMessagef("argument %d is not an integer: %q", i, a.String(i))
	}
	return n, nil
}

// Float parses argument i as a float.
func (a Args) Float(i int) (float64, error) {
	f, err := strconv.ParseFloat(a.String(i), 64)
	if err != nil {
		return 0, core.ErrUndefinedStep.WithMessagef("argument %d is not a number: %q", i, a.String(i))
	}
	return f, nil
}
