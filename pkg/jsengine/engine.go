// Package jsengine evaluates ${...} expressions embedded in step text.
package jsengine

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/google/uuid"

	"github.com/devicelab-dev/appium-steps/pkg/logger"
)

// Engine wraps a goja runtime holding the run and scenario variables.
//
// Declared variables (SetVariable) are visible both as JS globals and as bare
// $NAME references. Globals (SetGlobal) are visible to ${...} expressions only.
type Engine struct {
	runtime  *goja.Runtime
	declared map[string]interface{}
	mu       sync.Mutex
}

// New creates a new JS engine instance
func New() *Engine {
	e := &Engine{
		runtime:  goja.New(),
		declared: make(map[string]interface{}),
	}

	e.setupBuiltins()
	return e
}

func (e *Engine) setupBuiltins() {
	e.setupConsole()

	e.runtime.Set("json", e.jsonFunc())

	// uuid() for unique test data, e.g. "${uuid()}@example.com"
	e.runtime.Set("uuid", func() string {
		return uuid.NewString()
	})

	// Values scripts store for later steps, e.g. "${output.id = uuid()}"
	e.runtime.Set("output", e.runtime.NewObject())
}

// setupConsole routes console.log and friends to the run log.
func (e *Engine) setupConsole() {
	makeConsoleFunc := func(level func(string, ...interface{})) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = fmt.Sprintf("%v", arg.Export())
			}
			level("js: %s", strings.Join(parts, " "))
			return goja.Undefined()
		}
	}

	console := e.runtime.NewObject()
	_ = console.Set("log", makeConsoleFunc(logger.Info))
	_ = console.Set("error", makeConsoleFunc(logger.Error))
	_ = console.Set("warn", makeConsoleFunc(logger.Warn))
	e.runtime.Set("console", console)
}

// jsonFunc returns the json() helper function
func (e *Engine) jsonFunc() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(e.runtime.NewTypeError("json requires 1 argument"))
		}

		str := call.Arguments[0].String()
		result, err := e.runtime.RunString(fmt.Sprintf("JSON.parse(%q)", str))
		if err != nil {
			panic(e.runtime.NewTypeError(fmt.Sprintf("invalid JSON: %v", err)))
		}
		return result
	}
}

// SetVariable declares a variable usable as $NAME and as a JS global.
func (e *Engine) SetVariable(name string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.declared[name] = value
	e.runtime.Set(name, value)
}

// SetVariables declares multiple variables
func (e *Engine) SetVariables(vars map[string]string) {
	for k, v := range vars {
		e.SetVariable(k, v)
	}
}

// SetGlobal sets a JS global without making it a $NAME variable.
func (e *Engine) SetGlobal(name string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runtime.Set(name, value)
}

// Eval evaluates a JavaScript expression and returns the result
func (e *Engine) Eval(script string) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := e.runtime.RunString(script)
	if err != nil {
		return nil, fmt.Errorf("JS eval error: %w", err)
	}
	return result.Export(), nil
}

// EvalString evaluates a JavaScript expression and returns string result
func (e *Engine) EvalString(script string) (string, error) {
	result, err := e.Eval(script)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return fmt.Sprintf("%v", result), nil
}

var bareVarRe = regexp.MustCompile(`^\$([A-Za-z_][A-Za-z0-9_]*)`)

// ExpandVariables expands ${expr} by JS evaluation and $NAME from declared
// variables, in one pass over text. "$$" is a literal "$". Unknown $NAME
// references and unmatched "${" are left untouched; a failing ${expr} is an
// error and text is returned unchanged.
func (e *Engine) ExpandVariables(text string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(text); {
		if text[i] != '$' || i+1 == len(text) {
			b.WriteByte(text[i])
			i++
			continue
		}

		switch text[i+1] {
		case '$':
			b.WriteByte('$')
			i += 2

		case '{':
			end := closingBrace(text, i+2)
			if end < 0 {
				b.WriteString("${")
				i += 2
				continue
			}
			expr := text[i+2 : end]
			value, err := e.EvalString(expr)
			if err != nil {
				return text, fmt.Errorf("expanding ${%s}: %w", expr, err)
			}
			b.WriteString(value)
			i = end + 1

		default:
			m := bareVarRe.FindStringSubmatch(text[i:])
			if m == nil {
				b.WriteByte('$')
				i++
				continue
			}
			if v, ok := e.lookup(m[1]); ok {
				fmt.Fprintf(&b, "%v", v)
			} else {
				b.WriteString(m[0])
			}
			i += len(m[0])
		}
	}
	return b.String(), nil
}

func (e *Engine) lookup(name string) (interface{}, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.declared[name]
	return v, ok
}

// closingBrace returns the index of the brace closing the one opened just
// before start, or -1.
func closingBrace(s string, start int) int {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
