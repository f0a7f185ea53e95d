package executor

import (
	"os"
	"regexp"
	"strings"

	"github.com/devicelab-dev/appium-steps/pkg/jsengine"
)

// envVarPattern matches variable names imported from the process environment.
var envVarPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// ScriptEngine holds the variables visible to step text of one scenario.
type ScriptEngine struct {
	js *jsengine.Engine
}

// NewScriptEngine creates a new script engine.
func NewScriptEngine() *ScriptEngine {
	return &ScriptEngine{js: jsengine.New()}
}

// ImportSystemEnv exposes uppercase environment variables (HOME, MY_VAR) to
// ${...} expressions. Bare $NAME only expands variables set with SetVariables,
// so typed text such as "pa$SECRET" is not rewritten by the environment.
func (se *ScriptEngine) ImportSystemEnv() {
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if ok && envVarPattern.MatchString(name) {
			se.js.SetGlobal(name, value)
		}
	}
}

// SetVariables sets multiple variables, overriding earlier values.
func (se *ScriptEngine) SetVariables(vars map[string]string) {
	se.js.SetVariables(vars)
}

// SetPlatform exposes the session platform as PLATFORM.
func (se *ScriptEngine) SetPlatform(platform string) {
	se.js.SetVariable("PLATFORM", platform)
}

// ExpandStep expands ${expr} and $NAME in step text. "$$" is a literal "$".
func (se *ScriptEngine) ExpandStep(text string) (string, error) {
	if !strings.Contains(text, "$") {
		return text, nil
	}
	return se.js.ExpandVariables(text)
}
