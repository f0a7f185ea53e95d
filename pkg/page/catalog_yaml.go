package page

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/appium-steps/pkg/core"
)

// catalogFile is the on-disk page catalog:
//
//	pages:
//	  login:
//	    emailInput:
//	      xpath: //android.widget.EditText[@resource-id="ion-input-0"]
//	    loginButton: //android.widget.Button[@text="Entrar"]
//
// A bare string locator is an xpath.
type catalogFile struct {
	Pages yaml.Node `yaml:"pages"`
}

// LoadCatalog reads page models from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.ErrConfiguration.WithMessagef("failed to read pages file %s", path).WithCause(err)
	}
	return ParseCatalog(data, path)
}

// ParseCatalog parses page models from YAML data. Field order follows the file.
func ParseCatalog(data []byte, source string) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, core.ErrConfiguration.WithMessagef("failed to parse pages file %s", source).WithCause(err)
	}

	catalog := NewCatalog()
	if file.Pages.Kind == 0 {
		return catalog, nil
	}
	if file.Pages.Kind != yaml.MappingNode {
		return nil, core.ErrConfiguration.WithMessagef("%s: 'pages' must be a mapping", source)
	}

	for i := 0; i+1 < len(file.Pages.Content); i += 2 {
		name := file.Pages.Content[i].Value
		body := file.Pages.Content[i+1]
		if body.Kind != yaml.MappingNode {
			return nil, core.ErrConfiguration.WithMessagef("%s:%d: page %q must be a mapping", source, body.Line, name)
		}

		model := NewModel(name)
		for j := 0; j+1 < len(body.Content); j += 2 {
			field := body.Content[j].Value
			loc, err := parseLocator(body.Content[j+1])
			if err != nil {
				return nil, core.ErrConfiguration.WithMessagef("%s:%d: %s.%s: %v", source, body.Content[j].Line, name, field, err)
			}
			if _, dup := model.Locator(field); dup {
				return nil, core.ErrConfiguration.WithMessagef("%s:%d: %s.%s defined twice", source, body.Content[j].Line, name, field)
			}
			model.Define(field, loc)
		}
		catalog.Add(model)
	}
	return catalog, nil
}

func parseLocator(node *yaml.Node) (Locator, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			return Locator{}, fmt.Errorf("empty locator")
		}
		return ByXPath(node.Value), nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return Locator{}, fmt.Errorf("locator must have exactly one strategy")
		}
		strategy := Strategy(node.Content[0].Value)
		if !strategy.Valid() {
			return Locator{}, fmt.Errorf("unknown strategy %q", strategy)
		}
		if node.Content[1].Value == "" {
			return Locator{}, fmt.Errorf("empty locator")
		}
		return Locator{Strategy: strategy, Value: node.Content[1].Value}, nil
	default:
		return Locator{}, fmt.Errorf("locator must be a string or a {strategy: value} mapping")
	}
}
