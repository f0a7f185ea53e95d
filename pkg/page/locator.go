// Package page describes screens as named element locators and resolves them
// against a live session.
package page

import "fmt"

// Strategy is a W3C/Appium element location strategy.
type Strategy string

// Supported strategies.
const (
	XPath              Strategy = "xpath"
	ID                 Strategy = "id"
	AccessibilityID    Strategy = "accessibility id"
	ClassName          Strategy = "class name"
	AndroidUIAutomator Strategy = "-android uiautomator"
	IOSPredicate       Strategy = "-ios predicate string"
	IOSClassChain      Strategy = "-ios class chain"
)

var strategies = map[Strategy]bool{
	XPath:              true,
	ID:                 true,
	AccessibilityID:    true,
	ClassName:          true,
	AndroidUIAutomator: true,
	IOSPredicate:       true,
	IOSClassChain:      true,
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return strategies[s]
}

// Locator is a static description of how to find one element.
type Locator struct {
	Strategy Strategy
	Value    string
}

// ByXPath returns an xpath locator.
func ByXPath(expr string) Locator {
	return Locator{Strategy: XPath, Value: expr}
}

// ByID returns a resource-id locator.
func ByID(id string) Locator {
	return Locator{Strategy: ID, Value: id}
}

// ByAccessibilityID returns an accessibility id locator.
func ByAccessibilityID(id string) Locator {
	return Locator{Strategy: AccessibilityID, Value: id}
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Value)
}
