package analysis

import "regexp"

// AntiPattern flags a suspicious construct found in a snippet.
type AntiPattern struct {
	Type    string `json:"type"`
	Details string `json:"details"`
}

const (
	AntiPatternGlobalVariable = "Global Variable Misuse"
	AntiPatternNestedIfs      = "Deeply Nested Conditionals"
)

var (
	globalVarPattern = regexp.MustCompile(`(?m)^\s*(?:int|float|double|char)\s+[A-Za-z_][A-Za-z0-9_]*\s*(?:=|;)`)

	// Counts "if (...) {" occurrences anywhere in the text. Deliberately not
	// nesting aware: three sequential ifs trip the flag just like three
	// nested ones.
	nestedIfPattern = regexp.MustCompile(`if\s*\([^)]*\)\s*\{`)
)

// nestedIfThreshold is the number of if-block matches at which the
// "Deeply Nested Conditionals" flag fires. Two matches stay clean.
const nestedIfThreshold = 3

// DetectAntiPatterns runs the regex based checks over a snippet and returns
// the flags in a fixed order.
func DetectAntiPatterns(code string) []AntiPattern {
	var patterns []AntiPattern

	if globalVarPattern.MatchString(code) {
		patterns = append(patterns, AntiPattern{
			Type:    AntiPatternGlobalVariable,
			Details: "Global variable detected.",
		})
	}

	if len(nestedIfPattern.FindAllString(code, -1)) >= nestedIfThreshold {
		patterns = append(patterns, AntiPattern{
			Type:    AntiPatternNestedIfs,
			Details: "Multiple nested if statements.",
		})
	}

	return patterns
}
