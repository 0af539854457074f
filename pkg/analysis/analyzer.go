package analysis

import (
	"regexp"
	"strings"
)

// StaticAnalysisResult holds the headline metrics computed for one snippet.
type StaticAnalysisResult struct {
	TotalLines           int    `json:"total_lines"`
	FunctionCount        int    `json:"function_count"`
	VariableCount        int    `json:"variable_count"`
	CyclomaticComplexity int    `json:"cyclomatic_complexity"`
	Reasoning            string `json:"reasoning"`
}

var (
	// Matches "name(args) {" style definitions. Control-flow keywords are
	// filtered out below so "if (x) {" does not count as a function.
	funcPattern = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*\(([^;)]*)\)\s*\{`)

	varPattern = regexp.MustCompile(`\b(?:int|float|double|char|long|short|unsigned|signed)\s+[A-Za-z_][A-Za-z0-9_]*\s*(?:=|;)`)

	complexityPattern = regexp.MustCompile(`\b(if|for|while|case|&&|\|\|)\b`)
)

// controlKeywords are identifiers that look like calls in front of a block
// but never declare a function.
var controlKeywords = map[string]struct{}{
	"if":     {},
	"for":    {},
	"while":  {},
	"switch": {},
	"do":     {},
	"else":   {},
	"return": {},
	"sizeof": {},
}

// AnalyzeStatic computes line, function and variable counts plus a heuristic
// cyclomatic complexity for a C snippet. It is pattern based, not a parser:
// the same input always yields the same result.
func AnalyzeStatic(code string) StaticAnalysisResult {
	totalLines := 0
	if code != "" {
		totalLines = len(strings.Split(strings.TrimSuffix(code, "\n"), "\n"))
	}

	functionCount := 0
	for _, m := range funcPattern.FindAllStringSubmatch(code, -1) {
		if _, reserved := controlKeywords[m[1]]; reserved {
			continue
		}
		functionCount++
	}

	variableCount := len(varPattern.FindAllString(code, -1))

	complexity := len(complexityPattern.FindAllString(code, -1)) + 1

	return StaticAnalysisResult{
		TotalLines:           totalLines,
		FunctionCount:        functionCount,
		VariableCount:        variableCount,
		CyclomaticComplexity: complexity,
		Reasoning:            "Cyclomatic complexity estimated from control flow statements.",
	}
}
