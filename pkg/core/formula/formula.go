// Package formula evaluates the restricted arithmetic templates declared by
// estimation strategies. Templates carry named placeholders in braces, e.g.
// "{customers} * {price}". Substitution, a character whitelist, and a small
// recursive-descent evaluator replace any notion of "run this string" —
// nothing outside + - * / ( ) and numeric literals can execute.
package formula

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FormulaError reports a template that failed validation or evaluation
type FormulaError struct {
	Template string
	Reason   string
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("formula %q: %s", e.Template, e.Reason)
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// safeRe is the arithmetic whitelist: digits, decimal points, whitespace,
// and + - * / ( ). It runs after substitution and before evaluation;
// anything else in the substituted text is rejected outright.
var safeRe = regexp.MustCompile(`^[0-9.\s+\-*/()]+$`)

// Placeholders returns the variable names referenced by a template
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Evaluate substitutes inputs into the template and evaluates the result.
// Missing inputs fail before substitution; a substituted string that is not
// pure arithmetic fails before evaluation.
func Evaluate(template string, inputs map[string]float64) (float64, error) {
	for _, name := range Placeholders(template) {
		if _, ok := inputs[name]; !ok {
			return 0, &FormulaError{Template: template, Reason: fmt.Sprintf("missing input '%s'", name)}
		}
	}

	substituted := placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		name := strings.Trim(m, "{}")
		return strconv.FormatFloat(inputs[name], 'f', -1, 64)
	})

	if strings.TrimSpace(substituted) == "" {
		return 0, &FormulaError{Template: template, Reason: "empty after substitution"}
	}
	if !safeRe.MatchString(substituted) {
		return 0, &FormulaError{Template: template, Reason: "substituted text contains non-arithmetic characters"}
	}

	val, err := evalExpr(substituted)
	if err != nil {
		return 0, &FormulaError{Template: template, Reason: err.Error()}
	}
	return val, nil
}
