// Package steps segments recognized handwriting into ordered solution steps.
// OCR output is one continuous text; grading needs one string per step.
package steps

import (
	"regexp"
	"strings"
)

// minStepLength drops fragments too short to be a meaningful step.
const minStepLength = 3

var stepStartPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*\d+[.)]\s*`),           // "1.", "2)"
	regexp.MustCompile(`(?i)^\s*[a-z][.)]\s*`),     // "a.", "b)"
	regexp.MustCompile(`(?i)^\s*step\s+\d+`),       // "Step 1"
	regexp.MustCompile(`^\s*[A-Z][a-z]+\s+\d+`),    // "Problem 1"
	regexp.MustCompile(`(?i)^\s*[qp]\d+`),          // "Q1", "p2"
}

var (
	leadingNumber = regexp.MustCompile(`^\s*\d+[.)]\s*`)
	leadingLetter = regexp.MustCompile(`(?i)^\s*[a-z][.)]\s*`)
	leadingStep   = regexp.MustCompile(`(?i)^\s*step\s+\d+\s*`)
	multiSpace    = regexp.MustCompile(`\s+`)

	separators = []*regexp.Regexp{
		regexp.MustCompile(`\s*;\s*`),
		regexp.MustCompile(`\s*,\s*([A-Za-z0-9])`), // comma, but not inside numbers
		regexp.MustCompile(`\s+and\s+`),
		regexp.MustCompile(`\s+then\s+`),
	}
)

// Parse splits text into ordered steps. Newlines with step markers first,
// then common separators, then equation boundaries as a last resort.
func Parse(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	var steps []string
	var current []string
	for _, line := range lines {
		if isStepStart(line) && len(current) > 0 {
			if s := strings.TrimSpace(strings.Join(current, " ")); len(s) >= minStepLength {
				steps = append(steps, s)
			}
			current = []string{line}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		if s := strings.TrimSpace(strings.Join(current, " ")); len(s) >= minStepLength {
			steps = append(steps, s)
		}
	}

	if len(steps) <= 1 {
		steps = splitBySeparators(text)
	}
	if len(steps) <= 1 {
		steps = splitByEquations(text)
	}

	out := make([]string, 0, len(steps))
	for _, s := range steps {
		if s = cleanStep(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseExpected parses and, when the result is one lump but the caller knows
// the gold solution has more steps, retries with an operator-boundary split.
func ParseExpected(text string, expected int) []string {
	steps := Parse(text)
	if expected > 1 && len(steps) == 1 {
		if parts := smartSplit(steps[0], expected); len(parts) > 1 {
			return parts
		}
	}
	return steps
}

func isStepStart(line string) bool {
	for _, p := range stepStartPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

func splitBySeparators(text string) []string {
	steps := []string{text}
	for _, sep := range separators {
		var next []string
		for _, s := range steps {
			// Keep the capture group (lookahead is unavailable in RE2).
			s = sep.ReplaceAllString(s, "\x00$1")
			for _, p := range strings.Split(s, "\x00") {
				if p = strings.TrimSpace(p); p != "" {
					next = append(next, p)
				}
			}
		}
		steps = next
	}
	return steps
}

// splitByEquations starts a new step at each line containing '='.
func splitByEquations(text string) []string {
	var steps []string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "=") && len(current) > 0 {
			steps = append(steps, strings.Join(current, " "))
			current = []string{line}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		steps = append(steps, strings.Join(current, " "))
	}
	if len(steps) <= 1 {
		return []string{text}
	}
	return steps
}

func cleanStep(s string) string {
	s = leadingNumber.ReplaceAllString(s, "")
	s = leadingLetter.ReplaceAllString(s, "")
	s = leadingStep.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return strings.Trim(s, ".,;:")
}

var operatorBoundary = regexp.MustCompile(`([+\-*/=])`)

// smartSplit cuts text into roughly equal parts at operator boundaries.
func smartSplit(text string, parts int) []string {
	if parts <= 1 {
		return []string{text}
	}
	chunks := operatorBoundary.Split(text, -1)
	ops := operatorBoundary.FindAllString(text, -1)

	var result []string
	var current strings.Builder
	target := len(text) / parts
	for i, c := range chunks {
		current.WriteString(c)
		if i < len(ops) {
			current.WriteString(ops[i])
		}
		if len(result) < parts-1 && current.Len() > target {
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		result = append(result, strings.TrimSpace(current.String()))
	}
	if len(result) <= 1 {
		return []string{text}
	}
	return result
}
