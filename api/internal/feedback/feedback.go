// Package feedback renders a grading result as a student-facing report.
package feedback

import (
	"fmt"
	"strings"

	"grader-bot/api/internal/grading"
)

const rule = "----------------------------------------------------------------------"

// Options controls report verbosity.
type Options struct {
	Detailed bool // include the recommendations block
}

// Builder renders grading results. Stateless apart from options.
type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Report renders the full plain-text report: overall score, per-step
// breakdown, statistics, missing required steps and (optionally)
// recommendations.
func (f *Builder) Report(res *grading.Result, gold *grading.GoldSolution) string {
	var b strings.Builder
	s := res.Summary

	fmt.Fprintf(&b, "📊 Score: %s/%d (%.1f%%)\n\n", trimFloat(s.TotalEarned), s.TotalPossible, s.Percentage)

	b.WriteString("📝 Step-by-step breakdown:\n")
	b.WriteString(rule + "\n")
	for i, e := range res.Evaluations {
		fmt.Fprintf(&b, "\nStep %d:\n", i+1)
		fmt.Fprintf(&b, "  Your answer: %s\n", e.StudentText)
		if e.Matched != nil {
			fmt.Fprintf(&b, "  Expected: %s\n", e.Matched.Content)
			fmt.Fprintf(&b, "  Points: %s/%d\n", trimFloat(e.PointsEarned), e.PointsPossible)
		}
		fmt.Fprintf(&b, "  %s\n", e.Feedback)
	}
	b.WriteString("\n" + rule + "\n")

	b.WriteString("\n📈 Statistics:\n")
	fmt.Fprintf(&b, "  ✓ Correct steps: %d\n", s.CorrectSteps)
	fmt.Fprintf(&b, "  ~ Partial steps: %d\n", s.PartialSteps)
	fmt.Fprintf(&b, "  ✗ Incorrect steps: %d\n", s.IncorrectSteps)

	if len(s.MissingRequired) > 0 {
		b.WriteString("\n⚠️ Missing required steps:\n")
		for _, pos := range s.MissingRequired {
			if st, ok := stepAt(gold, pos); ok {
				fmt.Fprintf(&b, "  • Step %d: %s\n", pos, st.Content)
			}
		}
	}

	if f.opts.Detailed {
		b.WriteString("\n" + f.recommendations(s))
	}
	return b.String()
}

// recommendations buckets the overall percentage and appends targeted advice.
func (f *Builder) recommendations(s grading.Summary) string {
	var b strings.Builder
	b.WriteString("💡 Recommendations:\n")
	switch {
	case s.Percentage >= 90:
		b.WriteString("  Excellent work! You demonstrated strong problem-solving skills.\n")
	case s.Percentage >= 70:
		b.WriteString("  Good job! Review the steps marked as partial or incorrect.\n")
	default:
		b.WriteString("  Keep practicing! Focus on showing all required steps clearly.\n")
	}
	if len(s.MissingRequired) > 0 {
		b.WriteString("  • Make sure to include all required steps in your solution.\n")
	}
	if s.PartialSteps > 0 {
		b.WriteString("  • Some steps were partially correct, check for minor errors.\n")
	}
	if s.IncorrectSteps > s.CorrectSteps {
		b.WriteString("  • Review the solution method and practice similar problems.\n")
	}
	return b.String()
}

// Row is one line of the tabular summary.
type Row struct {
	Step     int
	Student  string
	Expected string
	Status   string
	Points   string
}

// Table produces a compact per-step view, texts truncated to 50 runes.
func (f *Builder) Table(res *grading.Result) []Row {
	rows := make([]Row, 0, len(res.Evaluations))
	for i, e := range res.Evaluations {
		expected := "N/A"
		points := "N/A"
		if e.Matched != nil {
			expected = truncate(e.Matched.Content, 50)
			if e.PointsPossible > 0 {
				points = fmt.Sprintf("%s/%d", trimFloat(e.PointsEarned), e.PointsPossible)
			}
		}
		rows = append(rows, Row{
			Step:     i + 1,
			Student:  truncate(e.StudentText, 50),
			Expected: expected,
			Status:   statusIcon(e.Status),
			Points:   points,
		})
	}
	return rows
}

func statusIcon(s grading.StepStatus) string {
	switch s {
	case grading.StatusCorrect:
		return "✓"
	case grading.StatusPartial:
		return "~"
	default:
		return "✗"
	}
}

func stepAt(gold *grading.GoldSolution, pos int) (grading.GoldStep, bool) {
	for _, st := range gold.Steps {
		if st.Position == pos {
			return st, true
		}
	}
	return grading.GoldStep{}, false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// trimFloat prints 2.0 as "2" and 1.8 as "1.8".
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
