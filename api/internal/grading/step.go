// Package grading matches ordered, free-form student solution steps against
// an instructor-authored gold solution and scores them with dependency-aware
// penalties.
package grading

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GoldStep is one line of the reference solution.
type GoldStep struct {
	Content  string `json:"content"`
	Points   int    `json:"points"`
	Required bool   `json:"required"`
	Position int    `json:"position"` // 1-based order within the solution
}

// GoldSolution is the ordered reference solution for one problem.
// Construct via NewGoldSolution so invariants hold: non-empty contents,
// non-negative points, positions forming a contiguous 1..N sequence.
type GoldSolution struct {
	Name     string            `json:"name"`
	Steps    []GoldStep        `json:"steps"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func NewGoldSolution(name string, steps []GoldStep, metadata map[string]string) (*GoldSolution, error) {
	for i, st := range steps {
		if strings.TrimSpace(st.Content) == "" {
			return nil, fmt.Errorf("gold step %d: content is empty", i+1)
		}
		if st.Points < 0 {
			return nil, fmt.Errorf("gold step %d: points must be non-negative, got %d", i+1, st.Points)
		}
		if st.Position != i+1 {
			return nil, fmt.Errorf("gold step %d: position %d out of sequence", i+1, st.Position)
		}
	}
	return &GoldSolution{Name: name, Steps: steps, Metadata: metadata}, nil
}

// TotalPoints is the full denominator for any grading run against this
// solution, independent of what the student attempted.
func (s *GoldSolution) TotalPoints() int {
	total := 0
	for _, st := range s.Steps {
		total += st.Points
	}
	return total
}

// StepStatus classifies one graded student step.
type StepStatus string

const (
	StatusCorrect   StepStatus = "Correct"
	StatusPartial   StepStatus = "Partially Correct"
	StatusIncorrect StepStatus = "Incorrect"
)

// StepEvaluation is the grading outcome for a single student step.
// Immutable once produced.
type StepEvaluation struct {
	StudentText    string
	Matched        *GoldStep // nil when no gold step was matched
	Status         StepStatus
	PointsEarned   float64
	PointsPossible int
	MatchScore     float64
	Kind           MatchKind
	PenaltyApplied bool
	Feedback       string
}

// MarshalJSON emits the transport shape: the matched gold step collapses to
// its text, null when absent.
func (e StepEvaluation) MarshalJSON() ([]byte, error) {
	var matched *string
	if e.Matched != nil {
		matched = &e.Matched.Content
	}
	return json.Marshal(struct {
		StudentText    string     `json:"student_text"`
		MatchedText    *string    `json:"matched_gold_step_text"`
		Status         StepStatus `json:"status"`
		PointsEarned   float64    `json:"points_earned"`
		PointsPossible int        `json:"points_possible"`
		MatchScore     float64    `json:"match_score"`
		PenaltyApplied bool       `json:"penalty_applied"`
		Feedback       string     `json:"feedback"`
	}{e.StudentText, matched, e.Status, e.PointsEarned, e.PointsPossible,
		e.MatchScore, e.PenaltyApplied, e.Feedback})
}

// UnmarshalJSON restores the transport shape. The match kind is not part of
// the wire format and stays empty.
func (e *StepEvaluation) UnmarshalJSON(data []byte) error {
	var raw struct {
		StudentText    string     `json:"student_text"`
		MatchedText    *string    `json:"matched_gold_step_text"`
		Status         StepStatus `json:"status"`
		PointsEarned   float64    `json:"points_earned"`
		PointsPossible int        `json:"points_possible"`
		MatchScore     float64    `json:"match_score"`
		PenaltyApplied bool       `json:"penalty_applied"`
		Feedback       string     `json:"feedback"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = StepEvaluation{
		StudentText:    raw.StudentText,
		Status:         raw.Status,
		PointsEarned:   raw.PointsEarned,
		PointsPossible: raw.PointsPossible,
		MatchScore:     raw.MatchScore,
		PenaltyApplied: raw.PenaltyApplied,
		Feedback:       raw.Feedback,
	}
	if raw.MatchedText != nil {
		e.Matched = &GoldStep{Content: *raw.MatchedText}
	}
	return nil
}

// Summary aggregates all evaluations of one grading run.
type Summary struct {
	TotalEarned     float64 `json:"total_points_earned"`
	TotalPossible   int     `json:"total_points_possible"`
	Percentage      float64 `json:"percentage"`
	CorrectSteps    int     `json:"correct_steps"`
	PartialSteps    int     `json:"partial_steps"`
	IncorrectSteps  int     `json:"incorrect_steps"`
	StepsGraded     int     `json:"total_steps_graded"`
	StepsExpected   int     `json:"total_steps_expected"`
	MissingRequired []int   `json:"missing_required_positions"`
}

// Result is the full output of one grading run.
type Result struct {
	Evaluations []StepEvaluation `json:"evaluations"`
	Summary     Summary          `json:"summary"`
}
