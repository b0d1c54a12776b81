package grading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGoldSolution_Validation(t *testing.T) {
	_, err := NewGoldSolution("s", []GoldStep{
		{Content: "   ", Points: 1, Position: 1},
	}, nil)
	assert.ErrorContains(t, err, "content is empty")

	_, err = NewGoldSolution("s", []GoldStep{
		{Content: "x=1", Points: -1, Position: 1},
	}, nil)
	assert.ErrorContains(t, err, "non-negative")

	_, err = NewGoldSolution("s", []GoldStep{
		{Content: "x=1", Points: 1, Position: 2},
	}, nil)
	assert.ErrorContains(t, err, "out of sequence")

	sol, err := NewGoldSolution("s", []GoldStep{
		{Content: "x=1", Points: 1, Position: 1},
		{Content: "x=2", Points: 2, Position: 2},
	}, map[string]string{"subject": "algebra"})
	require.NoError(t, err)
	assert.Equal(t, 3, sol.TotalPoints())
}

func TestStepEvaluation_JSON(t *testing.T) {
	matched := GoldStep{Content: "x=4", Points: 2, Required: true, Position: 1}
	e := StepEvaluation{
		StudentText:    "x = 4",
		Matched:        &matched,
		Status:         StatusCorrect,
		PointsEarned:   2,
		PointsPossible: 2,
		MatchScore:     1,
		Kind:           MatchNormalized,
		Feedback:       "Correct (notation-normalized match)",
	}

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "x = 4", got["student_text"])
	assert.Equal(t, "x=4", got["matched_gold_step_text"])
	assert.Equal(t, "Correct", got["status"])
	assert.Equal(t, 2.0, got["points_earned"])
	assert.Equal(t, false, got["penalty_applied"])

	raw, err = json.Marshal(StepEvaluation{StudentText: "??", Status: StatusIncorrect})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Nil(t, got["matched_gold_step_text"])
}

func TestSummary_JSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(Summary{TotalEarned: 2, TotalPossible: 5, Percentage: 40, MissingRequired: []int{2, 3}})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 2.0, got["total_points_earned"])
	assert.Equal(t, 5.0, got["total_points_possible"])
	assert.Equal(t, 40.0, got["percentage"])
	assert.Equal(t, []any{2.0, 3.0}, got["missing_required_positions"])
}
