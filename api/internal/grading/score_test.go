package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadraticGold(t *testing.T) *GoldSolution {
	t.Helper()
	sol, err := NewGoldSolution("quadratic_x2_5x_6", []GoldStep{
		{Content: "x^2-5x+6=0", Points: 1, Required: true, Position: 1},
		{Content: "(x-2)(x-3)=0", Points: 1, Required: true, Position: 2},
		{Content: "x-2=0 or x-3=0", Points: 1, Required: true, Position: 3},
		{Content: "x=2 or x=3", Points: 2, Required: true, Position: 4},
	}, nil)
	require.NoError(t, err)
	return sol
}

func TestGrade_PerfectSubmission(t *testing.T) {
	g := NewGrader(DefaultConfig())
	gold := quadraticGold(t)

	res := g.Grade([]string{
		"x^2-5x+6=0",
		"(x-2)(x-3)=0",
		"x-2=0 or x-3=0",
		"x=2 or x=3",
	}, gold)

	require.Len(t, res.Evaluations, 4)
	for i, e := range res.Evaluations {
		assert.Equal(t, StatusCorrect, e.Status, "step %d", i+1)
		assert.Equal(t, MatchExact, e.Kind, "step %d", i+1)
		assert.False(t, e.PenaltyApplied, "step %d", i+1)
		assert.Equal(t, float64(e.PointsPossible), e.PointsEarned, "step %d", i+1)
	}
	assert.Equal(t, 5.0, res.Summary.TotalEarned)
	assert.Equal(t, 5, res.Summary.TotalPossible)
	assert.Equal(t, 100.0, res.Summary.Percentage)
	assert.Equal(t, 4, res.Summary.CorrectSteps)
	assert.Empty(t, res.Summary.MissingRequired)
}

func TestGrade_SkippedRequiredStepsPenalizeLaterWork(t *testing.T) {
	g := NewGrader(DefaultConfig())
	gold := quadraticGold(t)

	res := g.Grade([]string{
		"x^2-5x+6=0",
		"x^2-5*x+6=0", // restates step 1, which is already claimed
		"x=2 or x=3",
	}, gold)

	require.Len(t, res.Evaluations, 3)

	first := res.Evaluations[0]
	assert.Equal(t, StatusCorrect, first.Status)
	assert.Equal(t, 1.0, first.PointsEarned)
	assert.False(t, first.PenaltyApplied)

	second := res.Evaluations[1]
	assert.Equal(t, StatusIncorrect, second.Status)
	assert.Nil(t, second.Matched)
	assert.Zero(t, second.PointsEarned)

	third := res.Evaluations[2]
	require.NotNil(t, third.Matched)
	assert.Equal(t, 4, third.Matched.Position)
	assert.Equal(t, StatusCorrect, third.Status)
	assert.True(t, third.PenaltyApplied)
	assert.Equal(t, 1.0, third.PointsEarned) // 2 * 1.0 * 0.5

	assert.Equal(t, 2.0, res.Summary.TotalEarned)
	assert.Equal(t, 40.0, res.Summary.Percentage)
	assert.Equal(t, []int{2, 3}, res.Summary.MissingRequired)
}

func TestGrade_EmptySubmission(t *testing.T) {
	g := NewGrader(DefaultConfig())
	sol, err := NewGoldSolution("single", []GoldStep{
		{Content: "x=4", Points: 1, Required: true, Position: 1},
	}, nil)
	require.NoError(t, err)

	res := g.Grade(nil, sol)

	assert.Empty(t, res.Evaluations)
	assert.Zero(t, res.Summary.TotalEarned)
	assert.Zero(t, res.Summary.Percentage)
	assert.Equal(t, []int{1}, res.Summary.MissingRequired)
	assert.Equal(t, 1, res.Summary.StepsExpected)
}

func TestGrade_BlankStudentLinesAreSkipped(t *testing.T) {
	g := NewGrader(DefaultConfig())
	sol, err := NewGoldSolution("single", []GoldStep{
		{Content: "x=4", Points: 1, Required: true, Position: 1},
	}, nil)
	require.NoError(t, err)

	res := g.Grade([]string{"", "   ", "x=4", "\t"}, sol)

	require.Len(t, res.Evaluations, 1)
	assert.Equal(t, 1, res.Summary.StepsGraded)
	assert.Equal(t, 100.0, res.Summary.Percentage)
}

func TestGrade_DuplicateStudentStepCannotDoubleClaim(t *testing.T) {
	g := NewGrader(DefaultConfig())
	sol, err := NewGoldSolution("single", []GoldStep{
		{Content: "x=2", Points: 1, Required: true, Position: 1},
	}, nil)
	require.NoError(t, err)

	res := g.Grade([]string{"x=2", "x=2"}, sol)

	require.Len(t, res.Evaluations, 2)
	assert.Equal(t, StatusCorrect, res.Evaluations[0].Status)
	assert.Equal(t, StatusIncorrect, res.Evaluations[1].Status)
	assert.Equal(t, 1.0, res.Summary.TotalEarned)
	assert.Equal(t, 100.0, res.Summary.Percentage)
}

func TestGrade_RaisedFloorEarnsNothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AcceptanceFloor = 1.01
	g := NewGrader(cfg)
	gold := quadraticGold(t)

	res := g.Grade([]string{"x^2-5x+6=0", "x=2 or x=3"}, gold)

	for _, e := range res.Evaluations {
		assert.Equal(t, StatusIncorrect, e.Status)
		assert.Zero(t, e.PointsEarned)
	}
	assert.Zero(t, res.Summary.TotalEarned)
	assert.Equal(t, []int{1, 2, 3, 4}, res.Summary.MissingRequired)
}

func TestGrade_ZeroPointSolution(t *testing.T) {
	g := NewGrader(DefaultConfig())
	sol, err := NewGoldSolution("ungraded", []GoldStep{
		{Content: "x=1", Points: 0, Required: false, Position: 1},
	}, nil)
	require.NoError(t, err)

	res := g.Grade([]string{"x=1"}, sol)

	assert.Zero(t, res.Summary.TotalPossible)
	assert.Zero(t, res.Summary.Percentage)
	assert.Equal(t, 1, res.Summary.CorrectSteps)
}

func TestGrade_EarnedNeverExceedsPossible(t *testing.T) {
	g := NewGrader(DefaultConfig())
	gold := quadraticGold(t)

	submissions := [][]string{
		{"x^2-5x+6=0", "x=2 or x=3"},
		{"x=2 or x=3", "x^2-5x+6=0"},
		{"2x^2-10x+12=0", "x=2 or x=3", "garbage line"},
	}
	for _, steps := range submissions {
		res := g.Grade(steps, gold)
		for _, e := range res.Evaluations {
			assert.GreaterOrEqual(t, e.PointsEarned, 0.0)
			assert.LessOrEqual(t, e.PointsEarned, float64(e.PointsPossible))
		}
		assert.LessOrEqual(t, res.Summary.TotalEarned, float64(res.Summary.TotalPossible))
	}
}

func TestGrade_Deterministic(t *testing.T) {
	g := NewGrader(DefaultConfig())
	gold := quadraticGold(t)
	steps := []string{"x^2-5x+6=0", "x^2-5*x+6=0", "x=2 or x=3"}

	first := g.Grade(steps, gold)
	second := g.Grade(steps, gold)
	assert.Equal(t, first, second)
}

func TestGrade_ScaledMatchGetsPartialCredit(t *testing.T) {
	g := NewGrader(DefaultConfig())
	sol, err := NewGoldSolution("linear", []GoldStep{
		{Content: "4x=16", Points: 2, Required: true, Position: 1},
	}, nil)
	require.NoError(t, err)

	res := g.Grade([]string{"2x=8"}, sol)

	require.Len(t, res.Evaluations, 1)
	e := res.Evaluations[0]
	assert.Equal(t, StatusPartial, e.Status)
	assert.Equal(t, MatchSymbolicScaled, e.Kind)
	assert.InDelta(t, 0.9, e.MatchScore, 1e-9)
	assert.Equal(t, 1.8, e.PointsEarned)
}
