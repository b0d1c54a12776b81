package feedback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grader-bot/api/internal/grading"
)

func gradedFixture(t *testing.T) (*grading.Result, *grading.GoldSolution) {
	t.Helper()
	gold, err := grading.NewGoldSolution("quadratic", []grading.GoldStep{
		{Content: "x^2-5x+6=0", Points: 1, Required: true, Position: 1},
		{Content: "(x-2)(x-3)=0", Points: 1, Required: true, Position: 2},
		{Content: "x=2 or x=3", Points: 2, Required: true, Position: 3},
	}, nil)
	require.NoError(t, err)

	res := grading.NewGrader(grading.DefaultConfig()).Grade([]string{
		"x^2-5x+6=0",
		"x=2 or x=3",
	}, gold)
	return res, gold
}

func TestReport(t *testing.T) {
	res, gold := gradedFixture(t)
	report := NewBuilder(Options{Detailed: true}).Report(res, gold)

	assert.Contains(t, report, "📊 Score: 2/4 (50.0%)")
	assert.Contains(t, report, "Step 1:")
	assert.Contains(t, report, "Your answer: x^2-5x+6=0")
	assert.Contains(t, report, "Expected: x^2-5x+6=0")
	assert.Contains(t, report, "✓ Correct steps: 2")
	assert.Contains(t, report, "⚠️ Missing required steps:")
	assert.Contains(t, report, "• Step 2: (x-2)(x-3)=0")
	assert.Contains(t, report, "💡 Recommendations:")
	assert.Contains(t, report, "Keep practicing!")
	assert.Contains(t, report, "include all required steps")
}

func TestReport_DetailedOff(t *testing.T) {
	res, gold := gradedFixture(t)
	report := NewBuilder(Options{}).Report(res, gold)
	assert.NotContains(t, report, "💡 Recommendations:")
}

func TestReport_HighScoreBucket(t *testing.T) {
	gold, err := grading.NewGoldSolution("single", []grading.GoldStep{
		{Content: "x=4", Points: 1, Required: true, Position: 1},
	}, nil)
	require.NoError(t, err)
	res := grading.NewGrader(grading.DefaultConfig()).Grade([]string{"x=4"}, gold)

	report := NewBuilder(Options{Detailed: true}).Report(res, gold)
	assert.Contains(t, report, "Excellent work!")
	assert.NotContains(t, report, "Missing required steps")
}

func TestTable(t *testing.T) {
	res, _ := gradedFixture(t)
	rows := NewBuilder(Options{}).Table(res)

	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Step)
	assert.Equal(t, "x^2-5x+6=0", rows[0].Student)
	assert.Equal(t, "✓", rows[0].Status)
	assert.Equal(t, "1/1", rows[0].Points)
}

func TestTable_TruncatesLongText(t *testing.T) {
	gold, err := grading.NewGoldSolution("single", []grading.GoldStep{
		{Content: "x=4", Points: 1, Required: true, Position: 1},
	}, nil)
	require.NoError(t, err)

	long := strings.Repeat("9+9 ", 20)
	res := grading.NewGrader(grading.DefaultConfig()).Grade([]string{long}, gold)
	rows := NewBuilder(Options{}).Table(res)

	require.Len(t, rows, 1)
	assert.True(t, strings.HasSuffix(rows[0].Student, "..."))
	assert.LessOrEqual(t, len([]rune(rows[0].Student)), 53)
	assert.Equal(t, "N/A", rows[0].Expected)
	assert.Equal(t, "N/A", rows[0].Points)
}
