package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_Newlines(t *testing.T) {
	got := Parse("x^2-5x+6=0\n(x-2)(x-3)=0\nx=2 or x=3")
	assert.Equal(t, []string{"x^2-5x+6=0", "(x-2)(x-3)=0", "x=2 or x=3"}, got)
}

func TestParse_NumberedSteps(t *testing.T) {
	text := "1. x^2-5x+6=0\n2) (x-2)(x-3)=0\n3. x=2 or x=3"
	got := Parse(text)
	assert.Equal(t, []string{"x^2-5x+6=0", "(x-2)(x-3)=0", "x=2 or x=3"}, got)
}

func TestParse_StepMarkersJoinContinuationLines(t *testing.T) {
	text := "Step 1\nx^2-5x+6=0\nStep 2\n(x-2)(x-3)=0"
	got := Parse(text)
	assert.Equal(t, []string{"x^2-5x+6=0", "(x-2)(x-3)=0"}, got, "marker prefix is stripped, continuation joins")
}

func TestParse_SeparatorFallback(t *testing.T) {
	got := Parse("x=4; check: 4^2=16 and 16=16")
	assert.Equal(t, []string{"x=4", "check: 4^2=16", "16=16"}, got)
}

func TestParse_EquationFallback(t *testing.T) {
	// No markers or separators: each '='-bearing line opens a new step.
	got := Parse("first we factor\nx^2-5x+6=0\n(x-2)(x-3)=0")
	assert.Equal(t, []string{"first we factor", "x^2-5x+6=0", "(x-2)(x-3)=0"}, got)
}

func TestParse_Empty(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Nil(t, Parse("   \n\t\n"))
}

func TestParse_DropsTinyFragments(t *testing.T) {
	got := Parse("1.\n2. x^2-5x+6=0")
	assert.Equal(t, []string{"x^2-5x+6=0"}, got)
}

func TestParse_DoesNotSplitAnswerOnOr(t *testing.T) {
	got := Parse("x=2 or x=3")
	assert.Equal(t, []string{"x=2 or x=3"}, got)
}

func TestParseExpected_SmartSplit(t *testing.T) {
	got := ParseExpected("2x+6=10 2x=4 x=2", 3)
	assert.Greater(t, len(got), 1)
}

func TestParseExpected_KeepsGoodParse(t *testing.T) {
	got := ParseExpected("x=4\ny=2", 2)
	assert.Equal(t, []string{"x=4", "y=2"}, got)
}
