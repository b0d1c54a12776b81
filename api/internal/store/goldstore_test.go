package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grader-bot/api/internal/grading"
)

func testSolution(t *testing.T, name string) *grading.GoldSolution {
	t.Helper()
	sol, err := grading.NewGoldSolution(name, []grading.GoldStep{
		{Content: "x^2-5x+6=0", Points: 1, Required: true, Position: 1},
		{Content: "x=2 or x=3", Points: 2, Required: true, Position: 2},
	}, map[string]string{"topic": "quadratics"})
	require.NoError(t, err)
	return sol
}

func TestSolutionStore_SaveLoad(t *testing.T) {
	s, err := NewSolutionStore(t.TempDir())
	require.NoError(t, err)

	path, err := s.Save(testSolution(t, "Midterm Problem 1"))
	require.NoError(t, err)
	assert.Equal(t, "midterm_problem_1.json", filepath.Base(path))

	got, err := s.Load("Midterm Problem 1")
	require.NoError(t, err)
	assert.Equal(t, "Midterm Problem 1", got.Name)
	assert.Len(t, got.Steps, 2)
	assert.Equal(t, 3, got.TotalPoints())
	assert.Equal(t, "quadratics", got.Metadata["topic"])

	// extension and sanitized key both resolve
	_, err = s.Load("midterm_problem_1.json")
	assert.NoError(t, err)
}

func TestSolutionStore_FileShape(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSolutionStore(dir)
	require.NoError(t, err)

	_, err = s.Save(testSolution(t, "shape"))
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "shape.json"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "shape", got["name"])
	assert.Equal(t, 3.0, got["total_points"])
	assert.Equal(t, 2.0, got["step_count"])
	assert.Len(t, got["steps"], 2)
	assert.NotNil(t, got["metadata"])
}

func TestSolutionStore_LoadMissing(t *testing.T) {
	s, err := NewSolutionStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSolutionStore_List(t *testing.T) {
	s, err := NewSolutionStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(testSolution(t, "beta"))
	require.NoError(t, err)
	_, err = s.Save(testSolution(t, "alpha"))
	require.NoError(t, err)

	infos, err := s.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, "beta", infos[1].Name)
	assert.Equal(t, 3, infos[0].TotalPoints)
	assert.Equal(t, 2, infos[0].StepCount)
}

func TestSolutionStore_ListSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSolutionStore(dir)
	require.NoError(t, err)

	_, err = s.Save(testSolution(t, "good"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))

	infos, err := s.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "good", infos[0].Name)
}

func TestSolutionStore_Delete(t *testing.T) {
	s, err := NewSolutionStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(testSolution(t, "gone"))
	require.NoError(t, err)
	require.NoError(t, s.Delete("gone"))

	_, err = s.Load("gone")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete("gone"), ErrNotFound)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "midterm_problem_1", SanitizeName("Midterm Problem 1"))
	assert.Equal(t, "a-b_c", SanitizeName("a-b/c"))
	assert.Equal(t, "x_2-5x_6_0", SanitizeName("x^2-5x+6=0"))
}
