package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"grader-bot/api/internal/grading"
)

// SolutionStore keeps gold solutions as one JSON file per solution under a
// directory. Names are sanitized into the filename, so Save and Load agree on
// the key regardless of case or spacing.
type SolutionStore struct {
	dir string
}

// NewSolutionStore creates the directory if needed.
func NewSolutionStore(dir string) (*SolutionStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("solutions dir: %w", err)
	}
	return &SolutionStore{dir: dir}, nil
}

// solutionFile is the on-disk shape. total_points and step_count are
// denormalized so List can show them without re-deriving.
type solutionFile struct {
	Name        string             `json:"name"`
	TotalPoints int                `json:"total_points"`
	StepCount   int                `json:"step_count"`
	Steps       []grading.GoldStep `json:"steps"`
	Metadata    map[string]string  `json:"metadata"`
}

// SolutionInfo is one row of List.
type SolutionInfo struct {
	Filename    string            `json:"filename"`
	Name        string            `json:"name"`
	TotalPoints int               `json:"total_points"`
	StepCount   int               `json:"step_count"`
	Metadata    map[string]string `json:"metadata"`
}

// Save writes the solution and returns the file path.
func (s *SolutionStore) Save(sol *grading.GoldSolution) (string, error) {
	meta := sol.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	data := solutionFile{
		Name:        sol.Name,
		TotalPoints: sol.TotalPoints(),
		StepCount:   len(sol.Steps),
		Steps:       sol.Steps,
		Metadata:    meta,
	}
	js, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, SanitizeName(sol.Name)+".json")
	if err := os.WriteFile(path, js, 0o644); err != nil {
		return "", fmt.Errorf("save solution %q: %w", sol.Name, err)
	}
	return path, nil
}

// Load reads a solution by name; the ".json" suffix is optional.
func (s *SolutionStore) Load(name string) (*grading.GoldSolution, error) {
	js, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("solution %q: %w", name, ErrNotFound)
		}
		return nil, err
	}
	var data solutionFile
	if err := json.Unmarshal(js, &data); err != nil {
		return nil, fmt.Errorf("solution %q: bad file: %w", name, err)
	}
	return grading.NewGoldSolution(data.Name, data.Steps, data.Metadata)
}

// List reads every *.json in the directory, skipping unreadable files, and
// returns the result sorted by name.
func (s *SolutionStore) List() ([]SolutionInfo, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	infos := make([]SolutionInfo, 0, len(paths))
	for _, p := range paths {
		js, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var data solutionFile
		if err := json.Unmarshal(js, &data); err != nil {
			continue
		}
		meta := data.Metadata
		if meta == nil {
			meta = map[string]string{}
		}
		infos = append(infos, SolutionInfo{
			Filename:    filepath.Base(p),
			Name:        data.Name,
			TotalPoints: data.TotalPoints,
			StepCount:   data.StepCount,
			Metadata:    meta,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Delete removes a solution; ErrNotFound when it does not exist.
func (s *SolutionStore) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *SolutionStore) path(name string) string {
	name = strings.TrimSuffix(name, ".json")
	return filepath.Join(s.dir, SanitizeName(name)+".json")
}

// SanitizeName maps a display name to a filename-safe key: alphanumerics
// kept, spaces become underscores, everything else becomes '_', lowercased.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + 'a' - 'A')
		case r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
