// Package handle exposes the grading engine over HTTP.
package handle

import (
	"encoding/json"
	"net/http"

	"grader-bot/api/internal/feedback"
	"grader-bot/api/internal/grading"
	"grader-bot/api/internal/ocr"
	"grader-bot/api/internal/store"
)

type Handle struct {
	solutions *store.SolutionStore
	grader    *grading.Grader
	fb        *feedback.Builder
	engines   *ocr.Manager // nil disables image input
}

func New(solutions *store.SolutionStore, grader *grading.Grader, fb *feedback.Builder, engines *ocr.Manager) *Handle {
	return &Handle{
		solutions: solutions,
		grader:    grader,
		fb:        fb,
		engines:   engines,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
