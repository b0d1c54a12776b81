package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"grader-bot/api/internal/grading"
	"grader-bot/api/internal/ocr"
	"grader-bot/api/internal/steps"
	"grader-bot/api/internal/store"
	"grader-bot/api/internal/util"
)

// gradeReq is the /v1/grade input. Exactly one of student_steps, text or
// image must carry the submission.
type gradeReq struct {
	Solution     string   `json:"solution"`
	StudentSteps []string `json:"student_steps"`
	Text         string   `json:"text"`  // raw OCR-like text, segmented server-side
	Image        string   `json:"image"` // base64 or data: URI of a photo
}

type gradeResp struct {
	Solution    string                   `json:"solution"`
	Evaluations []grading.StepEvaluation `json:"evaluations"`
	Summary     grading.Summary          `json:"summary"`
	Report      string                   `json:"report"`
}

func (h *Handle) Grade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req gradeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Solution) == "" {
		http.Error(w, "solution is required", http.StatusBadRequest)
		return
	}

	gold, err := h.solutions.Load(req.Solution)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "unknown solution: "+req.Solution, http.StatusNotFound)
			return
		}
		http.Error(w, "load solution: "+err.Error(), http.StatusInternalServerError)
		return
	}

	studentSteps, err := h.studentSteps(r.Context(), &req, len(gold.Steps))
	if err != nil {
		var be *badRequestError
		if errors.As(err, &be) {
			http.Error(w, be.msg, http.StatusBadRequest)
			return
		}
		http.Error(w, "recognize: "+err.Error(), http.StatusBadGateway)
		return
	}

	res := h.grader.Grade(studentSteps, gold)
	writeJSON(w, http.StatusOK, gradeResp{
		Solution:    gold.Name,
		Evaluations: res.Evaluations,
		Summary:     res.Summary,
		Report:      h.fb.Report(res, gold),
	})
}

type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func (h *Handle) studentSteps(ctx context.Context, req *gradeReq, expected int) ([]string, error) {
	switch {
	case len(req.StudentSteps) > 0:
		return req.StudentSteps, nil
	case strings.TrimSpace(req.Text) != "":
		return steps.Parse(req.Text), nil
	case strings.TrimSpace(req.Image) != "":
		if h.engines == nil {
			return nil, &badRequestError{"image input is not enabled"}
		}
		img, _, err := util.DecodeBase64MaybeDataURL(req.Image)
		if err != nil {
			return nil, &badRequestError{"bad image: " + err.Error()}
		}
		ctx, cancel := context.WithTimeout(ctx, 70*time.Second)
		defer cancel()
		out, err := h.engines.Get(0).Recognize(ctx, img, ocr.Options{})
		if err != nil {
			return nil, err
		}
		return steps.ParseExpected(out.Text, expected), nil
	default:
		return nil, &badRequestError{"one of student_steps, text or image is required"}
	}
}
