package handle

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"grader-bot/api/internal/grading"
	"grader-bot/api/internal/store"
)

// Solutions routes /v1/solutions by method: GET lists (or fetches one by
// ?name=), POST creates, DELETE removes by ?name=.
func (h *Handle) Solutions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getSolutions(w, r)
	case http.MethodPost:
		h.createSolution(w, r)
	case http.MethodDelete:
		h.deleteSolution(w, r)
	default:
		http.Error(w, "GET, POST or DELETE", http.StatusMethodNotAllowed)
	}
}

func (h *Handle) getSolutions(w http.ResponseWriter, r *http.Request) {
	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		sol, err := h.solutions.Load(name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "unknown solution: "+name, http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, sol)
		return
	}
	infos, err := h.solutions.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"solutions": infos})
}

type createSolutionReq struct {
	Name     string             `json:"name"`
	Steps    []grading.GoldStep `json:"steps"`
	Metadata map[string]string  `json:"metadata"`
}

func (h *Handle) createSolution(w http.ResponseWriter, r *http.Request) {
	var req createSolutionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if len(req.Steps) == 0 {
		http.Error(w, "steps are required", http.StatusBadRequest)
		return
	}

	sol, err := grading.NewGoldSolution(req.Name, req.Steps, req.Metadata)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	path, err := h.solutions.Save(sol)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"name":         sol.Name,
		"file":         path,
		"total_points": sol.TotalPoints(),
		"step_count":   len(sol.Steps),
	})
}

func (h *Handle) deleteSolution(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if err := h.solutions.Delete(name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "unknown solution: "+name, http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
