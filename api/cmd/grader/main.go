package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"grader-bot/api/internal/config"
	"grader-bot/api/internal/feedback"
	"grader-bot/api/internal/grading"
	"grader-bot/api/internal/handle"
	"grader-bot/api/internal/ocr"
	"grader-bot/api/internal/ocr/gemini"
	"grader-bot/api/internal/store"
)

func main() {
	cfg := config.Load()

	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	} else if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8000"
	}

	solutions, err := store.NewSolutionStore(cfg.SolutionsDir)
	if err != nil {
		log.Fatalf("solution store: %v", err)
	}

	// image input only when an OCR key is configured
	var engines *ocr.Manager
	if cfg.GeminiAPIKey != "" {
		engines = ocr.NewManager(gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel))
	} else {
		log.Printf("GEMINI_API_KEY not set, /v1/grade accepts steps and text only")
	}

	h := handle.New(solutions,
		grading.NewGrader(cfg.Grading),
		feedback.NewBuilder(feedback.Options{Detailed: true}),
		engines)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/grade", h.Grade)
	mux.HandleFunc("/v1/solutions", h.Solutions)

	addr := ":" + cfg.Port
	log.Printf("grader listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
