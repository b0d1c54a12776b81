package config

import (
	"log"
	"os"
	"strconv"

	"grader-bot/api/internal/grading"
)

type Config struct {
	Port string

	TelegramBotToken string
	WebhookURL       string // empty -> long polling

	GeminiAPIKey string
	GeminiModel  string

	YCOAuthToken string
	YCFolderID   string

	SolutionsDir string

	Grading grading.Config
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("env %s: bad float %q", k, v)
	}
	return f
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8000"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		YCOAuthToken: os.Getenv("YC_OAUTH_TOKEN"),
		YCFolderID:   os.Getenv("YC_FOLDER_ID"),

		SolutionsDir: getEnv("SOLUTIONS_DIR", "answer_keys"),

		Grading: loadGrading(),
	}
}

// RequireBot aborts when the Telegram bot cannot start.
func (c *Config) RequireBot() {
	if c.TelegramBotToken == "" {
		log.Fatal("missing required env TELEGRAM_BOT_TOKEN")
	}
}

// loadGrading applies env overrides on top of the engine defaults.
func loadGrading() grading.Config {
	cfg := grading.DefaultConfig()
	cfg.NumericTolerance = getEnvFloat("NUMERIC_TOLERANCE", cfg.NumericTolerance)
	cfg.SimilarityThreshold = getEnvFloat("SIMILARITY_THRESHOLD", cfg.SimilarityThreshold)
	cfg.AcceptanceFloor = getEnvFloat("ACCEPTANCE_FLOOR", cfg.AcceptanceFloor)
	cfg.PenaltyFactor = getEnvFloat("PENALTY_FACTOR", cfg.PenaltyFactor)
	cfg.CorrectThreshold = getEnvFloat("CORRECT_THRESHOLD", cfg.CorrectThreshold)
	return cfg
}
