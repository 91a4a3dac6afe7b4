package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string
	HTTPAddr  string

	PipedriveAPIURL      string
	PipedriveAPIToken    string
	PipedriveRateLimitPS int
	PipedriveTimeoutMs   int
	NotesPageLimit       int

	TrainingDateField     string
	TrainingLocationField string
	TrainingNameField     string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),

		PipedriveAPIURL:      getEnv("PIPEDRIVE_API_URL", "https://api.pipedrive.com/v1"),
		PipedriveAPIToken:    getEnv("PIPEDRIVE_API_TOKEN", ""),
		PipedriveRateLimitPS: getEnvInt("PIPEDRIVE_RATE_LIMIT_RPS", 5),
		PipedriveTimeoutMs:   getEnvInt("PIPEDRIVE_TIMEOUT_MS", 30000),
		NotesPageLimit:       getEnvInt("PIPEDRIVE_NOTES_LIMIT", 100),

		TrainingDateField:     getEnv("TRAINING_DATE_FIELD", "98f072a788090ac2ae52017daaf9618c3a189033"),
		TrainingLocationField: getEnv("TRAINING_LOCATION_FIELD", "676d6bd51e52999c582c01f67c99a35ed30bf6ae"),
		TrainingNameField:     getEnv("TRAINING_NAME_FIELD", "c99554c188c3f63ad9bc8b2cf7b50cbd145455ab"),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
