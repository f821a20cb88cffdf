package config

import (
	"log/slog"

	"github.com/joho/godotenv"
)

var defaultEnvFiles = []string{".env", ".env.local"}

// loadEnvFile loads environment variables from envFile, or from the first of
// .env/.env.local that exists. Existing process variables are not overwritten.
func loadEnvFile(envFile string) error {
	if envFile != "" {
		return godotenv.Load(envFile)
	}
	for _, envPath := range defaultEnvFiles {
		if err := godotenv.Load(envPath); err == nil {
			slog.Debug("Loaded environment variables", slog.String("file", envPath))
			return nil
		}
	}
	return nil
}
