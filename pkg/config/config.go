package config

import (
	"os"

	"dev/bravebird/leanpub-automation-go/pkg/models"
)

// Config is the explicit configuration object for all entry points. It is
// loaded once from the environment and passed down; packages never read
// environment variables themselves.
type Config struct {
	Credentials models.Credentials

	// Service configuration
	Port         string
	MySQLDSN     string
	TemporalHost string

	// Browser configuration
	Headless      bool
	ChromeBin     string
	ScreenshotDir string
}

// FromEnv builds a Config from process environment variables.
// LEANPUB_EMAIL and LEANPUB_PASSWORD may be absent; callers check
// Credentials.Complete() and skip the submit step when they are.
func FromEnv() Config {
	return Config{
		Credentials: models.Credentials{
			Email:    os.Getenv("LEANPUB_EMAIL"),
			Password: os.Getenv("LEANPUB_PASSWORD"),
		},
		Port:          getEnvOrDefault("PORT", "8080"),
		MySQLDSN:      getEnvOrDefault("MYSQL_DSN", "automator:automator@tcp(localhost:3306)/leanpub?parseTime=true"),
		TemporalHost:  getEnvOrDefault("TEMPORAL_HOST", "localhost:7233"),
		Headless:      getEnvOrDefault("HEADLESS", "true") != "false",
		ChromeBin:     os.Getenv("CHROME_BIN"),
		ScreenshotDir: getEnvOrDefault("SCREENSHOT_DIR", "/tmp/screenshots"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
