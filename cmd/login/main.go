// Command login runs the Leanpub login workflow once: it launches a headless
// browser, logs in with LEANPUB_EMAIL / LEANPUB_PASSWORD, verifies the
// dashboard and prints the published books. All configuration comes from the
// environment; recoverable failures still exit 0.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"dev/bravebird/leanpub-automation-go/pkg/browser"
	"dev/bravebird/leanpub-automation-go/pkg/config"
	"dev/bravebird/leanpub-automation-go/pkg/leanpub"
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	cfg := config.FromEnv()

	sess, err := browser.Launch(browser.Options{
		Headless:  cfg.Headless,
		ChromeBin: cfg.ChromeBin,
	})
	if err != nil {
		log.Fatalf("Failed to launch browser: %v", err)
	}
	defer sess.Close()

	result, err := leanpub.Run(context.Background(), sess, cfg.Credentials)
	if err != nil {
		log.Fatalf("Login workflow failed: %v", err)
	}

	log.Printf("Run finished: status=%s verified=%v duration=%dms",
		result.Status, result.Verified, result.TotalDuration)
}
