package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"dev/bravebird/leanpub-automation-go/pkg/config"
	"dev/bravebird/leanpub-automation-go/pkg/temporal/activities"
	"dev/bravebird/leanpub-automation-go/pkg/temporal/workflows"
)

const TaskQueue = "leanpub-login"

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()

	// Create Temporal client
	c, err := client.Dial(client.Options{
		HostPort: cfg.TemporalHost,
	})
	if err != nil {
		log.Fatalf("Failed to create Temporal client: %v", err)
	}
	defer c.Close()

	// Create activities
	acts := activities.NewActivities(cfg.ScreenshotDir, cfg.ChromeBin)

	// Create worker. Browser sessions are process-local, so keep the worker
	// a single deployment with its activities.
	w := worker.New(c, TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     5,
		MaxConcurrentWorkflowTaskExecutionSize: 10,
	})

	// Register workflow
	w.RegisterWorkflow(workflows.LeanpubLoginWorkflow)

	// Register activities
	w.RegisterActivity(acts.InitializeBrowserActivity)
	w.RegisterActivity(acts.CloseBrowserActivity)
	w.RegisterActivity(acts.NavigateLoginActivity)
	w.RegisterActivity(acts.WaitForTokenActivity)
	w.RegisterActivity(acts.InspectFormActivity)
	w.RegisterActivity(acts.SubmitCredentialsActivity)
	w.RegisterActivity(acts.WaitForDashboardActivity)
	w.RegisterActivity(acts.VerifyLoginActivity)
	w.RegisterActivity(acts.FetchBooksActivity)
	w.RegisterActivity(acts.TakeScreenshotActivity)

	log.Printf("Starting Temporal worker on task queue: %s", TaskQueue)
	log.Printf("Temporal host: %s", cfg.TemporalHost)

	// Start worker
	err = w.Run(worker.InterruptCh())
	if err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
