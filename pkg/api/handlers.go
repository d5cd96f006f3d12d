package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.temporal.io/sdk/client"

	"dev/bravebird/leanpub-automation-go/pkg/database"
	"dev/bravebird/leanpub-automation-go/pkg/models"
)

const TaskQueue = "leanpub-login"

// Handlers contains API handlers
type Handlers struct {
	db             *database.DB
	temporalClient client.Client
	credentials    models.Credentials
	screenshotDir  string
	upgrader       websocket.Upgrader
}

// NewHandlers creates new API handlers. Credentials stay server-side and are
// injected into workflow inputs; they are never accepted over the wire.
func NewHandlers(
	db *database.DB,
	temporalClient client.Client,
	credentials models.Credentials,
	screenshotDir string,
) *Handlers {
	return &Handlers{
		db:             db,
		temporalClient: temporalClient,
		credentials:    credentials,
		screenshotDir:  screenshotDir,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ==================== Run Handlers ====================

// TriggerLogin starts a new login run
func (h *Handlers) TriggerLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	runID := uuid.New().String()
	now := time.Now()

	run := &models.LoginRun{
		ID:        runID,
		Status:    models.StatusPending,
		Email:     h.credentials.Email,
		Headless:  req.Headless,
		StartedAt: &now,
	}

	input := models.LoginInput{
		RunID:       runID,
		Credentials: h.credentials,
		Headless:    req.Headless,
		Timeout:     300,
	}

	workflowOptions := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("leanpub-login-%s", runID),
		TaskQueue: TaskQueue,
	}

	we, err := h.temporalClient.ExecuteWorkflow(ctx, workflowOptions, "LeanpubLoginWorkflow", input)
	if err != nil {
		http.Error(w, "Failed to start workflow: "+err.Error(), http.StatusInternalServerError)
		return
	}

	run.TemporalWorkflowID = we.GetID()
	run.TemporalRunID = we.GetRunID()
	run.Status = models.StatusRunning

	if h.db != nil {
		if err := h.db.CreateLoginRun(ctx, run); err != nil {
			log.Printf("Failed to persist run %s: %v", runID, err)
		}
		go h.persistResult(runID, we)
	}

	respondJSON(w, map[string]interface{}{
		"run_id":               runID,
		"temporal_workflow_id": we.GetID(),
		"temporal_run_id":      we.GetRunID(),
		"status":               "running",
	})
}

// persistResult waits for workflow completion and stores the outcome
func (h *Handlers) persistResult(runID string, we client.WorkflowRun) {
	ctx := context.Background()

	var result models.LoginResult
	if err := we.Get(ctx, &result); err != nil {
		h.db.UpdateLoginRunStatus(ctx, runID, models.StatusFailed, err.Error())
		return
	}

	for _, step := range result.StepResults {
		step.ID = uuid.New().String()
		step.RunID = runID
		if err := h.db.CreateStepResult(ctx, &step); err != nil {
			log.Printf("Failed to persist step result for run %s: %v", runID, err)
		}
	}

	if len(result.Books) > 0 {
		if err := h.db.ReplaceBookLinks(ctx, runID, result.Books); err != nil {
			log.Printf("Failed to persist book links for run %s: %v", runID, err)
		}
	}

	h.db.UpdateLoginRunStatus(ctx, runID, result.Status, result.ErrorMessage)
}

// ListRuns lists login runs
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.db == nil {
		http.Error(w, "Database not available", http.StatusServiceUnavailable)
		return
	}

	runs, err := h.db.ListLoginRuns(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, runs)
}

// GetRun retrieves a login run with its step results and extracted books
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	if h.db == nil {
		http.Error(w, "Database not available", http.StatusServiceUnavailable)
		return
	}

	run, err := h.db.GetLoginRun(ctx, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	steps, _ := h.db.GetStepResults(ctx, id)
	run.StepResults = steps

	books, _ := h.db.GetBookLinks(ctx, id)
	run.Books = books

	respondJSON(w, run)
}

// GetRunBooks returns the extracted book links for a run
func (h *Handlers) GetRunBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	if h.db == nil {
		http.Error(w, "Database not available", http.StatusServiceUnavailable)
		return
	}

	books, err := h.db.GetBookLinks(ctx, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, books)
}

// CancelRun cancels a running login workflow
func (h *Handlers) CancelRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	if h.db == nil {
		http.Error(w, "Database not available", http.StatusServiceUnavailable)
		return
	}

	run, err := h.db.GetLoginRun(ctx, id)
	if err != nil || run == nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	if run.TemporalWorkflowID != "" {
		err = h.temporalClient.CancelWorkflow(ctx, run.TemporalWorkflowID, run.TemporalRunID)
		if err != nil {
			http.Error(w, "Failed to cancel workflow: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	h.db.UpdateLoginRunStatus(ctx, id, models.StatusCanceled, "Canceled by user")

	respondJSON(w, map[string]string{"status": "canceled"})
}

// StreamRunUpdates streams run updates via WebSocket
func (h *Handlers) StreamRunUpdates(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx := r.Context()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastStatus := ""
	lastStepCount := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var status models.RunStatus
			var steps []models.StepResult

			// Query the running workflow directly for real-time progress
			if h.temporalClient != nil {
				workflowID := fmt.Sprintf("leanpub-login-%s", runID)
				queryResp, err := h.temporalClient.QueryWorkflow(ctx, workflowID, "", "getProgress")
				if err == nil {
					var result models.LoginResult
					if queryResp.Get(&result) == nil {
						status = result.Status
						steps = result.StepResults
					}
				}
			}

			// Fall back to DB if the Temporal query didn't work
			if status == "" && h.db != nil {
				run, err := h.db.GetLoginRun(ctx, runID)
				if err != nil || run == nil {
					continue
				}
				status = run.Status
				steps, _ = h.db.GetStepResults(ctx, runID)
			}

			if string(status) != lastStatus || len(steps) != lastStepCount {
				msg := models.WSMessage{
					Type: "run_update",
					Payload: map[string]interface{}{
						"run_id":       runID,
						"status":       status,
						"step_results": steps,
					},
				}
				conn.WriteJSON(msg)

				lastStatus = string(status)
				lastStepCount = len(steps)

				if status == models.StatusSuccess || status == models.StatusSkipped ||
					status == models.StatusFailed || status == models.StatusCanceled {
					return
				}
			}
		}
	}
}

// ==================== Screenshot Handlers ====================

// ServeScreenshot serves a failure screenshot
func (h *Handlers) ServeScreenshot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	filename := vars["filename"]

	// Only allow files from the screenshots directory
	filePath := filepath.Join(h.screenshotDir, filepath.Base(filename))

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.Error(w, "Screenshot not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, filePath)
}

// ==================== Helpers ====================

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
