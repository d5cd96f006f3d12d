package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"dev/bravebird/leanpub-automation-go/pkg/models"
)

// LoginSession holds the browser session handle shared by the step
// activities. The session is pinned to one worker process; run worker and
// activities in the same deployment.
type LoginSession struct {
	SessionID string `json:"session_id"`
}

// BrowserInitInput is the input for browser initialization
type BrowserInitInput struct {
	Headless bool `json:"headless"`
}

// SessionInput addresses a step activity at an open browser session
type SessionInput struct {
	SessionID string `json:"session_id"`
}

// SubmitInput carries the credentials for the fill/submit activity
type SubmitInput struct {
	SessionID   string             `json:"session_id"`
	Credentials models.Credentials `json:"credentials"`
}

// DashboardResult is the outcome of the post-submit URL heuristic
type DashboardResult struct {
	URL     string `json:"url"`
	Reached bool   `json:"reached"`
}

// ScreenshotInput is the input for taking a screenshot
type ScreenshotInput struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
}

// LeanpubLoginWorkflow executes the login workflow as a sequence of step
// activities against a single browser session: navigate, wait for the
// reCAPTCHA token, inspect the form, submit credentials, wait for the
// dashboard heuristic, verify strictly, fetch published books.
//
// The workflow is linear with no cross-step retries; the fill/submit step is
// not idempotent, so activities run with a single attempt and the only
// retrying happens inside the two bounded polling activities.
func LeanpubLoginWorkflow(ctx workflow.Context, input models.LoginInput) (models.LoginResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting Leanpub login workflow", "runID", input.RunID, "headless", input.Headless)

	result := models.LoginResult{
		RunID:  input.RunID,
		Status: models.StatusRunning,
	}

	// Register query handler for real-time progress
	err := workflow.SetQueryHandler(ctx, "getProgress", func() (models.LoginResult, error) {
		return result, nil
	})
	if err != nil {
		logger.Error("Failed to register query handler", "error", err)
	}

	startTime := workflow.Now(ctx)

	timeout := input.Timeout
	if timeout == 0 {
		timeout = 300
	}
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Duration(timeout) * time.Second,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	recordStep := func(step models.StepName, status models.RunStatus, detail, errMsg string) {
		now := workflow.Now(ctx)
		result.StepResults = append(result.StepResults, models.StepResult{
			RunID:        input.RunID,
			Step:         step,
			SequenceID:   len(result.StepResults) + 1,
			Status:       status,
			Detail:       detail,
			ErrorMessage: errMsg,
			ExecutedAt:   &now,
		})
	}

	finish := func(status models.RunStatus, errMsg string) models.LoginResult {
		result.Status = status
		result.ErrorMessage = errMsg
		result.TotalDuration = workflow.Now(ctx).Sub(startTime).Milliseconds()
		logger.Info("Workflow completed", "status", result.Status, "duration", result.TotalDuration)
		return result
	}

	// Bootstrap the browser session.
	var session LoginSession
	err = workflow.ExecuteActivity(ctx, "InitializeBrowserActivity", BrowserInitInput{
		Headless: input.Headless,
	}).Get(ctx, &session)
	if err != nil {
		return finish(models.StatusFailed, "Failed to initialize browser: "+err.Error()), nil
	}

	defer func() {
		_ = workflow.ExecuteActivity(ctx, "CloseBrowserActivity", session.SessionID).Get(ctx, nil)
	}()

	failureScreenshot := func(step models.StepName) string {
		var path string
		_ = workflow.ExecuteActivity(ctx, "TakeScreenshotActivity", ScreenshotInput{
			SessionID: session.SessionID,
			Filename:  fmt.Sprintf("%s_%s_failure.png", input.RunID, step),
		}).Get(ctx, &path)
		return path
	}

	sessionInput := SessionInput{SessionID: session.SessionID}

	// Navigate to the login page.
	var navigated bool
	err = workflow.ExecuteActivity(ctx, "NavigateLoginActivity", sessionInput).Get(ctx, &navigated)
	if err != nil || !navigated {
		detail := "login page did not load"
		errMsg := ""
		if err != nil {
			errMsg = err.Error()
		}
		recordStep(models.StepNavigateLogin, models.StatusFailed, detail, errMsg)
		failureScreenshot(models.StepNavigateLogin)
		return finish(models.StatusFailed, "failed to load login page"), nil
	}
	recordStep(models.StepNavigateLogin, models.StatusSuccess, "", "")

	// Wait for the reCAPTCHA token field. Timeout is informational.
	var tokenAttempt int
	err = workflow.ExecuteActivity(ctx, "WaitForTokenActivity", sessionInput).Get(ctx, &tokenAttempt)
	if err != nil {
		recordStep(models.StepWaitCaptchaToken, models.StatusFailed, "", err.Error())
		failureScreenshot(models.StepWaitCaptchaToken)
		return finish(models.StatusFailed, err.Error()), nil
	}
	tokenDetail := fmt.Sprintf("populated after %d attempt(s)", tokenAttempt)
	if tokenAttempt == 0 {
		tokenDetail = "not populated within timeout"
	}
	recordStep(models.StepWaitCaptchaToken, models.StatusSuccess, tokenDetail, "")

	// Snapshot the form fields.
	var fields []models.FormField
	err = workflow.ExecuteActivity(ctx, "InspectFormActivity", sessionInput).Get(ctx, &fields)
	if err != nil {
		recordStep(models.StepInspectForm, models.StatusFailed, "", err.Error())
		failureScreenshot(models.StepInspectForm)
		return finish(models.StatusFailed, err.Error()), nil
	}
	recordStep(models.StepInspectForm, models.StatusSuccess, fmt.Sprintf("%d input fields", len(fields)), "")

	// Missing credentials skip submission and everything downstream.
	if !input.Credentials.Complete() {
		logger.Info("Credentials missing; skipping form submission")
		recordStep(models.StepSubmitCredentials, models.StatusSkipped, "credentials missing", "")
		return finish(models.StatusSkipped, ""), nil
	}

	// Fill and submit. Single attempt: this step mutates live page state.
	var filled bool
	err = workflow.ExecuteActivity(ctx, "SubmitCredentialsActivity", SubmitInput{
		SessionID:   session.SessionID,
		Credentials: input.Credentials,
	}).Get(ctx, &filled)
	if err != nil {
		recordStep(models.StepSubmitCredentials, models.StatusFailed, "", err.Error())
		failureScreenshot(models.StepSubmitCredentials)
		return finish(models.StatusFailed, err.Error()), nil
	}
	if filled {
		recordStep(models.StepSubmitCredentials, models.StatusSuccess, "both fields found", "")
	} else {
		recordStep(models.StepSubmitCredentials, models.StatusFailed, "form fields not found", "")
	}

	// Progress heuristic; not authoritative.
	var dashboard DashboardResult
	err = workflow.ExecuteActivity(ctx, "WaitForDashboardActivity", sessionInput).Get(ctx, &dashboard)
	if err != nil {
		recordStep(models.StepWaitDashboard, models.StatusFailed, "", err.Error())
	} else if dashboard.Reached {
		recordStep(models.StepWaitDashboard, models.StatusSuccess, dashboard.URL, "")
	} else {
		recordStep(models.StepWaitDashboard, models.StatusFailed, "dashboard URL not observed", "")
	}

	// Strict verification.
	var verified bool
	err = workflow.ExecuteActivity(ctx, "VerifyLoginActivity", sessionInput).Get(ctx, &verified)
	if err != nil {
		recordStep(models.StepVerifyLogin, models.StatusFailed, "", err.Error())
		failureScreenshot(models.StepVerifyLogin)
		return finish(models.StatusFailed, err.Error()), nil
	}
	result.Verified = verified
	if !verified {
		recordStep(models.StepVerifyLogin, models.StatusFailed, "URL or title mismatch", "")
		failureScreenshot(models.StepVerifyLogin)
		return finish(models.StatusFailed, "login verification failed"), nil
	}
	recordStep(models.StepVerifyLogin, models.StatusSuccess, "", "")

	// Harvest the published books.
	var books []models.BookLink
	err = workflow.ExecuteActivity(ctx, "FetchBooksActivity", sessionInput).Get(ctx, &books)
	if err != nil {
		// Verified login with failed extraction still completes the run.
		recordStep(models.StepFetchBooks, models.StatusFailed, "", err.Error())
		return finish(models.StatusSuccess, ""), nil
	}
	result.Books = books
	recordStep(models.StepFetchBooks, models.StatusSuccess, fmt.Sprintf("%d books", len(books)), "")

	return finish(models.StatusSuccess, ""), nil
}
