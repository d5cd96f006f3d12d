package leanpub

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"dev/bravebird/leanpub-automation-go/pkg/browser"
	"dev/bravebird/leanpub-automation-go/pkg/models"
)

// recorder accumulates per-step outcomes in execution order.
type recorder struct {
	results []models.StepResult
}

func (r *recorder) add(step models.StepName, status models.RunStatus, detail string, started time.Time) {
	now := time.Now()
	r.results = append(r.results, models.StepResult{
		Step:       step,
		SequenceID: len(r.results) + 1,
		Status:     status,
		Detail:     detail,
		ExecutedAt: &now,
		Duration:   time.Since(started).Milliseconds(),
	})
}

// Run executes the whole login workflow once against the session's page:
// navigate, wait for the reCAPTCHA token, inspect the form, submit
// credentials, wait for the dashboard heuristic, verify strictly, and fetch
// the published books. Missing credentials skip submission and everything
// downstream; recoverable failures end the run with a failed status but no
// error. Only unguarded page-evaluation failures return a non-nil error.
func Run(ctx context.Context, sess *browser.Session, creds models.Credentials) (models.LoginResult, error) {
	start := time.Now()
	page := sess.Page()
	rec := &recorder{}

	result := models.LoginResult{Status: models.StatusRunning}
	finish := func(status models.RunStatus, errMsg string) models.LoginResult {
		result.Status = status
		result.ErrorMessage = errMsg
		result.StepResults = rec.results
		result.TotalDuration = time.Since(start).Milliseconds()
		return result
	}

	// Navigate to the login page.
	stepStart := time.Now()
	if !sess.Navigate(LoginURL) {
		rec.add(models.StepNavigateLogin, models.StatusFailed, "login page did not load", stepStart)
		return finish(models.StatusFailed, "failed to load login page"), nil
	}
	rec.add(models.StepNavigateLogin, models.StatusSuccess, LoginURL, stepStart)

	// Wait for client-side script to populate the reCAPTCHA token field.
	stepStart = time.Now()
	attempt := WaitForCaptchaToken(ctx, page)
	detail := fmt.Sprintf("populated after %d attempt(s)", attempt)
	if attempt == 0 {
		detail = "not populated within timeout"
	}
	rec.add(models.StepWaitCaptchaToken, models.StatusSuccess, detail, stepStart)

	// Snapshot the login form for logging.
	stepStart = time.Now()
	fields, err := InspectLoginForm(page)
	if err != nil {
		return finish(models.StatusFailed, err.Error()), err
	}
	log.Printf("Found %d input fields in login form:", len(fields))
	for _, f := range fields {
		log.Printf("  name=%q type=%q value=%q", f.Name, f.Type, f.Value)
	}
	if action := FormAction(page); action != "" {
		log.Printf("Form action: %s", action)
	}
	rec.add(models.StepInspectForm, models.StatusSuccess, fmt.Sprintf("%d input fields", len(fields)), stepStart)

	// Without both credentials the submission and everything downstream is
	// skipped; the run still completes without error.
	if !creds.Complete() {
		log.Println("LEANPUB_EMAIL or LEANPUB_PASSWORD missing in environment; skipping form submission.")
		rec.add(models.StepSubmitCredentials, models.StatusSkipped, "credentials missing", time.Now())
		return finish(models.StatusSkipped, ""), nil
	}

	// Fill and submit. Not idempotent: the page state changes here.
	stepStart = time.Now()
	filled, err := SubmitCredentials(page, creds)
	if err != nil {
		return finish(models.StatusFailed, err.Error()), err
	}
	if filled {
		log.Println("Filled credentials and submitted form.")
		rec.add(models.StepSubmitCredentials, models.StatusSuccess, "both fields found", stepStart)
	} else {
		log.Println("Failed to locate form fields to fill.")
		rec.add(models.StepSubmitCredentials, models.StatusFailed, "form fields not found", stepStart)
	}

	// Cheap progress signal; the strict verification below decides success.
	stepStart = time.Now()
	lastURL, reached := WaitForDashboard(ctx, page)
	if reached {
		rec.add(models.StepWaitDashboard, models.StatusSuccess, lastURL, stepStart)
	} else {
		rec.add(models.StepWaitDashboard, models.StatusFailed, "dashboard URL not observed", stepStart)
	}

	log.Printf("Page title after submit: %s", PageTitle(page))
	if ind := strings.TrimSpace(UserIndicator(page)); ind != "" {
		log.Printf("User indicator snippet: %s", ind)
	}

	// Strict verification against the published books page.
	stepStart = time.Now()
	verified := VerifyLogin(page)
	result.Verified = verified
	if !verified {
		rec.add(models.StepVerifyLogin, models.StatusFailed, "URL or title mismatch", stepStart)
		log.Println("Login failed; exiting.")
		return finish(models.StatusFailed, "login verification failed"), nil
	}
	rec.add(models.StepVerifyLogin, models.StatusSuccess, PublishedBooksURL, stepStart)

	// Harvest the published book links.
	stepStart = time.Now()
	books, err := FetchPublishedBooks(page)
	if err != nil {
		log.Printf("Failed to fetch published books: %v", err)
		rec.add(models.StepFetchBooks, models.StatusFailed, err.Error(), stepStart)
		return finish(models.StatusSuccess, ""), nil
	}
	log.Printf("Published books (%d):", len(books))
	for _, b := range books {
		log.Printf("  %s => %s", b.Slug, b.Title)
	}
	result.Books = books
	rec.add(models.StepFetchBooks, models.StatusSuccess, fmt.Sprintf("%d books", len(books)), stepStart)

	return finish(models.StatusSuccess, ""), nil
}
