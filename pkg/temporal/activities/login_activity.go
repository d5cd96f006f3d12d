package activities

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"

	"dev/bravebird/leanpub-automation-go/pkg/browser"
	"dev/bravebird/leanpub-automation-go/pkg/leanpub"
	"dev/bravebird/leanpub-automation-go/pkg/models"
	"dev/bravebird/leanpub-automation-go/pkg/temporal/workflows"
)

// BrowserPool manages browser sessions
type BrowserPool struct {
	sessions map[string]*SessionData
	mu       sync.RWMutex
}

// SessionData holds data for a browser session
type SessionData struct {
	Session   *browser.Session
	CreatedAt time.Time
}

var browserPool = &BrowserPool{
	sessions: make(map[string]*SessionData),
}

// Activities holds activity implementations
type Activities struct {
	ScreenshotDir string
	ChromeBin     string
}

// NewActivities creates new activities
func NewActivities(screenshotDir, chromeBin string) *Activities {
	return &Activities{
		ScreenshotDir: screenshotDir,
		ChromeBin:     chromeBin,
	}
}

func getSession(sessionID string) (*browser.Session, error) {
	browserPool.mu.RLock()
	data, ok := browserPool.sessions[sessionID]
	browserPool.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("browser session not found: %s", sessionID)
	}
	return data.Session, nil
}

// InitializeBrowserActivity launches a browser and opens the workflow's page
func (a *Activities) InitializeBrowserActivity(ctx context.Context, input workflows.BrowserInitInput) (workflows.LoginSession, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Initializing browser session", "headless", input.Headless)

	sess, err := browser.Launch(browser.Options{
		Headless:  input.Headless,
		ChromeBin: a.ChromeBin,
	})
	if err != nil {
		return workflows.LoginSession{}, err
	}

	sessionID := uuid.New().String()
	browserPool.mu.Lock()
	browserPool.sessions[sessionID] = &SessionData{
		Session:   sess,
		CreatedAt: time.Now(),
	}
	browserPool.mu.Unlock()

	logger.Info("Browser session created", "sessionID", sessionID)

	return workflows.LoginSession{SessionID: sessionID}, nil
}

// CloseBrowserActivity closes a browser session
func (a *Activities) CloseBrowserActivity(ctx context.Context, sessionID string) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Closing browser session", "sessionID", sessionID)

	browserPool.mu.Lock()
	defer browserPool.mu.Unlock()

	data, ok := browserPool.sessions[sessionID]
	if !ok {
		return nil // Already closed
	}

	data.Session.Close()
	delete(browserPool.sessions, sessionID)
	return nil
}

// NavigateLoginActivity loads the Leanpub login page. A false result means
// navigation failed; the workflow decides whether that is fatal.
func (a *Activities) NavigateLoginActivity(ctx context.Context, input workflows.SessionInput) (bool, error) {
	sess, err := getSession(input.SessionID)
	if err != nil {
		return false, err
	}

	ok := sess.Navigate(leanpub.LoginURL)
	activity.RecordHeartbeat(ctx, "navigated login page")
	return ok, nil
}

// WaitForTokenActivity polls for the reCAPTCHA token field to populate.
// Returns the attempt on which it appeared, 0 on timeout (not an error).
func (a *Activities) WaitForTokenActivity(ctx context.Context, input workflows.SessionInput) (int, error) {
	sess, err := getSession(input.SessionID)
	if err != nil {
		return 0, err
	}

	attempt := leanpub.WaitForCaptchaToken(ctx, sess.Page())
	activity.RecordHeartbeat(ctx, "token wait finished")
	return attempt, nil
}

// InspectFormActivity snapshots the login form's input fields
func (a *Activities) InspectFormActivity(ctx context.Context, input workflows.SessionInput) ([]models.FormField, error) {
	sess, err := getSession(input.SessionID)
	if err != nil {
		return nil, err
	}

	logger := activity.GetLogger(ctx)
	fields, err := leanpub.InspectLoginForm(sess.Page())
	if err != nil {
		return nil, err
	}

	logger.Info("Inspected login form", "fieldCount", len(fields))
	for _, f := range fields {
		logger.Info("Form field", "name", f.Name, "type", f.Type)
	}
	if action := leanpub.FormAction(sess.Page()); action != "" {
		logger.Info("Form action", "action", action)
	}
	return fields, nil
}

// SubmitCredentialsActivity fills and submits the login form. Not
// idempotent: run with a single attempt.
func (a *Activities) SubmitCredentialsActivity(ctx context.Context, input workflows.SubmitInput) (bool, error) {
	sess, err := getSession(input.SessionID)
	if err != nil {
		return false, err
	}

	filled, err := leanpub.SubmitCredentials(sess.Page(), input.Credentials)
	if err != nil {
		return false, err
	}

	activity.GetLogger(ctx).Info("Submitted login form", "bothFieldsFound", filled)
	return filled, nil
}

// WaitForDashboardActivity polls the page URL for the authenticated-area
// heuristic after submission
func (a *Activities) WaitForDashboardActivity(ctx context.Context, input workflows.SessionInput) (workflows.DashboardResult, error) {
	sess, err := getSession(input.SessionID)
	if err != nil {
		return workflows.DashboardResult{}, err
	}

	url, reached := leanpub.WaitForDashboard(ctx, sess.Page())
	activity.RecordHeartbeat(ctx, "dashboard wait finished")

	logger := activity.GetLogger(ctx)
	logger.Info("Page title after submit", "title", leanpub.PageTitle(sess.Page()))
	if ind := leanpub.UserIndicator(sess.Page()); ind != "" {
		logger.Info("User indicator present", "snippet", ind)
	}

	return workflows.DashboardResult{URL: url, Reached: reached}, nil
}

// VerifyLoginActivity applies the strict URL+title check on the published
// books page. A false result is verification failure, not an error.
func (a *Activities) VerifyLoginActivity(ctx context.Context, input workflows.SessionInput) (bool, error) {
	sess, err := getSession(input.SessionID)
	if err != nil {
		return false, err
	}

	verified := leanpub.VerifyLogin(sess.Page())
	activity.RecordHeartbeat(ctx, "verification finished")
	return verified, nil
}

// FetchBooksActivity harvests the published book links from the dashboard
func (a *Activities) FetchBooksActivity(ctx context.Context, input workflows.SessionInput) ([]models.BookLink, error) {
	sess, err := getSession(input.SessionID)
	if err != nil {
		return nil, err
	}

	books, err := leanpub.FetchPublishedBooks(sess.Page())
	if err != nil {
		return nil, err
	}

	activity.GetLogger(ctx).Info("Fetched published books", "count", len(books))
	return books, nil
}

// TakeScreenshotActivity captures the current page state, used on step
// failure for debugging
func (a *Activities) TakeScreenshotActivity(ctx context.Context, input workflows.ScreenshotInput) (string, error) {
	sess, err := getSession(input.SessionID)
	if err != nil {
		return "", err
	}

	return sess.Screenshot(a.ScreenshotDir, input.Filename)
}
