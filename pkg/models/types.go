package models

import (
	"time"
)

// ==================== Credential Types ====================

// Credentials holds the Leanpub account credentials loaded from the
// environment at workflow start. They are never persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Complete reports whether both credential fields are present.
// An incomplete set skips the fill/submit step rather than failing.
func (c Credentials) Complete() bool {
	return c.Email != "" && c.Password != ""
}

// ==================== Page Snapshot Types ====================

// FormField is a read-only snapshot of one input element inside the login
// form, captured at inspection time for logging only.
type FormField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

// Anchor is a raw link as found on the page: the literal href attribute and
// the visible text. Resolution and filtering happen in Go, not in the page.
type Anchor struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// BookLink is one published book harvested from the author dashboard.
// Slug is a single URL path segment; entries are unique by slug.
type BookLink struct {
	Slug  string `json:"slug" db:"slug"`
	Title string `json:"title" db:"title"`
}

// ==================== Login Step Types ====================

// StepName identifies one step of the login workflow.
type StepName string

const (
	StepNavigateLogin     StepName = "navigate_login"
	StepWaitCaptchaToken  StepName = "wait_captcha_token"
	StepInspectForm       StepName = "inspect_form"
	StepSubmitCredentials StepName = "submit_credentials"
	StepWaitDashboard     StepName = "wait_dashboard"
	StepVerifyLogin       StepName = "verify_login"
	StepFetchBooks        StepName = "fetch_books"
)

// StepOrder lists the workflow steps in execution order.
var StepOrder = []StepName{
	StepNavigateLogin,
	StepWaitCaptchaToken,
	StepInspectForm,
	StepSubmitCredentials,
	StepWaitDashboard,
	StepVerifyLogin,
	StepFetchBooks,
}

// RunStatus represents the status of a login run or a single step.
type RunStatus string

const (
	StatusPending  RunStatus = "pending"
	StatusRunning  RunStatus = "running"
	StatusSuccess  RunStatus = "success"
	StatusSkipped  RunStatus = "skipped"
	StatusFailed   RunStatus = "failed"
	StatusCanceled RunStatus = "canceled"
)

// StepResult records the outcome of one workflow step.
type StepResult struct {
	ID             string     `json:"id" db:"id"`
	RunID          string     `json:"run_id" db:"run_id"`
	Step           StepName   `json:"step" db:"step"`
	SequenceID     int        `json:"sequence_id" db:"sequence_id"`
	Status         RunStatus  `json:"status" db:"status"`
	Detail         string     `json:"detail,omitempty" db:"detail"`
	ScreenshotPath string     `json:"screenshot_path,omitempty" db:"screenshot_path"`
	ErrorMessage   string     `json:"error_message,omitempty" db:"error_message"`
	ExecutedAt     *time.Time `json:"executed_at" db:"executed_at"`
	Duration       int64      `json:"duration_ms,omitempty" db:"duration_ms"`
}

// ==================== Login Run Types ====================

// LoginRun represents a single execution of the login workflow.
type LoginRun struct {
	ID                 string     `json:"id" db:"id"`
	TemporalRunID      string     `json:"temporal_run_id" db:"temporal_run_id"`
	TemporalWorkflowID string     `json:"temporal_workflow_id" db:"temporal_workflow_id"`
	Status             RunStatus  `json:"status" db:"status"`
	Email              string     `json:"email" db:"email"`
	Headless           bool       `json:"headless" db:"headless"`
	StartedAt          *time.Time `json:"started_at" db:"started_at"`
	CompletedAt        *time.Time `json:"completed_at" db:"completed_at"`
	ErrorMessage       string     `json:"error_message,omitempty" db:"error_message"`

	// Computed fields
	StepResults []StepResult `json:"step_results,omitempty"`
	Books       []BookLink   `json:"books,omitempty"`
}

// LoginInput is the input for executing the login workflow.
type LoginInput struct {
	RunID       string      `json:"run_id"`
	Credentials Credentials `json:"credentials"`
	Headless    bool        `json:"headless"`
	Timeout     int         `json:"timeout_seconds"`
}

// LoginResult is the result of a login workflow execution.
type LoginResult struct {
	RunID         string       `json:"run_id"`
	Status        RunStatus    `json:"status"`
	Verified      bool         `json:"verified"`
	StepResults   []StepResult `json:"step_results"`
	Books         []BookLink   `json:"books,omitempty"`
	TotalDuration int64        `json:"total_duration_ms"`
	ErrorMessage  string       `json:"error_message,omitempty"`
}

// ==================== API Request/Response Types ====================

// ExecuteRequest represents a request to start a login run.
type ExecuteRequest struct {
	Headless bool `json:"headless"`
}

// ==================== WebSocket Message Types ====================

// WSMessage represents a WebSocket message for real-time updates.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
