// Package leanpub implements the Leanpub login, verification and
// book-extraction steps against a live browser page.
package leanpub

import "time"

// Site contract: fixed URLs and selectors the workflow depends on.
const (
	// LoginURL is the login page containing the credentials form.
	LoginURL = "https://leanpub.com/login"

	// PublishedBooksURL is the authenticated-only dashboard page listing
	// published books. Verification compares the final URL against this
	// literal.
	PublishedBooksURL = "https://leanpub.com/author_dashboard/books/published"

	// ExpectedPublishedTitle is the exact document title of the published
	// books page, compared after trimming whitespace.
	ExpectedPublishedTitle = "Leanpub - Your Books"

	// OverviewSuffix marks anchor paths that point at a book overview page.
	OverviewSuffix = "/overview"
)

// Polling budgets. Timeouts are informational, never fatal.
const (
	// reCAPTCHA token field: 30 * 500ms = 15s ceiling.
	TokenPollAttempts = 30

	// Authenticated-URL heuristic after submit: 20 * 500ms = 10s ceiling.
	DashboardPollAttempts = 20

	PollInterval = 500 * time.Millisecond

	// SettleDelay lets dynamic content render before page state is read.
	SettleDelay = 2 * time.Second
)
