package leanpub

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-rod/rod"

	"dev/bravebird/leanpub-automation-go/pkg/models"
	"dev/bravebird/leanpub-automation-go/pkg/poll"
)

// Named page-side queries. Values cross the boundary as structured Eval
// arguments, never as text spliced into the script.
const (
	jsLocationHref   = `() => location.href`
	jsLocationOrigin = `() => location.origin`
	jsDocumentTitle  = `() => document.title`

	jsCaptchaTokenValue = `() => {
		const el = document.querySelector("input[name^='g-recaptcha-response'], textarea[name='g-recaptcha-response'], input[name^='g-recaptcha-response-data']");
		return el && el.value ? el.value : '';
	}`

	jsInspectForm = `() => {
		const form = document.querySelector('form');
		if (!form) { return []; }
		const inputs = Array.from(form.querySelectorAll('input'));
		return inputs.map(i => ({
			name: i.getAttribute('name') || '',
			value: i.value || '',
			type: i.getAttribute('type') || ''
		}));
	}`

	jsFormAction = `() => {
		const f = document.querySelector('form');
		return f ? (f.getAttribute('action') || '') : '';
	}`

	jsFillAndSubmit = `(email, password) => {
		const emailInput = document.querySelector("input[name='session[email]']");
		if (emailInput) emailInput.value = email;
		const pwInput = document.querySelector("input[name='session[password]']");
		if (pwInput) pwInput.value = password;
		const form = emailInput ? emailInput.form : document.querySelector('form');
		if (form) {
			const btn = form.querySelector("input[type=submit],button[type=submit]");
			if (btn) btn.click(); else form.submit();
		}
		return !!(emailInput && pwInput);
	}`

	jsUserIndicator = `() => {
		const el = document.querySelector('[data-test="user-menu"]') || document.querySelector('.user-menu');
		return el ? el.textContent : '';
	}`

	jsCollectAnchors = `() => {
		const anchors = Array.from(document.querySelectorAll('a[href]'));
		return anchors.map(a => ({
			href: a.getAttribute('href') || '',
			text: a.textContent || ''
		}));
	}`
)

// evalString runs a zero-argument page query and returns its string result,
// or "" when evaluation fails.
func evalString(page *rod.Page, js string) string {
	obj, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return obj.Value.Str()
}

// CurrentURL reads location.href, "" on failure.
func CurrentURL(page *rod.Page) string {
	return evalString(page, jsLocationHref)
}

// PageTitle reads document.title, "" on failure.
func PageTitle(page *rod.Page) string {
	return evalString(page, jsDocumentTitle)
}

// UserIndicator reads the text of the user menu element, if any.
func UserIndicator(page *rod.Page) string {
	return evalString(page, jsUserIndicator)
}

// WaitForCaptchaToken polls until the hidden reCAPTCHA field has a value.
// The token is only a readiness signal; it is never solved or bypassed.
// Returns the attempt on which the field populated, or 0 on timeout.
// Timeout is informational and the workflow proceeds regardless.
func WaitForCaptchaToken(ctx context.Context, page *rod.Page) int {
	attempt := poll.Until(ctx, TokenPollAttempts, PollInterval, func() bool {
		return evalString(page, jsCaptchaTokenValue) != ""
	})

	if attempt > 0 {
		log.Printf("reCAPTCHA field populated after %d attempt(s) (~%d ms)",
			attempt, attempt*int(PollInterval/time.Millisecond))
	} else {
		log.Println("reCAPTCHA field not populated within timeout; proceeding anyway.")
	}
	return attempt
}

// InspectLoginForm captures a snapshot of every input inside the first form
// on the page. A page without a form yields an empty slice, not an error.
func InspectLoginForm(page *rod.Page) ([]models.FormField, error) {
	obj, err := page.Eval(jsInspectForm)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect login form: %w", err)
	}

	var fields []models.FormField
	for _, v := range obj.Value.Arr() {
		fields = append(fields, models.FormField{
			Name:  v.Get("name").Str(),
			Value: v.Get("value").Str(),
			Type:  v.Get("type").Str(),
		})
	}
	return fields, nil
}

// FormAction returns the action attribute of the first form, if present.
func FormAction(page *rod.Page) string {
	return evalString(page, jsFormAction)
}

// SubmitCredentials fills the email and password inputs and triggers
// submission via the form's submit control, falling back to form.submit().
// It returns whether both target inputs were found; whatever was found is
// still acted upon. This step mutates live page state and is not idempotent.
func SubmitCredentials(page *rod.Page, creds models.Credentials) (bool, error) {
	obj, err := page.Eval(jsFillAndSubmit, creds.Email, creds.Password)
	if err != nil {
		return false, fmt.Errorf("failed to fill and submit login form: %w", err)
	}
	return obj.Value.Bool(), nil
}

// WaitForDashboard polls the page URL until it looks authenticated.
// Returns the last observed URL and whether the heuristic matched before
// the attempt budget ran out.
func WaitForDashboard(ctx context.Context, page *rod.Page) (string, bool) {
	var lastURL string
	attempt := poll.Until(ctx, DashboardPollAttempts, PollInterval, func() bool {
		lastURL = CurrentURL(page)
		return LikelyAuthenticated(lastURL)
	})

	if attempt > 0 {
		log.Printf("Login likely successful. Current URL: %s", lastURL)
	}
	return lastURL, attempt > 0
}

// VerifyLogin navigates to the published books page, waits the settle delay
// for dynamic content, and applies the strict URL+title check. Navigation
// errors count as verification failure, not as workflow errors.
func VerifyLogin(page *rod.Page) bool {
	if err := page.Navigate(PublishedBooksURL); err != nil {
		log.Printf("Navigation to published books page failed: %v", err)
		return false
	}
	if err := page.WaitLoad(); err != nil {
		log.Printf("Published books page did not finish loading: %v", err)
		return false
	}

	time.Sleep(SettleDelay)

	finalURL := CurrentURL(page)
	title := PageTitle(page)
	log.Printf("Final URL: %s", finalURL)
	log.Printf("Final title: %s", title)

	if VerifiedOutcome(finalURL, title) {
		log.Println("Login success verified: reached published books page.")
		return true
	}
	log.Printf("Login verification failed: expected URL %s with title %q.",
		PublishedBooksURL, ExpectedPublishedTitle)
	return false
}

// FetchPublishedBooks collects the raw anchors from the current page and
// filters them down to unique book links. Call only after VerifyLogin
// succeeded.
func FetchPublishedBooks(page *rod.Page) ([]models.BookLink, error) {
	obj, err := page.Eval(jsCollectAnchors)
	if err != nil {
		return nil, fmt.Errorf("failed to collect anchors: %w", err)
	}

	var anchors []models.Anchor
	for _, v := range obj.Value.Arr() {
		anchors = append(anchors, models.Anchor{
			Href: v.Get("href").Str(),
			Text: v.Get("text").Str(),
		})
	}

	return ExtractBookLinks(evalString(page, jsLocationOrigin), anchors), nil
}
