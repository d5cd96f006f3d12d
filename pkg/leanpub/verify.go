package leanpub

import "strings"

// VerifiedOutcome is the strict login check: the final URL must equal the
// published books URL exactly and the document title must equal the expected
// literal after trimming whitespace. Any mismatch in either field is failure.
func VerifiedOutcome(finalURL, title string) bool {
	return finalURL == PublishedBooksURL && strings.TrimSpace(title) == ExpectedPublishedTitle
}

// LikelyAuthenticated is the cheap post-submit heuristic: the URL points at
// the author dashboard or a user page. It only gates logging; the strict
// check in VerifiedOutcome remains the sole success authority.
func LikelyAuthenticated(url string) bool {
	return strings.Contains(url, "author_dashboard") || strings.Contains(url, "/u/")
}
