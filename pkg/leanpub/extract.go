package leanpub

import (
	"net/url"
	"strings"

	"dev/bravebird/leanpub-automation-go/pkg/models"
)

// ExtractBookLinks filters raw anchors down to published-book links.
//
// Each href is resolved against origin; only URLs whose path ends with
// OverviewSuffix survive. The slug is the path minus its leading slash and
// the suffix, and must be a single non-empty segment. Titles are the trimmed
// anchor text; empty titles are dropped. Duplicates are keyed by slug,
// first occurrence in document order wins. Malformed hrefs are skipped
// silently.
func ExtractBookLinks(origin string, anchors []models.Anchor) []models.BookLink {
	base, err := url.Parse(origin)
	if err != nil {
		return nil
	}

	var books []models.BookLink
	seen := make(map[string]bool)

	for _, a := range anchors {
		ref, err := url.Parse(a.Href)
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(ref)

		path := resolved.Path
		if !strings.HasSuffix(path, OverviewSuffix) {
			continue
		}

		slug := strings.TrimPrefix(path, "/")
		slug = strings.TrimSuffix(slug, OverviewSuffix)
		if slug == "" || strings.Contains(slug, "/") {
			continue
		}

		title := strings.TrimSpace(a.Text)
		if title == "" {
			continue
		}

		if seen[slug] {
			continue
		}
		seen[slug] = true

		books = append(books, models.BookLink{Slug: slug, Title: title})
	}

	return books
}
