package leanpub

import (
	"testing"

	"dev/bravebird/leanpub-automation-go/pkg/models"
)

const origin = "https://leanpub.com"

func TestExtractBookLinks(t *testing.T) {
	tests := []struct {
		name    string
		anchors []models.Anchor
		want    []models.BookLink
	}{
		{
			name: "Single book",
			anchors: []models.Anchor{
				{Href: "/my-book/overview", Text: "My Book"},
			},
			want: []models.BookLink{{Slug: "my-book", Title: "My Book"}},
		},
		{
			name: "Duplicate slug keeps first title",
			anchors: []models.Anchor{
				{Href: "/my-book/overview", Text: "My Book"},
				{Href: "/my-book/overview", Text: "Duplicate"},
			},
			want: []models.BookLink{{Slug: "my-book", Title: "My Book"}},
		},
		{
			name: "Multi-segment path rejected",
			anchors: []models.Anchor{
				{Href: "/other/sub/overview", Text: "Nested"},
			},
			want: nil,
		},
		{
			name: "Empty title rejected",
			anchors: []models.Anchor{
				{Href: "/empty/overview", Text: ""},
			},
			want: nil,
		},
		{
			name: "Whitespace-only title rejected",
			anchors: []models.Anchor{
				{Href: "/blank/overview", Text: "   \n\t  "},
			},
			want: nil,
		},
		{
			name: "Title trimmed",
			anchors: []models.Anchor{
				{Href: "/padded/overview", Text: "  Padded Title  "},
			},
			want: []models.BookLink{{Slug: "padded", Title: "Padded Title"}},
		},
		{
			name: "Non-matching suffix rejected",
			anchors: []models.Anchor{
				{Href: "/my-book/reviews", Text: "Reviews"},
				{Href: "/my-book/overview-ish", Text: "Almost"},
			},
			want: nil,
		},
		{
			name: "Absolute URL on same origin",
			anchors: []models.Anchor{
				{Href: "https://leanpub.com/go-book/overview", Text: "Go Book"},
			},
			want: []models.BookLink{{Slug: "go-book", Title: "Go Book"}},
		},
		{
			name: "Malformed href skipped silently",
			anchors: []models.Anchor{
				{Href: "http://%zz", Text: "Broken"},
				{Href: "/ok-book/overview", Text: "OK Book"},
			},
			want: []models.BookLink{{Slug: "ok-book", Title: "OK Book"}},
		},
		{
			name: "Empty slug segment rejected",
			anchors: []models.Anchor{
				{Href: "//overview", Text: "No Slug"},
			},
			want: nil,
		},
		{
			name: "Document order preserved",
			anchors: []models.Anchor{
				{Href: "/zeta/overview", Text: "Zeta"},
				{Href: "/alpha/overview", Text: "Alpha"},
				{Href: "/zeta/overview", Text: "Zeta Again"},
			},
			want: []models.BookLink{
				{Slug: "zeta", Title: "Zeta"},
				{Slug: "alpha", Title: "Alpha"},
			},
		},
		{
			name: "Mixed scenario",
			anchors: []models.Anchor{
				{Href: "/my-book/overview", Text: "My Book"},
				{Href: "/my-book/overview", Text: "Duplicate"},
				{Href: "/other/sub/overview", Text: "Nested"},
				{Href: "/empty/overview", Text: ""},
			},
			want: []models.BookLink{{Slug: "my-book", Title: "My Book"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractBookLinks(origin, tt.anchors)

			if len(got) != len(tt.want) {
				t.Fatalf("got %d books, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("book[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractBookLinksBadOrigin(t *testing.T) {
	got := ExtractBookLinks("http://%zz", []models.Anchor{
		{Href: "/my-book/overview", Text: "My Book"},
	})
	if got != nil {
		t.Errorf("expected nil for unparseable origin, got %v", got)
	}
}
