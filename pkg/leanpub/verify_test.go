package leanpub

import "testing"

func TestVerifiedOutcome(t *testing.T) {
	tests := []struct {
		name     string
		finalURL string
		title    string
		want     bool
	}{
		{
			name:     "Exact match",
			finalURL: "https://leanpub.com/author_dashboard/books/published",
			title:    "Leanpub - Your Books",
			want:     true,
		},
		{
			name:     "Untrimmed title matches after trim",
			finalURL: "https://leanpub.com/author_dashboard/books/published",
			title:    " Leanpub - Your Books ",
			want:     true,
		},
		{
			name:     "Wrong URL",
			finalURL: "https://leanpub.com/login",
			title:    "Leanpub - Your Books",
			want:     false,
		},
		{
			name:     "Wrong title",
			finalURL: "https://leanpub.com/author_dashboard/books/published",
			title:    "Leanpub - Sign In",
			want:     false,
		},
		{
			name:     "URL with trailing slash is a mismatch",
			finalURL: "https://leanpub.com/author_dashboard/books/published/",
			title:    "Leanpub - Your Books",
			want:     false,
		},
		{
			name:     "Both empty",
			finalURL: "",
			title:    "",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifiedOutcome(tt.finalURL, tt.title); got != tt.want {
				t.Errorf("VerifiedOutcome(%q, %q) = %v, want %v", tt.finalURL, tt.title, got, tt.want)
			}
		})
	}
}

func TestLikelyAuthenticated(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{
			name: "Author dashboard",
			url:  "https://leanpub.com/author_dashboard/courses",
			want: true,
		},
		{
			name: "User page",
			url:  "https://leanpub.com/u/janedoe",
			want: true,
		},
		{
			name: "Login page",
			url:  "https://leanpub.com/login",
			want: false,
		},
		{
			name: "Empty",
			url:  "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LikelyAuthenticated(tt.url); got != tt.want {
				t.Errorf("LikelyAuthenticated(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
