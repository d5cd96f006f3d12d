// Package browser owns the headless Chromium session used by the login
// workflow. One page per session; the session is exclusively owned by a
// single workflow execution.
package browser

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Options configures the browser launch.
type Options struct {
	Headless  bool
	ChromeBin string // explicit Chrome binary, e.g. in Docker
}

// Session wraps a connected browser and its single page.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
}

// Launch starts a Chromium instance and opens one blank page.
// Launch failures are fatal to the workflow and propagate.
func Launch(opts Options) (*Session, error) {
	l := launcher.New()

	if opts.ChromeBin != "" {
		l = l.Bin(opts.ChromeBin)
	}

	l = l.Headless(opts.Headless)

	// Chrome flags for Docker compatibility
	l = l.Set("no-sandbox")
	l = l.Set("disable-gpu")
	l = l.Set("disable-dev-shm-usage")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &Session{browser: b, page: page}, nil
}

// Page returns the session's single page.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Close releases the page and browser.
func (s *Session) Close() {
	if s.page != nil {
		s.page.Close()
	}
	if s.browser != nil {
		s.browser.Close()
	}
}

// Navigate loads the given URL and waits for the load event. Navigation
// failure is recoverable: it is logged and reported as false, never
// propagated. Callers that depend on the page must check the result.
func (s *Session) Navigate(url string) bool {
	if err := s.page.Navigate(url); err != nil {
		log.Printf("Navigation to %s failed: %v", url, err)
		return false
	}
	if err := s.page.WaitLoad(); err != nil {
		log.Printf("Load of %s did not complete: %v", url, err)
		return false
	}
	return true
}

// Screenshot captures the current page into dir/filename and returns the
// full path.
func (s *Session) Screenshot(dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot dir: %w", err)
	}

	data, err := s.page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return "", fmt.Errorf("failed to take screenshot: %w", err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save screenshot: %w", err)
	}

	return path, nil
}
