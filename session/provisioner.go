package session

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ErrEnvironment marks faults of the browser environment itself: the
// browser failed to launch, is gone, or can no longer create contexts.
// These are fatal for the whole run and must never be retried per event.
var ErrEnvironment = errors.New("browser environment fault")

// Provisioner owns one headless browser per run and hands out isolated
// rendering contexts, one per event. A context never observes cookies,
// cache, or navigation history from a prior context.
type Provisioner struct {
	browser *rod.Browser
}

// Session is one isolated rendering context with a single page. It is
// exclusively owned by the event currently processing it.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
}

// NewProvisioner launches the headless browser. A launch failure is an
// environment fault: callers should abort the run rather than retry.
func NewProvisioner() (*Provisioner, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-blink-features", "AutomationControlled").
		NoSandbox(true).
		Leakless(false).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("disable-background-networking").
		Set("disable-infobars").
		Set("mute-audio")

	// Prefer a system Chrome/Chromium when one is installed
	linuxPaths := []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
	}
	for _, path := range linuxPaths {
		if _, err := os.Stat(path); err == nil {
			l = l.Bin(path)
			break
		}
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to launch browser: %v", ErrEnvironment, err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: failed to connect to browser: %v", ErrEnvironment, err)
	}

	return &Provisioner{browser: browser}, nil
}

// Acquire creates a fresh incognito context and page. Acquire failures are
// environment faults, not per-event transients.
func (p *Provisioner) Acquire() (*Session, error) {
	incognito, err := p.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create incognito context: %v", ErrEnvironment, err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create page: %v", ErrEnvironment, err)
	}

	return &Session{browser: incognito, page: page}, nil
}

// Page returns the session's page.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Release tears down the session's page and browser context. Errors are
// logged only; teardown failure must not abort the run.
func (s *Session) Release() {
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			log.Printf("Warning: failed to close page: %v\n", err)
		}
	}
	if s.browser != nil && s.browser.BrowserContextID != "" {
		err := proto.TargetDisposeBrowserContext{BrowserContextID: s.browser.BrowserContextID}.Call(s.browser)
		if err != nil {
			log.Printf("Warning: failed to dispose browser context: %v\n", err)
		}
	}
}

// Close shuts the browser down at end of run.
func (p *Provisioner) Close() error {
	if p.browser != nil {
		return p.browser.Close()
	}
	return nil
}
