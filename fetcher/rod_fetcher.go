package fetcher

import (
	"context"
	"fmt"
	"log"
	"time"

	"calendar-scraper/session"
)

// RodFetcher renders the calendar with the headless browser so the
// script-built table is present in the returned HTML.
type RodFetcher struct {
	provisioner *session.Provisioner
	timeout     time.Duration
}

// NewRodFetcher creates a RodFetcher on top of an existing provisioner.
func NewRodFetcher(provisioner *session.Provisioner, timeout time.Duration) *RodFetcher {
	return &RodFetcher{provisioner: provisioner, timeout: timeout}
}

// Fetch implements the Fetcher interface.
func (rf *RodFetcher) Fetch(ctx context.Context, url string) (string, error) {
	sess, err := rf.provisioner.Acquire()
	if err != nil {
		return "", fmt.Errorf("failed to acquire session: %w", err)
	}
	defer sess.Release()

	page := sess.Page().Context(ctx)
	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("failed waiting for page load: %w", err)
	}

	// The calendar table is built by on-page script after load
	if _, err := page.Timeout(rf.timeout).Element("table.calendar__table tbody"); err != nil {
		return "", fmt.Errorf("calendar table did not appear: %w", err)
	}
	if err := page.Timeout(rf.timeout).WaitStable(500 * time.Millisecond); err != nil {
		log.Printf("Warning: calendar page did not stabilize, continuing anyway: %v\n", err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}
