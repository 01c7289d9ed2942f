package overlay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"calendar-scraper/calurl"
	"calendar-scraper/session"
)

// ErrOverlayTimeout marks an overlay that never became ready within the
// navigation timeout. It is transient and non-fatal: the event is skipped
// after the retry budget is spent.
var ErrOverlayTimeout = errors.New("overlay not ready within timeout")

// Navigator drives one rendering context to the page state that exposes a
// given event's detail overlay.
type Navigator struct {
	BaseURL   string
	DateParam string
	Timeout   time.Duration
	Verbose   bool
}

// overlayCandidates returns the wait cascade for an event's overlay. The
// last candidate keys on the event's own identifier for markup variants
// that render the detail inline instead of inside the shared overlay.
func overlayCandidates(detailID string) []string {
	return []string{
		".overlay__content",
		".calendar__detail",
		fmt.Sprintf("[data-event-id='%s']", detailID),
	}
}

// Open navigates the session to the event's overlay, waits for readiness,
// and returns a static snapshot of the overlay split into its two panels.
// The session stays exclusively owned by the caller; Open never retains it.
func (n *Navigator) Open(ctx context.Context, sess *session.Session, detailID string) (*Panels, error) {
	page := sess.Page().Context(ctx)

	detailURL := calurl.Detail(n.BaseURL, n.DateParam, detailID)
	if n.Verbose {
		log.Printf("Navigating to %s\n", detailURL)
	}

	if err := page.Navigate(detailURL); err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed waiting for page load: %w", err)
	}

	// Wait for the overlay; the fragment is processed by on-page script, so
	// readiness lags the load event.
	perCandidate := n.Timeout / time.Duration(len(overlayCandidates(detailID)))
	if perCandidate < time.Second {
		perCandidate = time.Second
	}

	ready := false
	for _, sel := range overlayCandidates(detailID) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if _, err := page.Timeout(perCandidate).Element(sel); err == nil {
			if n.Verbose {
				log.Printf("Overlay ready via selector %q for detail ID %s\n", sel, detailID)
			}
			ready = true
			break
		}
	}
	if !ready {
		return nil, fmt.Errorf("detail ID %s: %w", detailID, ErrOverlayTimeout)
	}

	// Let the overlay content settle before snapshotting
	if err := page.Timeout(n.Timeout).WaitStable(500 * time.Millisecond); err != nil {
		log.Printf("Warning: overlay did not stabilize for detail ID %s, continuing anyway: %v\n", detailID, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to get overlay HTML: %w", err)
	}

	return SplitPanels(html, detailID)
}
