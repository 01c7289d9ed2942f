package runner

import (
	"context"
	"errors"
	"log"

	"calendar-scraper/governor"
	"calendar-scraper/models"
	"calendar-scraper/overlay"
	"calendar-scraper/parser"
	"calendar-scraper/session"
	"calendar-scraper/writer"
)

// OverlayOpener opens the detail overlay for one event and returns its
// panel snapshot. Implementations own the browser-session lifecycle.
type OverlayOpener interface {
	Open(ctx context.Context, ref models.EventRef) (*overlay.Panels, error)
}

// BrowserOpener opens overlays in a fresh incognito context per event, so
// no overlay state leaks between events.
type BrowserOpener struct {
	provisioner *session.Provisioner
	navigator   *overlay.Navigator
}

// NewBrowserOpener creates a new BrowserOpener instance.
func NewBrowserOpener(p *session.Provisioner, n *overlay.Navigator) *BrowserOpener {
	return &BrowserOpener{provisioner: p, navigator: n}
}

// Open implements the OverlayOpener interface.
func (b *BrowserOpener) Open(ctx context.Context, ref models.EventRef) (*overlay.Panels, error) {
	sess, err := b.provisioner.Acquire()
	if err != nil {
		// Environment faults must not burn the retry budget
		return nil, governor.Permanent(err)
	}
	defer sess.Release()

	return b.navigator.Open(ctx, sess, ref.DetailID)
}

// Runner walks the event list serially, extracts all three detail sections
// for each event and records exactly one outcome per event.
type Runner struct {
	opener  OverlayOpener
	gov     *governor.Governor
	out     *writer.Writer
	fields  *parser.FieldExtractor
	history *parser.HistoryParser
	news    *parser.NewsParser
	Verbose bool
}

// New creates a new Runner instance.
func New(opener OverlayOpener, gov *governor.Governor, out *writer.Writer) *Runner {
	return &Runner{
		opener:  opener,
		gov:     gov,
		out:     out,
		fields:  parser.NewFieldExtractor(),
		history: parser.NewHistoryParser(),
		news:    parser.NewNewsParser(),
	}
}

// Run processes events one at a time. A failing event never aborts the run;
// it is recorded as skipped and processing continues. The two exceptions
// are environment faults, which abort the whole run immediately, and
// cancellation, which stops the run after the in-flight event is recorded.
func (r *Runner) Run(ctx context.Context, events []models.EventRef) error {
	for i, ev := range events {
		outcome, envErr := r.process(ctx, ev)
		r.out.Append(outcome)
		log.Printf("[%d/%d] %s %s (%s): %s\n", i+1, len(events), ev.DetailID, ev.Name, ev.Currency, outcome.Summary())

		if envErr != nil {
			log.Printf("Aborting run after %d of %d events: %v\n", i+1, len(events), envErr)
			return envErr
		}
		if err := ctx.Err(); err != nil {
			log.Printf("Run cancelled after %d of %d events\n", i+1, len(events))
			return err
		}

		if i < len(events)-1 {
			r.gov.PauseAfter(ctx, i+1)
		}
	}
	return nil
}

// process opens the overlay (with bounded retries for transient faults) and
// runs the three section parsers against the snapshot. The returned error
// is non-nil only for environment faults, which the caller must treat as
// fatal for the run.
func (r *Runner) process(ctx context.Context, ev models.EventRef) (models.ExtractionOutcome, error) {
	if !ev.HasDetail() {
		return models.Skip(ev, "no-detail-id"), nil
	}

	var panels *overlay.Panels
	err := r.gov.Retry(ctx, func() error {
		p, openErr := r.opener.Open(ctx, ev)
		if openErr != nil {
			return openErr
		}
		panels = p
		return nil
	})
	if err != nil {
		if errors.Is(err, session.ErrEnvironment) {
			return models.Skip(ev, "environment-fault"), err
		}
		return models.Skip(ev, skipReason(err)), nil
	}

	fields := r.fields.Extract(panels)
	history := r.history.Extract(panels)
	news := r.news.Extract(panels)

	var missing []string
	if len(fields) == 0 {
		missing = append(missing, models.SectionFields)
	}
	if len(history) == 0 {
		missing = append(missing, models.SectionHistory)
	}
	if len(news) == 0 {
		missing = append(missing, models.SectionNews)
	}

	if len(missing) == 0 {
		return models.Success(ev, fields, history, news), nil
	}
	return models.Partial(ev, missing, fields, history, news), nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, overlay.ErrOverlayTimeout):
		return "overlay-timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "navigation-failure"
	}
}
