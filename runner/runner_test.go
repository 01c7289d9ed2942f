package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"calendar-scraper/governor"
	"calendar-scraper/models"
	"calendar-scraper/overlay"
	"calendar-scraper/session"
	"calendar-scraper/writer"
)

const fullDetailHTML = `
<div class="overlay__content">
  <div class="half first details">
    <table class="calendarspecs">
      <tr><td>Source</td><td>Bank of Japan</td></tr>
      <tr><td>Measures</td><td>Trade balance value</td></tr>
    </table>
  </div>
  <div class="half last details">
    <table>
      <tr><th>Date</th><th>Actual</th><th>Forecast</th><th>Previous</th></tr>
      <tr><td><a href="/calendar?day=sep17.2025">Sep 17, 2025</a></td><td>-0.15T</td><td>-0.37T</td><td>-0.29T</td></tr>
    </table>
    <div class="ff_taglist">
      <a href="/news/12345-trade-balance-narrows">Japan trade balance narrows more than expected</a>
    </div>
  </div>
</div>`

const fieldsOnlyHTML = `
<div class="overlay__content">
  <div class="half first details">
    <table class="calendarspecs">
      <tr><td>Source</td><td>Bank of Japan</td></tr>
    </table>
  </div>
  <div class="half last details"></div>
</div>`

// fakeOpener serves canned HTML per detail id, or a scripted error.
type fakeOpener struct {
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeOpener) Open(ctx context.Context, ref models.EventRef) (*overlay.Panels, error) {
	f.calls = append(f.calls, ref.DetailID)
	if err, ok := f.errs[ref.DetailID]; ok {
		return nil, err
	}
	return overlay.SplitPanels(f.pages[ref.DetailID], ref.DetailID)
}

func quietGovernor(retries int) *governor.Governor {
	return governor.New(0, 5, 0, retries)
}

func testRunner(opener OverlayOpener, retries int) (*Runner, *writer.Writer) {
	out := writer.NewWriter("", "day=oct22.2025", "narrow")
	return New(opener, quietGovernor(retries), out), out
}

func TestRunOneOutcomePerEvent(t *testing.T) {
	opener := &fakeOpener{
		pages: map[string]string{
			"144521": fullDetailHTML,
			"144711": fieldsOnlyHTML,
		},
		errs: map[string]error{
			"145001": errors.New("net::ERR_CONNECTION_RESET"),
		},
	}
	events := []models.EventRef{
		{DetailID: "144521", Name: "Trade Balance", Currency: "JPY"},
		{DetailID: "144711", Name: "FOMC Member Speaks", Currency: "USD"},
		{DetailID: "145001", Name: "CPI y/y", Currency: "EUR"},
	}
	r, out := testRunner(opener, 0)

	if err := r.Run(context.Background(), events); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	outcomes := out.Outcomes()
	if len(outcomes) != len(events) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(events))
	}
	for i, o := range outcomes {
		if o.Event.DetailID != events[i].DetailID {
			t.Errorf("outcome %d is for %q, want %q", i, o.Event.DetailID, events[i].DetailID)
		}
	}
	if outcomes[0].Status != models.OutcomeSuccess {
		t.Errorf("event 144521 = %s, want success", outcomes[0].Summary())
	}
	if outcomes[1].Status != models.OutcomePartialFailure {
		t.Errorf("event 144711 = %s, want partial", outcomes[1].Summary())
	}
	if len(outcomes[1].Missing) != 2 {
		t.Errorf("event 144711 missing = %v, want history and news", outcomes[1].Missing)
	}
	if outcomes[2].Status != models.OutcomeSkipped || outcomes[2].Reason != "navigation-failure" {
		t.Errorf("event 145001 = %s, want skipped(navigation-failure)", outcomes[2].Summary())
	}
}

func TestRunSkipDoesNotAbortRun(t *testing.T) {
	opener := &fakeOpener{
		pages: map[string]string{"2": fullDetailHTML},
		errs:  map[string]error{"1": errors.New("navigation failed")},
	}
	events := []models.EventRef{
		{DetailID: "1", Name: "First"},
		{DetailID: "2", Name: "Second"},
	}
	r, out := testRunner(opener, 0)

	if err := r.Run(context.Background(), events); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	outcomes := out.Outcomes()
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	if outcomes[1].Status != models.OutcomeSuccess {
		t.Errorf("event after a skip = %s, want success", outcomes[1].Summary())
	}
}

func TestRunRetriesTransientFault(t *testing.T) {
	attempts := 0
	opener := &scriptedOpener{open: func(ctx context.Context, ref models.EventRef) (*overlay.Panels, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("net::ERR_TIMED_OUT")
		}
		return overlay.SplitPanels(fullDetailHTML, ref.DetailID)
	}}
	r, out := testRunner(opener, 2)

	if err := r.Run(context.Background(), []models.EventRef{{DetailID: "144521", Name: "Trade Balance"}}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if attempts != 3 {
		t.Errorf("got %d attempts, want 3", attempts)
	}
	if got := out.Outcomes()[0].Status; got != models.OutcomeSuccess {
		t.Errorf("outcome = %s, want success after retry", got)
	}
}

func TestRunRetryBudgetExhausted(t *testing.T) {
	attempts := 0
	opener := &scriptedOpener{open: func(ctx context.Context, ref models.EventRef) (*overlay.Panels, error) {
		attempts++
		return nil, fmt.Errorf("open overlay %s: %w", ref.DetailID, overlay.ErrOverlayTimeout)
	}}
	r, out := testRunner(opener, 2)

	if err := r.Run(context.Background(), []models.EventRef{{DetailID: "144521", Name: "Trade Balance"}}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if attempts != 3 {
		t.Errorf("got %d attempts, want 1 + 2 retries", attempts)
	}
	o := out.Outcomes()[0]
	if o.Status != models.OutcomeSkipped || o.Reason != "overlay-timeout" {
		t.Errorf("outcome = %s, want skipped(overlay-timeout)", o.Summary())
	}
}

func TestRunEnvironmentFaultAbortsRun(t *testing.T) {
	attempts := 0
	opener := &scriptedOpener{open: func(ctx context.Context, ref models.EventRef) (*overlay.Panels, error) {
		attempts++
		// Mirror BrowserOpener: acquire failures carry the environment
		// sentinel and never burn retry budget.
		err := fmt.Errorf("%w: failed to create incognito context: browser is gone", session.ErrEnvironment)
		return nil, governor.Permanent(err)
	}}
	r, out := testRunner(opener, 2)

	events := []models.EventRef{
		{DetailID: "1", Name: "First"},
		{DetailID: "2", Name: "Second"},
		{DetailID: "3", Name: "Third"},
	}
	err := r.Run(context.Background(), events)
	if !errors.Is(err, session.ErrEnvironment) {
		t.Fatalf("Run() error = %v, want the environment fault", err)
	}

	if attempts != 1 {
		t.Errorf("got %d attempts, want 1 (environment faults are not retried)", attempts)
	}
	outcomes := out.Outcomes()
	if len(outcomes) != 1 {
		t.Fatalf("got %d outcomes, want 1: the run must stop at the fault", len(outcomes))
	}
	if outcomes[0].Status != models.OutcomeSkipped || outcomes[0].Reason != "environment-fault" {
		t.Errorf("outcome = %s, want skipped(environment-fault)", outcomes[0].Summary())
	}
}

func TestRunMissingDetailIDSkippedWithoutOpen(t *testing.T) {
	opener := &fakeOpener{pages: map[string]string{}}
	r, out := testRunner(opener, 2)

	events := []models.EventRef{{Name: "Bank Holiday", Currency: "CHF"}}
	if err := r.Run(context.Background(), events); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(opener.calls) != 0 {
		t.Errorf("opener called %d times for an event without a detail id", len(opener.calls))
	}
	o := out.Outcomes()[0]
	if o.Status != models.OutcomeSkipped || o.Reason != "no-detail-id" {
		t.Errorf("outcome = %s, want skipped(no-detail-id)", o.Summary())
	}
}

func TestRunCancellationStopsAfterInFlightEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opener := &scriptedOpener{open: func(ctx context.Context, ref models.EventRef) (*overlay.Panels, error) {
		if ref.DetailID == "2" {
			cancel()
		}
		return overlay.SplitPanels(fullDetailHTML, ref.DetailID)
	}}
	r, out := testRunner(opener, 0)

	events := []models.EventRef{
		{DetailID: "1", Name: "First"},
		{DetailID: "2", Name: "Second"},
		{DetailID: "3", Name: "Third"},
	}
	err := r.Run(ctx, events)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}

	// The in-flight event is still recorded; the rest are not processed.
	if got := len(out.Outcomes()); got != 2 {
		t.Errorf("got %d outcomes, want 2", got)
	}
}

type scriptedOpener struct {
	open func(ctx context.Context, ref models.EventRef) (*overlay.Panels, error)
}

func (s *scriptedOpener) Open(ctx context.Context, ref models.EventRef) (*overlay.Panels, error) {
	return s.open(ctx, ref)
}
