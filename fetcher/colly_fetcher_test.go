package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCollyFetcherFetch(t *testing.T) {
	const page = `<html><body><table class="calendar__table"><tbody><tr><td>row</td></tr></tbody></table></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	html, err := NewCollyFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(html, "calendar__table") {
		t.Errorf("fetched HTML missing calendar table: %q", html)
	}
}

func TestCollyFetcherCancelledBeforeFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewCollyFetcher().Fetch(ctx, "http://127.0.0.1:0/"); err == nil {
		t.Error("expected an error for an already-cancelled context")
	}
}

func TestCollyFetcherCancelledMidFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Hold the response open until the client gives up
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	if _, err := NewCollyFetcher().Fetch(ctx, srv.URL); err == nil {
		t.Error("expected an error for a fetch cancelled in flight")
	}
}
