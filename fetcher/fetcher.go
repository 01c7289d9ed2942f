package fetcher

import "context"

// Fetcher retrieves the rendered HTML of one calendar listing page. Two
// implementations exist: a headless-browser fetcher for the JS-rendered
// calendar, and a plain-HTTP fetcher for markup variants served
// server-side.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
