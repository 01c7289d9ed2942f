package fetcher

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher fetches the calendar over plain HTTP. The listing table is
// sometimes present server-side; when it is not, the listing parser reports
// no rows and callers should fall back to the browser engine.
type CollyFetcher struct{}

// NewCollyFetcher creates a new CollyFetcher instance.
func NewCollyFetcher() *CollyFetcher {
	return &CollyFetcher{}
}

// Fetch implements the Fetcher interface. The collector is built per call
// so the caller's context governs the underlying HTTP request and a
// cancellation interrupts an in-flight fetch.
func (cf *CollyFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		colly.StdlibContext(ctx),
	)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*forexfactory.*",
		Parallelism: 1,
		Delay:       4 * time.Second,
	})

	c.OnError(func(r *colly.Response, err error) {
		log.Printf("Error fetching %s: %v\n", r.Request.URL, err)
	})

	var html string
	c.OnResponse(func(r *colly.Response) {
		html = string(r.Body)
	})

	if err := c.Visit(url); err != nil {
		return "", fmt.Errorf("failed to visit URL: %w", err)
	}
	c.Wait()

	if html == "" {
		return "", fmt.Errorf("empty response from %s", url)
	}
	return html, nil
}
