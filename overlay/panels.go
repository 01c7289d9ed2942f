package overlay

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"calendar-scraper/selector"
)

// Panels exposes the two structural regions of an event's detail overlay:
// the left specification panel and the right history/news panel. Either
// selection is nil when its markers are absent from the snapshot. Parsers
// operate on these selections only, against a static snapshot of the
// rendered document, so they never touch the browser.
type Panels struct {
	DetailID string
	Doc      *goquery.Document
	Left     *goquery.Selection
	Right    *goquery.Selection
}

var (
	leftPanelCandidates = selector.Candidates{
		".half.first.details",
		".overlay__content .half.first",
	}

	rightPanelCandidates = selector.Candidates{
		".half.last.details",
		".overlay__content .half.last",
	}
)

// SplitPanels parses a rendered overlay snapshot and locates its two
// panels. A panel whose markers are absent stays nil: the per-section
// selector cascades still run against the whole document, but the generic
// last-resort fallbacks are scoped to an actually-matched panel so the
// left panel's content can never be misread as history or news.
func SplitPanels(html, detailID string) (*Panels, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse overlay HTML: %w", err)
	}

	left, _ := selector.Resolve(doc.Selection, leftPanelCandidates)
	right, _ := selector.Resolve(doc.Selection, rightPanelCandidates)

	return &Panels{
		DetailID: detailID,
		Doc:      doc,
		Left:     left,
		Right:    right,
	}, nil
}
