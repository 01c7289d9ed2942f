package parser

import (
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"calendar-scraper/models"
	"calendar-scraper/overlay"
	"calendar-scraper/selector"
)

// FieldExtractor discovers the label/value pairs present in an event's
// specification panel. The label set varies by event category (a speech
// event has "speaker", a data release has "source" and "next_release"), so
// pairs are enumerated structurally rather than looked up from a fixed list.
type FieldExtractor struct {
	Verbose bool
}

// NewFieldExtractor creates a new FieldExtractor instance.
func NewFieldExtractor() *FieldExtractor {
	return &FieldExtractor{}
}

var specTableCandidates = selector.Candidates{
	"table.calendarspecs",
	".calendarspecs",
	"table.calendar-specs",
	".calendar-specs",
	"[class*='specs']",
	".calendar__detail table",
	".calendar-detail table",
}

// Extract returns one FieldRecord per label/value row, in document order.
// A label with an empty value is recorded with an empty FieldValue rather
// than omitted, so "field absent" and "field empty" stay distinguishable
// downstream. An empty result means the specification table was absent.
func (fe *FieldExtractor) Extract(panels *overlay.Panels) []models.FieldRecord {
	table, ok := selector.Resolve(panels.Doc.Selection, specTableCandidates)
	if !ok {
		table = fe.fallbackTable(panels.Left)
	}
	if table == nil {
		if fe.Verbose {
			log.Printf("No specification table found for detail ID %s\n", panels.DetailID)
		}
		return nil
	}

	var records []models.FieldRecord
	seen := make(map[string]int)

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSpace(cells.Eq(0).Text())
		if label == "" {
			return
		}
		value := strings.TrimSpace(cells.Eq(1).Text())

		name := NormalizeLabel(label)
		// Keep field names unique within the event; a second occurrence of
		// the same normalized label gets a numeric suffix.
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}

		records = append(records, models.FieldRecord{
			EventID:    panels.DetailID,
			FieldName:  name,
			FieldValue: value,
		})
	})

	if fe.Verbose {
		log.Printf("Extracted %d spec fields for detail ID %s\n", len(records), panels.DetailID)
	}
	return records
}

// fallbackTable picks the first table in the specification panel that has a
// header and at least one data row, for markup variants missing the specs
// class entirely.
func (fe *FieldExtractor) fallbackTable(left *goquery.Selection) *goquery.Selection {
	if left == nil {
		return nil
	}
	var found *goquery.Selection
	left.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if table.Find("tr").Length() > 1 {
			found = table
			return false
		}
		return true
	})
	return found
}

// NormalizeLabel turns page label text into a stable field name: lower
// case, whitespace collapsed to underscores, slashes to underscores, and
// colon/paren punctuation stripped.
func NormalizeLabel(label string) string {
	name := strings.ToLower(label)
	name = strings.Join(strings.Fields(name), "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.NewReplacer(":", "", "(", "", ")", "").Replace(name)
	return name
}
