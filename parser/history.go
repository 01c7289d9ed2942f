package parser

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"calendar-scraper/calurl"
	"calendar-scraper/models"
	"calendar-scraper/overlay"
	"calendar-scraper/selector"
)

// HistoryParser extracts the historical actual/forecast/previous table from
// an event's history/news panel.
type HistoryParser struct {
	Verbose bool
}

// NewHistoryParser creates a new HistoryParser instance.
func NewHistoryParser() *HistoryParser {
	return &HistoryParser{}
}

var historyTableCandidates = selector.Candidates{
	".half.last.details table",
	".overlay__content .half.last table",
	"[class*='history'] table",
	".calendar__history table",
}

// columnMap holds the resolved column index for each history field. -1
// means the column is not present in this table variant.
type columnMap struct {
	date, actual, forecast, previous int
	fromHeader                       bool
}

// positionalColumns is the compatibility fallback for markup variants
// without reliable headers: date, actual, forecast, previous in order.
var positionalColumns = columnMap{date: 0, actual: 1, forecast: 2, previous: 3}

// Extract returns one HistoryRecord per table row, top to bottom. Rows with
// fewer cells than the minimal schema (date plus at least one value) are
// dropped and logged; an empty result means no history table was found.
func (hp *HistoryParser) Extract(panels *overlay.Panels) []models.HistoryRecord {
	table, ok := selector.Resolve(panels.Doc.Selection, historyTableCandidates)
	if !ok {
		// Generic table inside the right panel is the last resort. Without a
		// matched right panel the section is absent; scanning the whole
		// document would pick up the specification table.
		if panels.Right == nil {
			if hp.Verbose {
				log.Printf("No history table found for detail ID %s\n", panels.DetailID)
			}
			return nil
		}
		generic := panels.Right.Find("table").First()
		if generic.Length() == 0 {
			if hp.Verbose {
				log.Printf("No history table found for detail ID %s\n", panels.DetailID)
			}
			return nil
		}
		table = generic
	}

	cols, headerRow := hp.resolveColumns(table)
	if hp.Verbose && cols.fromHeader {
		log.Printf("History columns mapped by header text for detail ID %s\n", panels.DetailID)
	}

	var records []models.HistoryRecord
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if headerRow != nil && len(row.Nodes) > 0 && row.Nodes[0] == headerRow {
			return
		}
		cells := row.Find("td")
		if cells.Length() == 0 {
			// Header rows use th cells
			return
		}
		if cells.Length() < 2 {
			log.Printf("Warning: dropping malformed history row %d for detail ID %s (%d cells)\n", i, panels.DetailID, cells.Length())
			return
		}
		if cells.Length() != 4 {
			// Best-effort mapping still applies, but the mismatch is flagged
			// rather than silently accepted.
			log.Printf("Warning: history row %d for detail ID %s has %d cells, not a known layout\n", i, panels.DetailID, cells.Length())
		}

		record := models.HistoryRecord{EventID: panels.DetailID}
		record.Date = strings.TrimSpace(cells.Eq(cols.date).Text())
		if href, exists := cells.Eq(cols.date).Find("a").First().Attr("href"); exists {
			record.DateURL = calurl.Absolute(href)
		}
		record.Actual = cellText(cells, cols.actual)
		record.Forecast = cellText(cells, cols.forecast)
		record.Previous = cellText(cells, cols.previous)

		if record.Date == "" {
			return
		}
		records = append(records, record)
	})

	if hp.Verbose {
		log.Printf("Extracted %d history records for detail ID %s\n", len(records), panels.DetailID)
	}
	return records
}

// resolveColumns maps columns by header text when the header row carries
// the expected column semantics in any order, and falls back to the fixed
// positional layout otherwise. The returned node identifies the row that
// served as a header so it is never re-read as data.
func (hp *HistoryParser) resolveColumns(table *goquery.Selection) (columnMap, *html.Node) {
	header := table.Find("thead tr").First()
	if header.Length() == 0 {
		header = table.Find("tr").First()
	}
	if header.Length() == 0 {
		return positionalColumns, nil
	}

	cols := columnMap{date: -1, actual: -1, forecast: -1, previous: -1}
	header.Find("th, td").Each(func(i int, cell *goquery.Selection) {
		switch strings.ToLower(strings.TrimSpace(cell.Text())) {
		case "date":
			cols.date = i
		case "actual":
			cols.actual = i
		case "forecast":
			cols.forecast = i
		case "previous":
			cols.previous = i
		}
	})

	// Header mapping needs the date column and at least one value column;
	// anything less means the headers are not reliable.
	if cols.date < 0 || (cols.actual < 0 && cols.forecast < 0 && cols.previous < 0) {
		// A th-only header row still must not be read as data
		if header.Find("th").Length() > 0 {
			return positionalColumns, header.Nodes[0]
		}
		return positionalColumns, nil
	}
	cols.fromHeader = true
	return cols, header.Nodes[0]
}

// cellText reads the trimmed text of cell idx, or empty when the column is
// absent from this table variant or the row is short. Missing trailing
// values stay empty, never inferred.
func cellText(cells *goquery.Selection, idx int) string {
	if idx < 0 || idx >= cells.Length() {
		return ""
	}
	return strings.TrimSpace(cells.Eq(idx).Text())
}
