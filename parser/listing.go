package parser

import (
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"calendar-scraper/models"
)

// ListingParser extracts the seed event list from a rendered calendar
// page. Each event row yields one EventRef; day-breaker rows update the
// date attached to every following event row.
type ListingParser struct {
	Verbose bool
}

// NewListingParser creates a new ListingParser instance.
func NewListingParser() *ListingParser {
	return &ListingParser{}
}

// Parse extracts events from calendar HTML content.
func (lp *ListingParser) Parse(htmlContent string) ([]models.EventRef, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	rows := doc.Find("table.calendar__table tbody tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("no calendar table rows found")
	}

	var events []models.EventRef
	skipped := 0
	currentDate := ""

	rows.Each(func(i int, row *goquery.Selection) {
		class := row.AttrOr("class", "")
		if strings.Contains(class, "day-breaker") {
			if date := cleanDate(row.Find("td").First().Text()); date != "" {
				currentDate = date
				if lp.Verbose {
					log.Printf("Found date section: %s\n", currentDate)
				}
			}
			return
		}

		ev, ok := lp.extractEventRow(row, currentDate)
		if !ok {
			skipped++
			if lp.Verbose {
				log.Printf("Skipped row %d: no event content found\n", i+1)
			}
			return
		}
		events = append(events, ev)
	})

	log.Printf("Listing parse completed. Events: %d, skipped rows: %d\n", len(events), skipped)
	return events, nil
}

// extractEventRow reads one calendar event row. Rows carrying neither an
// event name nor a currency are not events (spacers, expanded panels) and
// are rejected.
func (lp *ListingParser) extractEventRow(row *goquery.Selection, currentDate string) (models.EventRef, bool) {
	ev := models.EventRef{
		Date:     currentDate,
		Time:     strings.TrimSpace(row.Find(".calendar__time").First().Text()),
		Currency: strings.TrimSpace(row.Find(".calendar__currency").First().Text()),
		Name:     strings.TrimSpace(row.Find(".calendar__event").First().Text()),
		Actual:   strings.TrimSpace(row.Find(".calendar__actual").First().Text()),
		Forecast: strings.TrimSpace(row.Find(".calendar__forecast").First().Text()),
		Previous: strings.TrimSpace(row.Find(".calendar__previous").First().Text()),
	}
	if ev.Date == "" {
		ev.Date = "Unknown"
	}

	impact := row.Find(".calendar__impact span").First()
	ev.Impact = strings.TrimSpace(impact.AttrOr("title", ""))
	if ev.Impact == "" {
		ev.Impact = strings.TrimSpace(impact.Text())
	}

	ev.DetailID = strings.TrimSpace(row.AttrOr("data-event-id", ""))
	if ev.DetailID == "" {
		// Some markup variants hang the identifier off the detail toggle
		ev.DetailID = strings.TrimSpace(row.Find("[data-event-id]").First().AttrOr("data-event-id", ""))
	}

	if ev.Name == "" && ev.Currency == "" {
		return lp.extractByPosition(row, ev)
	}
	return ev, true
}

// extractByPosition is a best-effort fallback for rows whose cells lack
// the calendar__* class markers. Cell order: time, currency, impact,
// event, actual, forecast, previous.
func (lp *ListingParser) extractByPosition(row *goquery.Selection, ev models.EventRef) (models.EventRef, bool) {
	cells := row.Find("td")
	if cells.Length() < 7 {
		return models.EventRef{}, false
	}

	ev.Time = cellText(cells, 0)
	ev.Currency = cellText(cells, 1)
	if ev.Impact == "" {
		impact := cells.Eq(2).Find("span").First()
		ev.Impact = strings.TrimSpace(impact.AttrOr("title", ""))
	}
	ev.Name = cellText(cells, 3)
	ev.Actual = cellText(cells, 4)
	ev.Forecast = cellText(cells, 5)
	ev.Previous = cellText(cells, 6)

	if ev.Name == "" && ev.Currency == "" {
		return models.EventRef{}, false
	}
	if lp.Verbose {
		log.Printf("Recovered event row by cell position: %s\n", ev.Name)
	}
	return ev, true
}

// cleanDate collapses the whitespace and newlines inside a day-breaker
// cell, e.g. "\n Wed\nOct 22 " -> "Wed Oct 22".
func cleanDate(text string) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	if len(cleaned) <= 3 {
		return ""
	}
	return cleaned
}
