package parser

import (
	"log"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"calendar-scraper/calurl"
	"calendar-scraper/models"
	"calendar-scraper/overlay"
	"calendar-scraper/selector"
)

// NewsParser extracts related news links from an event's history/news
// panel. The panel also carries the history table's date-navigation links,
// which must not be double-counted as news.
type NewsParser struct {
	Verbose bool
}

// NewNewsParser creates a new NewsParser instance.
func NewNewsParser() *NewsParser {
	return &NewsParser{}
}

var newsContainerCandidates = selector.Candidates{
	".half.last.details .ff_taglist",
	".overlay__content .half.last .ff_taglist",
	"[class*='news']",
	".calendar__news",
}

// minTitleLength filters out icon and pager links that carry no headline.
const minTitleLength = 6

// Extract returns one NewsRecord per qualifying link, in document order.
// An empty result means the event simply has no related news.
func (np *NewsParser) Extract(panels *overlay.Panels) []models.NewsRecord {
	container, ok := selector.Resolve(panels.Doc.Selection, newsContainerCandidates)
	if !ok {
		// No structured container; fall back to every link in the right
		// panel. Without a matched right panel the section is absent — page
		// chrome links elsewhere in the document are not news.
		if panels.Right == nil {
			if np.Verbose {
				log.Printf("No related news found for detail ID %s\n", panels.DetailID)
			}
			return nil
		}
		container = panels.Right
	}

	var records []models.NewsRecord
	container.Find("a").Each(func(_ int, link *goquery.Selection) {
		title := strings.TrimSpace(link.Text())
		href, exists := link.Attr("href")
		if !exists || title == "" {
			return
		}
		if len(title) < minTitleLength {
			return
		}
		if isDateLikeTitle(title) {
			// History-table navigation link, not news
			return
		}

		records = append(records, models.NewsRecord{
			EventID:  panels.DetailID,
			Title:    title,
			URL:      calurl.Absolute(href),
			Snippet:  linkSnippet(link, title),
			LinkType: classifyLink(href),
		})
	})

	if np.Verbose {
		if len(records) == 0 {
			log.Printf("No related news found for detail ID %s\n", panels.DetailID)
		} else {
			log.Printf("Extracted %d news items for detail ID %s\n", len(records), panels.DetailID)
		}
	}
	return records
}

// isDateLikeTitle reports whether link text looks like a short date, e.g.
// "Sep 17, 2025". The history table renders its dates as links into the
// shared panel, and those must be filtered here.
func isDateLikeTitle(title string) bool {
	if len(title) >= 15 {
		return false
	}
	for _, r := range title {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// linkSnippet returns the nearest enclosing text context beyond the link
// itself, capped at 200 runes, or empty when the parent adds nothing.
func linkSnippet(link *goquery.Selection, title string) string {
	parent := link.Parent()
	if parent.Length() == 0 {
		return ""
	}
	text := strings.TrimSpace(parent.Text())
	if len(text) <= len(title) {
		return ""
	}
	runes := []rune(text)
	if len(runes) > 200 {
		runes = runes[:200]
	}
	return string(runes)
}

// classifyLink tags a link by its URL path: a news or article segment
// means "news", anything else defaults to "related".
func classifyLink(href string) string {
	path := href
	if parsed, err := url.Parse(calurl.Absolute(href)); err == nil {
		path = parsed.Path
	}
	path = strings.ToLower(path)
	if strings.Contains(path, "news") || strings.Contains(path, "article") {
		return models.LinkTypeNews
	}
	return models.LinkTypeRelated
}
