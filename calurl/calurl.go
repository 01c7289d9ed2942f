package calurl

import (
	"fmt"
	"net/url"
	"strings"
)

// SiteRoot is the origin used to absolutize relative links found in
// overlay markup.
const SiteRoot = "https://www.forexfactory.com"

// Calendar builds the calendar listing URL for a date parameter, e.g.
// Calendar("https://www.forexfactory.com/calendar", "day=oct22.2025")
// -> "https://www.forexfactory.com/calendar?day=oct22.2025".
// An empty date parameter returns the base URL unchanged.
func Calendar(baseURL, dateParam string) string {
	if dateParam == "" {
		return baseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		// Malformed base URLs fall back to naive joining
		return baseURL + "?" + dateParam
	}
	parsed.RawQuery = dateParam
	return parsed.String()
}

// Detail builds the URL fragment form that opens an event's detail overlay.
func Detail(baseURL, dateParam, detailID string) string {
	return fmt.Sprintf("%s#detail=%s", Calendar(baseURL, dateParam), detailID)
}

// Absolute resolves an href from overlay markup to an absolute URL. Rooted
// paths resolve against SiteRoot; already-absolute URLs pass through.
func Absolute(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if strings.HasPrefix(href, "/") {
		return SiteRoot + href
	}
	return SiteRoot + "/" + href
}
