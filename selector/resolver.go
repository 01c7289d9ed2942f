package selector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Candidates is an ordered list of structural locators for one logical
// field or section. Earlier entries are more specific; later entries exist
// because the page's markup has been observed to vary across event types.
type Candidates []string

// Resolve evaluates candidates strictly in order against root and returns
// the first selection that matches an element with non-empty text content.
// The returned bool is false when no candidate matched; callers must treat
// that as "section absent", not as an error.
func Resolve(root *goquery.Selection, candidates Candidates) (*goquery.Selection, bool) {
	for _, sel := range candidates {
		match := root.Find(sel)
		if match.Length() == 0 {
			continue
		}
		if strings.TrimSpace(match.Text()) == "" {
			continue
		}
		return match.First(), true
	}
	return nil, false
}

// ResolveAll is Resolve for callers that need every element the winning
// candidate matched rather than just the first.
func ResolveAll(root *goquery.Selection, candidates Candidates) (*goquery.Selection, bool) {
	for _, sel := range candidates {
		match := root.Find(sel)
		if match.Length() == 0 {
			continue
		}
		if strings.TrimSpace(match.Text()) == "" {
			continue
		}
		return match, true
	}
	return nil, false
}
