package filter

import (
	"strings"

	"calendar-scraper/config"
	"calendar-scraper/models"
)

// Filter applies filter criteria to calendar events
type Filter struct {
	cfg *config.Config
}

// NewFilter creates a new Filter instance
func NewFilter(cfg *config.Config) *Filter {
	return &Filter{
		cfg: cfg,
	}
}

// Apply filters events based on the configuration. Empty filter lists
// match everything, and events without a detail id are always dropped
// since there is no overlay to open for them.
func (f *Filter) Apply(events []models.EventRef) []models.EventRef {
	var filtered []models.EventRef

	for _, event := range events {
		if f.matches(event) {
			filtered = append(filtered, event)
		}
	}

	return filtered
}

// matches checks if an event matches all filter criteria
func (f *Filter) matches(event models.EventRef) bool {
	if !event.HasDetail() {
		return false
	}

	if !matchesAny(event.Currency, f.cfg.Filters.Currencies) {
		return false
	}

	if !matchesAny(event.Impact, f.cfg.Filters.Impacts) {
		return false
	}

	return true
}

func matchesAny(value string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(a)) {
			return true
		}
	}
	return false
}
