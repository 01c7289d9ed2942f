package models

// EventRef identifies one calendar event from the listing step. DetailID is
// the opaque fragment identifier used to address the event's detail overlay
// and is the join key for every output record.
type EventRef struct {
	DetailID string
	Name     string
	Date     string
	Time     string
	Currency string
	Impact   string

	// Coarse values from the listing row, carried through to the seed CSV.
	Actual   string
	Forecast string
	Previous string
}

// HasDetail reports whether the event can be addressed via the detail overlay.
func (e EventRef) HasDetail() bool {
	return e.DetailID != ""
}
