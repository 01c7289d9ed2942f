package models

// FieldRecord is one label/value pair from an event's specification panel.
// FieldName is whatever label the page presents for this event, normalized;
// it is unique within one event, not globally.
type FieldRecord struct {
	EventID    string
	FieldName  string
	FieldValue string
}

// HistoryRecord is one row of an event's history table. DateURL is empty
// unless the date cell carried a link; missing trailing values stay empty.
type HistoryRecord struct {
	EventID  string
	Date     string
	DateURL  string
	Actual   string
	Forecast string
	Previous string
}

// NewsRecord is one related-content link from an event's history/news panel.
// URL is always absolute.
type NewsRecord struct {
	EventID  string
	Title    string
	URL      string
	Snippet  string
	LinkType string
}

// Link type classifications for NewsRecord.
const (
	LinkTypeNews    = "news"
	LinkTypeRelated = "related"
)
