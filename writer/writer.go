package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"calendar-scraper/config"
	"calendar-scraper/models"
)

// Fixed column sets. Order is stable across runs for a given configuration.
var (
	calendarColumns = []string{"date", "time", "currency", "impact", "event", "actual", "forecast", "previous", "detail"}
	narrowColumns   = []string{"event_id", "field_name", "field_value"}
	historyColumns  = []string{"detail_id", "event_name", "event_date", "event_currency", "date", "date_url", "actual", "forecast", "previous"}
	newsColumns     = []string{"detail_id", "event_name", "event_date", "event_currency", "title", "url", "snippet", "link_type"}

	// Wide detail output starts with these, followed by the sorted union of
	// every field name observed in the run.
	widePrefixColumns = []string{"detail_id", "event_date", "event_time", "event_currency", "event_name"}
)

// Writer accumulates per-event records and serializes them to CSV at end of
// run. It is append-only: no event can overwrite another's records.
type Writer struct {
	dir          string
	dateParam    string
	detailFormat string

	mu       sync.Mutex
	events   []models.EventRef // input order of events that produced fields
	fields   []models.FieldRecord
	history  []models.HistoryRecord
	news     []models.NewsRecord
	outcomes []models.ExtractionOutcome
}

// NewWriter creates a Writer targeting dir. dateParam prefixes the output
// file names, matching the seed CSV naming.
func NewWriter(dir, dateParam, detailFormat string) *Writer {
	return &Writer{
		dir:          dir,
		dateParam:    dateParam,
		detailFormat: detailFormat,
	}
}

// Append records one event's extraction outcome. Records are kept in the
// order appended, which the runner guarantees is the input EventRef order.
func (w *Writer) Append(outcome models.ExtractionOutcome) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.outcomes = append(w.outcomes, outcome)
	if len(outcome.Fields) > 0 {
		w.events = append(w.events, outcome.Event)
	}
	w.fields = append(w.fields, outcome.Fields...)
	w.history = append(w.history, outcome.History...)
	w.news = append(w.news, outcome.News...)
}

// Outcomes returns a copy of every outcome appended so far, one per
// processed event.
func (w *Writer) Outcomes() []models.ExtractionOutcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.ExtractionOutcome, len(w.outcomes))
	copy(out, w.outcomes)
	return out
}

// Flush serializes the accumulated records: one details file (narrow or
// wide per configuration), one history file, one news file.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var detailRows [][]string
	if w.detailFormat == config.FormatWide {
		detailRows = WideRows(w.events, w.fields)
	} else {
		detailRows = NarrowRows(w.fields)
	}

	if err := w.writeFile("details", detailRows); err != nil {
		return err
	}
	if err := w.writeFile("history", HistoryRows(w.outcomes)); err != nil {
		return err
	}
	return w.writeFile("news", NewsRows(w.outcomes))
}

// WriteCalendar serializes the seed event list produced by the listing
// step.
func (w *Writer) WriteCalendar(events []models.EventRef) error {
	rows := [][]string{calendarColumns}
	for _, ev := range events {
		rows = append(rows, []string{ev.Date, ev.Time, ev.Currency, ev.Impact, ev.Name, ev.Actual, ev.Forecast, ev.Previous, ev.DetailID})
	}
	return w.writeFile("calendar", rows)
}

func (w *Writer) writeFile(kind string, rows [][]string) error {
	path := filepath.Join(w.dir, fmt.Sprintf("%s_%s.csv", w.dateParam, kind))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", kind, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s file: %w", kind, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush %s file: %w", kind, err)
	}
	return nil
}

// NarrowRows renders field records as (event_id, field_name, field_value)
// triples, header included. An event without a field has no row at all,
// which keeps "field absent" unambiguous.
func NarrowRows(fields []models.FieldRecord) [][]string {
	rows := [][]string{narrowColumns}
	for _, fr := range fields {
		rows = append(rows, []string{fr.EventID, fr.FieldName, fr.FieldValue})
	}
	return rows
}

// WideRows renders one row per event whose columns are the fixed prefix
// plus the sorted union of every field name observed across all events.
// Cells are empty where an event lacks that field.
func WideRows(events []models.EventRef, fields []models.FieldRecord) [][]string {
	byEvent := make(map[string]map[string]string)
	labelSet := make(map[string]struct{})
	for _, fr := range fields {
		if byEvent[fr.EventID] == nil {
			byEvent[fr.EventID] = make(map[string]string)
		}
		byEvent[fr.EventID][fr.FieldName] = fr.FieldValue
		labelSet[fr.FieldName] = struct{}{}
	}

	labels := make([]string, 0, len(labelSet))
	for label := range labelSet {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	header := append(append([]string{}, widePrefixColumns...), labels...)
	rows := [][]string{header}

	for _, ev := range events {
		row := []string{ev.DetailID, ev.Date, ev.Time, ev.Currency, ev.Name}
		for _, label := range labels {
			row = append(row, byEvent[ev.DetailID][label])
		}
		rows = append(rows, row)
	}
	return rows
}

// HistoryRows renders the fixed-schema history output, carrying each
// owning event's context columns.
func HistoryRows(outcomes []models.ExtractionOutcome) [][]string {
	rows := [][]string{historyColumns}
	for _, o := range outcomes {
		for _, hr := range o.History {
			rows = append(rows, []string{
				hr.EventID, o.Event.Name, o.Event.Date, o.Event.Currency,
				hr.Date, hr.DateURL, hr.Actual, hr.Forecast, hr.Previous,
			})
		}
	}
	return rows
}

// NewsRows renders the fixed-schema news output.
func NewsRows(outcomes []models.ExtractionOutcome) [][]string {
	rows := [][]string{newsColumns}
	for _, o := range outcomes {
		for _, nr := range o.News {
			rows = append(rows, []string{
				nr.EventID, o.Event.Name, o.Event.Date, o.Event.Currency,
				nr.Title, nr.URL, nr.Snippet, nr.LinkType,
			})
		}
	}
	return rows
}
