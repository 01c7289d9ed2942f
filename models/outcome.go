package models

import "strings"

// OutcomeStatus tags the per-event extraction result.
type OutcomeStatus string

const (
	OutcomeSuccess        OutcomeStatus = "success"
	OutcomePartialFailure OutcomeStatus = "partial"
	OutcomeSkipped        OutcomeStatus = "skipped"
)

// Section names used in PartialFailure missing-section lists and warnings.
const (
	SectionFields  = "fields"
	SectionHistory = "history"
	SectionNews    = "news"
)

// ExtractionOutcome is the per-event result. Exactly one outcome exists for
// every input EventRef, even when the event was skipped.
type ExtractionOutcome struct {
	Event   EventRef
	Status  OutcomeStatus
	Reason  string   // skip reason, empty otherwise
	Missing []string // absent sections for partial results

	Fields  []FieldRecord
	History []HistoryRecord
	News    []NewsRecord
}

// Success builds a full-success outcome.
func Success(ev EventRef, fields []FieldRecord, history []HistoryRecord, news []NewsRecord) ExtractionOutcome {
	return ExtractionOutcome{
		Event:   ev,
		Status:  OutcomeSuccess,
		Fields:  fields,
		History: history,
		News:    news,
	}
}

// Partial builds an outcome for an event where some sections were absent.
func Partial(ev EventRef, missing []string, fields []FieldRecord, history []HistoryRecord, news []NewsRecord) ExtractionOutcome {
	return ExtractionOutcome{
		Event:   ev,
		Status:  OutcomePartialFailure,
		Missing: missing,
		Fields:  fields,
		History: history,
		News:    news,
	}
}

// Skip builds an outcome for an event that produced no records.
func Skip(ev EventRef, reason string) ExtractionOutcome {
	return ExtractionOutcome{Event: ev, Status: OutcomeSkipped, Reason: reason}
}

// Summary renders the outcome as a single log-friendly token, e.g.
// "success", "partial(missing: news)" or "skipped(overlay-timeout)".
func (o ExtractionOutcome) Summary() string {
	switch o.Status {
	case OutcomePartialFailure:
		return "partial(missing: " + strings.Join(o.Missing, ",") + ")"
	case OutcomeSkipped:
		return "skipped(" + o.Reason + ")"
	default:
		return string(o.Status)
	}
}
