package vad

import "fmt"

// DataLoadError reports a catalogue that could not be loaded.
type DataLoadError struct {
	Path   string
	Line   int // 0 when the failure is not tied to a line
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	msg := "catalogue load failed"
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// InvalidQueryError rejects a single search request.
type InvalidQueryError struct {
	Field  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: %s: %s", e.Field, e.Reason)
}

// AnalysisPreconditionError means there is nothing to analyze yet.
type AnalysisPreconditionError struct {
	Reason string
}

func (e *AnalysisPreconditionError) Error() string {
	return "analysis unavailable: " + e.Reason
}

// InvalidParameterError rejects a malformed weight, variable or axis override.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}
