package model

import "fmt"

// Warning is one entry in the run's warnings sink: font fallbacks, NOOPs,
// style-alias resolutions, clamped heading levels, and similar
// non-fatal events. Warnings never change a run's status.
type Warning struct {
	Stage   string `json:"stage"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s: %s", w.Stage, w.Code, w.Message)
}

// WarningSink accumulates warnings across stages for later rendering into
// warnings.log by the Auditor.
type WarningSink struct {
	warnings []Warning
}

// NewWarningSink returns an empty sink.
func NewWarningSink() *WarningSink {
	return &WarningSink{}
}

// Add records one warning.
func (s *WarningSink) Add(stage, code, format string, args ...any) {
	s.warnings = append(s.warnings, Warning{Stage: stage, Code: code, Message: fmt.Sprintf(format, args...)})
}

// All returns every warning recorded so far, in emission order.
func (s *WarningSink) All() []Warning {
	return s.warnings
}

// Len returns the number of warnings recorded.
func (s *WarningSink) Len() int {
	return len(s.warnings)
}
