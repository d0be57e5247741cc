package model

import (
	"encoding/json"
	"fmt"
)

// Keys of the counts the dashboard renders from the backend summary
const (
	SummaryHighSugarToday    = "highSugarToday"
	SummaryLowSugarToday     = "lowSugarToday"
	SummaryHighPressureToday = "highPressureToday"
	SummaryLowPressureToday  = "lowPressureToday"
)

// SummaryStats is the backend-computed aggregate for a date window.
// It is pass-through data. The known counts are decoded for display, and
// every field, known or not, is kept and re-emitted verbatim.
type SummaryStats struct {
	HighSugarToday    int
	LowSugarToday     int
	HighPressureToday int
	LowPressureToday  int

	fields map[string]json.RawMessage
}

// UnmarshalJSON decodes the known counts and retains all fields
func (s *SummaryStats) UnmarshalJSON(data []byte) error {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to decode summary stats: %w", err)
	}

	s.fields = fields
	s.HighSugarToday = countField(fields, SummaryHighSugarToday)
	s.LowSugarToday = countField(fields, SummaryLowSugarToday)
	s.HighPressureToday = countField(fields, SummaryHighPressureToday)
	s.LowPressureToday = countField(fields, SummaryLowPressureToday)
	return nil
}

// MarshalJSON emits the fields exactly as the backend sent them. Changes to
// the typed counts are not written back. A value that was never decoded
// emits its counts.
func (s SummaryStats) MarshalJSON() ([]byte, error) {
	if s.fields != nil {
		return json.Marshal(s.fields)
	}
	return json.Marshal(map[string]int{
		SummaryHighSugarToday:    s.HighSugarToday,
		SummaryLowSugarToday:     s.LowSugarToday,
		SummaryHighPressureToday: s.HighPressureToday,
		SummaryLowPressureToday:  s.LowPressureToday,
	})
}

// IsEmpty reports whether the backend returned no fields at all
func (s SummaryStats) IsEmpty() bool {
	return len(s.fields) == 0
}

// Field returns a raw pass-through field
func (s SummaryStats) Field(key string) (json.RawMessage, bool) {
	v, ok := s.fields[key]
	return v, ok
}

// countField reads a numeric field, treating missing or non-numeric values as zero
func countField(fields map[string]json.RawMessage, key string) int {
	raw, ok := fields[key]
	if !ok {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	return int(n)
}
