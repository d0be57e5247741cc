// Package stats derives dashboard aggregates from report and patient
// collections already returned by the backend. Nothing here performs I/O.
package stats

import (
	"strings"

	"github.com/vcscsvcscs/health-dashboard/pkg/model"
)

// StatusField selects which status label of a report is inspected
type StatusField string

const (
	BloodSugarStatus StatusField = "bloodSugarStatus"
	SystolicStatus   StatusField = "systolicStatus"
)

// Value returns the selected status label of a report
func (f StatusField) Value(r model.Report) string {
	switch f {
	case BloodSugarStatus:
		return r.BloodSugarStatus
	case SystolicStatus:
		return r.SystolicStatus
	default:
		return ""
	}
}

// StatusCounts holds the per-status counts shown on the reports screen
type StatusCounts struct {
	CriticalSugar    int `json:"criticalSugar"`
	HighSugar        int `json:"highSugar"`
	LowSugar         int `json:"lowSugar"`
	CriticalPressure int `json:"criticalPressure"`
	HighPressure     int `json:"highPressure"`
	LowPressure      int `json:"lowPressure"`
}

// CountUniquePatients returns the number of distinct patient ids.
// Reports without a patient, or whose patient has no id, are not counted.
func CountUniquePatients(reports []model.Report) int {
	seen := make(map[model.ID]struct{}, len(reports))
	for _, r := range reports {
		id := r.PatientID()
		if id.IsZero() {
			continue
		}
		seen[id] = struct{}{}
	}
	return len(seen)
}

// CountByStatus counts reports whose field exactly equals label
func CountByStatus(reports []model.Report, field StatusField, label string) int {
	count := 0
	for _, r := range reports {
		if field.Value(r) == label {
			count++
		}
	}
	return count
}

// CountCriticalPatients returns the number of distinct patients with at least
// one critical blood sugar or critical systolic reading
func CountCriticalPatients(reports []model.Report) int {
	seen := make(map[model.ID]struct{})
	for _, r := range reports {
		if r.BloodSugarStatus != model.StatusCritical && r.SystolicStatus != model.StatusCritical {
			continue
		}
		id := r.PatientID()
		if id.IsZero() {
			continue
		}
		seen[id] = struct{}{}
	}
	return len(seen)
}

// Breakdown computes all six status counts in one pass
func Breakdown(reports []model.Report) StatusCounts {
	var c StatusCounts
	for _, r := range reports {
		switch r.BloodSugarStatus {
		case model.StatusCritical:
			c.CriticalSugar++
		case model.StatusHigh:
			c.HighSugar++
		case model.StatusLow:
			c.LowSugar++
		}
		switch r.SystolicStatus {
		case model.StatusCritical:
			c.CriticalPressure++
		case model.StatusHigh:
			c.HighPressure++
		case model.StatusLow:
			c.LowPressure++
		}
	}
	return c
}

// IsFlagged reports whether a status label is one of the warning labels
func IsFlagged(status string) bool {
	return status == model.StatusCritical || status == model.StatusHigh || status == model.StatusLow
}

// DisplayStatus renders a status label as-is, or "-" when absent
func DisplayStatus(status string) string {
	if status == "" {
		return "-"
	}
	return status
}

// FilterPatients keeps patients whose name contains term (case-insensitive)
// or whose phone contains term (case-sensitive). An empty term keeps all.
// The result is always a fresh slice in source order.
func FilterPatients(patients []model.Patient, term string) []model.Patient {
	result := make([]model.Patient, 0, len(patients))
	needle := strings.ToLower(term)
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(p.Phone, term) {
			result = append(result, p)
		}
	}
	return result
}
