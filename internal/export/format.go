package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/vcscsvcscs/health-dashboard/internal/stats"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
)

// Placeholders used in exported rows
const (
	Missing            = "-"
	UnspecifiedPatient = "ไม่ระบุ"
)

// buddhistEraOffset converts a Gregorian year to the Thai solar calendar
const buddhistEraOffset = 543

var mealTimeLabels = map[string]string{
	model.MealTimeBefore: "ก่อนอาหาร",
	model.MealTimeAfter:  "หลังอาหาร",
	model.MealTimeOther:  "อื่นๆ",
}

// recordedAtLayouts are tried in order when parsing a report timestamp
var recordedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FormatMealTime returns the Thai label for a meal-time value, or "-"
func FormatMealTime(mealTime string) string {
	if label, ok := mealTimeLabels[mealTime]; ok {
		return label
	}
	return Missing
}

// FormatNumber renders a measurement. Absent and zero values render as "-".
func FormatNumber(v *float64) string {
	if v == nil || *v == 0 {
		return Missing
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FormatPressure renders the composite "systolic/diastolic" column
func FormatPressure(systolic, diastolic *float64) string {
	return FormatNumber(systolic) + "/" + FormatNumber(diastolic)
}

// FormatTimestamp renders recordedAt as dd/MM/yyyy HH:mm in loc with a
// Buddhist-era year. Unparseable input renders as "-".
func FormatTimestamp(recordedAt string, loc *time.Location) string {
	t, ok := ParseRecordedAt(recordedAt, loc)
	if !ok {
		return Missing
	}
	t = t.In(loc)
	return fmt.Sprintf("%02d/%02d/%d %02d:%02d",
		t.Day(), int(t.Month()), t.Year()+buddhistEraOffset, t.Hour(), t.Minute())
}

// ParseRecordedAt parses a report timestamp. Values without an offset are
// read in loc; date-only values are read as UTC midnight.
func ParseRecordedAt(recordedAt string, loc *time.Location) (time.Time, bool) {
	if recordedAt == "" {
		return time.Time{}, false
	}
	for _, layout := range recordedAtLayouts {
		if t, err := time.ParseInLocation(layout, recordedAt, loc); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse("2006-01-02", recordedAt); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Row is one flattened, display-formatted report
type Row struct {
	PatientName      string `json:"patientName"`
	BloodSugar       string `json:"bloodSugar"`
	BloodSugarStatus string `json:"bloodSugarStatus"`
	Pressure         string `json:"pressure"`
	PressureStatus   string `json:"pressureStatus"`
	MealTime         string `json:"mealTime"`
	RecordedAt       string `json:"recordedAt"`

	sugar *float64
}

// NewRow flattens a report
func NewRow(r model.Report, loc *time.Location) Row {
	name := UnspecifiedPatient
	if r.Patient != nil && r.Patient.Name != "" {
		name = r.Patient.Name
	}

	row := Row{
		PatientName:      name,
		BloodSugar:       FormatNumber(r.BloodSugar),
		BloodSugarStatus: stats.DisplayStatus(r.BloodSugarStatus),
		Pressure:         FormatPressure(r.Systolic, r.Diastolic),
		PressureStatus:   stats.DisplayStatus(r.SystolicStatus),
		MealTime:         FormatMealTime(r.MealTime),
		RecordedAt:       FormatTimestamp(r.RecordedAt, loc),
	}
	if row.BloodSugar != Missing {
		row.sugar = r.BloodSugar
	}
	return row
}

// BuildRows flattens reports in input order without filtering or sorting
func BuildRows(reports []model.Report, loc *time.Location) []Row {
	rows := make([]Row, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, NewRow(r, loc))
	}
	return rows
}

// cells returns the row as spreadsheet values; blood sugar stays numeric when present
func (r Row) cells() []any {
	var sugar any = r.BloodSugar
	if r.sugar != nil {
		sugar = *r.sugar
	}
	return []any{
		r.PatientName,
		sugar,
		r.BloodSugarStatus,
		r.Pressure,
		r.PressureStatus,
		r.MealTime,
		r.RecordedAt,
	}
}
