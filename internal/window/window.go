// Package window holds the inclusive calendar-date range used to scope
// report queries.
package window

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of window boundaries
const DateLayout = "2006-01-02"

// DefaultDays is how many days back the default window starts
const DefaultDays = 7

// Validation messages shown to the user when an update is rejected
const (
	MessageStartAfterEnd  = "วันที่เริ่มต้นต้องไม่เกินวันที่สิ้นสุด"
	MessageEndBeforeStart = "วันที่สิ้นสุดต้องไม่น้อยกว่าวันที่เริ่มต้น"
	MessageInvalidDate    = "รูปแบบวันที่ไม่ถูกต้อง"
)

// ValidationError is returned when a window update is rejected
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Window is an inclusive range of calendar dates.
// Boundaries are kept truncated to midnight in their own location.
type Window struct {
	Start time.Time
	End   time.Time
}

// Default returns the window covering the last seven days up to now
func Default(now time.Time) Window {
	return Window{
		Start: truncate(now.AddDate(0, 0, -DefaultDays)),
		End:   truncate(now),
	}
}

// New creates a window and rejects start dates after the end date
func New(start, end time.Time) (Window, error) {
	w := Window{Start: truncate(start), End: truncate(end)}
	if w.Start.After(w.End) {
		return Window{}, &ValidationError{Field: "startDate", Message: MessageStartAfterEnd}
	}
	return w, nil
}

// Parse builds a window from YYYY-MM-DD strings in loc
func Parse(start, end string, loc *time.Location) (Window, error) {
	s, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return Window{}, &ValidationError{Field: "startDate", Message: MessageInvalidDate}
	}
	e, err := time.ParseInLocation(DateLayout, end, loc)
	if err != nil {
		return Window{}, &ValidationError{Field: "endDate", Message: MessageInvalidDate}
	}
	return New(s, e)
}

// SetStart moves the start date. An update that would put start after end
// is rejected and the window is left unchanged.
func (w *Window) SetStart(start time.Time) error {
	start = truncate(start)
	if start.After(w.End) {
		return &ValidationError{Field: "startDate", Message: MessageStartAfterEnd}
	}
	w.Start = start
	return nil
}

// SetEnd moves the end date. An update that would put end before start
// is rejected and the window is left unchanged.
func (w *Window) SetEnd(end time.Time) error {
	end = truncate(end)
	if end.Before(w.Start) {
		return &ValidationError{Field: "endDate", Message: MessageEndBeforeStart}
	}
	w.End = end
	return nil
}

// StartParam returns the start date as sent to the backend
func (w Window) StartParam() string {
	return w.Start.Format(DateLayout)
}

// EndParam returns the end date as sent to the backend
func (w Window) EndParam() string {
	return w.End.Format(DateLayout)
}

// Params returns the backend query parameters for the window
func (w Window) Params() map[string]string {
	return map[string]string{
		"startDate": w.StartParam(),
		"endDate":   w.EndParam(),
	}
}

// String renders the window for logs
func (w Window) String() string {
	return fmt.Sprintf("%s to %s", w.StartParam(), w.EndParam())
}

// truncate drops the time of day, keeping the calendar date of t's location
func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
