package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque backend identifier. The backend emits it either as a JSON
// string or a JSON number; null decodes to the empty ID.
type ID string

// IsZero reports whether the identifier is absent
func (id ID) IsZero() bool {
	return id == ""
}

// String returns the identifier as text
func (id ID) String() string {
	return string(id)
}

// UnmarshalJSON accepts strings, numbers and null
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits numeric identifiers as numbers so they round-trip unchanged
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Patient represents a patient record owned by the backend
type Patient struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Age    int    `json:"age"`
	Phone  string `json:"phone"`
}

// PatientInput is the body for creating or updating a patient
type PatientInput struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Age    int    `json:"age"`
	Phone  string `json:"phone"`
}

// Blood sugar and blood pressure status labels assigned by the backend
const (
	StatusHigh     = "สูง"
	StatusLow      = "ต่ำ"
	StatusCritical = "เสี่ยงสูง"
)

// Meal time values recorded with a measurement
const (
	MealTimeBefore = "before"
	MealTimeAfter  = "after"
	MealTimeOther  = "other"
)

// Report represents one recorded health measurement
type Report struct {
	ID               ID       `json:"id"`
	Patient          *Patient `json:"patient,omitempty"`
	BloodSugar       *float64 `json:"bloodSugar,omitempty"`
	BloodSugarStatus string   `json:"bloodSugarStatus,omitempty"`
	Systolic         *float64 `json:"systolic,omitempty"`
	Diastolic        *float64 `json:"diastolic,omitempty"`
	SystolicStatus   string   `json:"systolicStatus,omitempty"`
	MealTime         string   `json:"mealTime,omitempty"`
	RecordedAt       string   `json:"recordedAt"`
}

// PatientID returns the embedded patient's identifier, or the empty ID
func (r Report) PatientID() ID {
	if r.Patient == nil {
		return ""
	}
	return r.Patient.ID
}

// AdminAccount represents a dashboard administrator
type AdminAccount struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
}

// AdminInput is the body for creating or updating an administrator.
// Password is write-only and never returned by the backend.
type AdminInput struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

// Credentials are submitted to the backend login endpoint
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by the backend login endpoint
type LoginResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the error body returned by the dashboard server
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}
