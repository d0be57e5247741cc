package integration_tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
)

// fakeBackend is a small stateful stand-in for the health REST backend
type fakeBackend struct {
	token    string
	mu       sync.Mutex
	patients map[model.ID]model.Patient
	nextID   int
	reports  []model.Report
	admins   []model.AdminAccount

	// summaryGate, when set, blocks the summary endpoint until it is closed
	summaryGate chan struct{}
	summaryHit  chan struct{}
	queries     []string
}

func newFakeBackend(t *testing.T) (*fakeBackend, string) {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "1",
		"username": "admin",
	}).SignedString([]byte("integration-secret"))
	require.NoError(t, err)

	b := &fakeBackend{
		token:    token,
		patients: map[model.ID]model.Patient{},
		nextID:   100,
		admins:   []model.AdminAccount{{ID: "1", Username: "admin"}},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("GET /reports", b.authorized(b.listReports))
	mux.HandleFunc("GET /reports/summary", b.authorized(b.summary))
	mux.HandleFunc("GET /reports/high-sugar-high-pressure", b.authorized(b.flagged))
	mux.HandleFunc("GET /reports/patient/{id}", b.authorized(b.patientReports))
	mux.HandleFunc("GET /patients", b.authorized(b.listPatients))
	mux.HandleFunc("GET /patients/{id}", b.authorized(b.getPatient))
	mux.HandleFunc("POST /patients", b.authorized(b.createPatient))
	mux.HandleFunc("PUT /patients/{id}", b.authorized(b.updatePatient))
	mux.HandleFunc("DELETE /patients/{id}", b.authorized(b.deletePatient))
	mux.HandleFunc("GET /admin", b.authorized(b.listAdmins))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv.URL
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (b *fakeBackend) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+b.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		next(w, r)
	}
}

func (b *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Username != "admin" || creds.Password != "secret" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, model.LoginResponse{Token: b.token})
}

// inWindow keeps reports whose date falls inside the requested range
func (b *fakeBackend) inWindow(r *http.Request) []model.Report {
	start, end := r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate")

	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, start+".."+end)

	out := []model.Report{}
	for _, rep := range b.reports {
		day := rep.RecordedAt[:10]
		if (start == "" || day >= start) && (end == "" || day <= end) {
			out = append(out, rep)
		}
	}
	return out
}

func (b *fakeBackend) listReports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.inWindow(r))
}

func (b *fakeBackend) summary(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	gate, hit := b.summaryGate, b.summaryHit
	b.mu.Unlock()
	if gate != nil {
		if hit != nil {
			hit <- struct{}{}
		}
		<-gate
	}

	reports := b.inWindow(r)
	high := 0
	for _, rep := range reports {
		if rep.BloodSugarStatus == model.StatusHigh || rep.BloodSugarStatus == model.StatusCritical {
			high++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		model.SummaryHighSugarToday: high,
		"medicationCompliance":      0.92,
	})
}

func (b *fakeBackend) flagged(w http.ResponseWriter, r *http.Request) {
	out := []model.Report{}
	for _, rep := range b.inWindow(r) {
		if rep.BloodSugarStatus == model.StatusCritical || rep.SystolicStatus == model.StatusCritical {
			out = append(out, rep)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *fakeBackend) patientReports(w http.ResponseWriter, r *http.Request) {
	id := model.ID(r.PathValue("id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.Report{}
	for _, rep := range b.reports {
		if rep.PatientID() == id {
			out = append(out, rep)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *fakeBackend) listPatients(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Patient, 0, len(b.patients))
	for _, p := range b.patients {
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *fakeBackend) getPatient(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.patients[model.ID(r.PathValue("id"))]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "patient not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *fakeBackend) createPatient(w http.ResponseWriter, r *http.Request) {
	var input model.PatientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	p := model.Patient{
		ID:     model.ID(strconv.Itoa(b.nextID)),
		Name:   input.Name,
		Gender: input.Gender,
		Age:    input.Age,
		Phone:  input.Phone,
	}
	b.patients[p.ID] = p
	writeJSON(w, http.StatusCreated, p)
}

func (b *fakeBackend) updatePatient(w http.ResponseWriter, r *http.Request) {
	var input model.PatientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	id := model.ID(r.PathValue("id"))
	if _, ok := b.patients[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "patient not found"})
		return
	}
	p := model.Patient{ID: id, Name: input.Name, Gender: input.Gender, Age: input.Age, Phone: input.Phone}
	b.patients[id] = p
	writeJSON(w, http.StatusOK, p)
}

func (b *fakeBackend) deletePatient(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.patients, model.ID(r.PathValue("id")))
	w.WriteHeader(http.StatusNoContent)
}

func (b *fakeBackend) listAdmins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.admins)
}

func (b *fakeBackend) queried(window string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, q := range b.queries {
		if strings.EqualFold(q, window) {
			return true
		}
	}
	return false
}
