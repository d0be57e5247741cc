package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/health-dashboard/internal/audit"
	"github.com/vcscsvcscs/health-dashboard/internal/azure"
	"github.com/vcscsvcscs/health-dashboard/internal/export"
	"github.com/vcscsvcscs/health-dashboard/internal/gateway"
	"github.com/vcscsvcscs/health-dashboard/internal/service"
	"github.com/vcscsvcscs/health-dashboard/internal/store"
	"github.com/vcscsvcscs/health-dashboard/internal/view"
	"github.com/vcscsvcscs/health-dashboard/internal/window"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	testToken     = "tok-handler"
	testUserAgent = "health-dashboard-test/1.0"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	router   *gin.Engine
	backend  *http.ServeMux
	archive  *azure.MockBlobStorageClient
	registry *view.Registry
}

// acceptTokens answers like a backend that only knows the listed tokens
type acceptTokens []string

func (a acceptTokens) Verify(ctx context.Context, sess gateway.TokenSource) error {
	token, err := sess.Token()
	if err != nil || token == "" {
		return gateway.ErrUnauthenticated
	}
	if slices.Contains(a, token) {
		return nil
	}
	return &gateway.APIError{Status: http.StatusUnauthorized, Message: "invalid token", Method: http.MethodGet, Path: "/admin"}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	backend := http.NewServeMux()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client, err := gateway.NewClient(gateway.Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, logger)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	registry := view.NewRegistry(store.NewMemoryKV(), view.RegistryConfig{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	}, logger)
	auditor := audit.NewLogger(rdb, 100, logger)
	archive := azure.NewMockBlobStorageClient(logger)

	handlers := Handlers{
		Auth:      NewAuthHandler(service.NewAuthService(client, registry, logger), logger),
		Dashboard: NewDashboardHandler(service.NewDashboardService(client, logger), registry, logger),
		Report:    NewReportHandler(service.NewReportService(client, archive, time.UTC, logger), registry, logger),
		Patient:   NewPatientHandler(service.NewPatientService(client, auditor, logger), logger),
		Admin:     NewAdminHandler(service.NewAdminService(client, auditor, logger), logger),
		Audit:     NewAuditHandler(auditor, logger),
		Health:    NewHealthHandler(map[string]Pinger{"redis": store.NewRedisKV(rdb, "test:")}, logger),
		Verifier:  acceptTokens{testToken, "tok-a", "tok-b"},
	}

	return &testEnv{
		router:   NewRouter(handlers, RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}}, logger),
		backend:  backend,
		archive:  archive,
		registry: registry,
	}
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	return e.doAs(testToken, method, path, body)
}

func (e *testEnv) doAs(token, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", testUserAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func floatPtr(v float64) *float64 {
	return &v
}

func sampleReports() []model.Report {
	return []model.Report{
		{
			ID:               "1",
			Patient:          &model.Patient{ID: "p1", Name: "สมชาย"},
			BloodSugar:       floatPtr(250),
			BloodSugarStatus: model.StatusCritical,
			Systolic:         floatPtr(120),
			Diastolic:        floatPtr(80),
			MealTime:         model.MealTimeBefore,
			RecordedAt:       "2024-03-14T08:00:00Z",
		},
		{
			ID:             "2",
			Patient:        &model.Patient{ID: "p2", Name: "สมหญิง"},
			Systolic:       floatPtr(190),
			Diastolic:      floatPtr(110),
			SystolicStatus: model.StatusCritical,
			RecordedAt:     "2024-03-13T08:00:00Z",
		},
		{
			ID:         "3",
			Patient:    &model.Patient{ID: "p1", Name: "สมชาย"},
			BloodSugar: floatPtr(90),
			RecordedAt: "2024-03-12T08:00:00Z",
		},
	}
}

// serveDashboard registers the three dashboard endpoints. flagged replaces
// the flagged reports handler when set.
func (e *testEnv) serveDashboard(t *testing.T, flagged http.HandlerFunc) {
	if flagged == nil {
		flagged = func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, sampleReports()[:2])
		}
	}
	e.backend.HandleFunc("GET /reports/summary", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"highSugarToday": 4, "hba1c": 6.5})
	})
	e.backend.HandleFunc("GET /reports/high-sugar-high-pressure", flagged)
	e.backend.HandleFunc("GET /reports", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sampleReports())
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds model.Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "pw" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "tok-new"})
	})

	w := env.doAs("", http.MethodPost, "/api/v1/auth/login", model.Credentials{Username: "admin", Password: "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok-new", resp.Token)

	w = env.doAs("", http.MethodPost, "/api/v1/auth/login", model.Credentials{Username: "admin", Password: "bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, CodeUnauthenticated, decodeError(t, w).Code)
}

func TestLogin_EmptyCredentials(t *testing.T) {
	env := newTestEnv(t)
	called := false
	env.backend.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	w := env.doAs("", http.MethodPost, "/api/v1/auth/login", model.Credentials{Username: "admin"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, CodeValidation, resp.Code)
	assert.Equal(t, service.MessageCredentialsRequired, resp.Message)
	assert.False(t, called)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/dashboard", "/api/v1/reports", "/api/v1/patients", "/api/v1/admins", "/api/v1/audit"} {
		w := env.doAs("", http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestGetDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.serveDashboard(t, nil)

	w := env.do(http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Window           service.WindowView `json:"window"`
		Summary          map[string]any     `json:"summary"`
		CriticalPatients int                `json:"criticalPatients"`
		CriticalSugar    int                `json:"criticalSugar"`
		CriticalPressure int                `json:"criticalPressure"`
		UniquePatients   int                `json:"uniquePatients"`
		TotalReports     int                `json:"totalReports"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "2024-03-08", resp.Window.StartDate)
	assert.Equal(t, "2024-03-15", resp.Window.EndDate)
	assert.Equal(t, 2, resp.CriticalPatients)
	assert.Equal(t, 1, resp.CriticalSugar)
	assert.Equal(t, 1, resp.CriticalPressure)
	assert.Equal(t, 2, resp.UniquePatients)
	assert.Equal(t, 3, resp.TotalReports)
	assert.Equal(t, 6.5, resp.Summary["hba1c"])
	assert.EqualValues(t, 4, resp.Summary["highSugarToday"])

	latest := env.do(http.MethodGet, "/api/v1/dashboard/latest", nil)
	assert.Equal(t, http.StatusOK, latest.Code)
}

func TestGetDashboard_NoFlaggedReports(t *testing.T) {
	env := newTestEnv(t)
	env.serveDashboard(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
	})

	w := env.do(http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		FlaggedReports   []model.Report `json:"flaggedReports"`
		CriticalPatients int            `json:"criticalPatients"`
		HasFlagged       bool           `json:"hasFlagged"`
		TotalReports     int            `json:"totalReports"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.FlaggedReports)
	assert.Empty(t, resp.FlaggedReports)
	assert.Zero(t, resp.CriticalPatients)
	assert.False(t, resp.HasFlagged)
	assert.Equal(t, 3, resp.TotalReports)
}

func TestGetLatestDashboard_NotLoaded(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/dashboard/latest", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, w).Code)
}

func TestGetDashboard_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus int
		wantCode   string
	}{
		{name: "server error", status: http.StatusInternalServerError, wantStatus: http.StatusBadGateway, wantCode: CodeUpstream},
		{name: "forbidden", status: http.StatusForbidden, wantStatus: http.StatusForbidden, wantCode: CodeUpstream},
		{name: "expired token", status: http.StatusUnauthorized, wantStatus: http.StatusUnauthorized, wantCode: CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.serveDashboard(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, map[string]string{"error": "nope"})
			})

			w := env.do(http.MethodGet, "/api/v1/dashboard", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}

func TestWindowEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/dashboard/window", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"startDate":"2024-03-08","endDate":"2024-03-15"}`, w.Body.String())

	w = env.do(http.MethodPut, "/api/v1/dashboard/window", map[string]string{"startDate": "2024-03-01"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"startDate":"2024-03-01","endDate":"2024-03-15"}`, w.Body.String())

	w = env.do(http.MethodPut, "/api/v1/dashboard/window", map[string]string{"startDate": "2024-04-01"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, window.MessageStartAfterEnd, decodeError(t, w).Message)

	w = env.do(http.MethodPut, "/api/v1/dashboard/window", map[string]string{"endDate": "15/03/2024"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, window.MessageInvalidDate, decodeError(t, w).Message)

	w = env.do(http.MethodGet, "/api/v1/dashboard/window", nil)
	assert.JSONEq(t, `{"startDate":"2024-03-01","endDate":"2024-03-15"}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/v1/dashboard/window/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"startDate":"2024-03-08","endDate":"2024-03-15"}`, w.Body.String())
}

func TestWindowIsPerSession(t *testing.T) {
	env := newTestEnv(t)

	w := env.doAs("tok-a", http.MethodPut, "/api/v1/dashboard/window", map[string]string{"startDate": "2024-03-10"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.doAs("tok-b", http.MethodGet, "/api/v1/dashboard/window", nil)
	assert.JSONEq(t, `{"startDate":"2024-03-08","endDate":"2024-03-15"}`, w.Body.String())
}

func TestGetReports(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleFunc("GET /reports", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-03-08", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2024-03-15", r.URL.Query().Get("endDate"))
		writeJSON(w, http.StatusOK, sampleReports())
	})

	w := env.do(http.MethodGet, "/api/v1/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp service.ReportOverview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Reports, 3)
	assert.Len(t, resp.Rows, 3)
	assert.False(t, resp.Empty)
	assert.Equal(t, 1, resp.Counts.CriticalSugar)
	assert.Equal(t, 2, resp.UniquePatients)
}

func TestGetReports_Empty(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleFunc("GET /reports", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []model.Report{})
	})

	w := env.do(http.MethodGet, "/api/v1/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp service.ReportOverview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Empty)
	assert.Equal(t, service.MessageNoReports, resp.Message)
}

func TestExportReports(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleFunc("GET /reports", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-03-01", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2024-03-10", r.URL.Query().Get("endDate"))
		writeJSON(w, http.StatusOK, sampleReports())
	})

	w := env.do(http.MethodGet, "/api/v1/reports/export?startDate=2024-03-01&endDate=2024-03-10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Reports_2024-03-01_to_2024-03-10.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, w.Header().Get(ArchivePathHeader))
	assert.Len(t, env.archive.ListBlobs(), 1)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, export.Header[0], rows[0][0])
}

func TestDownloadArchivedExport(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleFunc("GET /reports", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sampleReports())
	})

	exported := env.do(http.MethodGet, "/api/v1/reports/export", nil)
	require.Equal(t, http.StatusOK, exported.Code)
	archivePath := exported.Header().Get(ArchivePathHeader)
	require.NotEmpty(t, archivePath)

	w := env.do(http.MethodGet, "/api/v1/reports/archive/"+archivePath, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, exported.Header().Get("Content-Disposition"), w.Header().Get("Content-Disposition"))
	assert.Equal(t, exported.Body.Bytes(), w.Body.Bytes())

	w = env.do(http.MethodGet, "/api/v1/reports/archive/exports/2024/03/15/missing_Reports.xlsx", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, w).Code)

	w = env.do(http.MethodGet, "/api/v1/reports/archive/other/file.xlsx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeValidation, decodeError(t, w).Code)

	w = env.doAs("forged", http.MethodGet, "/api/v1/reports/archive/"+archivePath, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExportReports_SingleBoundary(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantStart string
		wantEnd   string
	}{
		{name: "start only", query: "startDate=2024-03-10", wantStart: "2024-03-10", wantEnd: "2024-03-15"},
		{name: "end only", query: "endDate=2024-03-12", wantStart: "2024-03-08", wantEnd: "2024-03-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.backend.HandleFunc("GET /reports", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantStart, r.URL.Query().Get("startDate"))
				assert.Equal(t, tt.wantEnd, r.URL.Query().Get("endDate"))
				writeJSON(w, http.StatusOK, sampleReports())
			})

			w := env.do(http.MethodGet, "/api/v1/reports/export?"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			want := fmt.Sprintf(`attachment; filename="Reports_%s_to_%s.xlsx"`, tt.wantStart, tt.wantEnd)
			assert.Equal(t, want, w.Header().Get("Content-Disposition"))
		})
	}

	t.Run("start past the stored end", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(http.MethodGet, "/api/v1/reports/export?startDate=2024-03-20", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, window.MessageStartAfterEnd, decodeError(t, w).Message)
	})
}

func TestExportReports_InvalidWindow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/reports/export?startDate=2024-03-10&endDate=2024-03-01", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, window.MessageStartAfterEnd, decodeError(t, w).Message)
}

func TestGetPatientReports(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleFunc("GET /reports/patient/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "p1", r.PathValue("id"))
		writeJSON(w, http.StatusOK, sampleReports()[:1])
	})

	w := env.do(http.MethodGet, "/api/v1/reports/patient/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reports []model.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reports))
	assert.Len(t, reports, 1)
}

func TestPatientEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleFunc("GET /patients", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []model.Patient{
			{ID: "1", Name: "สมชาย ใจดี", Phone: "0812345678"},
			{ID: "2", Name: "Jane Doe", Phone: "0899999999"},
		})
	})
	env.backend.HandleFunc("POST /patients", func(w http.ResponseWriter, r *http.Request) {
		var input model.PatientInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		writeJSON(w, http.StatusCreated, model.Patient{ID: "3", Name: input.Name, Gender: input.Gender, Age: input.Age, Phone: input.Phone})
	})
	env.backend.HandleFunc("DELETE /patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	w := env.do(http.MethodGet, "/api/v1/patients?q=jane", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var patients []model.Patient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patients))
	require.Len(t, patients, 1)
	assert.Equal(t, model.ID("2"), patients[0].ID)

	w = env.do(http.MethodPost, "/api/v1/patients", model.PatientInput{Name: "  New  ", Gender: "female", Age: 40, Phone: "0800000000"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodPost, "/api/v1/patients", model.PatientInput{Name: "No Phone", Gender: "male", Age: 30})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeValidation, decodeError(t, w).Code)

	w = env.do(http.MethodDelete, "/api/v1/patients/3", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/api/v1/audit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []audit.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, audit.OperationDelete, entries[0].OperationType)
	assert.Equal(t, audit.OperationCreate, entries[1].OperationType)
	assert.Equal(t, "3", entries[1].ResourceID)
}

func TestPatientUpdate_AcknowledgedWithoutBody(t *testing.T) {
	env := newTestEnv(t)
	applied := false
	env.backend.HandleFunc("PUT /patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		applied = true
		w.WriteHeader(http.StatusNoContent)
	})

	w := env.do(http.MethodPut, "/api/v1/patients/7", model.PatientInput{Name: "Malee", Gender: "female", Age: 54, Phone: "0899999999"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, applied)
	var patient model.Patient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patient))
	assert.Equal(t, model.ID("7"), patient.ID)
	assert.Equal(t, "Malee", patient.Name)

	w = env.do(http.MethodGet, "/api/v1/audit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []audit.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, audit.OperationUpdate, entries[0].OperationType)
	assert.Equal(t, "7", entries[0].ResourceID)
	assert.Equal(t, "192.0.2.1", entries[0].IPAddress)
	assert.Equal(t, testUserAgent, entries[0].UserAgent)
}

func TestPatientEndpoints_BadBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeValidation, decodeError(t, w).Code)
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleFunc("GET /admin", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []model.AdminAccount{{ID: "1", Username: "root"}})
	})
	env.backend.HandleFunc("PUT /admin/{id}", func(w http.ResponseWriter, r *http.Request) {
		var input model.AdminInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		writeJSON(w, http.StatusOK, model.AdminAccount{ID: model.ID(r.PathValue("id")), Username: input.Username})
	})

	w := env.do(http.MethodGet, "/api/v1/admins", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"username":"root"}]`, w.Body.String())

	w = env.do(http.MethodPost, "/api/v1/admins", model.AdminInput{Username: "ops"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPut, "/api/v1/admins/1", model.AdminInput{Username: "renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"username":"renamed"}`, w.Body.String())
}

func TestLocalStateRoutesRejectUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleFunc("DELETE /patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	w := env.do(http.MethodDelete, "/api/v1/patients/9", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	before := env.registry.Len()

	requests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/v1/audit", nil},
		{http.MethodGet, "/api/v1/dashboard/latest", nil},
		{http.MethodGet, "/api/v1/dashboard/window", nil},
		{http.MethodPut, "/api/v1/dashboard/window", map[string]string{"startDate": "2024-03-10"}},
		{http.MethodPost, "/api/v1/dashboard/window/reset", nil},
	}
	for _, req := range requests {
		w := env.doAs("not-a-real-token", req.method, req.path, req.body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, req.path)
		assert.Equal(t, CodeUnauthenticated, decodeError(t, w).Code, req.path)
		assert.NotContains(t, w.Body.String(), `"resourceId"`, req.path)
	}
	assert.Equal(t, before, env.registry.Len())

	w = env.do(http.MethodGet, "/api/v1/audit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"resourceId":"9"`)
}

func TestAuditEndpoint_InvalidLimit(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/audit?limit=abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.doAs("", http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"ok"`)
}

func TestHealth_Degraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(map[string]Pinger{
		"redis": pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
	}, zap.NewNop())

	router := gin.New()
	router.GET("/health", h.GetHealth)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), `"redis":"unavailable"`)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPut, "/api/v1/dashboard/window", map[string]string{"startDate": "2024-03-10"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/api/v1/dashboard/window", nil)
	assert.JSONEq(t, `{"startDate":"2024-03-08","endDate":"2024-03-15"}`, w.Body.String())
}
