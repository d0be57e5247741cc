package service

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vcscsvcscs/health-dashboard/internal/audit"
	"github.com/vcscsvcscs/health-dashboard/internal/gateway"
	"github.com/vcscsvcscs/health-dashboard/internal/window"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
)

// MockGateway is a mock implementation of every backend interface
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Login(ctx context.Context, creds model.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) VerifySession(ctx context.Context, sess gateway.TokenSource) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *MockGateway) ListReports(ctx context.Context, sess gateway.TokenSource, w *window.Window) ([]model.Report, error) {
	args := m.Called(ctx, sess, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Report), args.Error(1)
}

func (m *MockGateway) ListPatientReports(ctx context.Context, sess gateway.TokenSource, patientID model.ID) ([]model.Report, error) {
	args := m.Called(ctx, sess, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Report), args.Error(1)
}

func (m *MockGateway) GetSummary(ctx context.Context, sess gateway.TokenSource, w *window.Window) (*model.SummaryStats, error) {
	args := m.Called(ctx, sess, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SummaryStats), args.Error(1)
}

func (m *MockGateway) ListFlaggedReports(ctx context.Context, sess gateway.TokenSource, w *window.Window) ([]model.Report, error) {
	args := m.Called(ctx, sess, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Report), args.Error(1)
}

func (m *MockGateway) ListPatients(ctx context.Context, sess gateway.TokenSource) ([]model.Patient, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Patient), args.Error(1)
}

func (m *MockGateway) GetPatient(ctx context.Context, sess gateway.TokenSource, id model.ID) (*model.Patient, error) {
	args := m.Called(ctx, sess, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *MockGateway) CreatePatient(ctx context.Context, sess gateway.TokenSource, input model.PatientInput) (*model.Patient, error) {
	args := m.Called(ctx, sess, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *MockGateway) UpdatePatient(ctx context.Context, sess gateway.TokenSource, id model.ID, input model.PatientInput) (*model.Patient, error) {
	args := m.Called(ctx, sess, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *MockGateway) DeletePatient(ctx context.Context, sess gateway.TokenSource, id model.ID) error {
	args := m.Called(ctx, sess, id)
	return args.Error(0)
}

func (m *MockGateway) ListAdmins(ctx context.Context, sess gateway.TokenSource) ([]model.AdminAccount, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AdminAccount), args.Error(1)
}

func (m *MockGateway) CreateAdmin(ctx context.Context, sess gateway.TokenSource, input model.AdminInput) (*model.AdminAccount, error) {
	args := m.Called(ctx, sess, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminAccount), args.Error(1)
}

func (m *MockGateway) UpdateAdmin(ctx context.Context, sess gateway.TokenSource, id model.ID, input model.AdminInput) (*model.AdminAccount, error) {
	args := m.Called(ctx, sess, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminAccount), args.Error(1)
}

func (m *MockGateway) DeleteAdmin(ctx context.Context, sess gateway.TokenSource, id model.ID) error {
	args := m.Called(ctx, sess, id)
	return args.Error(0)
}

// MockAuditor is a mock implementation of AuditorInterface
type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) Record(ctx context.Context, actor string, op audit.OperationType, resource audit.ResourceType, resourceID string) error {
	args := m.Called(ctx, actor, op, resource, resourceID)
	return args.Error(0)
}

// MockSession is a mock implementation of SessionInterface
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Token() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockSession) Key() string {
	return m.Called().String(0)
}

func (m *MockSession) Login(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockSession) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockForgetter is a mock implementation of WorkspaceForgetter
type MockForgetter struct {
	mock.Mock
}

func (m *MockForgetter) Forget(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type bearer string

func (b bearer) Token() (string, error) {
	return string(b), nil
}

func floatPtr(v float64) *float64 {
	return &v
}

func report(id, patientID, sugarStatus, systolicStatus string) model.Report {
	r := model.Report{
		ID:               model.ID(id),
		BloodSugar:       floatPtr(120),
		BloodSugarStatus: sugarStatus,
		Systolic:         floatPtr(130),
		Diastolic:        floatPtr(85),
		SystolicStatus:   systolicStatus,
		MealTime:         model.MealTimeBefore,
		RecordedAt:       "2025-06-07T09:10:00Z",
	}
	if patientID != "" {
		r.Patient = &model.Patient{ID: model.ID(patientID), Name: "P" + patientID}
	}
	return r
}
