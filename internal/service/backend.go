package service

import (
	"context"

	"github.com/vcscsvcscs/health-dashboard/internal/audit"
	"github.com/vcscsvcscs/health-dashboard/internal/gateway"
	"github.com/vcscsvcscs/health-dashboard/internal/session"
	"github.com/vcscsvcscs/health-dashboard/internal/window"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
)

// AuthGatewayInterface is the backend surface used for logging in
type AuthGatewayInterface interface {
	Login(ctx context.Context, creds model.Credentials) (string, error)
	VerifySession(ctx context.Context, sess gateway.TokenSource) error
}

// ReportGatewayInterface is the backend surface used by the dashboard and reports screens
type ReportGatewayInterface interface {
	ListReports(ctx context.Context, sess gateway.TokenSource, w *window.Window) ([]model.Report, error)
	ListPatientReports(ctx context.Context, sess gateway.TokenSource, patientID model.ID) ([]model.Report, error)
	GetSummary(ctx context.Context, sess gateway.TokenSource, w *window.Window) (*model.SummaryStats, error)
	ListFlaggedReports(ctx context.Context, sess gateway.TokenSource, w *window.Window) ([]model.Report, error)
}

// PatientGatewayInterface is the backend surface used for patient management
type PatientGatewayInterface interface {
	ListPatients(ctx context.Context, sess gateway.TokenSource) ([]model.Patient, error)
	GetPatient(ctx context.Context, sess gateway.TokenSource, id model.ID) (*model.Patient, error)
	CreatePatient(ctx context.Context, sess gateway.TokenSource, input model.PatientInput) (*model.Patient, error)
	UpdatePatient(ctx context.Context, sess gateway.TokenSource, id model.ID, input model.PatientInput) (*model.Patient, error)
	DeletePatient(ctx context.Context, sess gateway.TokenSource, id model.ID) error
}

// AdminGatewayInterface is the backend surface used for administrator accounts
type AdminGatewayInterface interface {
	ListAdmins(ctx context.Context, sess gateway.TokenSource) ([]model.AdminAccount, error)
	CreateAdmin(ctx context.Context, sess gateway.TokenSource, input model.AdminInput) (*model.AdminAccount, error)
	UpdateAdmin(ctx context.Context, sess gateway.TokenSource, id model.ID, input model.AdminInput) (*model.AdminAccount, error)
	DeleteAdmin(ctx context.Context, sess gateway.TokenSource, id model.ID) error
}

// AuditorInterface records administrative changes
type AuditorInterface interface {
	Record(ctx context.Context, actor string, op audit.OperationType, resource audit.ResourceType, resourceID string) error
}

// actorOf names the user behind a session for audit entries
func actorOf(sess gateway.TokenSource) string {
	if sess == nil {
		return "unknown"
	}
	token, err := sess.Token()
	if err != nil || token == "" {
		return "unknown"
	}
	if info, ok := session.Inspect(token); ok {
		if info.Username != "" {
			return info.Username
		}
		if info.Subject != "" {
			return info.Subject
		}
	}
	return "unknown"
}
