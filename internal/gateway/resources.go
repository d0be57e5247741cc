package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/vcscsvcscs/health-dashboard/internal/window"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
)

// Login exchanges credentials for a bearer token; it needs no session
func (c *Client) Login(ctx context.Context, creds model.Credentials) (string, error) {
	var resp model.LoginResponse
	if err := c.do(ctx, "", call{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   creds,
		result: &resp,
	}); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// VerifySession checks that the backend still accepts the session's token.
// It reads the admin list and discards the body.
func (c *Client) VerifySession(ctx context.Context, sess TokenSource) error {
	return c.authorized(ctx, sess, call{method: http.MethodGet, path: "/admin"})
}

// ListPatients returns every patient
func (c *Client) ListPatients(ctx context.Context, sess TokenSource) ([]model.Patient, error) {
	var patients []model.Patient
	err := c.authorized(ctx, sess, call{method: http.MethodGet, path: "/patients", result: &patients})
	return patients, err
}

// GetPatient returns one patient
func (c *Client) GetPatient(ctx context.Context, sess TokenSource, id model.ID) (*model.Patient, error) {
	var patient model.Patient
	if err := c.authorized(ctx, sess, call{
		method:     http.MethodGet,
		path:       "/patients/{id}",
		pathParams: map[string]string{"id": id.String()},
		result:     &patient,
	}); err != nil {
		return nil, err
	}
	return &patient, nil
}

// CreatePatient creates a patient and returns the stored record
func (c *Client) CreatePatient(ctx context.Context, sess TokenSource, input model.PatientInput) (*model.Patient, error) {
	var patient model.Patient
	if err := c.authorized(ctx, sess, call{
		method: http.MethodPost,
		path:   "/patients",
		body:   input,
		result: &patient,
	}); err != nil {
		if errors.Is(err, ErrEmptyBody) {
			return patientFromInput("", input), nil
		}
		return nil, err
	}
	return &patient, nil
}

// UpdatePatient replaces a patient's fields
func (c *Client) UpdatePatient(ctx context.Context, sess TokenSource, id model.ID, input model.PatientInput) (*model.Patient, error) {
	var patient model.Patient
	if err := c.authorized(ctx, sess, call{
		method:     http.MethodPut,
		path:       "/patients/{id}",
		pathParams: map[string]string{"id": id.String()},
		body:       input,
		result:     &patient,
	}); err != nil {
		if errors.Is(err, ErrEmptyBody) {
			return patientFromInput(id, input), nil
		}
		return nil, err
	}
	return &patient, nil
}

// DeletePatient removes a patient
func (c *Client) DeletePatient(ctx context.Context, sess TokenSource, id model.ID) error {
	return c.authorized(ctx, sess, call{
		method:     http.MethodDelete,
		path:       "/patients/{id}",
		pathParams: map[string]string{"id": id.String()},
	})
}

// ListReports returns reports recorded inside w, or all reports when w is nil
func (c *Client) ListReports(ctx context.Context, sess TokenSource, w *window.Window) ([]model.Report, error) {
	var reports []model.Report
	err := c.authorized(ctx, sess, call{
		method: http.MethodGet,
		path:   "/reports",
		query:  windowParams(w),
		result: &reports,
	})
	return reports, err
}

// ListPatientReports returns every report of one patient
func (c *Client) ListPatientReports(ctx context.Context, sess TokenSource, patientID model.ID) ([]model.Report, error) {
	var reports []model.Report
	err := c.authorized(ctx, sess, call{
		method:     http.MethodGet,
		path:       "/reports/patient/{id}",
		pathParams: map[string]string{"id": patientID.String()},
		result:     &reports,
	})
	return reports, err
}

// GetSummary returns the backend-computed summary for w
func (c *Client) GetSummary(ctx context.Context, sess TokenSource, w *window.Window) (*model.SummaryStats, error) {
	var summary model.SummaryStats
	if err := c.authorized(ctx, sess, call{
		method: http.MethodGet,
		path:   "/reports/summary",
		query:  windowParams(w),
		result: &summary,
	}); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListFlaggedReports returns reports with high sugar or high pressure inside w
func (c *Client) ListFlaggedReports(ctx context.Context, sess TokenSource, w *window.Window) ([]model.Report, error) {
	var reports []model.Report
	err := c.authorized(ctx, sess, call{
		method: http.MethodGet,
		path:   "/reports/high-sugar-high-pressure",
		query:  windowParams(w),
		result: &reports,
	})
	return reports, err
}

// ListAdmins returns every administrator account
func (c *Client) ListAdmins(ctx context.Context, sess TokenSource) ([]model.AdminAccount, error) {
	var admins []model.AdminAccount
	err := c.authorized(ctx, sess, call{method: http.MethodGet, path: "/admin", result: &admins})
	return admins, err
}

// CreateAdmin creates an administrator account
func (c *Client) CreateAdmin(ctx context.Context, sess TokenSource, input model.AdminInput) (*model.AdminAccount, error) {
	var admin model.AdminAccount
	if err := c.authorized(ctx, sess, call{
		method: http.MethodPost,
		path:   "/admin",
		body:   input,
		result: &admin,
	}); err != nil {
		if errors.Is(err, ErrEmptyBody) {
			return &model.AdminAccount{Username: input.Username}, nil
		}
		return nil, err
	}
	return &admin, nil
}

// UpdateAdmin changes an administrator's username or password
func (c *Client) UpdateAdmin(ctx context.Context, sess TokenSource, id model.ID, input model.AdminInput) (*model.AdminAccount, error) {
	var admin model.AdminAccount
	if err := c.authorized(ctx, sess, call{
		method:     http.MethodPut,
		path:       "/admin/{id}",
		pathParams: map[string]string{"id": id.String()},
		body:       input,
		result:     &admin,
	}); err != nil {
		if errors.Is(err, ErrEmptyBody) {
			return &model.AdminAccount{ID: id, Username: input.Username}, nil
		}
		return nil, err
	}
	return &admin, nil
}

// DeleteAdmin removes an administrator account
func (c *Client) DeleteAdmin(ctx context.Context, sess TokenSource, id model.ID) error {
	return c.authorized(ctx, sess, call{
		method:     http.MethodDelete,
		path:       "/admin/{id}",
		pathParams: map[string]string{"id": id.String()},
	})
}

// patientFromInput stands in for the stored record when a mutation is
// acknowledged without a body
func patientFromInput(id model.ID, input model.PatientInput) *model.Patient {
	return &model.Patient{
		ID:     id,
		Name:   input.Name,
		Gender: input.Gender,
		Age:    input.Age,
		Phone:  input.Phone,
	}
}

func windowParams(w *window.Window) map[string]string {
	if w == nil {
		return nil
	}
	return w.Params()
}
