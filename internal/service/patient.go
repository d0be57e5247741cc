package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vcscsvcscs/health-dashboard/internal/audit"
	"github.com/vcscsvcscs/health-dashboard/internal/gateway"
	"github.com/vcscsvcscs/health-dashboard/internal/stats"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
	"go.uber.org/zap"
)

// PatientService manages patient records
type PatientService struct {
	gateway PatientGatewayInterface
	auditor AuditorInterface
	logger  *zap.Logger
}

// NewPatientService creates a new PatientService. auditor may be nil.
func NewPatientService(gw PatientGatewayInterface, auditor AuditorInterface, logger *zap.Logger) *PatientService {
	return &PatientService{
		gateway: gw,
		auditor: auditor,
		logger:  logger,
	}
}

// List fetches all patients and keeps those matching term
func (s *PatientService) List(ctx context.Context, sess gateway.TokenSource, term string) ([]model.Patient, error) {
	patients, err := s.gateway.ListPatients(ctx, sess)
	if errors.Is(err, gateway.ErrEmptyBody) {
		patients, err = []model.Patient{}, nil
	}
	if err != nil {
		s.logger.Error("failed to list patients", zap.Error(err))
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	return stats.FilterPatients(patients, term), nil
}

// Get returns one patient
func (s *PatientService) Get(ctx context.Context, sess gateway.TokenSource, id model.ID) (*model.Patient, error) {
	if id.IsZero() {
		return nil, &ValidationError{Field: "id", Message: MessageIDRequired}
	}

	patient, err := s.gateway.GetPatient(ctx, sess, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// Create validates and creates a patient
func (s *PatientService) Create(ctx context.Context, sess gateway.TokenSource, input model.PatientInput) (*model.Patient, error) {
	input = normalizePatient(input)
	if err := ValidatePatient(input); err != nil {
		return nil, err
	}

	s.logger.Info("creating patient", zap.String("name", input.Name))

	patient, err := s.gateway.CreatePatient(ctx, sess, input)
	if err != nil {
		s.logger.Error("failed to create patient", zap.Error(err))
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.record(ctx, sess, audit.OperationCreate, patient.ID)

	s.logger.Info("patient created successfully", zap.String("patient_id", patient.ID.String()))
	return patient, nil
}

// Update validates and replaces a patient's fields
func (s *PatientService) Update(ctx context.Context, sess gateway.TokenSource, id model.ID, input model.PatientInput) (*model.Patient, error) {
	if id.IsZero() {
		return nil, &ValidationError{Field: "id", Message: MessageIDRequired}
	}
	input = normalizePatient(input)
	if err := ValidatePatient(input); err != nil {
		return nil, err
	}

	patient, err := s.gateway.UpdatePatient(ctx, sess, id, input)
	if err != nil {
		s.logger.Error("failed to update patient",
			zap.String("patient_id", id.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	s.record(ctx, sess, audit.OperationUpdate, id)

	s.logger.Info("patient updated successfully", zap.String("patient_id", id.String()))
	return patient, nil
}

// Delete removes a patient
func (s *PatientService) Delete(ctx context.Context, sess gateway.TokenSource, id model.ID) error {
	if id.IsZero() {
		return &ValidationError{Field: "id", Message: MessageIDRequired}
	}

	if err := s.gateway.DeletePatient(ctx, sess, id); err != nil {
		s.logger.Error("failed to delete patient",
			zap.String("patient_id", id.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	s.record(ctx, sess, audit.OperationDelete, id)

	s.logger.Info("patient deleted successfully", zap.String("patient_id", id.String()))
	return nil
}

// ValidatePatient checks the fields every patient record needs
func ValidatePatient(input model.PatientInput) error {
	switch {
	case input.Name == "":
		return &ValidationError{Field: "name", Message: MessagePatientNameRequired}
	case input.Phone == "":
		return &ValidationError{Field: "phone", Message: MessagePatientPhoneInvalid}
	case input.Gender == "":
		return &ValidationError{Field: "gender", Message: MessagePatientGender}
	case input.Age < 0:
		return &ValidationError{Field: "age", Message: MessagePatientAgeInvalid}
	}
	return nil
}

func normalizePatient(input model.PatientInput) model.PatientInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Gender = strings.TrimSpace(input.Gender)
	return input
}

func (s *PatientService) record(ctx context.Context, sess gateway.TokenSource, op audit.OperationType, id model.ID) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, actorOf(sess), op, audit.ResourcePatient, id.String()); err != nil {
		s.logger.Warn("failed to record audit entry", zap.Error(err))
	}
}
