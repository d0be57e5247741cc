package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vcscsvcscs/health-dashboard/internal/audit"
	"github.com/vcscsvcscs/health-dashboard/internal/gateway"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
	"go.uber.org/zap"
)

// AdminService manages administrator accounts
type AdminService struct {
	gateway AdminGatewayInterface
	auditor AuditorInterface
	logger  *zap.Logger
}

// NewAdminService creates a new AdminService. auditor may be nil.
func NewAdminService(gw AdminGatewayInterface, auditor AuditorInterface, logger *zap.Logger) *AdminService {
	return &AdminService{
		gateway: gw,
		auditor: auditor,
		logger:  logger,
	}
}

// List returns every administrator account
func (s *AdminService) List(ctx context.Context, sess gateway.TokenSource) ([]model.AdminAccount, error) {
	admins, err := s.gateway.ListAdmins(ctx, sess)
	if errors.Is(err, gateway.ErrEmptyBody) {
		return []model.AdminAccount{}, nil
	}
	if err != nil {
		s.logger.Error("failed to list admins", zap.Error(err))
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	if admins == nil {
		admins = []model.AdminAccount{}
	}
	return admins, nil
}

// Create adds an administrator; username and password are both required
func (s *AdminService) Create(ctx context.Context, sess gateway.TokenSource, input model.AdminInput) (*model.AdminAccount, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" {
		return nil, &ValidationError{Field: "credentials", Message: MessageCredentialsRequired}
	}

	s.logger.Info("creating admin", zap.String("username", input.Username))

	admin, err := s.gateway.CreateAdmin(ctx, sess, input)
	if err != nil {
		s.logger.Error("failed to create admin", zap.Error(err))
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	s.record(ctx, sess, audit.OperationCreate, admin.ID)

	s.logger.Info("admin created successfully", zap.String("admin_id", admin.ID.String()))
	return admin, nil
}

// Update changes an administrator's username and, when given, password
func (s *AdminService) Update(ctx context.Context, sess gateway.TokenSource, id model.ID, input model.AdminInput) (*model.AdminAccount, error) {
	if id.IsZero() {
		return nil, &ValidationError{Field: "id", Message: MessageIDRequired}
	}
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" {
		return nil, &ValidationError{Field: "username", Message: MessageCredentialsRequired}
	}

	admin, err := s.gateway.UpdateAdmin(ctx, sess, id, input)
	if err != nil {
		s.logger.Error("failed to update admin",
			zap.String("admin_id", id.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to update admin: %w", err)
	}

	s.record(ctx, sess, audit.OperationUpdate, id)
	return admin, nil
}

// Delete removes an administrator account
func (s *AdminService) Delete(ctx context.Context, sess gateway.TokenSource, id model.ID) error {
	if id.IsZero() {
		return &ValidationError{Field: "id", Message: MessageIDRequired}
	}

	if err := s.gateway.DeleteAdmin(ctx, sess, id); err != nil {
		s.logger.Error("failed to delete admin",
			zap.String("admin_id", id.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to delete admin: %w", err)
	}

	s.record(ctx, sess, audit.OperationDelete, id)

	s.logger.Info("admin deleted successfully", zap.String("admin_id", id.String()))
	return nil
}

func (s *AdminService) record(ctx context.Context, sess gateway.TokenSource, op audit.OperationType, id model.ID) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, actorOf(sess), op, audit.ResourceAdmin, id.String()); err != nil {
		s.logger.Warn("failed to record audit entry", zap.Error(err))
	}
}
