package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/health-dashboard/internal/audit"
	"github.com/vcscsvcscs/health-dashboard/internal/config"
	"github.com/vcscsvcscs/health-dashboard/internal/gateway"
	"github.com/vcscsvcscs/health-dashboard/internal/security"
	"github.com/vcscsvcscs/health-dashboard/internal/service"
	"github.com/vcscsvcscs/health-dashboard/internal/session"
	"github.com/vcscsvcscs/health-dashboard/internal/store"
	"github.com/vcscsvcscs/health-dashboard/internal/view"
	"go.uber.org/zap"
)

// errSessionExpired is shown when the backend no longer accepts the token
var errSessionExpired = errors.New("session expired, run `dashctl login` again")

// app holds everything a command needs once configuration is loaded
type app struct {
	configPath string
	verbose    bool

	cfg      *config.Config
	logger   *zap.Logger
	loc      *time.Location
	kv       *store.FileKV
	session  *session.Session
	registry *view.Registry

	auth      *service.AuthService
	dashboard *service.DashboardService
	reports   *service.ReportService
	patients  *service.PatientService
	admins    *service.AdminService
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "dashctl",
		Short:        "Command-line client for the health dashboard backend",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a config file (YAML, JSON or TOML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Write debug logs to stderr")

	root.AddCommand(
		loginCmd(a),
		logoutCmd(a),
		statusCmd(a),
		dashboardCmd(a),
		windowCmd(a),
		reportsCmd(a),
		patientsCmd(a),
		adminsCmd(a),
	)

	return root
}

func (a *app) init(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := "error"
	if a.verbose {
		level = "debug"
	}
	a.logger, err = config.LoggingConfig{Level: level, Format: "console"}.NewLogger(false, "")
	if err != nil {
		return err
	}

	a.loc, err = cfg.Display.Location()
	if err != nil {
		return err
	}

	tokenFile, err := a.tokenFile()
	if err != nil {
		return err
	}
	a.kv = store.NewFileKV(tokenFile)

	var sealer *security.Sealer
	if cfg.Session.EncryptionKey != "" {
		sealer, err = security.NewSealerFromBase64(cfg.Session.EncryptionKey)
		if err != nil {
			return fmt.Errorf("failed to load session encryption key: %w", err)
		}
	}

	a.session = session.New(a.kv, sealer, a.logger)
	if err := a.session.Restore(ctx); err != nil {
		a.logger.Warn("starting without a stored session", zap.Error(err))
	}

	client, err := gateway.NewClient(gateway.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
	}, a.logger)
	if err != nil {
		return err
	}

	a.registry = view.NewRegistry(a.kv, view.RegistryConfig{
		Location:  a.loc,
		WindowTTL: cfg.Session.WorkspaceTTL,
	}, a.logger)

	// The CLI has no Redis; mutations are still recorded in the log
	auditor := audit.NewLogger(nil, cfg.Audit.MaxEntries, a.logger)

	a.auth = service.NewAuthService(client, a.registry, a.logger)
	a.dashboard = service.NewDashboardService(client, a.logger)
	a.reports = service.NewReportService(client, nil, a.loc, a.logger)
	a.patients = service.NewPatientService(client, auditor, a.logger)
	a.admins = service.NewAdminService(client, auditor, a.logger)
	return nil
}

// tokenFile is the configured path or dashctl/session.json in the user config dir
func (a *app) tokenFile() (string, error) {
	if a.cfg.Session.TokenFile != "" {
		return a.cfg.Session.TokenFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "dashctl", "session.json"), nil
}

// workspace returns the window workspace of the logged-in session
func (a *app) workspace(ctx context.Context) (*view.Workspace, error) {
	key := a.session.Key()
	if key == "" {
		return nil, session.ErrUnauthenticated
	}
	return a.registry.Get(ctx, key)
}

// check turns service errors into what the operator should see. A token the
// backend rejects is dropped so the next command asks for a login.
func (a *app) check(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	switch service.Classify(err) {
	case service.KindUnauthenticated:
		if a.session.State() == session.StateAuthenticated {
			if logoutErr := a.auth.Logout(ctx, a.session); logoutErr != nil {
				a.logger.Warn("failed to clear rejected session", zap.Error(logoutErr))
			}
			return errSessionExpired
		}
		return errors.New("not logged in, run `dashctl login` first")
	case service.KindValidation:
		field, msg, _ := service.ValidationMessage(err)
		return fmt.Errorf("%s: %s", field, msg)
	default:
		return err
	}
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
