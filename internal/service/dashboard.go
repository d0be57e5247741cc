package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vcscsvcscs/health-dashboard/internal/gateway"
	"github.com/vcscsvcscs/health-dashboard/internal/stats"
	"github.com/vcscsvcscs/health-dashboard/internal/view"
	"github.com/vcscsvcscs/health-dashboard/internal/window"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WindowView is the JSON form of a date window
type WindowView struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// NewWindowView renders w as sent to the backend
func NewWindowView(w window.Window) WindowView {
	return WindowView{StartDate: w.StartParam(), EndDate: w.EndParam()}
}

// Dashboard is the data behind the dashboard screen
type Dashboard struct {
	Window           WindowView          `json:"window"`
	Summary          *model.SummaryStats `json:"summary"`
	FlaggedReports   []model.Report      `json:"flaggedReports"`
	CriticalPatients int                 `json:"criticalPatients"`
	CriticalSugar    int                 `json:"criticalSugar"`
	CriticalPressure int                 `json:"criticalPressure"`
	UniquePatients   int                 `json:"uniquePatients"`
	TotalReports     int                 `json:"totalReports"`
	HasSummary       bool                `json:"hasSummary"`
	HasFlagged       bool                `json:"hasFlagged"`
	LoadedAt         time.Time           `json:"loadedAt"`
}

// DashboardService loads and aggregates the dashboard screen
type DashboardService struct {
	gateway ReportGatewayInterface
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(gw ReportGatewayInterface, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		gateway: gw,
		logger:  logger,
		now:     time.Now,
	}
}

// Load fetches summary, flagged reports and all reports for the workspace
// window concurrently. An empty backend reply counts as no data. Any other
// failure fails the whole load. A load overtaken by
// a newer one returns ErrSuperseded and leaves the workspace untouched.
func (s *DashboardService) Load(ctx context.Context, sess gateway.TokenSource, ws *view.Workspace) (*Dashboard, error) {
	ticket := ws.Begin(view.KindDashboard)
	w := ticket.Window

	s.logger.Info("loading dashboard",
		zap.String("window", w.String()),
		zap.Uint64("ticket", ticket.ID),
	)

	var (
		summary *model.SummaryStats
		flagged []model.Report
		all     []model.Report
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.gateway.GetSummary(gctx, sess, &w)
		if errors.Is(err, gateway.ErrEmptyBody) {
			summary = nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get summary stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		flagged, err = s.gateway.ListFlaggedReports(gctx, sess, &w)
		if errors.Is(err, gateway.ErrEmptyBody) {
			flagged = []model.Report{}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get flagged reports: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		all, err = s.gateway.ListReports(gctx, sess, &w)
		if errors.Is(err, gateway.ErrEmptyBody) {
			all = []model.Report{}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get reports: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load dashboard",
			zap.String("window", w.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if !ws.IsLatest(ticket) {
		s.logger.Info("discarding superseded dashboard load", zap.Uint64("ticket", ticket.ID))
		return nil, ErrSuperseded
	}

	dashboard := BuildDashboard(w, summary, flagged, all)
	dashboard.LoadedAt = s.now()

	if !ws.Commit(ticket, dashboard) {
		return nil, ErrSuperseded
	}

	s.logger.Info("dashboard loaded successfully",
		zap.String("window", w.String()),
		zap.Int("total_reports", dashboard.TotalReports),
		zap.Int("critical_patients", dashboard.CriticalPatients),
	)

	return dashboard, nil
}

// Latest returns the last committed dashboard of the workspace
func (s *DashboardService) Latest(ws *view.Workspace) (*Dashboard, bool) {
	snap, ok := ws.Latest(view.KindDashboard)
	if !ok {
		return nil, false
	}
	d, ok := snap.Value.(*Dashboard)
	return d, ok
}

// BuildDashboard derives the dashboard aggregates. Summary stats are passed
// through as returned by the backend.
func BuildDashboard(w window.Window, summary *model.SummaryStats, flagged, all []model.Report) *Dashboard {
	if flagged == nil {
		flagged = []model.Report{}
	}
	return &Dashboard{
		Window:           NewWindowView(w),
		Summary:          summary,
		FlaggedReports:   flagged,
		CriticalPatients: stats.CountUniquePatients(flagged),
		CriticalSugar:    stats.CountByStatus(flagged, stats.BloodSugarStatus, model.StatusCritical),
		CriticalPressure: stats.CountByStatus(flagged, stats.SystolicStatus, model.StatusCritical),
		UniquePatients:   stats.CountUniquePatients(all),
		TotalReports:     len(all),
		HasSummary:       summary != nil && !summary.IsEmpty(),
		HasFlagged:       len(flagged) > 0,
	}
}
