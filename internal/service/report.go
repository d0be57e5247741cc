package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vcscsvcscs/health-dashboard/internal/azure"
	"github.com/vcscsvcscs/health-dashboard/internal/export"
	"github.com/vcscsvcscs/health-dashboard/internal/gateway"
	"github.com/vcscsvcscs/health-dashboard/internal/stats"
	"github.com/vcscsvcscs/health-dashboard/internal/view"
	"github.com/vcscsvcscs/health-dashboard/internal/window"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
	"go.uber.org/zap"
)

// MessageNoReports is shown when a window has no reports
const MessageNoReports = "ไม่พบข้อมูลรายงานสำหรับช่วงวันที่ที่เลือก"

// ReportOverview is the data behind the reports screen
type ReportOverview struct {
	Window           WindowView         `json:"window"`
	Reports          []model.Report     `json:"reports"`
	Rows             []export.Row       `json:"rows"`
	Counts           stats.StatusCounts `json:"counts"`
	UniquePatients   int                `json:"uniquePatients"`
	CriticalPatients int                `json:"criticalPatients"`
	Empty            bool               `json:"empty"`
	Message          string             `json:"message,omitempty"`
}

// ExportResult is a generated workbook and where it was archived
type ExportResult struct {
	File        *export.File
	ArchivePath string
}

// ReportService serves the reports screen and its export
type ReportService struct {
	gateway ReportGatewayInterface
	archive azure.WorkbookArchive
	loc     *time.Location
	logger  *zap.Logger
}

// NewReportService creates a new ReportService. archive may be nil.
func NewReportService(gw ReportGatewayInterface, archive azure.WorkbookArchive, loc *time.Location, logger *zap.Logger) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{
		gateway: gw,
		archive: archive,
		loc:     loc,
		logger:  logger,
	}
}

// Overview fetches the reports of the workspace window and derives the
// per-status breakdown. No reports is an empty overview, not an error.
func (s *ReportService) Overview(ctx context.Context, sess gateway.TokenSource, ws *view.Workspace) (*ReportOverview, error) {
	ticket := ws.Begin(view.KindReports)
	w := ticket.Window

	s.logger.Info("loading reports",
		zap.String("window", w.String()),
		zap.Uint64("ticket", ticket.ID),
	)

	reports, err := s.fetch(ctx, sess, w)
	if err != nil {
		return nil, err
	}

	if !ws.IsLatest(ticket) {
		s.logger.Info("discarding superseded reports load", zap.Uint64("ticket", ticket.ID))
		return nil, ErrSuperseded
	}

	overview := BuildOverview(w, reports, s.loc)
	if !ws.Commit(ticket, overview) {
		return nil, ErrSuperseded
	}

	s.logger.Info("reports loaded successfully",
		zap.String("window", w.String()),
		zap.Int("report_count", len(reports)),
	)

	return overview, nil
}

// Latest returns the last committed reports overview of the workspace
func (s *ReportService) Latest(ws *view.Workspace) (*ReportOverview, bool) {
	snap, ok := ws.Latest(view.KindReports)
	if !ok {
		return nil, false
	}
	o, ok := snap.Value.(*ReportOverview)
	return o, ok
}

// Export builds the spreadsheet for w and archives a copy when an archive
// is configured. Archive failures are logged and do not fail the export.
func (s *ReportService) Export(ctx context.Context, sess gateway.TokenSource, w window.Window) (*ExportResult, error) {
	s.logger.Info("exporting reports", zap.String("window", w.String()))

	reports, err := s.fetch(ctx, sess, w)
	if err != nil {
		return nil, err
	}

	file, err := export.Build(reports, w, s.loc)
	if err != nil {
		s.logger.Error("failed to build workbook", zap.Error(err))
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}

	result := &ExportResult{File: file}

	if s.archive != nil {
		path, err := s.archive.UploadWorkbook(ctx, file.Name, file.Data)
		if err != nil {
			s.logger.Warn("failed to archive workbook",
				zap.String("filename", file.Name),
				zap.Error(err),
			)
		} else {
			result.ArchivePath = path
		}
	}

	s.logger.Info("reports exported successfully",
		zap.String("filename", file.Name),
		zap.Int("rows", file.Rows),
		zap.String("archive_path", result.ArchivePath),
	)

	return result, nil
}

// ArchivedExport returns a workbook archived by an earlier export
func (s *ReportService) ArchivedExport(ctx context.Context, blobName string) (*export.File, error) {
	if !azure.ValidBlobName(blobName) {
		return nil, &ValidationError{Field: "path", Message: MessageArchivePathInvalid}
	}
	if s.archive == nil {
		return nil, fmt.Errorf("%w: archive is not configured", azure.ErrNotFound)
	}

	data, err := s.archive.DownloadWorkbook(ctx, blobName)
	if err != nil {
		s.logger.Warn("failed to download archived workbook",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download archived workbook: %w", err)
	}

	return &export.File{Name: azure.DownloadName(blobName), Data: data}, nil
}

// PatientReports returns every report of one patient
func (s *ReportService) PatientReports(ctx context.Context, sess gateway.TokenSource, patientID model.ID) ([]model.Report, error) {
	if patientID.IsZero() {
		return nil, &ValidationError{Field: "id", Message: MessageIDRequired}
	}

	reports, err := s.gateway.ListPatientReports(ctx, sess, patientID)
	if errors.Is(err, gateway.ErrEmptyBody) {
		return []model.Report{}, nil
	}
	if err != nil {
		s.logger.Error("failed to get patient reports",
			zap.String("patient_id", patientID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get patient reports: %w", err)
	}
	if reports == nil {
		reports = []model.Report{}
	}
	return reports, nil
}

func (s *ReportService) fetch(ctx context.Context, sess gateway.TokenSource, w window.Window) ([]model.Report, error) {
	reports, err := s.gateway.ListReports(ctx, sess, &w)
	if errors.Is(err, gateway.ErrEmptyBody) {
		return []model.Report{}, nil
	}
	if err != nil {
		s.logger.Error("failed to get reports",
			zap.String("window", w.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}
	if reports == nil {
		reports = []model.Report{}
	}
	return reports, nil
}

// BuildOverview derives the reports screen aggregates
func BuildOverview(w window.Window, reports []model.Report, loc *time.Location) *ReportOverview {
	overview := &ReportOverview{
		Window:           NewWindowView(w),
		Reports:          reports,
		Rows:             export.BuildRows(reports, loc),
		Counts:           stats.Breakdown(reports),
		UniquePatients:   stats.CountUniquePatients(reports),
		CriticalPatients: stats.CountCriticalPatients(reports),
		Empty:            len(reports) == 0,
	}
	if overview.Empty {
		overview.Message = MessageNoReports
	}
	return overview
}
