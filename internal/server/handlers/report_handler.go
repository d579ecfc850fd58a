package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/milkledger/internal/domain/models"
	"github.com/mamadbah2/milkledger/internal/service/reporting"
)

const (
	defaultArchiveLimit = 10
	maxArchiveLimit     = 100
)

// Reports is the report engine surface exposed over HTTP.
type Reports interface {
	FarmReport(farmID, year string) (models.MonthBreakdown, error)
	AnnualReport(year string) (models.FarmShares, error)
	MonthlyReport(month, year string) (models.FarmShares, error)
	DateRangeReport(start, end string) (models.FarmShares, error)
	CheckRange(start, end string) error
	CanArchive() bool
	ArchiveReport(ctx context.Context, req models.ArchiveRequest) (models.ReportSnapshot, error)
	RenderMonths(report models.MonthBreakdown) string
	RenderShares(report models.FarmShares) string
	RenderSummary(summary models.Summary) string
}

// ArchiveReader lists archived reports.
type ArchiveReader interface {
	LatestReports(ctx context.Context, kind models.ReportKind, limit int64) ([]models.ReportSnapshot, error)
}

// ReportHandler serves the four milk reports, summaries and the report archive.
type ReportHandler struct {
	reports Reports
	archive ArchiveReader
	logger  *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter. archive may be nil.
func NewReportHandler(reports Reports, archive ArchiveReader, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reports: reports, archive: archive, logger: logger}
}

// HasArchive reports whether archived reports can be listed.
func (h *ReportHandler) HasArchive() bool {
	return h.archive != nil
}

// Farm serves GET /reports/farm/:farmID?year=.
func (h *ReportHandler) Farm(c *gin.Context) {
	report, err := h.reports.FarmReport(c.Param("farmID"), c.Query("year"))
	if err != nil {
		respondError(c, h.logger, "farm report failed", err)
		return
	}
	if wantsText(c) {
		c.String(http.StatusOK, h.reports.RenderMonths(report))
		return
	}
	c.JSON(http.StatusOK, report)
}

// Annual serves GET /reports/annual?year=.
func (h *ReportHandler) Annual(c *gin.Context) {
	report, err := h.reports.AnnualReport(c.Query("year"))
	h.writeShares(c, report, err)
}

// Monthly serves GET /reports/monthly?month=&year=.
func (h *ReportHandler) Monthly(c *gin.Context) {
	report, err := h.reports.MonthlyReport(c.Query("month"), c.Query("year"))
	h.writeShares(c, report, err)
}

// Range serves GET /reports/range?start=&end=. Both dates must fall within
// the ingested bounds.
func (h *ReportHandler) Range(c *gin.Context) {
	start, end := c.Query("start"), c.Query("end")
	if err := h.reports.CheckRange(start, end); err != nil {
		respondError(c, h.logger, "date range rejected", err)
		return
	}
	report, err := h.reports.DateRangeReport(start, end)
	h.writeShares(c, report, err)
}

// FarmSummary serves GET /reports/farm/:farmID/summary?year=&kind=.
func (h *ReportHandler) FarmSummary(c *gin.Context) {
	kind, err := reporting.ParseSummaryKind(c.DefaultQuery("kind", "avg"))
	if err != nil {
		respondError(c, h.logger, "invalid summary kind", err)
		return
	}

	report, err := h.reports.FarmReport(c.Param("farmID"), c.Query("year"))
	if err != nil {
		respondError(c, h.logger, "farm report failed", err)
		return
	}

	summary, err := reporting.SummarizeMonths(report, kind)
	if err != nil {
		respondError(c, h.logger, "summary failed", err)
		return
	}
	if wantsText(c) {
		c.String(http.StatusOK, h.reports.RenderSummary(summary))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Archive serves POST /reports/archive: render a report and store it.
func (h *ReportHandler) Archive(c *gin.Context) {
	if !h.reports.CanArchive() {
		c.JSON(http.StatusNotFound, gin.H{"error": "report archive disabled"})
		return
	}

	var req models.ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid archive payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snapshot, err := h.reports.ArchiveReport(c.Request.Context(), req)
	if err != nil {
		if snapshot.Rendered != "" {
			h.logger.Error("report rendered but not archived", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "unable to archive report", "report": snapshot})
			return
		}
		respondError(c, h.logger, "archive report failed", err)
		return
	}

	c.JSON(http.StatusCreated, snapshot)
}

// ListArchived serves GET /reports/archive?kind=&limit=.
func (h *ReportHandler) ListArchived(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report archive disabled"})
		return
	}

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", strconv.Itoa(defaultArchiveLimit)), 10, 64)
	if err != nil || limit < 1 || limit > maxArchiveLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	reports, err := h.archive.LatestReports(c.Request.Context(), models.ReportKind(c.Query("kind")), limit)
	if err != nil {
		h.logger.Error("failed to list archived reports", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to read report archive"})
		return
	}
	if reports == nil {
		reports = []models.ReportSnapshot{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (h *ReportHandler) writeShares(c *gin.Context, report models.FarmShares, err error) {
	if err != nil {
		respondError(c, h.logger, "report failed", err)
		return
	}
	if wantsText(c) {
		c.String(http.StatusOK, h.reports.RenderShares(report))
		return
	}
	c.JSON(http.StatusOK, report)
}

func wantsText(c *gin.Context) bool {
	return c.Query("format") == "text"
}
