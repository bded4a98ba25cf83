package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salesdash/backend/internal/application/report"
	"github.com/salesdash/backend/internal/domain/venue"
	"github.com/salesdash/backend/internal/infrastructure/export"
)

// ReportHandler handles sales report requests
type ReportHandler struct {
	BaseHandler
	reportService *report.ReportService
	catalog       *venue.Catalog
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *report.ReportService, catalog *venue.Catalog) *ReportHandler {
	return &ReportHandler{reportService: reportService, catalog: catalog}
}

// GetSalesReport returns the month/date/product report of a venue.
// GET /api/v1/reports/sales
func (h *ReportHandler) GetSalesReport(c *gin.Context) {
	perms, ok := h.permissions(c)
	if !ok {
		return
	}
	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.reportService.GetSalesReport(c.Request.Context(), perms, q.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSalesReportResponse(result))
}

// ExportSalesReport streams the report as an xlsx or csv download.
// GET /api/v1/reports/sales/export
func (h *ReportHandler) ExportSalesReport(c *gin.Context) {
	perms, ok := h.permissions(c)
	if !ok {
		return
	}
	var q ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	format, err := export.ParseFormat(q.Format)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// Render fully before writing headers so failures still get a JSON error
	var buf bytes.Buffer
	name, err := h.reportService.Export(c.Request.Context(), perms, q.toInput(), format, &buf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// GetSummary returns the category breakdown of a venue.
// GET /api/v1/reports/summary
func (h *ReportHandler) GetSummary(c *gin.Context) {
	perms, ok := h.permissions(c)
	if !ok {
		return
	}
	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.reportService.GetSummary(c.Request.Context(), perms, q.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSummaryResponse(result))
}

// GetHistory lists recently generated reports.
// GET /api/v1/reports/history
func (h *ReportHandler) GetHistory(c *gin.Context) {
	perms, ok := h.permissions(c)
	if !ok {
		return
	}
	var q HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultHistoryLimit
	}

	runs, err := h.reportService.History(c.Request.Context(), perms, q.VenueID, q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ReportRunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, ReportRunResponse{
			ID:          run.ID,
			Username:    run.Username,
			VenueID:     run.VenueID,
			VenueName:   h.catalog.Name(run.VenueID),
			RangeType:   run.RangeType,
			StartDate:   run.StartDate,
			EndDate:     run.EndDate,
			DayCount:    run.DayCount,
			Totals:      run.Totals,
			GeneratedAt: run.GeneratedAt,
		})
	}
	h.Success(c, out)
}
