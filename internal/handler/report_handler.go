package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mediaflow/internal/csvexport"
	"mediaflow/internal/service"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportHandler handles run reporting endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// reportWindow reads the from/to query parameters, defaulting to the last
// 30 days. Both are RFC 3339 date strings.
func reportWindow(c *gin.Context) (from, to string, ok bool) {
	now := time.Now().UTC()
	from = c.DefaultQuery("from", now.AddDate(0, 0, -30).Format("2006-01-02"))
	to = c.DefaultQuery("to", now.AddDate(0, 0, 1).Format("2006-01-02"))

	for _, v := range []string{from, to} {
		if _, err := time.Parse("2006-01-02", v); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "from/to must be YYYY-MM-DD dates")
			return "", "", false
		}
	}
	return from, to, true
}

// Summary handles GET /api/v1/reports/runs
// @Summary Run report summary
// @Description Aggregate outcomes of finished runs in a date window
// @Tags reports
// @Produce json
// @Param from query string false "Window start (YYYY-MM-DD, default 30 days ago)"
// @Param to query string false "Window end (YYYY-MM-DD, default tomorrow)"
// @Success 200 {object} Response{data=service.RunReportSummary} "Run summary"
// @Failure 400 {object} ErrorResponseBody "Invalid date"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /reports/runs [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	from, to, ok := reportWindow(c)
	if !ok {
		return
	}

	summary, err := h.reportService.Summary(c.Request.Context(), from, to)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, summary)
}

// Export handles GET /api/v1/reports/runs/export
// @Summary Export run report
// @Description Download finished runs in the window as CSV or XLSX
// @Tags reports
// @Produce octet-stream
// @Param format query string false "Export format: csv or xlsx" default(csv)
// @Param from query string false "Window start (YYYY-MM-DD, default 30 days ago)"
// @Param to query string false "Window end (YYYY-MM-DD, default tomorrow)"
// @Success 200 {file} file "Report file"
// @Failure 400 {object} ErrorResponseBody "Invalid date or format"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /reports/runs/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	from, to, ok := reportWindow(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "csv")
	name := "runs_" + from + "_" + to

	var (
		data        []byte
		contentType string
		filename    string
		err         error
	)
	switch format {
	case "csv":
		data, err = h.reportService.ExportCSV(c.Request.Context(), from, to)
		contentType = csvContentType
		filename = csvexport.BuildFilename(name, "csv")
	case "xlsx":
		data, err = h.reportService.ExportXLSX(c.Request.Context(), from, to)
		contentType = xlsxContentType
		filename = csvexport.BuildFilename(name, "xlsx")
	default:
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "format must be csv or xlsx")
		return
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
