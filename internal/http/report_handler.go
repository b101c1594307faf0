package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/dumpster-rentals/internal/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) registerReports(group *gin.RouterGroup) {
	group.GET("/reports/:kind", h.report)
	group.GET("/reports/:kind/export", h.exportReport)
}

func (h *Handler) report(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	filter, ok := h.reportFilter(c)
	if !ok {
		return
	}
	result, err := h.svc.Reports.Generate(c.Request.Context(), principal, model.ReportKind(c.Param("kind")), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Data)
}

func (h *Handler) exportReport(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	filter, ok := h.reportFilter(c)
	if !ok {
		return
	}
	result, err := h.svc.Reports.Export(c.Request.Context(), principal, model.ReportKind(c.Param("kind")), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.attachment(c, xlsxContentType, result.FileName, result.Content)
}

func (h *Handler) health(c *gin.Context) {
	status := h.svc.Reports.Health(c.Request.Context())
	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

func (h *Handler) reportFilter(c *gin.Context) (model.ReportFilter, bool) {
	var filter model.ReportFilter
	for name, dst := range map[string]*model.Date{"startDate": &filter.StartDate, "endDate": &filter.EndDate} {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			continue
		}
		parsed, err := model.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
			return model.ReportFilter{}, false
		}
		*dst = parsed
	}
	filter.Status = model.ContractStatus(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
	return filter, true
}
