package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/dumpster-rentals/internal/service"
	"github.com/nurpe/dumpster-rentals/internal/wizard"
)

func (h *Handler) registerContracts(group *gin.RouterGroup) {
	group.GET("/contract", h.listContracts)
	group.POST("/contract", h.createContract)
	group.POST("/contract/editpayments", h.editPayments)
	group.POST("/contract/editdata", h.editData)
	group.GET("/contract/:id", h.getContract)
	group.GET("/contract/:id/pdf", h.contractPDF)
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	q, paged, ok := h.listQuery(c)
	if !ok {
		return
	}
	if paged {
		page, err := h.svc.Contracts.Page(c.Request.Context(), principal, q)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
		return
	}
	contracts, err := h.svc.Contracts.List(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func (h *Handler) getContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	contract, err := h.svc.Contracts.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// createContract accepts the flattened wizard draft in one request.
func (h *Handler) createContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var sub wizard.Submission
	if !h.bind(c, &sub) {
		return
	}
	contract, err := h.svc.Contracts.Create(c.Request.Context(), principal, sub)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

func (h *Handler) editPayments(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var in service.EditPaymentsInput
	if !h.bind(c, &in) {
		return
	}
	contract, err := h.svc.Contracts.EditPayments(c.Request.Context(), principal, in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) editData(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var in service.EditDataInput
	if !h.bind(c, &in) {
		return
	}
	contract, err := h.svc.Contracts.EditData(c.Request.Context(), principal, in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) contractPDF(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	file, err := h.svc.Contracts.InvoicePDF(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.attachment(c, "application/pdf", file.FileName, file.Content)
}
