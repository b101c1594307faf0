package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/dumpster-rentals/internal/model"
	"github.com/nurpe/dumpster-rentals/internal/wizard"
)

type modeRequest struct {
	Mode wizard.Mode `json:"mode" validate:"oneof=existing new"`
}

type selectRequest struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

func (h *Handler) registerWizard(group *gin.RouterGroup) {
	w := group.Group("/contract/wizard")
	w.POST("", h.startWizard)
	w.GET("/:id", h.getWizard)
	w.DELETE("/:id", h.discardWizard)

	w.POST("/:id/customer/mode", h.wizardMode(h.svc.Wizard.SetCustomerMode))
	w.POST("/:id/customer/select", h.wizardSelect(h.svc.Wizard.SelectCustomer))
	w.POST("/:id/customer", h.submitWizardCustomer)
	w.POST("/:id/workaddress/mode", h.wizardMode(h.svc.Wizard.SetWorkAddressMode))
	w.POST("/:id/workaddress/select", h.wizardSelect(h.svc.Wizard.SelectWorkAddress))
	w.POST("/:id/workaddress", h.submitWizardWorkAddress)
	w.POST("/:id/dumpster", h.wizardSelect(h.svc.Wizard.SelectDumpster))
	w.POST("/:id/fix", h.wizardSelect(h.svc.Wizard.SelectFix))
	w.POST("/:id/terms", h.submitWizardTerms)
	w.POST("/:id/previous", h.wizardStep(h.svc.Wizard.Previous))
	w.POST("/:id/reset", h.wizardStep(h.svc.Wizard.Reset))
	w.POST("/:id/submit", h.submitWizard)
}

func (h *Handler) startWizard(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	w, err := h.svc.Wizard.Start(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *Handler) getWizard(c *gin.Context) {
	h.wizardStep(h.svc.Wizard.Get)(c)
}

func (h *Handler) discardWizard(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Wizard.Discard(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type wizardAction func(ctx context.Context, principal model.Principal, id uuid.UUID) (*wizard.Wizard, error)

func (h *Handler) wizardStep(action wizardAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := h.principal(c)
		if !ok {
			return
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		h.respondWizard(c)(action(c.Request.Context(), principal, id))
	}
}

func (h *Handler) wizardMode(action func(context.Context, model.Principal, uuid.UUID, wizard.Mode) (*wizard.Wizard, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := h.principal(c)
		if !ok {
			return
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		var req modeRequest
		if !h.bind(c, &req) {
			return
		}
		h.respondWizard(c)(action(c.Request.Context(), principal, id, req.Mode))
	}
}

func (h *Handler) wizardSelect(action func(context.Context, model.Principal, uuid.UUID, uuid.UUID) (*wizard.Wizard, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := h.principal(c)
		if !ok {
			return
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		var req selectRequest
		if !h.bind(c, &req) {
			return
		}
		h.respondWizard(c)(action(c.Request.Context(), principal, id, req.ID))
	}
}

func (h *Handler) submitWizardCustomer(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var form wizard.CustomerForm
	if !h.bindForm(c, &form) {
		return
	}
	h.respondWizard(c)(h.svc.Wizard.SubmitCustomer(c.Request.Context(), principal, id, form))
}

func (h *Handler) submitWizardWorkAddress(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var form wizard.WorkAddressForm
	if !h.bindForm(c, &form) {
		return
	}
	h.respondWizard(c)(h.svc.Wizard.SubmitWorkAddress(c.Request.Context(), principal, id, form))
}

func (h *Handler) submitWizardTerms(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var form wizard.TermsForm
	if !h.bindForm(c, &form) {
		return
	}
	h.respondWizard(c)(h.svc.Wizard.SubmitTerms(c.Request.Context(), principal, id, form))
}

func (h *Handler) submitWizard(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.Wizard.Submit(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) respondWizard(c *gin.Context) func(*wizard.Wizard, error) {
	return func(w *wizard.Wizard, err error) {
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, w)
	}
}
