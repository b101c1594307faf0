package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/dumpster-rentals/internal/http/middleware"
	"github.com/nurpe/dumpster-rentals/internal/listing"
	"github.com/nurpe/dumpster-rentals/internal/model"
	"github.com/nurpe/dumpster-rentals/internal/service"
	"github.com/nurpe/dumpster-rentals/internal/validation"
)

type Services struct {
	Contracts *service.ContractService
	Wizard    *service.WizardService
	Resources *service.Resources
	Users     *service.UserService
	Sessions  *service.SessionService
	Reports   *service.ReportService
}

type Handler struct {
	svc Services
	log zerolog.Logger
}

func NewHandler(svc Services, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.POST("/auth/login", h.login)
	router.GET("/reports/health", h.health)

	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/auth/me", h.me)
	protected.POST("/auth/logout", h.logout)

	h.registerContracts(protected)
	h.registerWizard(protected)

	r := h.svc.Resources
	registerResource(h, protected, "/customers/workaddress", r.WorkAddresses)
	registerResource(h, protected, "/customers", r.Customers)
	registerResource(h, protected, "/dumpsterstatus", r.DumpsterStatuses)
	registerResource(h, protected, "/dumpsters", r.Dumpsters)
	registerResource(h, protected, "/fix", r.Fixes)
	registerResource(h, protected, "/drivers", r.Drivers)
	registerResource(h, protected, "/transfers", r.Transfers)
	registerResource(h, protected, "/businessexpenses", r.Expenses)

	h.registerUsers(protected)
	h.registerReports(protected)
}

func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return principal, ok
}

func (h *Handler) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			h.handleError(c, verrs)
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// bindForm decodes without struct validation. Wizard forms are validated by
// the wizard itself because which fields apply depends on the current mode.
func (h *Handler) bindForm(c *gin.Context, dst interface{}) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (h *Handler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// listQuery reports whether the request asked for a page. Without a page
// parameter lists return the full collection.
func (h *Handler) listQuery(c *gin.Context) (listing.Query, bool, bool) {
	rawPage, paged := c.GetQuery("page")
	if !paged {
		return listing.Query{}, false, true
	}
	page, err := strconv.Atoi(rawPage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return listing.Query{}, false, false
	}
	limit := 0
	if rawLimit := c.Query("limit"); rawLimit != "" {
		if limit, err = strconv.Atoi(rawLimit); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return listing.Query{}, false, false
		}
	}
	return listing.Query{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
		Field:  c.Query("field"),
	}, true, true
}

func (h *Handler) attachment(c *gin.Context, contentType, fileName string, content []byte) {
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, contentType, content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verrs})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log := zerolog.Ctx(c.Request.Context())
		if log.GetLevel() == zerolog.Disabled {
			log = &h.log
		}
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
