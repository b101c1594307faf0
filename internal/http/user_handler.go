package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/dumpster-rentals/internal/http/middleware"
	"github.com/nurpe/dumpster-rentals/internal/service"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) registerUsers(group *gin.RouterGroup) {
	group.GET("/users", h.listUsers)
	group.GET("/users/:id", h.getUser)
	group.POST("/users", h.createUser)
	group.PUT("/users/:id", h.updateUser)
	group.DELETE("/users/:id", h.deleteUser)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}
	session, err := h.svc.Sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) me(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	user, err := h.svc.Sessions.Me(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "expiresAt": middleware.TokenExpiry(c)})
}

func (h *Handler) logout(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	if err := h.svc.Sessions.Logout(c.Request.Context(), principal, middleware.TokenExpiry(c)); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listUsers(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	q, paged, ok := h.listQuery(c)
	if !ok {
		return
	}
	if paged {
		page, err := h.svc.Users.Page(c.Request.Context(), principal, q)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
		return
	}
	users, err := h.svc.Users.List(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) getUser(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.svc.Users.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) createUser(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var in service.UserInput
	if !h.bind(c, &in) {
		return
	}
	user, err := h.svc.Users.Create(c.Request.Context(), principal, in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) updateUser(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var in service.UserInput
	if !h.bind(c, &in) {
		return
	}
	user, err := h.svc.Users.Update(c.Request.Context(), principal, id, in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Users.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
