package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/dumpster-rentals/internal/service"
)

// registerResource mounts the list/get/create/update/delete routes shared by
// every plain CRUD resource.
func registerResource[T any](h *Handler, group *gin.RouterGroup, path string, res *service.Resource[T]) {
	group.GET(path, func(c *gin.Context) {
		principal, ok := h.principal(c)
		if !ok {
			return
		}
		q, paged, ok := h.listQuery(c)
		if !ok {
			return
		}
		if paged {
			page, err := res.Page(c.Request.Context(), principal, q)
			if err != nil {
				h.handleError(c, err)
				return
			}
			c.JSON(http.StatusOK, page)
			return
		}
		items, err := res.List(c.Request.Context(), principal)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	})

	group.GET(path+"/:id", func(c *gin.Context) {
		principal, ok := h.principal(c)
		if !ok {
			return
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		item, err := res.Get(c.Request.Context(), principal, id)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})

	group.POST(path, func(c *gin.Context) {
		principal, ok := h.principal(c)
		if !ok {
			return
		}
		item := new(T)
		if !h.bind(c, item) {
			return
		}
		created, err := res.Create(c.Request.Context(), principal, item)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	})

	group.PUT(path+"/:id", func(c *gin.Context) {
		principal, ok := h.principal(c)
		if !ok {
			return
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		item := new(T)
		if !h.bind(c, item) {
			return
		}
		updated, err := res.Update(c.Request.Context(), principal, id, item)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	})

	group.DELETE(path+"/:id", func(c *gin.Context) {
		principal, ok := h.principal(c)
		if !ok {
			return
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		if err := res.Delete(c.Request.Context(), principal, id); err != nil {
			h.handleError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}
