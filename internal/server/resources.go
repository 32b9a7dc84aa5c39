package server

import (
	"net/http"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
	"github.com/gin-gonic/gin"
)

// resourceHandler serves the uniform CRUD routes of one owner-scoped collection.
type resourceHandler[T any, P legal.Record[T], I legal.Input[T]] struct {
	name    string
	repo    *legal.Repository[T, P]
	prepare func(I) I
	handler *httpHandler
}

func registerResource[T any, P legal.Record[T], I legal.Input[T]](group *gin.RouterGroup, handler *httpHandler, name string, repo *legal.Repository[T, P], prepare func(I) I) {
	resource := &resourceHandler[T, P, I]{name: name, repo: repo, prepare: prepare, handler: handler}
	routes := group.Group("/" + name)
	routes.GET("", resource.list)
	routes.POST("", resource.create)
	routes.GET("/:id", resource.get)
	routes.PUT("/:id", resource.update)
	routes.PATCH("/:id", resource.update)
	routes.DELETE("/:id", resource.remove)
}

func (r *resourceHandler[T, P, I]) bind(c *gin.Context) (I, bool) {
	var input I
	if err := decodeJSON(c, &input); err != nil {
		r.handler.respondInvalidRequest(c)
		return input, false
	}
	if r.prepare != nil {
		input = r.prepare(input)
	}
	return input, true
}

func (r *resourceHandler[T, P, I]) list(c *gin.Context) {
	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}
	records, err := r.repo.List(c.Request.Context(), c.GetString(userIDContextKey), filters)
	if err != nil {
		r.handler.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (r *resourceHandler[T, P, I]) get(c *gin.Context) {
	record, err := r.repo.Get(c.Request.Context(), c.GetString(userIDContextKey), c.Param("id"))
	if err != nil {
		r.handler.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (r *resourceHandler[T, P, I]) create(c *gin.Context) {
	input, ok := r.bind(c)
	if !ok {
		return
	}
	userID := c.GetString(userIDContextKey)
	record, err := r.repo.Create(c.Request.Context(), userID, input)
	if err != nil {
		r.handler.respondError(c, err)
		return
	}
	r.handler.publish(userID, r.name, RealtimeActionCreated, P(&record).Owned().ID)
	c.JSON(http.StatusCreated, record)
}

func (r *resourceHandler[T, P, I]) update(c *gin.Context) {
	input, ok := r.bind(c)
	if !ok {
		return
	}
	userID := c.GetString(userIDContextKey)
	record, err := r.repo.Update(c.Request.Context(), userID, c.Param("id"), input)
	if err != nil {
		r.handler.respondError(c, err)
		return
	}
	r.handler.publish(userID, r.name, RealtimeActionUpdated, P(&record).Owned().ID)
	c.JSON(http.StatusOK, record)
}

func (r *resourceHandler[T, P, I]) remove(c *gin.Context) {
	userID := c.GetString(userIDContextKey)
	id := c.Param("id")
	if _, err := r.repo.Delete(c.Request.Context(), userID, id); err != nil {
		r.handler.respondError(c, err)
		return
	}
	r.handler.publish(userID, r.name, RealtimeActionDeleted, id)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
