package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"yatube/internal/middleware"
	"yatube/internal/services"
	"yatube/internal/urls"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Render helper to inject the current user and path into every page.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}
	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "core/error.html", gin.H{"Code": code, "Message": message})
}

func RenderNotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "core/404.html", nil)
}

// handleError maps service errors onto responses.
func handleError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		RenderNotFound(c)
	case errors.Is(err, services.ErrUnauthorized):
		c.Redirect(http.StatusFound, urls.Login(c.Request.URL.RequestURI()))
	default:
		_ = c.Error(err)
		logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		RenderError(c, http.StatusInternalServerError, "Что-то пошло не так.")
	}
}

// postID parses the :id route parameter. ok is false (and a 404 has been
// written) when it is not a positive number.
func postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		RenderNotFound(c)
		return 0, false
	}
	return uint(id), true
}
