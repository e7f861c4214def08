package handlers

import (
	"net/http"

	"yatube/internal/cache"
	"yatube/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	cache  cache.PageCache
	logger *zap.Logger
}

func NewAdminHandler(pageCache cache.PageCache, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{cache: pageCache, logger: logger}
}

// ClearCache drops the cached index page so new posts show up at once.
func (h *AdminHandler) ClearCache(c *gin.Context) {
	if err := h.cache.Clear(c.Request.Context()); err != nil {
		h.logger.Error("clear cache", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cache clear failed"})
		return
	}

	h.logger.Info("index cache cleared", zap.Uint("by", middleware.CurrentUser(c).ID))
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
