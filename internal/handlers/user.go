package handlers

import (
	"net/http"

	"yatube/internal/middleware"
	"yatube/internal/observability"
	"yatube/internal/services"
	"yatube/internal/urls"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves author pages and the follow graph.
type UserHandler struct {
	feeds   *services.FeedService
	follows *services.FollowService
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewUserHandler(feeds *services.FeedService, follows *services.FollowService, metrics *observability.Metrics, logger *zap.Logger) *UserHandler {
	return &UserHandler{feeds: feeds, follows: follows, metrics: metrics, logger: logger}
}

// Profile - 用户主页 /profile/:username/
func (h *UserHandler) Profile(c *gin.Context) {
	username := c.Param("username")

	feed, err := h.feeds.Profile(c.Request.Context(), username, middleware.CurrentUser(c), c.Query("page"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	h.metrics.FeedServed(observability.FeedProfile)
	Render(c, http.StatusOK, "posts/profile.html", gin.H{
		"Author":         feed.Author,
		"Following":      feed.Following,
		"FollowerCount":  feed.FollowerCount,
		"FollowingCount": feed.FollowingCount,
		"Page":           feed.Page,
		"BasePath":       urls.Profile(username),
	})
}

// FollowIndex lists posts of the authors the current user follows.
func (h *UserHandler) FollowIndex(c *gin.Context) {
	page, err := h.feeds.Follow(c.Request.Context(), middleware.CurrentUser(c), c.Query("page"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	h.metrics.FeedServed(observability.FeedFollow)
	Render(c, http.StatusOK, "posts/follow.html", gin.H{
		"Page":     page,
		"BasePath": urls.FollowIndex(),
	})
}

func (h *UserHandler) Follow(c *gin.Context) {
	username := c.Param("username")

	if _, err := h.follows.FollowByUsername(c.Request.Context(), middleware.CurrentUser(c), username); err != nil {
		handleError(c, h.logger, err)
		return
	}
	h.metrics.FollowOperation("follow")
	c.Redirect(http.StatusFound, urls.Profile(username))
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	username := c.Param("username")

	if _, err := h.follows.UnfollowByUsername(c.Request.Context(), middleware.CurrentUser(c), username); err != nil {
		handleError(c, h.logger, err)
		return
	}
	h.metrics.FollowOperation("unfollow")
	c.Redirect(http.StatusFound, urls.Profile(username))
}
