package router

import (
	"net/http"
	"strings"

	"yatube/internal/cache"
	"yatube/internal/handlers"
	"yatube/internal/middleware"
	"yatube/internal/observability"
	"yatube/internal/services"
	"yatube/internal/storage"
	"yatube/internal/views"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionName = "yatube_session"

// Deps is everything the HTTP layer needs. MediaRoot is only set when
// uploads live on local disk and are served by this process.
type Deps struct {
	Repo          services.Repository
	Storage       storage.Storage
	Cache         cache.PageCache
	Views         *views.Set
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	SessionSecret string
	MediaURL      string
	MediaRoot     string
	// PasswordCost overrides the bcrypt cost, 0 keeps the default.
	PasswordCost int
}

func New(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Metrics(d.Metrics))

	store := cookie.NewStore([]byte(d.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	r.HTMLRender = d.Views

	if d.MediaRoot != "" {
		r.Static(mediaPrefix(d.MediaURL), d.MediaRoot)
	}
	if h := d.Metrics.Handler(); h != nil {
		r.GET("/metrics", gin.WrapH(h))
	}

	r.Use(middleware.LoadUser(d.Repo))

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	auth := services.NewAuthService(d.Repo, d.Logger)
	if d.PasswordCost > 0 {
		auth.WithCost(d.PasswordCost)
	}
	feeds := services.NewFeedService(d.Repo, d.Logger)
	follows := services.NewFollowService(d.Repo, d.Logger)
	posts := services.NewPostService(d.Repo, d.Storage, d.Logger)
	comments := services.NewCommentService(d.Repo, d.Logger)

	authHandler := handlers.NewAuthHandler(auth, d.Logger)
	postHandler := handlers.NewPostHandler(feeds, posts, comments, d.Cache, d.Views, d.Metrics, d.Logger)
	userHandler := handlers.NewUserHandler(feeds, follows, d.Metrics, d.Logger)
	adminHandler := handlers.NewAdminHandler(d.Cache, d.Logger)

	// 公共路由 (Public Routes)
	r.GET("/", postHandler.Index)
	r.GET("/group/:slug/", postHandler.GroupPosts)
	r.GET("/profile/:username/", userHandler.Profile)
	r.GET("/posts/:id/", postHandler.Detail)

	r.GET("/auth/signup/", authHandler.ShowSignup)
	r.POST("/auth/signup/", authHandler.Signup)
	r.GET("/auth/login/", authHandler.ShowLogin)
	r.POST("/auth/login/", authHandler.Login)
	r.GET("/auth/logout/", authHandler.Logout)

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/create/", postHandler.ShowCreate)
		authorized.POST("/create/", postHandler.Create)
		authorized.GET("/posts/:id/edit/", postHandler.ShowEdit)
		authorized.POST("/posts/:id/edit/", postHandler.Update)
		authorized.POST("/posts/:id/comment/", postHandler.AddComment)
		authorized.GET("/follow/", userHandler.FollowIndex)
		authorized.GET("/profile/:username/follow/", userHandler.Follow)
		authorized.GET("/profile/:username/unfollow/", userHandler.Unfollow)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.StaffRequired())
	{
		admin.POST("/cache/clear", adminHandler.ClearCache)
	}

	r.NoRoute(handlers.RenderNotFound)
}

// mediaPrefix turns MEDIA_URL ("/media/") into a route prefix ("/media").
func mediaPrefix(mediaURL string) string {
	p := "/" + strings.Trim(mediaURL, "/")
	if p == "/" {
		return "/media"
	}
	return p
}
