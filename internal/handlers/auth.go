package handlers

import (
	"errors"
	"net/http"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/services"
	"yatube/internal/urls"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth   *services.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	Render(c, http.StatusOK, "auth/signup.html", nil)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	in := services.SignupInput{
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}

	user, err := h.auth.Register(c.Request.Context(), in)
	if ve, ok := services.IsValidation(err); ok {
		Render(c, http.StatusBadRequest, "auth/signup.html", gin.H{
			"Username": in.Username,
			"Errors":   ve.Fields,
		})
		return
	}
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	if err := h.login(c, user.ID); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, urls.Index())
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Next": c.Query("next")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	next := c.PostForm("next")

	user, err := h.auth.Authenticate(c.Request.Context(), username, c.PostForm("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
			"Error":    "Неверное имя пользователя или пароль.",
			"Username": username,
			"Next":     next,
		})
		return
	}
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	if err := h.login(c, user.ID); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, urls.Index())
}

func (h *AuthHandler) login(c *gin.Context, userID uint) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, userID)
	return session.Save()
}

// safeNext only follows local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return urls.Index()
	}
	return next
}
