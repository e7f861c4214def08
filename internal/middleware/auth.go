package middleware

import (
	"context"
	"net/http"

	"yatube/internal/models"
	"yatube/internal/urls"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// CheckUserKey is where LoadUser puts the signed-in *models.User.
	CheckUserKey = "user"
	// SessionUserKey holds the user id inside the cookie session.
	SessionUserKey = "user_id"
)

type UserLoader interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// LoadUser resolves the session's user id. A stale id (deleted user) is
// dropped from the session.
func LoadUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if id, ok := session.Get(SessionUserKey).(uint); ok {
			user, err := users.GetUser(c.Request.Context(), id)
			if err == nil {
				c.Set(CheckUserKey, user)
			} else {
				session.Delete(SessionUserKey)
				_ = session.Save()
			}
		}
		c.Next()
	}
}

// CurrentUser returns the signed-in user or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// AuthRequired sends guests to the login page, remembering where they
// were going.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, urls.Login(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// StaffRequired lets staff through; other users get 403.
func StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.Redirect(http.StatusFound, urls.Login(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		if !user.IsStaff {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
