package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/apperr"
	"github.com/pageza/recipebox/backend/internal/models"
)

// Context keys set by BasicAuth.
const (
	ContextEmail  = "email"
	ContextUserID = "user_id"
)

// Authenticator verifies an email and password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// BasicAuth verifies HTTP Basic credentials against the user store and stores
// the caller's email and id in the context.
func BasicAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, password, ok := parseBasic(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c)
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), email, password)
		if err != nil {
			if errors.Is(err, apperr.ErrUnauthorized) {
				unauthorized(c)
				return
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(ContextEmail, user.Email)
		c.Set(ContextUserID, user.ID)
		c.Next()
	}
}

// UserID returns the authenticated caller's id.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func parseBasic(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return "", "", false
	}
	email, password, found := strings.Cut(string(decoded), ":")
	if !found || email == "" || password == "" {
		return "", "", false
	}
	return email, password, true
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="recipebox"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}
