// Package api holds the HTTP handlers. Handlers push failures with c.Error
// and leave rendering to middleware.ErrorHandler.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/apperr"
	"github.com/pageza/recipebox/backend/internal/middleware"
)

// pathID parses a uuid path parameter. Anything that is not a uuid cannot
// name an existing row, so it is reported as not found.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = c.Error(apperr.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// caller returns the authenticated user's id.
func caller(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		_ = c.Error(apperr.ErrUnauthorized)
	}
	return id, ok
}
