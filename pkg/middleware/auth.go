package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamsteps/teamsteps/internal/identity"
	"github.com/teamsteps/teamsteps/internal/users"
	"github.com/teamsteps/teamsteps/pkg/logger"
)

// IdentityKey is the gin context key holding the resolved identity.Identity.
const IdentityKey = "identity"

// TokenFromRequest reads the login token from ?token= and falls back to the
// "token" header.
func TokenFromRequest(c *gin.Context) string {
	if t := c.Query("token"); t != "" {
		return t
	}
	return c.GetHeader("token")
}

// StatusForError maps store and identity errors to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, identity.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, identity.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, users.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, users.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError writes {"error": ...} with the mapped status. Unexpected
// errors are logged and hidden from the client.
func AbortWithError(c *gin.Context, err error) {
	status := StatusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// TokenAuth resolves the request token and stores the identity in the context.
func TokenAuth(r *identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := r.Resolve(c.Request.Context(), TokenFromRequest(c))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Set(IdentityKey, id)
		c.Next()
	}
}

// RequireAdmin rejects callers without admin rights. Must run after TokenAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			AbortWithError(c, identity.ErrUnauthenticated)
			return
		}
		if !id.IsAdmin() {
			AbortWithError(c, identity.ErrForbidden)
			return
		}
		c.Next()
	}
}

// GetIdentity returns the identity set by TokenAuth.
func GetIdentity(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return identity.Identity{}, false
	}
	id, ok := v.(identity.Identity)
	return id, ok
}
