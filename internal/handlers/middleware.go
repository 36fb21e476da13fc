package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var errNonPositiveOperator = errors.New("token carries no operator")

// ctxOperatorID is the gin context key holding the authenticated operator.
const ctxOperatorID = "operatorId"

const (
	errMissingAuthHeader = "missing Authorization header"
	errAuthHeaderFormat  = "invalid Authorization header format"
	errTokenRejected     = "invalid or expired token"
)

// requireOperator authenticates the bearer token and records the operator
// ID for the handlers behind it. ID 0 is reserved for runs started from the
// CLI and never accepted from a token.
func (h *Handler) requireOperator(c *gin.Context) {
	token, msg := bearerToken(c.GetHeader("Authorization"))
	if msg != "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
		return
	}

	id, err := h.services.ParseToken(token)
	if err == nil && id <= 0 {
		err = errNonPositiveOperator
	}
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_token_rejected", "path", c.Request.URL.Path, "err", err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errTokenRejected})
		return
	}

	c.Set(ctxOperatorID, id)
	c.Next()
}

// bearerToken extracts the token from an Authorization header. The second
// result is the client-facing reason when the header is unusable.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", errMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || strings.TrimSpace(token) == "" {
		return "", errAuthHeaderFormat
	}
	return strings.TrimSpace(token), ""
}

// operatorID returns the operator set by requireOperator, or 0.
func operatorID(c *gin.Context) int {
	return c.GetInt(ctxOperatorID)
}
