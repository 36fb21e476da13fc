package handlers

import (
	"errors"
	"net/http"

	"load_transient/internal/service"

	"github.com/gin-gonic/gin"
)

type authCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

const (
	errBadCredentials = "invalid credentials"
	errAuthFailed     = "authentication failed"
)

func (h *Handler) bindCredentials(c *gin.Context) (authCredentials, bool) {
	var in authCredentials
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return in, false
	}
	return in, true
}

// @Summary      Register an operator
// @Description  Usernames are case-insensitive.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authCredentials  true  "Credentials"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	in, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	id, err := h.services.SignUp(c.Request.Context(), in.Username, in.Password)
	switch {
	case err == nil:
		if h.log != nil {
			h.log.Infow("operator_registered", "operator", id)
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	case errors.Is(err, service.ErrOperatorExists):
		c.JSON(http.StatusConflict, gin.H{"error": "operator already exists"})
	case errors.Is(err, service.ErrInvalidUsername), errors.Is(err, service.ErrEmptyPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errAuthFailed, "auth_sign_up_failed", err)
	}
}

// @Summary      Sign in and obtain a bearer token
// @Description  The token identifies the operator recorded on the runs they start.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authCredentials  true  "Credentials"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	in, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	token, err := h.services.GenerateToken(c.Request.Context(), in.Username, in.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"token": token})
	case errors.Is(err, service.ErrOperatorNotFound),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrInvalidUsername):
		if h.log != nil {
			h.log.Infow("auth_sign_in_rejected", "err", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": errBadCredentials})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errAuthFailed, "auth_sign_in_failed", err)
	}
}
