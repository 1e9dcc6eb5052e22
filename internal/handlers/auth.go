package handlers

import (
	"errors"
	"net/http"

	"cleo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// Single, shared credentials payload for both sign-up and sign-in.
type authCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authCredentials  true  "Credentials"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	id, err := h.services.Authorization.SignUp(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, "sign_up_failed", err.Error(), "auth_sign_up_failed", err,
			"username", input.Username)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// @Summary      Sign in
// @Description  Starts a session and returns a bearer token bound to it.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authCredentials  true  "Credentials"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.Authorization.SignIn(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrInvalidPassword) {
			h.logAndJSONError(c, http.StatusUnauthorized, "unauthorized", "invalid credentials", "auth_sign_in_failed", err,
				"username", input.Username)
			return
		}
		h.respondError(c, "auth_sign_in_failed", err, "username", input.Username)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// @Summary      Sign out
// @Description  Ends the current session. The token stops working immediately.
// @Tags         auth
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/auth/sign-out [post]
// @Security     BearerAuth
func (h *Handler) signOut(c *gin.Context) {
	sid := c.GetString(ctxSessionID)
	if err := h.services.Authorization.SignOut(c.Request.Context(), sid); err != nil {
		h.respondError(c, "auth_sign_out_failed", err, "session_id", sid)
		return
	}
	c.Status(http.StatusNoContent)
}
