package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/auth"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/users"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerRequestPayload struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	BarNumber string `json:"barNumber"`
	Firm      string `json:"firm"`
}

type loginRequestPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponsePayload struct {
	Token string           `json:"token"`
	User  users.PublicUser `json:"user"`
}

type forgotRequestPayload struct {
	Email string `json:"email"`
}

type resetRequestPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *httpHandler) handleRegister(c *gin.Context) {
	var request registerRequestPayload
	if err := decodeJSON(c, &request); err != nil {
		h.respondInvalidRequest(c)
		return
	}
	user, err := h.users.Register(c.Request.Context(), users.RegisterInput{
		Name:      request.Name,
		Email:     request.Email,
		Password:  request.Password,
		Role:      users.Role(request.Role),
		BarNumber: request.BarNumber,
		Firm:      request.Firm,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID})
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var request loginRequestPayload
	if err := decodeJSON(c, &request); err != nil {
		h.respondInvalidRequest(c)
		return
	}
	user, err := h.users.Authenticate(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, _, err := h.tokens.Issue(auth.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		h.logger.Error("failed to issue session token", zap.String("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessions.CookieName(), token, int(h.tokens.TTL().Seconds()), "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, loginResponsePayload{Token: token, User: user.Public()})
}

func (h *httpHandler) handleLogout(c *gin.Context) {
	if identity, err := h.sessions.ValidateRequest(c.Request); err == nil && h.revocations != nil && identity.TokenID != "" {
		if err := h.revocations.Revoke(c.Request.Context(), identity.TokenID, identity.ExpiresAt); err != nil {
			h.logger.Error("failed to revoke session token",
				zap.String("user_id", identity.UserID),
				zap.String("token_id", identity.TokenID),
				zap.Error(err))
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessions.CookieName(), "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *httpHandler) handleForgotPassword(c *gin.Context) {
	var request forgotRequestPayload
	if err := decodeJSON(c, &request); err != nil {
		h.respondInvalidRequest(c)
		return
	}
	reset, err := h.users.RequestPasswordReset(c.Request.Context(), request.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if reset == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	resetURL := h.appBaseURL + "/reset-password?token=" + url.QueryEscape(reset.Token)
	if h.mailer != nil {
		if err := h.mailer.SendPasswordReset(reset.User.Email, reset.User.Name, resetURL); err != nil {
			h.logger.Warn("password reset email failed", zap.String("user_id", reset.User.ID), zap.Error(err))
		}
	}

	response := gin.H{"ok": true}
	if h.exposeResetToken {
		response["token"] = reset.Token
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleResetPassword(c *gin.Context) {
	var request resetRequestPayload
	if err := decodeJSON(c, &request); err != nil {
		h.respondInvalidRequest(c)
		return
	}
	if err := h.users.ResetPassword(c.Request.Context(), request.Token, request.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *httpHandler) handleMe(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.GetString(userIDContextKey))
	if errors.Is(err, users.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}
