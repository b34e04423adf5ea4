package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/astimch/go-referrals/internal/application"
	"github.com/astimch/go-referrals/internal/interface/middleware"
	"github.com/astimch/go-referrals/pkg/response"
	"github.com/astimch/go-referrals/pkg/validation"
)

type AuthHandler struct {
	Auth      *application.AuthService
	Referrals *application.ReferralService
	Logger    *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, referrals *application.ReferralService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Referrals: referrals, Logger: logger}
}

type registerRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,pwd"`
	ReferralCode string `json:"referral_code"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register POST /api/v1/auth/register
// An optional referral_code is resolved to its issuing user before the
// account is created; the new user is linked as that user's referral.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	var referrerID *int64
	if req.ReferralCode != "" {
		id, err := h.Referrals.ResolveReferrer(c.Request.Context(), req.ReferralCode)
		if err != nil {
			status := http.StatusNotFound
			if errors.Is(err, application.ErrReferralCodeExpired) {
				status = http.StatusBadRequest
			}
			response.Error[any](c, status, err.Error(), nil)
			return
		}
		referrerID = &id
	}

	if err := h.Auth.Register(c.Request.Context(), req.Email, req.Password, referrerID); err != nil {
		if errors.Is(err, application.ErrUserAlreadyExists) {
			response.Error[any](c, http.StatusConflict, "user already exists", nil)
			return
		}
		h.Logger.WithError(err).WithField("email", req.Email).Error("registration failed")
		response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		return
	}
	response.Success[any](c, http.StatusCreated, gin.H{"registered": true}, "user registered", nil)
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		return
	}
	token, err := h.Auth.IssueSessionToken(u)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("session token issuance failed")
		response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"}, "login successful", nil)
}

// Me GET /api/v1/auth/me (auth required)
func (h *AuthHandler) Me(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "authorization error", nil)
		return
	}
	profile, err := h.Auth.UserProfile(c.Request.Context(), u)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("profile load failed")
		response.Error[any](c, http.StatusInternalServerError, "profile load failed", nil)
		return
	}
	response.Success(c, http.StatusOK, profile, "profile", nil)
}
