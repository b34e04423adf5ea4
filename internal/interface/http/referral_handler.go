package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/astimch/go-referrals/config"
	"github.com/astimch/go-referrals/internal/application"
	"github.com/astimch/go-referrals/internal/domain/entity"
	"github.com/astimch/go-referrals/internal/interface/middleware"
	"github.com/astimch/go-referrals/pkg/helpers"
	"github.com/astimch/go-referrals/pkg/mailer"
	"github.com/astimch/go-referrals/pkg/response"
	"github.com/astimch/go-referrals/pkg/validation"
)

type ReferralHandler struct {
	Referrals *application.ReferralService
	Auth      *application.AuthService
	Pub       *helpers.RabbitPublisher
	Logger    *logrus.Logger
	Cfg       *config.Config
}

func NewReferralHandler(referrals *application.ReferralService, auth *application.AuthService, pub *helpers.RabbitPublisher, logger *logrus.Logger, cfg *config.Config) *ReferralHandler {
	return &ReferralHandler{Referrals: referrals, Auth: auth, Pub: pub, Logger: logger, Cfg: cfg}
}

type renewRequest struct {
	CodeLifetime int `json:"code_lifetime" binding:"gte=0"` // minutes
}

type referralCodeResponse struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

func toCodeResponse(rc *entity.ReferralCode) referralCodeResponse {
	return referralCodeResponse{ID: rc.ID, Code: rc.Code}
}

func codeStatus(err error) int {
	if errors.Is(err, application.ErrReferralCodeExpired) {
		return http.StatusBadRequest
	}
	return http.StatusNotFound
}

// Renew POST /api/v1/referral_code (auth required)
// Replaces the caller's referral code with a fresh one valid for
// code_lifetime minutes.
func (h *ReferralHandler) Renew(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "authorization error", nil)
		return
	}
	var req renewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	rc, err := h.Referrals.Renew(c.Request.Context(), u, req.CodeLifetime)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("referral code renewal failed")
		response.Error[any](c, http.StatusInternalServerError, "referral code renewal failed", nil)
		return
	}
	response.Success(c, http.StatusOK, toCodeResponse(rc), "referral code renewed", nil)
}

// Get GET /api/v1/referral_code (auth required)
func (h *ReferralHandler) Get(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "authorization error", nil)
		return
	}
	rc, err := h.Referrals.GetByUserID(c.Request.Context(), u.ID)
	if err != nil {
		if errors.Is(err, application.ErrReferralCodeNotFound) {
			response.Error[any](c, http.StatusNotFound, "referral code not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("referral code lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "referral code lookup failed", nil)
		return
	}
	response.Success(c, http.StatusOK, toCodeResponse(rc), "referral code", nil)
}

// GetByEmail GET /api/v1/referral_code/:email
func (h *ReferralHandler) GetByEmail(c *gin.Context) {
	email := c.Param("email")
	rc, err := h.Referrals.GetByUserEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, application.ErrReferralCodeNotFound) {
			response.Error[any](c, http.StatusNotFound, "referral code not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("email", email).Error("referral code lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "referral code lookup failed", nil)
		return
	}
	response.Success(c, http.StatusOK, toCodeResponse(rc), "referral code", nil)
}

// ReferralsByReferrer GET /api/v1/referrals/:referrer_id
func (h *ReferralHandler) ReferralsByReferrer(c *gin.Context) {
	referrerID, err := strconv.ParseInt(c.Param("referrer_id"), 10, 64)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid referrer id", nil)
		return
	}
	users, err := h.Auth.Referrals(c.Request.Context(), referrerID)
	if err != nil {
		h.Logger.WithError(err).WithField("referrer_id", referrerID).Error("referrals lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "referrals lookup failed", nil)
		return
	}
	referrals := make([]application.ReferralUser, 0, len(users))
	for _, u := range users {
		referrals = append(referrals, application.ReferralUser{ID: u.ID, Email: u.Email})
	}
	response.Success(c, http.StatusOK, gin.H{"referrals": referrals}, "referrals", nil)
}

// Validate GET /api/v1/validate_referral_code?referral_code=...
// Resolves a presented code to the issuing user's id.
func (h *ReferralHandler) Validate(c *gin.Context) {
	code := c.Query("referral_code")
	referrerID, err := h.Referrals.ResolveReferrer(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, application.ErrReferralCodeNotFound) || errors.Is(err, application.ErrReferralCodeExpired) {
			response.Error[any](c, codeStatus(err), err.Error(), nil)
			return
		}
		h.Logger.WithError(err).Error("referral code validation failed")
		response.Error[any](c, http.StatusInternalServerError, "referral code validation failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"referrer_id": referrerID}, "referral code valid", nil)
}

// Email GET /api/v1/email_referral_code (auth required)
// Queues the caller's current code for delivery to their own address.
func (h *ReferralHandler) Email(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "authorization error", nil)
		return
	}
	rc, err := h.Referrals.GetByUserID(c.Request.Context(), u.ID)
	if err != nil {
		if errors.Is(err, application.ErrReferralCodeNotFound) {
			response.Error[any](c, http.StatusNotFound, "referral code not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("referral code lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "referral code lookup failed", nil)
		return
	}
	if h.Pub != nil && h.Cfg != nil && h.Cfg.MailSendEnabled {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: "referral_code",
			Data:     map[string]any{"Code": rc.Code, "AppName": h.Cfg.AppName},
		}
		if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil {
			h.Logger.WithError(err).WithField("user_id", u.ID).Error("email job publish failed")
			response.Error[any](c, http.StatusInternalServerError, "email delivery unavailable", nil)
			return
		}
	}
	response.Success[any](c, http.StatusAccepted, gin.H{"queued": true}, "referral code will be emailed", nil)
}

// Delete DELETE /api/v1/referral_code (auth required)
func (h *ReferralHandler) Delete(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "authorization error", nil)
		return
	}
	if err := h.Referrals.DeleteByUserID(c.Request.Context(), u.ID); err != nil {
		if errors.Is(err, application.ErrReferralCodeForUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "referral code for user not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("referral code deletion failed")
		response.Error[any](c, http.StatusInternalServerError, "referral code deletion failed", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
