package handler

import (
	"errors"
	"net/http"

	"tutorlink/config"
	"tutorlink/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	cfg       *config.Config
	signupSvc *service.SignupService
}

func NewAuthHandler(cfg *config.Config, signupSvc *service.SignupService) *AuthHandler {
	return &AuthHandler{cfg: cfg, signupSvc: signupSvc}
}

type registerRequest struct {
	DisplayName  string `json:"display_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	ReferralCode string `json:"referral_code"`
	ClickToken   string `json:"click_token"`
}

// Register creates a profile. Attribution hints come from the payload; the
// click token falls back to the attribution cookie set by a referral link
// visit.
// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	clickToken := req.ClickToken
	if clickToken == "" {
		if v, err := c.Cookie(h.cfg.Referral.CookieName); err == nil {
			clickToken = v
		}
	}
	p, access, refresh, err := h.signupSvc.Register(service.RegisterInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
		Attribution: service.SignupAttribution{
			ReferralCode: req.ReferralCode,
			ClickToken:   clickToken,
			OriginIP:     c.ClientIP(),
		},
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	// The attribution cookie is spent either way; clear it.
	c.SetCookie(h.cfg.Referral.CookieName, "", -1, "/", "", h.cfg.Server.Env == "production", true)
	c.JSON(http.StatusCreated, gin.H{
		"profile": gin.H{
			"id":            p.ID,
			"display_name":  p.DisplayName,
			"email":         p.Email,
			"referral_code": p.ReferralCode,
			"referred":      p.ReferredByProfileID != nil,
		},
		"access_token":  access,
		"refresh_token": refresh,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, access, refresh, err := h.signupSvc.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile": gin.H{
			"id":            p.ID,
			"display_name":  p.DisplayName,
			"email":         p.Email,
			"referral_code": p.ReferralCode,
		},
		"access_token":  access,
		"refresh_token": refresh,
	})
}
