package handler

import (
	"net/http"
	"strconv"

	"tutorlink/config"
	"tutorlink/internal/domain"
	"tutorlink/internal/middleware"
	"tutorlink/internal/models"
	"tutorlink/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReferralHandler struct {
	cfg         *config.Config
	profileRepo *repository.ProfileRepository
	clickRepo   *repository.ClickRepository
}

func NewReferralHandler(cfg *config.Config, profileRepo *repository.ProfileRepository, clickRepo *repository.ClickRepository) *ReferralHandler {
	return &ReferralHandler{cfg: cfg, profileRepo: profileRepo, clickRepo: clickRepo}
}

// TrackClick is the referral link landing: it records an anonymous click
// event, drops the attribution cookie and redirects to signup. Unknown codes
// degrade silently — visitor still lands on signup, just untracked.
// GET /r/:code
func (h *ReferralHandler) TrackClick(c *gin.Context) {
	referrer, err := h.profileRepo.GetByReferralCode(c.Param("code"))
	if err != nil {
		c.Redirect(http.StatusFound, h.cfg.Referral.SignupRedirectURL)
		return
	}
	ev := &models.ReferralClickEvent{
		Token:             uuid.NewString(),
		ReferrerProfileID: referrer.ID,
		OriginIP:          c.ClientIP(),
		Status:            domain.ClickReferred,
	}
	if err := h.clickRepo.Create(ev); err != nil {
		c.Redirect(http.StatusFound, h.cfg.Referral.SignupRedirectURL)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		h.cfg.Referral.CookieName,
		ev.Token,
		int(h.cfg.Referral.ClickTokenTTL.Seconds()),
		"/",
		"",
		h.cfg.Server.Env == "production",
		true,
	)
	c.Redirect(http.StatusFound, h.cfg.Referral.SignupRedirectURL)
}

// GetMyReferralCode returns the authenticated profile's referral code.
// GET /me/referral-code
func (h *ReferralHandler) GetMyReferralCode(c *gin.Context) {
	p, err := h.profileRepo.GetByID(middleware.GetProfileID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": p.ReferralCode})
}

// GetMyReferrals returns the caller's referral funnel, newest first.
// GET /me/referrals
func (h *ReferralHandler) GetMyReferrals(c *gin.Context) {
	profileID := middleware.GetProfileID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	events, err := h.clickRepo.ListByReferrer(profileID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list referrals"})
		return
	}
	out := make([]gin.H, 0, len(events))
	for _, ev := range events {
		out = append(out, gin.H{
			"status":       ev.Status,
			"clicked_at":   ev.CreatedAt,
			"signed_up_at": ev.SignedUpAt,
			"converted_at": ev.ConvertedAt,
			"booking_id":   ev.BookingID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"referrals": out, "total": len(out)})
}
