package service

import (
	"errors"
	"time"

	"tutorlink/config"
	"tutorlink/internal/domain"
	"tutorlink/internal/models"
	"tutorlink/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrSelfReferral = errors.New("profile cannot refer itself")

// SignupAttribution carries the attribution hints from a signup request.
type SignupAttribution struct {
	ReferralCode string // explicit code typed or deep-linked by the user
	ClickToken   string // attribution cookie set by a referral link visit
	OriginIP     string
}

// AttributionMatch is a resolved referrer. Click is the open click event that
// produced the match, when one exists; nil means the match came from a layer
// that has no event behind it (an explicit code).
type AttributionMatch struct {
	ReferrerID uint
	Click      *models.ReferralClickEvent

	// tokenHint lets Apply claim the click event behind the request's token
	// even when the match itself came from the explicit-code layer.
	tokenHint string
}

// AttributionResolver decides a new profile's referrer of record. The three
// layers run in strict priority order and the first match wins outright:
//
//  1. explicit referral code (case-insensitive),
//  2. open click event behind the request's click token,
//  3. most recent anonymous click from the same IP inside the match window.
//
// Every layer degrades silently: an unknown code or stale token simply falls
// through to the next layer, and a fully unresolved signup gets no referrer.
type AttributionResolver struct {
	profiles *repository.ProfileRepository
	clicks   *repository.ClickRepository
	cfg      *config.ReferralConfig
}

func NewAttributionResolver(profiles *repository.ProfileRepository, clicks *repository.ClickRepository, cfg *config.ReferralConfig) *AttributionResolver {
	return &AttributionResolver{profiles: profiles, clicks: clicks, cfg: cfg}
}

// WithTx returns a resolver bound to the given transaction. Resolution and
// stamping must share the profile-creation transaction: a profile created
// without its attribution applied is a permanent, silent revenue bug.
func (r *AttributionResolver) WithTx(tx *gorm.DB) *AttributionResolver {
	return &AttributionResolver{
		profiles: r.profiles.WithTx(tx),
		clicks:   r.clicks.WithTx(tx),
		cfg:      r.cfg,
	}
}

// Resolve runs the layer chain. A nil match with a nil error means no layer
// resolved and the signup proceeds unattributed.
func (r *AttributionResolver) Resolve(in SignupAttribution) (*AttributionMatch, error) {
	layers := []func(SignupAttribution) (*AttributionMatch, error){
		r.byExplicitCode,
		r.byClickToken,
		r.byOriginIP,
	}
	for _, layer := range layers {
		m, err := layer(in)
		if err != nil {
			return nil, err
		}
		if m != nil {
			return m, nil
		}
	}
	return nil, nil
}

// Apply stamps the resolved referrer onto the new profile and records the
// funnel signup. Must run inside the same transaction as profile creation
// (use WithTx).
func (r *AttributionResolver) Apply(profileID uint, m *AttributionMatch) error {
	if m.ReferrerID == profileID {
		return ErrSelfReferral
	}
	if err := r.profiles.StampReferrer(profileID, m.ReferrerID); err != nil {
		return err
	}
	click := m.Click
	if click == nil && m.tokenHint != "" {
		// Code-resolved signup: claim the open click event behind the
		// request's token if it belongs to the same referrer.
		if ev, err := r.clicks.GetOpenByToken(m.tokenHint, r.cfg.ClickTokenTTL); err == nil && ev.ReferrerProfileID == m.ReferrerID {
			click = ev
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	if click != nil {
		return r.clicks.MarkSignedUp(click, profileID)
	}
	// No click event to claim — record the funnel signup directly.
	now := time.Now()
	return r.clicks.Create(&models.ReferralClickEvent{
		Token:             uuid.NewString(),
		ReferrerProfileID: m.ReferrerID,
		ReferredProfileID: &profileID,
		Status:            domain.ClickSignedUp,
		SignedUpAt:        &now,
	})
}

func (r *AttributionResolver) byExplicitCode(in SignupAttribution) (*AttributionMatch, error) {
	if in.ReferralCode == "" {
		return nil, nil
	}
	p, err := r.profiles.GetByReferralCode(in.ReferralCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &AttributionMatch{ReferrerID: p.ID, tokenHint: in.ClickToken}, nil
}

func (r *AttributionResolver) byClickToken(in SignupAttribution) (*AttributionMatch, error) {
	if in.ClickToken == "" {
		return nil, nil
	}
	ev, err := r.clicks.GetOpenByToken(in.ClickToken, r.cfg.ClickTokenTTL)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &AttributionMatch{ReferrerID: ev.ReferrerProfileID, Click: ev}, nil
}

func (r *AttributionResolver) byOriginIP(in SignupAttribution) (*AttributionMatch, error) {
	if in.OriginIP == "" {
		return nil, nil
	}
	ev, err := r.clicks.LatestAnonymousByIP(in.OriginIP, r.cfg.IPMatchWindow)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &AttributionMatch{ReferrerID: ev.ReferrerProfileID, Click: ev}, nil
}
