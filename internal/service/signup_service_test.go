package service

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"tutorlink/internal/domain"
	"tutorlink/internal/models"
	"tutorlink/internal/repository"

	"gorm.io/gorm"
)

func newSignupService(db *gorm.DB) *SignupService {
	cfg := testConfig()
	profiles := repository.NewProfileRepository(db)
	clicks := repository.NewClickRepository(db)
	resolver := NewAttributionResolver(profiles, clicks, &cfg.Referral)
	return NewSignupService(cfg, db, profiles, resolver)
}

func TestRegisterAssignsReferralCode(t *testing.T) {
	db := newTestDB(t)
	svc := newSignupService(db)

	p, access, refresh, err := svc.Register(RegisterInput{
		DisplayName: "Jane Doe",
		Email:       "jane@example.com",
		Password:    "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !regexp.MustCompile(`^JANE-\d{4}$`).MatchString(p.ReferralCode) {
		t.Errorf("referral code = %q, want JANE-NNNN", p.ReferralCode)
	}
	if p.ReferredByProfileID != nil {
		t.Errorf("expected unattributed signup, got referrer %v", p.ReferredByProfileID)
	}
	if access == "" || refresh == "" {
		t.Errorf("expected tokens to be issued")
	}
}

func TestRegisterWithReferralCode(t *testing.T) {
	db := newTestDB(t)
	svc := newSignupService(db)
	referrer := createProfile(t, db, "Anna", "anna@example.com", "ANNA-1111", nil)

	p, _, _, err := svc.Register(RegisterInput{
		DisplayName: "Eve Adams",
		Email:       "eve@example.com",
		Password:    "correct-horse-battery",
		Attribution: SignupAttribution{ReferralCode: "ANNA-1111"},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if p.ReferredByProfileID == nil || *p.ReferredByProfileID != referrer.ID {
		t.Fatalf("expected referrer %d, got %v", referrer.ID, p.ReferredByProfileID)
	}

	var ev models.ReferralClickEvent
	if err := db.Where("referred_profile_id = ?", p.ID).First(&ev).Error; err != nil {
		t.Fatalf("expected a SIGNED_UP funnel event: %v", err)
	}
	if ev.Status != domain.ClickSignedUp {
		t.Errorf("funnel event status = %s, want %s", ev.Status, domain.ClickSignedUp)
	}
}

func TestRegisterWithExpiredTokenIsUnattributed(t *testing.T) {
	db := newTestDB(t)
	svc := newSignupService(db)
	referrer := createProfile(t, db, "Ben", "ben@example.com", "BEN-2222", nil)
	stale := createClick(t, db, referrer.ID, "tok-stale", "", time.Now().Add(-31*24*time.Hour))

	p, _, _, err := svc.Register(RegisterInput{
		DisplayName: "Eve Adams",
		Email:       "eve@example.com",
		Password:    "correct-horse-battery",
		Attribution: SignupAttribution{ClickToken: "tok-stale"},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if p.ReferredByProfileID != nil {
		t.Fatalf("expected no referrer, got %v", p.ReferredByProfileID)
	}

	// The stale event is untouched and no new event appeared.
	var count int64
	db.Model(&models.ReferralClickEvent{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 click event, got %d", count)
	}
	var ev models.ReferralClickEvent
	db.First(&ev, stale.ID)
	if ev.Status != domain.ClickReferred || ev.ReferredProfileID != nil {
		t.Fatalf("stale event mutated: status=%s referred=%v", ev.Status, ev.ReferredProfileID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newSignupService(db)
	createProfile(t, db, "Jane", "jane@example.com", "JANE-9999", nil)

	_, _, _, err := svc.Register(RegisterInput{
		DisplayName: "Jane Doe",
		Email:       "jane@example.com",
		Password:    "correct-horse-battery",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestRegisterRetriesCodeCollisions(t *testing.T) {
	db := newTestDB(t)
	svc := newSignupService(db)

	// Two signups with the same first name must both succeed; a suffix
	// collision is recovered by retrying, never surfaced.
	for i, email := range []string{"a@example.com", "b@example.com"} {
		p, _, _, err := svc.Register(RegisterInput{
			DisplayName: "Sam Smith",
			Email:       email,
			Password:    "correct-horse-battery",
		})
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		if p.ReferralCode == "" {
			t.Fatalf("register %d: empty referral code", i)
		}
	}
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newSignupService(db)
	if _, _, _, err := svc.Register(RegisterInput{
		DisplayName: "Jane Doe",
		Email:       "jane@example.com",
		Password:    "correct-horse-battery",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, _, err := svc.Login("jane@example.com", "correct-horse-battery"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, _, err := svc.Login("jane@example.com", "wrong"); !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("expected ErrInvalidCreds, got %v", err)
	}
}
