package service

import (
	"errors"
	"testing"
	"time"

	"tutorlink/internal/domain"
	"tutorlink/internal/models"
	"tutorlink/internal/repository"

	"gorm.io/gorm"
)

func newResolver(db *gorm.DB) *AttributionResolver {
	cfg := testConfig()
	return NewAttributionResolver(
		repository.NewProfileRepository(db),
		repository.NewClickRepository(db),
		&cfg.Referral,
	)
}

func createClick(t *testing.T, db *gorm.DB, referrerID uint, token, ip string, createdAt time.Time) *models.ReferralClickEvent {
	t.Helper()
	ev := &models.ReferralClickEvent{
		Token:             token,
		ReferrerProfileID: referrerID,
		OriginIP:          ip,
		Status:            domain.ClickReferred,
		CreatedAt:         createdAt,
	}
	if err := db.Create(ev).Error; err != nil {
		t.Fatalf("create click event: %v", err)
	}
	return ev
}

func TestResolveExplicitCodeWinsOverToken(t *testing.T) {
	db := newTestDB(t)
	codeOwner := createProfile(t, db, "Anna", "anna@example.com", "ANNA-1111", nil)
	clickOwner := createProfile(t, db, "Ben", "ben@example.com", "BEN-2222", nil)
	createClick(t, db, clickOwner.ID, "tok-1", "203.0.113.7", time.Now())

	m, err := newResolver(db).Resolve(SignupAttribution{
		ReferralCode: "anna-1111", // case-insensitive
		ClickToken:   "tok-1",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m == nil || m.ReferrerID != codeOwner.ID {
		t.Fatalf("expected code owner %d to win, got %+v", codeOwner.ID, m)
	}
}

func TestResolveByClickToken(t *testing.T) {
	db := newTestDB(t)
	referrer := createProfile(t, db, "Ben", "ben@example.com", "BEN-2222", nil)
	ev := createClick(t, db, referrer.ID, "tok-2", "203.0.113.7", time.Now())

	m, err := newResolver(db).Resolve(SignupAttribution{ClickToken: "tok-2"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m == nil || m.ReferrerID != referrer.ID {
		t.Fatalf("expected referrer %d, got %+v", referrer.ID, m)
	}
	if m.Click == nil || m.Click.ID != ev.ID {
		t.Fatalf("expected the click event to back the match")
	}
}

func TestResolveUnknownCodeFallsThroughToToken(t *testing.T) {
	db := newTestDB(t)
	referrer := createProfile(t, db, "Ben", "ben@example.com", "BEN-2222", nil)
	createClick(t, db, referrer.ID, "tok-3", "203.0.113.7", time.Now())

	m, err := newResolver(db).Resolve(SignupAttribution{
		ReferralCode: "NOBODY-0000",
		ClickToken:   "tok-3",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m == nil || m.ReferrerID != referrer.ID {
		t.Fatalf("expected token layer to resolve after unknown code, got %+v", m)
	}
}

func TestResolveExpiredTokenResolvesNothing(t *testing.T) {
	db := newTestDB(t)
	referrer := createProfile(t, db, "Ben", "ben@example.com", "BEN-2222", nil)
	createClick(t, db, referrer.ID, "tok-old", "", time.Now().Add(-31*24*time.Hour))

	m, err := newResolver(db).Resolve(SignupAttribution{ClickToken: "tok-old"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m != nil {
		t.Fatalf("expected no match for expired token, got %+v", m)
	}
}

func TestResolveByOriginIP(t *testing.T) {
	db := newTestDB(t)
	older := createProfile(t, db, "Cara", "cara@example.com", "CARA-3333", nil)
	newer := createProfile(t, db, "Dan", "dan@example.com", "DAN-4444", nil)
	createClick(t, db, older.ID, "tok-a", "198.51.100.9", time.Now().Add(-2*time.Hour))
	createClick(t, db, newer.ID, "tok-b", "198.51.100.9", time.Now().Add(-1*time.Hour))

	m, err := newResolver(db).Resolve(SignupAttribution{OriginIP: "198.51.100.9"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m == nil || m.ReferrerID != newer.ID {
		t.Fatalf("expected most recent click's referrer %d, got %+v", newer.ID, m)
	}
}

func TestResolveIPOutsideWindow(t *testing.T) {
	db := newTestDB(t)
	referrer := createProfile(t, db, "Cara", "cara@example.com", "CARA-3333", nil)
	createClick(t, db, referrer.ID, "tok-c", "198.51.100.9", time.Now().Add(-25*time.Hour))

	m, err := newResolver(db).Resolve(SignupAttribution{OriginIP: "198.51.100.9"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m != nil {
		t.Fatalf("expected no match outside the IP window, got %+v", m)
	}
}

func TestApplyStampsProfileAndClaimsClick(t *testing.T) {
	db := newTestDB(t)
	referrer := createProfile(t, db, "Ben", "ben@example.com", "BEN-2222", nil)
	referred := createProfile(t, db, "Eve", "eve@example.com", "EVE-5555", nil)
	ev := createClick(t, db, referrer.ID, "tok-4", "203.0.113.7", time.Now())

	resolver := newResolver(db)
	m, err := resolver.Resolve(SignupAttribution{ClickToken: "tok-4"})
	if err != nil || m == nil {
		t.Fatalf("resolve: %v %+v", err, m)
	}
	if err := resolver.Apply(referred.ID, m); err != nil {
		t.Fatalf("apply: %v", err)
	}

	var p models.Profile
	if err := db.First(&p, referred.ID).Error; err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if p.ReferredByProfileID == nil || *p.ReferredByProfileID != referrer.ID {
		t.Fatalf("expected referrer %d stamped, got %v", referrer.ID, p.ReferredByProfileID)
	}

	var got models.ReferralClickEvent
	if err := db.First(&got, ev.ID).Error; err != nil {
		t.Fatalf("reload click: %v", err)
	}
	if got.Status != domain.ClickSignedUp {
		t.Errorf("click status = %s, want %s", got.Status, domain.ClickSignedUp)
	}
	if got.ReferredProfileID == nil || *got.ReferredProfileID != referred.ID {
		t.Errorf("click referred_profile_id = %v, want %d", got.ReferredProfileID, referred.ID)
	}
	if got.SignedUpAt == nil {
		t.Errorf("expected signed_up_at to be set")
	}
}

func TestApplyCreatesSignedUpEventForCodeOnlyMatch(t *testing.T) {
	db := newTestDB(t)
	referrer := createProfile(t, db, "Anna", "anna@example.com", "ANNA-1111", nil)
	referred := createProfile(t, db, "Eve", "eve@example.com", "EVE-5555", nil)

	resolver := newResolver(db)
	m, err := resolver.Resolve(SignupAttribution{ReferralCode: "ANNA-1111"})
	if err != nil || m == nil {
		t.Fatalf("resolve: %v %+v", err, m)
	}
	if err := resolver.Apply(referred.ID, m); err != nil {
		t.Fatalf("apply: %v", err)
	}

	var ev models.ReferralClickEvent
	err = db.Where("referrer_profile_id = ? AND referred_profile_id = ?", referrer.ID, referred.ID).First(&ev).Error
	if err != nil {
		t.Fatalf("expected a funnel event to be created: %v", err)
	}
	if ev.Status != domain.ClickSignedUp {
		t.Errorf("event status = %s, want %s", ev.Status, domain.ClickSignedUp)
	}
}

func TestApplyRejectsSelfReferral(t *testing.T) {
	db := newTestDB(t)
	p := createProfile(t, db, "Anna", "anna@example.com", "ANNA-1111", nil)

	err := newResolver(db).Apply(p.ID, &AttributionMatch{ReferrerID: p.ID})
	if !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("expected ErrSelfReferral, got %v", err)
	}
}

func TestAttributionIsPermanent(t *testing.T) {
	db := newTestDB(t)
	first := createProfile(t, db, "Anna", "anna@example.com", "ANNA-1111", nil)
	second := createProfile(t, db, "Ben", "ben@example.com", "BEN-2222", nil)
	referred := createProfile(t, db, "Eve", "eve@example.com", "EVE-5555", nil)

	profiles := repository.NewProfileRepository(db)
	if err := profiles.StampReferrer(referred.ID, first.ID); err != nil {
		t.Fatalf("first stamp: %v", err)
	}
	err := profiles.StampReferrer(referred.ID, second.ID)
	if !errors.Is(err, repository.ErrReferrerAlreadySet) {
		t.Fatalf("expected ErrReferrerAlreadySet, got %v", err)
	}

	var p models.Profile
	if err := db.First(&p, referred.ID).Error; err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if p.ReferredByProfileID == nil || *p.ReferredByProfileID != first.ID {
		t.Fatalf("referrer of record changed: got %v, want %d", p.ReferredByProfileID, first.ID)
	}
}
