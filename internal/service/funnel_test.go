package service

import (
	"testing"
	"time"

	"tutorlink/internal/domain"
	"tutorlink/internal/models"
	"tutorlink/internal/repository"
)

func TestFunnelSweepExpiresStaleClicks(t *testing.T) {
	db := newTestDB(t)
	referrer := createProfile(t, db, "Jane", "jane@example.com", "JANE-1234", nil)
	claimed := createProfile(t, db, "Paul", "paul@example.com", "PAUL-1111", &referrer.ID)

	stale := createClick(t, db, referrer.ID, "tok-stale", "", time.Now().Add(-31*24*time.Hour))
	fresh := createClick(t, db, referrer.ID, "tok-fresh", "", time.Now().Add(-time.Hour))
	signedUp := &models.ReferralClickEvent{
		Token:             "tok-claimed",
		ReferrerProfileID: referrer.ID,
		ReferredProfileID: &claimed.ID,
		Status:            domain.ClickSignedUp,
		CreatedAt:         time.Now().Add(-40 * 24 * time.Hour),
	}
	if err := db.Create(signedUp).Error; err != nil {
		t.Fatalf("create claimed click: %v", err)
	}

	sweeper := NewFunnelSweeper(repository.NewClickRepository(db), 30*24*time.Hour, time.Hour)
	n, err := sweeper.SweepOnce()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired event, got %d", n)
	}

	status := func(id uint) string {
		var ev models.ReferralClickEvent
		db.First(&ev, id)
		return ev.Status
	}
	if got := status(stale.ID); got != domain.ClickExpired {
		t.Errorf("stale event status = %s, want %s", got, domain.ClickExpired)
	}
	if got := status(fresh.ID); got != domain.ClickReferred {
		t.Errorf("fresh event status = %s, want %s", got, domain.ClickReferred)
	}
	// Claimed events are never expired, however old the click.
	if got := status(signedUp.ID); got != domain.ClickSignedUp {
		t.Errorf("claimed event status = %s, want %s", got, domain.ClickSignedUp)
	}
}
