package service

import (
	"fmt"
	"testing"
	"time"

	"tutorlink/config"
	"tutorlink/internal/database"
	"tutorlink/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database migrated with the full
// schema. cache=shared keeps the database alive across the pool's
// connections; the per-test name keeps tests isolated from each other.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Payment.PlatformFeeRate = decimal.RequireFromString("0.10")
	cfg.Payment.ReferrerRate = decimal.RequireFromString("0.10")
	cfg.Referral.ClickTokenTTL = 30 * 24 * time.Hour
	cfg.Referral.IPMatchWindow = 24 * time.Hour
	return cfg
}

func createProfile(t *testing.T, db *gorm.DB, name, email, code string, referredBy *uint) *models.Profile {
	t.Helper()
	p := &models.Profile{
		DisplayName:         name,
		Email:               email,
		ReferralCode:        code,
		ReferredByProfileID: referredBy,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create profile %s: %v", email, err)
	}
	return p
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
