package database

import (
	"errors"

	"tutorlink/config"
	"tutorlink/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
		// Unique violations must surface as gorm.ErrDuplicatedKey so the
		// referral code registry can treat them as a retry signal.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.ReferralClickEvent{},
		&models.Booking{},
		&models.LedgerTransaction{},
		&models.AuditLog{},
	)
}

// SeedPlatformProfile ensures the profile that owns platform-fee ledger
// entries exists and returns its id. The platform account is an ordinary
// Profile row with a reserved email, not a runtime singleton.
func SeedPlatformProfile(db *gorm.DB, email string) (uint, error) {
	var p models.Profile
	err := db.Where("email = ?", email).First(&p).Error
	if err == nil {
		return p.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	p = models.Profile{
		DisplayName:  "Tutorlink Platform",
		Email:        email,
		ReferralCode: "PLATFORM-0000",
	}
	if err := db.Create(&p).Error; err != nil {
		return 0, err
	}
	return p.ID, nil
}
