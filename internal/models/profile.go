package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is a platform identity (client, tutor, or the seeded platform
// account). ReferralCode is assigned once at signup and never changes.
// ReferredByProfileID is the referrer of record: set at most once, inside the
// signup transaction, and never overwritten afterwards — it decides who earns
// commission on every future booking this profile pays for.
type Profile struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	DisplayName         string         `gorm:"size:120;not null" json:"display_name"`
	Email               string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash        string         `gorm:"size:255" json:"-"`
	ReferralCode        string         `gorm:"uniqueIndex;size:20;not null" json:"referral_code"`
	ReferredByProfileID *uint          `gorm:"index" json:"referred_by_profile_id"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	ReferredBy *Profile `gorm:"foreignKey:ReferredByProfileID" json:"-"`
}

func (Profile) TableName() string { return "profiles" }
