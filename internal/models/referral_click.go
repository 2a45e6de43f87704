package models

import (
	"time"

	"gorm.io/gorm"
)

// ReferralClickEvent records one visit to a referral link and follows the
// lead through the funnel: REFERRED on click, SIGNED_UP when claimed at
// signup, CONVERTED on the referred user's first settled booking, EXPIRED
// when unclaimed past the retention window. It is reporting bookkeeping only;
// ongoing commissions are driven by Profile.ReferredByProfileID, not by this
// table.
type ReferralClickEvent struct {
	ID                      uint           `gorm:"primaryKey" json:"id"`
	Token                   string         `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ReferrerProfileID       uint           `gorm:"not null;index" json:"referrer_profile_id"`
	ReferredProfileID       *uint          `gorm:"index" json:"referred_profile_id"`
	OriginIP                string         `gorm:"size:45;index" json:"origin_ip"`
	Status                  string         `gorm:"size:20;not null;index" json:"status"` // REFERRED, SIGNED_UP, CONVERTED, EXPIRED
	BookingID               *uint          `gorm:"index" json:"booking_id"`
	SettlementTransactionID *uint          `gorm:"index" json:"settlement_transaction_id"`
	SignedUpAt              *time.Time     `json:"signed_up_at"`
	ConvertedAt             *time.Time     `json:"converted_at"`
	CreatedAt               time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
	DeletedAt               gorm.DeletedAt `gorm:"index" json:"-"`

	Referrer Profile  `gorm:"foreignKey:ReferrerProfileID" json:"-"`
	Referred *Profile `gorm:"foreignKey:ReferredProfileID" json:"-"`
}

func (ReferralClickEvent) TableName() string { return "referral_click_events" }
