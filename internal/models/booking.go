package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Booking is a requested tutoring session with a price. ReferrerProfileID is
// a snapshot of the payer's referrer of record taken when the booking is
// created; it is never re-derived, even if attribution data changes later.
type Booking struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	PayerID           uint            `gorm:"not null;index" json:"payer_id"`
	ProviderID        uint            `gorm:"not null;index" json:"provider_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	ServiceDescriptor string          `gorm:"size:255" json:"service_descriptor"`
	ReferrerProfileID *uint           `gorm:"index" json:"referrer_profile_id"`
	BookingStatus     string          `gorm:"size:30;not null;index" json:"booking_status"`    // PENDING, CONFIRMED, COMPLETED, CANCELLED, DECLINED
	SettlementStatus  string          `gorm:"size:30;not null;index" json:"settlement_status"` // PENDING, SETTLED, FAILED, VOIDED_BY_CANCELLATION
	SettledAt         *time.Time      `json:"settled_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`

	Payer    Profile  `gorm:"foreignKey:PayerID" json:"-"`
	Provider Profile  `gorm:"foreignKey:ProviderID" json:"-"`
	Referrer *Profile `gorm:"foreignKey:ReferrerProfileID" json:"-"`
}

func (Booking) TableName() string { return "bookings" }
