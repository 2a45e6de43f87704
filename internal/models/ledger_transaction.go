package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerTransaction is an immutable signed monetary entry against exactly one
// profile. Negative amounts are debits, positive are credits. Rows are
// append-only: corrections are made by appending offsetting entries, never by
// mutating or deleting existing ones (hence no soft-delete column).
type LedgerTransaction struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OwnerProfileID uint            `gorm:"not null;index" json:"owner_profile_id"`
	BookingID      *uint           `gorm:"index" json:"booking_id"`
	Kind           string          `gorm:"size:30;not null;index" json:"kind"`   // PAYER_CHARGE, PROVIDER_PAYOUT, REFERRER_COMMISSION, PLATFORM_FEE, WITHDRAWAL
	Status         string          `gorm:"size:20;not null;index" json:"status"` // PENDING, SETTLED, FAILED, VOIDED
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description    string          `gorm:"size:255" json:"description"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`

	Owner   Profile  `gorm:"foreignKey:OwnerProfileID" json:"-"`
	Booking *Booking `gorm:"foreignKey:BookingID" json:"-"`
}

func (LedgerTransaction) TableName() string { return "ledger_transactions" }
