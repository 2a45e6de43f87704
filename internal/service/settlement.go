package service

import (
	"errors"
	"fmt"
	"log"

	"tutorlink/config"
	"tutorlink/internal/domain"
	"tutorlink/internal/models"
	"tutorlink/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrBookingNotFound means the webhook named a booking we never created.
// Booking ids are caller-controlled, so this is caller misuse, not a
// transient condition — redelivery will not fix it.
var ErrBookingNotFound = errors.New("booking not found")

// SettlementService turns one successful payment into the full set of ledger
// entries it implies. Safe under at-least-once webhook delivery: the booking
// row lock plus the PENDING precondition make every invocation after the
// first a no-op.
type SettlementService struct {
	db                *gorm.DB
	bookings          *repository.BookingRepository
	ledger            *repository.LedgerRepository
	clicks            *repository.ClickRepository
	feeRate           decimal.Decimal
	referrerRate      decimal.Decimal
	platformProfileID uint
}

func NewSettlementService(db *gorm.DB, bookings *repository.BookingRepository, ledger *repository.LedgerRepository, clicks *repository.ClickRepository, cfg *config.PaymentConfig, platformProfileID uint) *SettlementService {
	return &SettlementService{
		db:                db,
		bookings:          bookings,
		ledger:            ledger,
		clicks:            clicks,
		feeRate:           cfg.PlatformFeeRate,
		referrerRate:      cfg.ReferrerRate,
		platformProfileID: platformProfileID,
	}
}

// SplitAmount divides a booking amount into provider payout, referrer
// commission and platform fee. Payout and commission are rounded to currency
// precision; the fee takes whatever remains, so the four signed ledger
// amounts (-amount, +payout, +commission, +fee) always sum to exactly zero.
func SplitAmount(amount, feeRate, referrerRate decimal.Decimal, referred bool) (payout, commission, fee decimal.Decimal) {
	one := decimal.NewFromInt(1)
	if referred {
		commission = amount.Mul(referrerRate).Round(2)
		payout = amount.Mul(one.Sub(feeRate).Sub(referrerRate)).Round(2)
	} else {
		commission = decimal.Zero
		payout = amount.Mul(one.Sub(feeRate)).Round(2)
	}
	fee = amount.Sub(payout).Sub(commission)
	return payout, commission, fee
}

// Settle processes a "payment succeeded" notification for the booking.
// Everything happens in one transaction under an exclusive lock on the
// booking row; a duplicate delivery either blocks on the lock and then
// no-ops, or sees a settled booking and no-ops immediately.
func (s *SettlementService) Settle(bookingID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)
		b, err := bookings.GetByIDForUpdate(bookingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if b.SettlementStatus != domain.SettlementPending {
			log.Printf("[settlement] booking %d already %s, skipping", b.ID, b.SettlementStatus)
			return nil
		}

		referred := b.ReferrerProfileID != nil
		payout, commission, fee := SplitAmount(b.Amount, s.feeRate, s.referrerRate, referred)
		ledger := s.ledger.WithTx(tx)

		var commissionTx *models.LedgerTransaction
		if referred {
			commissionTx = &models.LedgerTransaction{
				OwnerProfileID: *b.ReferrerProfileID,
				BookingID:      &b.ID,
				Kind:           domain.LedgerReferrerCommission,
				Status:         domain.LedgerStatusPending,
				Amount:         commission,
				Description:    fmt.Sprintf("Referral commission for booking #%d", b.ID),
			}
			if err := ledger.Create(commissionTx); err != nil {
				return err
			}
		}
		if err := ledger.Create(&models.LedgerTransaction{
			OwnerProfileID: b.PayerID,
			BookingID:      &b.ID,
			Kind:           domain.LedgerPayerCharge,
			Status:         domain.LedgerStatusSettled,
			Amount:         b.Amount.Neg(),
			Description:    fmt.Sprintf("Charge for booking #%d", b.ID),
		}); err != nil {
			return err
		}
		if err := ledger.Create(&models.LedgerTransaction{
			OwnerProfileID: b.ProviderID,
			BookingID:      &b.ID,
			Kind:           domain.LedgerProviderPayout,
			Status:         domain.LedgerStatusPending,
			Amount:         payout,
			Description:    fmt.Sprintf("Payout for booking #%d", b.ID),
		}); err != nil {
			return err
		}
		if err := ledger.Create(&models.LedgerTransaction{
			OwnerProfileID: s.platformProfileID,
			BookingID:      &b.ID,
			Kind:           domain.LedgerPlatformFee,
			Status:         domain.LedgerStatusSettled,
			Amount:         fee,
			Description:    fmt.Sprintf("Platform fee for booking #%d", b.ID),
		}); err != nil {
			return err
		}

		if err := bookings.MarkSettled(b); err != nil {
			return err
		}

		if commissionTx != nil {
			if err := s.convertFunnel(tx, b, commissionTx.ID); err != nil {
				return err
			}
		}
		log.Printf("[settlement] booking %d settled: payout=%s commission=%s fee=%s", b.ID, payout, commission, fee)
		return nil
	})
}

// convertFunnel marks the referrer's click event for this payer as converted.
// Absence of such an event is fine: attribution may have arrived through a
// path that never created one, and the commission pays either way.
func (s *SettlementService) convertFunnel(tx *gorm.DB, b *models.Booking, commissionTxID uint) error {
	clicks := s.clicks.WithTx(tx)
	ev, err := clicks.FindConvertible(*b.ReferrerProfileID, b.PayerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return clicks.MarkConverted(ev, b.ID, commissionTxID)
}
