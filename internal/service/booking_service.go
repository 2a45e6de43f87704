package service

import (
	"errors"

	"tutorlink/internal/domain"
	"tutorlink/internal/models"
	"tutorlink/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrSameParty       = errors.New("payer and provider must differ")
	ErrUnknownProvider = errors.New("provider not found")
	ErrNotBookingOwner = errors.New("booking belongs to another payer")
)

type BookingService struct {
	profiles *repository.ProfileRepository
	bookings *repository.BookingRepository
}

func NewBookingService(profiles *repository.ProfileRepository, bookings *repository.BookingRepository) *BookingService {
	return &BookingService{profiles: profiles, bookings: bookings}
}

// Create records a pending charge intent. The payer's referrer of record is
// copied onto the booking here and never re-derived: whoever holds the
// attribution at checkout time earns the commission, regardless of later
// changes.
func (s *BookingService) Create(payerID, providerID uint, amount decimal.Decimal, descriptor string) (*models.Booking, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if payerID == providerID {
		return nil, ErrSameParty
	}
	if _, err := s.profiles.GetByID(providerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownProvider
		}
		return nil, err
	}
	payer, err := s.profiles.GetByID(payerID)
	if err != nil {
		return nil, err
	}
	referrer := payer.ReferredByProfileID
	if referrer != nil && *referrer == payerID {
		// Corrupt attribution row; never let a payer earn commission on
		// their own booking.
		referrer = nil
	}
	b := &models.Booking{
		PayerID:           payerID,
		ProviderID:        providerID,
		Amount:            amount,
		ServiceDescriptor: descriptor,
		ReferrerProfileID: referrer,
		BookingStatus:     domain.BookingPending,
		SettlementStatus:  domain.SettlementPending,
	}
	if err := s.bookings.Create(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Cancel voids an unsettled booking on behalf of its payer. The settlement
// engine treats the voided state as terminal, so a late webhook for a
// cancelled booking settles nothing.
func (s *BookingService) Cancel(bookingID, payerID uint) (*models.Booking, error) {
	b, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.PayerID != payerID {
		return nil, ErrNotBookingOwner
	}
	if err := s.bookings.CancelVoid(bookingID); err != nil {
		return nil, err
	}
	return s.bookings.GetByID(bookingID)
}
