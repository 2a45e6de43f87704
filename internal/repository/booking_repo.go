package repository

import (
	"errors"
	"time"

	"tutorlink/internal/domain"
	"tutorlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotCancellable is returned when a cancellation races a settlement (or
// the booking is already terminal).
var ErrNotCancellable = errors.New("booking is not cancellable")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) WithTx(tx *gorm.DB) *BookingRepository {
	return &BookingRepository{db: tx}
}

func (r *BookingRepository) Create(b *models.Booking) error {
	return r.db.Create(b).Error
}

func (r *BookingRepository) GetByID(id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByIDForUpdate loads the booking under an exclusive row lock, the
// serialization point for duplicate settlement attempts. SQLite (tests) has
// no FOR UPDATE; its writers serialize on the database lock instead.
func (r *BookingRepository) GetByIDForUpdate(id uint) (*models.Booking, error) {
	q := r.db
	if r.db.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var b models.Booking
	if err := q.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// MarkSettled flips the settlement pipeline to its terminal success state and
// confirms the booking.
func (r *BookingRepository) MarkSettled(b *models.Booking) error {
	now := time.Now()
	return r.db.Model(b).Updates(map[string]interface{}{
		"settlement_status": domain.SettlementSettled,
		"booking_status":    domain.BookingConfirmed,
		"settled_at":        now,
	}).Error
}

// CancelVoid cancels an unsettled booking. The settlement-status guard makes
// the write a no-op once the engine has settled (or another cancel has
// voided) the booking.
func (r *BookingRepository) CancelVoid(id uint) error {
	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND settlement_status = ?", id, domain.SettlementPending).
		Updates(map[string]interface{}{
			"booking_status":    domain.BookingCancelled,
			"settlement_status": domain.SettlementVoided,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotCancellable
	}
	return nil
}

func (r *BookingRepository) ListByPayer(payerID uint, limit, offset int) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.Where("payer_id = ?", payerID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
