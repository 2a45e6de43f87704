package repository

import (
	"tutorlink/internal/domain"
	"tutorlink/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) WithTx(tx *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: tx}
}

func (r *LedgerRepository) Create(t *models.LedgerTransaction) error {
	return r.db.Create(t).Error
}

func (r *LedgerRepository) ListByOwner(ownerID uint, limit, offset int) ([]models.LedgerTransaction, error) {
	var list []models.LedgerTransaction
	err := r.db.Where("owner_profile_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *LedgerRepository) ListByBooking(bookingID uint) ([]models.LedgerTransaction, error) {
	var list []models.LedgerTransaction
	err := r.db.Where("booking_id = ?", bookingID).Order("id").Find(&list).Error
	return list, err
}

// SettledBalance is the signed sum of the owner's SETTLED entries.
func (r *LedgerRepository) SettledBalance(ownerID uint) (decimal.Decimal, error) {
	row := r.db.Model(&models.LedgerTransaction{}).
		Where("owner_profile_id = ? AND status = ?", ownerID, domain.LedgerStatusSettled).
		Select("COALESCE(SUM(amount), 0)").
		Row()
	var total decimal.Decimal
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// PendingBalance is the signed sum of the owner's PENDING entries — payouts
// and commissions awaiting the batch payout run.
func (r *LedgerRepository) PendingBalance(ownerID uint) (decimal.Decimal, error) {
	row := r.db.Model(&models.LedgerTransaction{}).
		Where("owner_profile_id = ? AND status = ?", ownerID, domain.LedgerStatusPending).
		Select("COALESCE(SUM(amount), 0)").
		Row()
	var total decimal.Decimal
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
