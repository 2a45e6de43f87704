package repository

import (
	"time"

	"tutorlink/internal/domain"
	"tutorlink/internal/models"

	"gorm.io/gorm"
)

type ClickRepository struct {
	db *gorm.DB
}

func NewClickRepository(db *gorm.DB) *ClickRepository {
	return &ClickRepository{db: db}
}

func (r *ClickRepository) WithTx(tx *gorm.DB) *ClickRepository {
	return &ClickRepository{db: tx}
}

func (r *ClickRepository) Create(ev *models.ReferralClickEvent) error {
	return r.db.Create(ev).Error
}

// GetOpenByToken returns the unclaimed click event behind an attribution
// token, provided it is still inside its lifetime.
func (r *ClickRepository) GetOpenByToken(token string, ttl time.Duration) (*models.ReferralClickEvent, error) {
	var ev models.ReferralClickEvent
	err := r.db.Where("token = ? AND status = ? AND referred_profile_id IS NULL AND created_at > ?",
		token, domain.ClickReferred, time.Now().Add(-ttl)).
		First(&ev).Error
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// LatestAnonymousByIP returns the most recent unclaimed click event from the
// given IP inside the window. Used as the last attribution fallback.
func (r *ClickRepository) LatestAnonymousByIP(ip string, window time.Duration) (*models.ReferralClickEvent, error) {
	var ev models.ReferralClickEvent
	err := r.db.Where("origin_ip = ? AND status = ? AND referred_profile_id IS NULL AND created_at > ?",
		ip, domain.ClickReferred, time.Now().Add(-window)).
		Order("created_at DESC").
		First(&ev).Error
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// MarkSignedUp claims an open click event for a newly created profile.
func (r *ClickRepository) MarkSignedUp(ev *models.ReferralClickEvent, profileID uint) error {
	now := time.Now()
	return r.db.Model(ev).Updates(map[string]interface{}{
		"status":              domain.ClickSignedUp,
		"referred_profile_id": profileID,
		"signed_up_at":        now,
	}).Error
}

// FindConvertible returns the referrer's not-yet-converted click event for
// the given referred profile, newest first.
func (r *ClickRepository) FindConvertible(referrerID, referredID uint) (*models.ReferralClickEvent, error) {
	var ev models.ReferralClickEvent
	err := r.db.Where("referrer_profile_id = ? AND referred_profile_id = ? AND status <> ?",
		referrerID, referredID, domain.ClickConverted).
		Order("created_at DESC").
		First(&ev).Error
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// MarkConverted stamps the funnel conversion: the referred user's first
// settled booking and the commission ledger entry it produced.
func (r *ClickRepository) MarkConverted(ev *models.ReferralClickEvent, bookingID, settlementTxID uint) error {
	now := time.Now()
	return r.db.Model(ev).Updates(map[string]interface{}{
		"status":                    domain.ClickConverted,
		"booking_id":                bookingID,
		"settlement_transaction_id": settlementTxID,
		"converted_at":              now,
	}).Error
}

// ExpireOlderThan transitions unclaimed REFERRED events created before the
// cutoff to EXPIRED. Returns the number of rows touched.
func (r *ClickRepository) ExpireOlderThan(cutoff time.Time) (int64, error) {
	res := r.db.Model(&models.ReferralClickEvent{}).
		Where("status = ? AND referred_profile_id IS NULL AND created_at < ?", domain.ClickReferred, cutoff).
		Update("status", domain.ClickExpired)
	return res.RowsAffected, res.Error
}

// ListByReferrer returns the referrer's funnel, newest first.
func (r *ClickRepository) ListByReferrer(referrerID uint, limit, offset int) ([]models.ReferralClickEvent, error) {
	var list []models.ReferralClickEvent
	err := r.db.Where("referrer_profile_id = ?", referrerID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
