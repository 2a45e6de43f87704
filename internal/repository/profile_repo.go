package repository

import (
	"errors"
	"strings"

	"tutorlink/internal/models"

	"gorm.io/gorm"
)

// ErrReferrerAlreadySet is returned when a stamp attempt finds a non-null
// referrer of record. Attribution is lifetime: first write wins.
var ErrReferrerAlreadySet = errors.New("referrer of record already set")

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *ProfileRepository) WithTx(tx *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: tx}
}

func (r *ProfileRepository) Create(p *models.Profile) error {
	return r.db.Create(p).Error
}

func (r *ProfileRepository) GetByID(id uint) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetByEmail(email string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.Where("email = ?", email).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByReferralCode resolves a code case-insensitively. Codes are stored
// uppercase, so normalizing the input is enough.
func (r *ProfileRepository) GetByReferralCode(code string) (*models.Profile, error) {
	var p models.Profile
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := r.db.Where("referral_code = ?", code).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// StampReferrer sets the referrer of record on a profile. The guard in the
// WHERE clause makes the write first-wins: a profile whose referrer is
// already set is left untouched and the call fails with
// ErrReferrerAlreadySet.
func (r *ProfileRepository) StampReferrer(profileID, referrerID uint) error {
	res := r.db.Model(&models.Profile{}).
		Where("id = ? AND referred_by_profile_id IS NULL", profileID).
		Update("referred_by_profile_id", referrerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReferrerAlreadySet
	}
	return nil
}
