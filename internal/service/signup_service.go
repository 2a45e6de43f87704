package service

import (
	"errors"
	"log"

	"tutorlink/config"
	"tutorlink/internal/auth"
	"tutorlink/internal/models"
	"tutorlink/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidCreds = errors.New("invalid email or password")
	ErrCodeSpace    = errors.New("could not allocate a unique referral code")
)

type RegisterInput struct {
	DisplayName string
	Email       string
	Password    string
	Attribution SignupAttribution
}

// SignupService creates profiles. Profile row, referral code allocation,
// attribution resolution and funnel bookkeeping all commit in one
// transaction, so a signup can never land half-attributed.
type SignupService struct {
	cfg      *config.Config
	db       *gorm.DB
	profiles *repository.ProfileRepository
	resolver *AttributionResolver
	registry ReferralCodeRegistry
}

func NewSignupService(cfg *config.Config, db *gorm.DB, profiles *repository.ProfileRepository, resolver *AttributionResolver) *SignupService {
	return &SignupService{cfg: cfg, db: db, profiles: profiles, resolver: resolver}
}

func (s *SignupService) Register(in RegisterInput) (*models.Profile, string, string, error) {
	if _, err := s.profiles.GetByEmail(in.Email); err == nil {
		return nil, "", "", ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}

	p := &models.Profile{
		DisplayName:  in.DisplayName,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.createWithCode(tx, p); err != nil {
			return err
		}
		resolver := s.resolver.WithTx(tx)
		match, err := resolver.Resolve(in.Attribution)
		if err != nil {
			return err
		}
		if match == nil {
			return nil
		}
		if match.ReferrerID == p.ID {
			// A profile cannot be its own referrer; treat as unattributed.
			return nil
		}
		if err := resolver.Apply(p.ID, match); err != nil {
			return err
		}
		p.ReferredByProfileID = &match.ReferrerID
		return nil
	})
	if err != nil {
		return nil, "", "", err
	}

	access, err := auth.GenerateAccessToken(&s.cfg.JWT, p.ID, p.Email)
	if err != nil {
		return p, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, p.ID)
	if err != nil {
		return p, access, "", err
	}
	return p, access, refresh, nil
}

// createWithCode inserts the profile, allocating its referral code. A
// duplicate-key error on the code's unique index is a collision: retry with a
// fresh candidate, then fall back to a prefix-free random code.
func (s *SignupService) createWithCode(tx *gorm.DB, p *models.Profile) error {
	profiles := s.profiles.WithTx(tx)
	for attempt := 0; attempt < codeMaxAttempts; attempt++ {
		p.ReferralCode = s.registry.Candidate(p.DisplayName)
		err := profiles.Create(p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		log.Printf("[signup] referral code collision on %q, retrying", p.ReferralCode)
	}
	for attempt := 0; attempt < codeMaxAttempts; attempt++ {
		p.ReferralCode = s.registry.Fallback()
		err := profiles.Create(p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return ErrCodeSpace
}

func (s *SignupService) Login(email, password string) (*models.Profile, string, string, error) {
	p, err := s.profiles.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, p.ID, p.Email)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, p.ID)
	if err != nil {
		return nil, "", "", err
	}
	return p, access, refresh, nil
}
