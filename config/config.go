package config

import (
	"os"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Payment  PaymentConfig
	Referral ReferralConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type PaymentConfig struct {
	WebhookSecret string
	// PlatformFeeRate and ReferrerRate are exact fractions of the booking
	// amount. The platform fee absorbs any rounding remainder so a
	// settlement's ledger entries always sum to zero.
	PlatformFeeRate decimal.Decimal
	ReferrerRate    decimal.Decimal
	// PlatformProfileEmail identifies the seeded profile that owns
	// platform-fee ledger entries.
	PlatformProfileEmail string
}

type ReferralConfig struct {
	CookieName        string
	ClickTokenTTL     time.Duration // attribution cookie / open click event lifetime
	IPMatchWindow     time.Duration // fallback window for IP-based attribution
	SweepInterval     time.Duration // how often stale click events are expired
	SignupRedirectURL string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8088"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "tutorlink:tutorlink@tcp(localhost:3306)/tutorlink?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getenv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "tutorlink",
		},
		Payment: PaymentConfig{
			WebhookSecret:        getenv("PAYMENT_WEBHOOK_SECRET", ""),
			PlatformFeeRate:      rate("PLATFORM_FEE_RATE", "0.10"),
			ReferrerRate:         rate("REFERRER_RATE", "0.10"),
			PlatformProfileEmail: getenv("PLATFORM_PROFILE_EMAIL", "platform@tutorlink.internal"),
		},
		Referral: ReferralConfig{
			CookieName:        "tl_ref_click",
			ClickTokenTTL:     30 * 24 * time.Hour,
			IPMatchWindow:     24 * time.Hour,
			SweepInterval:     time.Hour,
			SignupRedirectURL: getenv("SIGNUP_REDIRECT_URL", "/signup"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func rate(key, fallback string) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(fallback)
}
