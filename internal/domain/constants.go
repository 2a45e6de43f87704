package domain

// Booking lifecycle.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCompleted = "COMPLETED"
	BookingCancelled = "CANCELLED"
	BookingDeclined  = "DECLINED"
)

// Settlement pipeline. A booking's settlement status moves exactly once,
// from PENDING to SETTLED, and only by the settlement engine. Cancelling an
// unsettled booking parks it at VOIDED_BY_CANCELLATION, which the engine
// treats as terminal.
const (
	SettlementPending = "PENDING"
	SettlementSettled = "SETTLED"
	SettlementFailed  = "FAILED"
	SettlementVoided  = "VOIDED_BY_CANCELLATION"
)

// Ledger transaction kinds.
const (
	LedgerPayerCharge        = "PAYER_CHARGE"
	LedgerProviderPayout     = "PROVIDER_PAYOUT"
	LedgerReferrerCommission = "REFERRER_COMMISSION"
	LedgerPlatformFee        = "PLATFORM_FEE"
	LedgerWithdrawal         = "WITHDRAWAL"
)

// Ledger transaction status.
const (
	LedgerStatusPending = "PENDING"
	LedgerStatusSettled = "SETTLED"
	LedgerStatusFailed  = "FAILED"
	LedgerStatusVoided  = "VOIDED"
)

// Referral click event funnel.
const (
	ClickReferred  = "REFERRED"
	ClickSignedUp  = "SIGNED_UP"
	ClickConverted = "CONVERTED"
	ClickExpired   = "EXPIRED"
)
