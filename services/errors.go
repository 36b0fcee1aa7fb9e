package services

import "errors"

// Ledger errors surfaced to callers. Handlers map these onto HTTP statuses;
// anything else coming out of a service is an internal error.
var (
	ErrInvalidAmount    = errors.New("amount must be greater than 0")
	ErrEmptyReason      = errors.New("adjustment reason is required")
	ErrStudentNotFound  = errors.New("student not found")
	ErrInvalidCode      = errors.New("invalid referral code")
	ErrSelfReferral     = errors.New("you cannot refer yourself")
	ErrAlreadyRedeemed  = errors.New("a referral code has already been used on this account")
	ErrReferralNotFound = errors.New("referral not found")
	ErrAlreadyApproved  = errors.New("referral already approved")
	ErrAlreadyRejected  = errors.New("referral already rejected")
)
