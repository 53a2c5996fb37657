package services

import "errors"

// Sentinel errors for the progression core. Handlers map these onto HTTP status
// codes; everything else is treated as a datastore/collaborator failure.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyCompleted   = errors.New("already completed")
	ErrAlreadyClaimed     = errors.New("reward already claimed")
	ErrNotClaimable       = errors.New("referral not claimable")
	ErrNoEligibleTemplate = errors.New("no eligible mission template")
)
