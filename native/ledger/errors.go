package ledger

import "errors"

var (
	// ErrInvariantViolation is raised by Guard when an asset's balance no
	// longer equals pool_balance + accumulated_fees (spec §7).
	ErrInvariantViolation  = errors.New("ledger: balance invariant violated")
	ErrMaxPoolExceeded     = errors.New("ledger: pool_balance exceeds max_pool_amount")
	ErrInsufficientPool    = errors.New("ledger: pool_balance insufficient")
	ErrInsufficientFees    = errors.New("ledger: accumulated_fees insufficient")
	ErrInsufficientReserve = errors.New("ledger: reserved_amount insufficient")
	ErrWithdrawalThrottled = errors.New("ledger: withdrawal exceeds sliding-window limit")
	ErrZeroAsset           = errors.New("ledger: asset must not be nil")
)
