package engine

import "errors"

// The error taxonomy of spec §7. The checks this package makes itself (the
// pause guard, asset lookup, position and order ownership, order placement
// and execution, liquidation eligibility, price ticks) wrap one of these
// with fmt.Errorf("%w: detail"), so callers can branch with errors.Is
// without parsing strings. Errors from native/lp, native/swap,
// native/position's increase and decrease, native/orderbook.Cancel and
// native/referrals are returned unwrapped and carry those packages' own
// sentinels.
var (
	// ErrInvariantViolation marks an accounting mismatch. Fatal: the
	// operation aborts leaving the ledger unchanged, and a caller seeing
	// this should treat the whole engine as suspect, not just retry.
	ErrInvariantViolation = errors.New("engine: invariant violation")

	// ErrPrecondition covers invalid asset, wrong collateral token, stale
	// or zero price, a paused module, a disabled asset state, an
	// unauthorized caller, or an unmet minimum.
	ErrPrecondition = errors.New("engine: precondition failed")

	// ErrLimitBreached covers slippage, OI caps, position size caps,
	// leverage bounds, the withdrawal throttle, the pool cap, and the
	// buffer floor.
	ErrLimitBreached = errors.New("engine: limit breached")

	// ErrInsolvent marks a decrease whose fees or loss exceed the
	// position's remaining collateral outside the liquidation path.
	ErrInsolvent = errors.New("engine: insolvent")

	// ErrNotEligible marks an execute_order call outside its trigger
	// condition.
	ErrNotEligible = errors.New("engine: not eligible")

	// ErrNotFound marks an order or position id not owned by the caller.
	ErrNotFound = errors.New("engine: not found")
)
