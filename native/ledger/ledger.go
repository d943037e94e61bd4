// Package ledger implements the per-asset balance bookkeeping described in
// spec §4.2: pool balance, accumulated fees, reserved amount, and the
// guaranteed-USD figure used by the position engine's AUM accounting. Every
// mutation of balance, pool_balance or accumulated_fees here ends with
// Guard, which checks the integrity invariant named in §9: balance ==
// pool_balance + accumulated_fees.
package ledger

import (
	"perpcore/core/types"

	"github.com/holiman/uint256"
)

// AddLiquidity records a deposit of n units of the underlying token into
// the pool, growing both balance and pool_balance together. Fails if the
// asset caps its pool size and this deposit would exceed it.
func AddLiquidity(a *types.Asset, n *uint256.Int) error {
	if a == nil {
		return ErrZeroAsset
	}
	newPool := new(uint256.Int).Add(a.PoolBalance, n)
	if a.MaxPoolAmount.Sign() > 0 && newPool.Cmp(a.MaxPoolAmount) > 0 {
		return ErrMaxPoolExceeded
	}
	a.PoolBalance = newPool
	a.Balance = new(uint256.Int).Add(a.Balance, n)
	return Guard(a)
}

// RemoveLiquidity withdraws n units from the pool side of the ledger.
func RemoveLiquidity(a *types.Asset, n *uint256.Int) error {
	if a == nil {
		return ErrZeroAsset
	}
	if a.PoolBalance.Cmp(n) < 0 {
		return ErrInsufficientPool
	}
	a.PoolBalance = new(uint256.Int).Sub(a.PoolBalance, n)
	a.Balance = new(uint256.Int).Sub(a.Balance, n)
	return Guard(a)
}

// AddFees credits n units to accumulated_fees (spec §4.2: `balance += n;
// accumulated_fees += n`). Fees are carved out of pool_balance's LP-available
// liquidity but remain held in the vault, so pool_balance itself is
// untouched — it is the earlier remove_liquidity call (e.g. a swap's gross
// amount_out) that already pulled the equivalent tokens out of the pool
// side; add_fees re-credits the fee portion into balance/accumulated_fees
// rather than back into pool_balance.
func AddFees(a *types.Asset, n *uint256.Int) error {
	if a == nil {
		return ErrZeroAsset
	}
	a.Balance = new(uint256.Int).Add(a.Balance, n)
	a.AccumulatedFees = new(uint256.Int).Add(a.AccumulatedFees, n)
	return Guard(a)
}

// RemoveFees withdraws n units of previously accumulated fees (e.g. an
// admin fee sweep) paid out to an external recipient (spec §4.2: `balance
// -= n; accumulated_fees -= n`).
func RemoveFees(a *types.Asset, n *uint256.Int) error {
	if a == nil {
		return ErrZeroAsset
	}
	if a.AccumulatedFees.Cmp(n) < 0 {
		return ErrInsufficientFees
	}
	a.AccumulatedFees = new(uint256.Int).Sub(a.AccumulatedFees, n)
	a.Balance = new(uint256.Int).Sub(a.Balance, n)
	return Guard(a)
}

// IncreaseReserved grows the amount of pool liquidity held against open
// short/long exposure, never exceeding the available pool balance.
func IncreaseReserved(a *types.Asset, n *uint256.Int) error {
	if a == nil {
		return ErrZeroAsset
	}
	newReserved := new(uint256.Int).Add(a.ReservedAmount, n)
	if newReserved.Cmp(a.PoolBalance) > 0 {
		return ErrInsufficientPool
	}
	a.ReservedAmount = newReserved
	return nil
}

// DecreaseReserved releases n units of previously reserved liquidity.
func DecreaseReserved(a *types.Asset, n *uint256.Int) error {
	if a == nil {
		return ErrZeroAsset
	}
	if a.ReservedAmount.Cmp(n) < 0 {
		return ErrInsufficientReserve
	}
	a.ReservedAmount = new(uint256.Int).Sub(a.ReservedAmount, n)
	return nil
}

// IncreaseGuaranteedUSD grows the dollar figure that, together with the
// pool's own USD value, stands in for a non-stable asset's AUM contribution
// (spec §4.2 AUM formula).
func IncreaseGuaranteedUSD(a *types.Asset, d *uint256.Int) error {
	if a == nil {
		return ErrZeroAsset
	}
	a.GuaranteedUSD = new(uint256.Int).Add(a.GuaranteedUSD, d)
	return nil
}

// DecreaseGuaranteedUSD shrinks guaranteed_usd, saturating at zero rather
// than underflowing — a closed position can never leave guaranteed_usd
// negative.
func DecreaseGuaranteedUSD(a *types.Asset, d *uint256.Int) error {
	if a == nil {
		return ErrZeroAsset
	}
	if a.GuaranteedUSD.Cmp(d) <= 0 {
		a.GuaranteedUSD = new(uint256.Int)
		return nil
	}
	a.GuaranteedUSD = new(uint256.Int).Sub(a.GuaranteedUSD, d)
	return nil
}

// RegisterDeposit appends a deposit entry to the sliding window. This is
// bookkeeping only (spec §4.2) — it does not itself move
// balance or pool_balance; callers combine it with AddLiquidity.
func RegisterDeposit(a *types.Asset, n *uint256.Int, nowMS uint64) error {
	if a == nil {
		return ErrZeroAsset
	}
	a.TransferHistory = append(a.TransferHistory, types.TransferRecord{
		Amount:      n,
		Kind:        types.TransferDeposit,
		TimestampMS: nowMS,
	})
	return nil
}

// RegisterWithdrawal rolls the sliding window forward (PruneTransferHistory),
// checks the sliding-window throttle and, if it passes, appends a
// withdrawal entry. This is bookkeeping only (spec §4.2) — it does not
// itself move balance or pool_balance; callers combine it with
// RemoveLiquidity. withdrawal_limit_bps == 0 disables throttling, and so
// does a window that is empty once stale entries are pruned.
func RegisterWithdrawal(a *types.Asset, n *uint256.Int, nowMS uint64) error {
	if a == nil {
		return ErrZeroAsset
	}
	PruneTransferHistory(a, nowMS)
	if a.WithdrawalLimitBPS > 0 && len(a.TransferHistory) > 0 {
		net := NetWithdrawals(a, nowMS)
		limit, err := withdrawalLimit(a)
		if err != nil {
			return err
		}
		projected := new(uint256.Int).Add(net, n)
		if projected.Cmp(limit) >= 0 {
			return ErrWithdrawalThrottled
		}
	}
	a.TransferHistory = append(a.TransferHistory, types.TransferRecord{
		Amount:      n,
		Kind:        types.TransferWithdraw,
		TimestampMS: nowMS,
	})
	return nil
}

// withdrawalLimit returns pool_balance * withdrawal_limit_bps / 10000,
// the ceiling the sliding window enforces over its rolling duration.
func withdrawalLimit(a *types.Asset) (*uint256.Int, error) {
	bps := uint256.NewInt(a.WithdrawalLimitBPS)
	prod, overflow := new(uint256.Int).MulOverflow(a.PoolBalance, bps)
	if overflow {
		return nil, ErrInvariantViolation
	}
	return new(uint256.Int).Div(prod, uint256.NewInt(10_000)), nil
}
