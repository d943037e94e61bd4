package ledger

import (
	"perpcore/core/types"

	"github.com/holiman/uint256"
)

// Guard checks the ledger integrity invariant named in spec §9: balance ==
// pool_balance + accumulated_fees. AddLiquidity, RemoveLiquidity, AddFees
// and RemoveFees end by calling Guard on the asset they touched and return
// ErrInvariantViolation on a mismatch. Guard runs after the mutation, so
// the asset already holds the new values when that error is returned;
// nothing here rolls them back.
func Guard(a *types.Asset) error {
	if a == nil {
		return ErrZeroAsset
	}
	sum := new(uint256.Int).Add(a.PoolBalance, a.AccumulatedFees)
	if sum.Cmp(a.Balance) != 0 {
		return ErrInvariantViolation
	}
	return nil
}
