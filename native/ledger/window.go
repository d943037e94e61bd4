package ledger

import (
	"perpcore/core/types"

	"github.com/holiman/uint256"
)

// NetWithdrawals sums withdrawals minus deposits recorded within the
// asset's withdrawal window ending at nowMS, saturating at zero — a quiet
// window with more deposits than withdrawals never throttles future ones.
// Entries older than the window are ignored but not pruned here; pruning
// happens in PruneTransferHistory so callers that only want to read the
// net figure don't pay for a slice rewrite.
func NetWithdrawals(a *types.Asset, nowMS uint64) *uint256.Int {
	if a == nil || a.WithdrawalWindowMS == 0 {
		return new(uint256.Int)
	}
	cutoff := uint64(0)
	if nowMS > a.WithdrawalWindowMS {
		cutoff = nowMS - a.WithdrawalWindowMS
	}
	withdrawn := new(uint256.Int)
	deposited := new(uint256.Int)
	for _, rec := range a.TransferHistory {
		if rec.TimestampMS < cutoff {
			continue
		}
		switch rec.Kind {
		case types.TransferWithdraw:
			withdrawn = new(uint256.Int).Add(withdrawn, rec.Amount)
		case types.TransferDeposit:
			deposited = new(uint256.Int).Add(deposited, rec.Amount)
		}
	}
	if withdrawn.Cmp(deposited) <= 0 {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(withdrawn, deposited)
}

// PruneTransferHistory drops entries older than the withdrawal window,
// keeping the slice from growing without bound across a long-lived asset.
// Safe to call opportunistically; it does not change NetWithdrawals's
// result since pruned entries are already outside the window.
func PruneTransferHistory(a *types.Asset, nowMS uint64) {
	if a == nil || a.WithdrawalWindowMS == 0 || nowMS <= a.WithdrawalWindowMS {
		return
	}
	cutoff := nowMS - a.WithdrawalWindowMS
	kept := a.TransferHistory[:0]
	for _, rec := range a.TransferHistory {
		if rec.TimestampMS >= cutoff {
			kept = append(kept, rec)
		}
	}
	a.TransferHistory = kept
}
