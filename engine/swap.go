package engine

import (
	"perpcore/core/events"
	"perpcore/core/types"
	"perpcore/native/swap"

	"github.com/holiman/uint256"
)

// Swap implements the swap entry operation (spec §4.6, §6.1): converts
// amountIn of inAsset (already attached by the caller) into outAsset,
// enforcing min_out slippage and pool liquidity.
func (e *Engine) Swap(account string, inAsset, outAsset types.AssetID, amountIn, minOut *uint256.Int, referralCode string, nowMS, nowSec uint64) (amountOut *uint256.Int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.metrics.ObserveSwap(string(inAsset), string(outAsset), err) }()

	if err = e.guard("swap"); err != nil {
		return nil, err
	}
	in, err := e.asset(inAsset)
	if err != nil {
		return nil, err
	}
	out, err := e.asset(outAsset)
	if err != nil {
		return nil, err
	}

	totalAUM, aumErr := e.totalAUM()
	if aumErr != nil {
		totalAUM = nil
	}

	amountOut, err = swap.Swap(swap.Params{
		In:       in,
		Out:      out,
		AmountIn: amountIn,
		MinOut:   minOut,
		Fee: swap.FeeParams{
			SwapBaseBPS:       e.cfg.Fees.SwapFeeBPS,
			StableSwapBaseBPS: e.cfg.Fees.StableSwapFeeBPS,
			DynamicEnabled:    e.cfg.Fees.DynamicSwapFees,
			TotalAUM:          totalAUM,
			TotalWeight:       e.totalWeight(),
			TaxBPS:            e.cfg.Fees.TaxBPS,
		},
		NowMS:  nowMS,
		NowSec: nowSec,
	})
	if err != nil {
		e.warnOp("swap", err, "account", account, "in", inAsset, "out", outAsset)
		return nil, err
	}

	e.emit(events.Swap{
		AccountID:       account,
		TokenIn:         inAsset,
		TokenOut:        outAsset,
		AmountInNative:  amountIn,
		AmountOutNative: amountOut,
		ReferralCode:    referralCode,
	})
	e.logOp("swap", "account", account, "in", inAsset, "out", outAsset, "amount_out", amountOut.String())
	return amountOut, nil
}
