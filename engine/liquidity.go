package engine

import (
	"fmt"

	"perpcore/core/events"
	"perpcore/core/types"
	"perpcore/native/lp"

	"github.com/holiman/uint256"
)

func (e *Engine) lpFeeParams(totalAUM *uint256.Int) lp.FeeParams {
	return lp.FeeParams{
		MintBurnBaseBPS: e.cfg.Fees.MintBurnFeeBPS,
		DynamicEnabled:  e.cfg.Fees.DynamicSwapFees,
		TotalAUM:        totalAUM,
		TotalWeight:     e.totalWeight(),
		TaxBPS:          e.cfg.Fees.TaxBPS,
	}
}

// MintLP implements the mint_lp entry operation (spec §4.5, §6.1): account
// contributes amountNative of asset, already transferred in by the caller,
// and receives LP shares proportional to its dollar value net of the mint
// fee.
func (e *Engine) MintLP(account string, assetID types.AssetID, amountNative, minOut *uint256.Int, nowMS, nowSec uint64) (minted *uint256.Int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.metrics.ObserveMint(string(assetID), err) }()

	if err = e.guard("mint_lp"); err != nil {
		return nil, err
	}
	a, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}

	totalAUM, err := e.totalAUM()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvariantViolation, err)
	}
	priceUSD, priceErr := lp.Price(totalAUM, e.state.LP.TotalSupply)
	if priceErr != nil {
		priceUSD = new(uint256.Int)
	}

	minted, err = lp.Mint(e.state.LP, lp.MintParams{
		Asset:        a,
		Account:      account,
		NativeAmount: amountNative,
		MinOut:       minOut,
		Fee:          e.lpFeeParams(totalAUM),
		NowMS:        nowMS,
		NowSec:       nowSec,
	})
	if err != nil {
		e.warnOp("mint_lp", err, "account", account, "asset", assetID)
		return nil, err
	}

	e.emit(events.MintBurnLp{
		Direction:  events.MintLiquidity,
		AccountID:  account,
		TokenIn:    assetID,
		AmountIn:   amountNative,
		TokenOut:   assetID,
		AmountOut:  minted,
		LpPriceUSD: priceUSD,
	})
	e.logOp("mint_lp", "account", account, "asset", assetID, "minted", minted.String())
	return minted, nil
}

// BurnLP implements the burn_lp entry operation (spec §4.5, §6.1): account
// redeems lpAmount LP shares for native units of outAsset, net of the burn
// fee.
func (e *Engine) BurnLP(account string, lpAmount *uint256.Int, outAsset types.AssetID, minOut *uint256.Int, nowMS, nowSec uint64) (nativeOut *uint256.Int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.metrics.ObserveBurn(string(outAsset), err) }()

	if err = e.guard("burn_lp"); err != nil {
		return nil, err
	}
	a, err := e.asset(outAsset)
	if err != nil {
		return nil, err
	}

	totalAUM, err := e.totalAUM()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvariantViolation, err)
	}
	priceUSD, priceErr := lp.Price(totalAUM, e.state.LP.TotalSupply)
	if priceErr != nil {
		priceUSD = new(uint256.Int)
	}

	nativeOut, err = lp.Burn(e.state.LP, lp.BurnParams{
		Asset:    a,
		Account:  account,
		LPAmount: lpAmount,
		MinOut:   minOut,
		Fee:      e.lpFeeParams(totalAUM),
		NowMS:    nowMS,
		NowSec:   nowSec,
	})
	if err != nil {
		e.warnOp("burn_lp", err, "account", account, "asset", outAsset)
		return nil, err
	}

	e.emit(events.MintBurnLp{
		Direction:  events.BurnLiquidity,
		AccountID:  account,
		TokenIn:    outAsset,
		AmountIn:   lpAmount,
		TokenOut:   outAsset,
		AmountOut:  nativeOut,
		LpPriceUSD: priceUSD,
	})
	e.logOp("burn_lp", "account", account, "asset", outAsset, "native_out", nativeOut.String())
	return nativeOut, nil
}
