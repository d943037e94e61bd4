// Package lp implements the LP token engine described in spec §4.5: a
// fungible share minted or burned against total assets-under-management,
// snapshotted before any side effect so later steps in the same operation
// cannot move the price out from under the caller.
package lp

import (
	"perpcore/core/types"
	"perpcore/fixedpoint"
	"perpcore/native/fees"
	"perpcore/native/funding"
	"perpcore/native/ledger"
	"perpcore/native/oracle"

	"github.com/holiman/uint256"
)

// Ledger holds LP total supply and per-account balances. No storage-rent
// tracking is modelled (spec §3.4); callers enforce any minimum-transfer
// floor at the external layer.
type Ledger struct {
	TotalSupply *uint256.Int
	Balances    map[string]*uint256.Int
}

// NewLedger returns an empty LP ledger.
func NewLedger() *Ledger {
	return &Ledger{TotalSupply: new(uint256.Int), Balances: map[string]*uint256.Int{}}
}

func (l *Ledger) credit(account string, amt *uint256.Int) {
	bal, ok := l.Balances[account]
	if !ok {
		bal = new(uint256.Int)
	}
	l.Balances[account] = new(uint256.Int).Add(bal, amt)
	l.TotalSupply = new(uint256.Int).Add(l.TotalSupply, amt)
}

func (l *Ledger) debit(account string, amt *uint256.Int) error {
	bal, ok := l.Balances[account]
	if !ok || bal.Cmp(amt) < 0 {
		return ErrInsufficientOut
	}
	l.Balances[account] = new(uint256.Int).Sub(bal, amt)
	l.TotalSupply = new(uint256.Int).Sub(l.TotalSupply, amt)
	return nil
}

// FeeParams bundles the fee-engine knobs Mint/Burn need, so call sites
// don't thread eight scalar arguments through the entry points.
type FeeParams struct {
	MintBurnBaseBPS uint64
	DynamicEnabled  bool
	TotalAUM        *uint256.Int
	TotalWeight     uint64
	TaxBPS          uint64
}

// MintParams is one mint_lp call (spec §4.5 Mint).
type MintParams struct {
	Asset        *types.Asset
	Account      string
	NativeAmount *uint256.Int
	MinOut       *uint256.Int
	Fee          FeeParams
	NowMS        uint64
	NowSec       uint64
}

// Mint credits the caller with LP shares proportional to the dollar value
// contributed, net of the mint fee, and returns the minted amount.
func Mint(l *Ledger, p MintParams) (*uint256.Int, error) {
	a := p.Asset
	if a == nil {
		return nil, ErrZeroAmount
	}
	if err := oracle.ValidatePrice(a, p.NowMS, a.MaxStalenessDurationSec); err != nil {
		return nil, err
	}
	if fixedpoint.IsZero(p.NativeAmount) {
		return nil, ErrZeroAmount
	}
	if a.LPSupport == types.LPSupportBurnOnly || a.LPSupport == types.LPSupportDisabled {
		return nil, ErrLPDisabled
	}

	prevSupply := fixedpoint.Clone(l.TotalSupply)
	totalAUM := fixedpoint.Clone(p.Fee.TotalAUM)

	feeBPS, err := fees.MintFeeBPS(a, p.NativeAmount, p.Fee.MintBurnBaseBPS, p.Fee.DynamicEnabled, totalAUM, p.Fee.TotalWeight, p.Fee.TaxBPS)
	if err != nil {
		return nil, err
	}
	afterFee, fee, err := fees.Withhold(p.NativeAmount, feeBPS)
	if err != nil {
		return nil, err
	}

	if err := ledger.AddFees(a, fee); err != nil {
		return nil, err
	}
	if err := ledger.AddLiquidity(a, afterFee); err != nil {
		return nil, err
	}
	if _, err := funding.UpdateCumulative(a, p.NowSec); err != nil {
		return nil, err
	}
	if err := ledger.RegisterDeposit(a, afterFee, p.NowMS); err != nil {
		return nil, err
	}

	var mint *uint256.Int
	if prevSupply.IsZero() {
		dollarValue, err := fixedpoint.Ratio(afterFee, a.PriceUSD, a.Denom())
		if err != nil {
			return nil, err
		}
		mint, err = fixedpoint.Ratio(types.LPDenom, dollarValue, types.DollarDenom)
		if err != nil {
			return nil, err
		}
	} else {
		mint, err = fixedpoint.ConvertAssets(afterFee, prevSupply, a.PriceUSD, totalAUM, a.Denom())
		if err != nil {
			return nil, err
		}
	}

	if p.MinOut != nil && mint.Cmp(p.MinOut) < 0 {
		return nil, ErrSlippage
	}
	l.credit(p.Account, mint)
	return mint, nil
}

// BurnParams is one burn_lp call (spec §4.5 Burn).
type BurnParams struct {
	Asset      *types.Asset
	Account    string
	LPAmount   *uint256.Int
	MinOut     *uint256.Int
	Fee        FeeParams
	NowMS      uint64
	NowSec     uint64
}

// Burn redeems LPAmount LP shares for native units of Asset, net of the
// burn fee, and returns the amount to transfer out.
func Burn(l *Ledger, p BurnParams) (*uint256.Int, error) {
	a := p.Asset
	if a == nil {
		return nil, ErrZeroAmount
	}
	if err := oracle.ValidatePrice(a, p.NowMS, a.MaxStalenessDurationSec); err != nil {
		return nil, err
	}
	if fixedpoint.IsZero(p.LPAmount) {
		return nil, ErrZeroAmount
	}
	if a.LPSupport == types.LPSupportDisabled {
		return nil, ErrLPDisabled
	}

	prevSupply := fixedpoint.Clone(l.TotalSupply)
	totalAUM := fixedpoint.Clone(p.Fee.TotalAUM)

	if err := l.debit(p.Account, p.LPAmount); err != nil {
		return nil, err
	}

	redeemNative, err := fixedpoint.ConvertAssets(p.LPAmount, totalAUM, a.Denom(), prevSupply, a.PriceUSD)
	if err != nil {
		return nil, err
	}
	if redeemNative.Cmp(a.AvailableLiquidity()) > 0 {
		return nil, ErrInsufficientOut
	}
	if err := ledger.RegisterWithdrawal(a, redeemNative, p.NowMS); err != nil {
		return nil, err
	}

	feeBPS, err := fees.BurnFeeBPS(a, p.LPAmount, p.Fee.MintBurnBaseBPS, p.Fee.DynamicEnabled, totalAUM, p.Fee.TotalWeight, p.Fee.TaxBPS)
	if err != nil {
		return nil, err
	}
	afterFeeNative, feeNative, err := fees.Withhold(redeemNative, feeBPS)
	if err != nil {
		return nil, err
	}

	if err := ledger.RemoveLiquidity(a, redeemNative); err != nil {
		return nil, err
	}
	if err := ledger.AddFees(a, feeNative); err != nil {
		return nil, err
	}
	if a.AvailableLiquidity().Cmp(a.BufferAmount) < 0 {
		return nil, ErrBufferBreached
	}
	if _, err := funding.UpdateCumulative(a, p.NowSec); err != nil {
		return nil, err
	}

	if p.MinOut != nil && afterFeeNative.Cmp(p.MinOut) < 0 {
		return nil, ErrSlippage
	}
	return afterFeeNative, nil
}

// Price returns total_aum * LP_DENOM / total_supply, failing if supply is
// zero (spec §4.5).
func Price(totalAUM, totalSupply *uint256.Int) (*uint256.Int, error) {
	if totalSupply == nil || totalSupply.IsZero() {
		return nil, ErrZeroSupply
	}
	return fixedpoint.Ratio(totalAUM, types.LPDenom, totalSupply)
}
