package ledger

import (
	"perpcore/core/types"
	"perpcore/fixedpoint"

	"github.com/holiman/uint256"
)

// AssetAUM returns one asset's contribution to total assets-under-
// management, in USD (spec §4.2). Stable assets value their pool balance
// directly at the oracle price. Non-stable assets instead use
// guaranteed_usd (collateral already marked against open longs) plus the
// dollar value of the pool minus what is reserved against it, adjusted by
// the unrealized pnl the vault owes to (or is owed by) open shorts: a
// short in profit reduces AUM by what the vault would have to pay out,
// a short at a loss increases it.
func AssetAUM(a *types.Asset, shortPnlSigned *uint256.Int, shortPnlIsProfit bool) (*uint256.Int, error) {
	if a == nil {
		return nil, ErrZeroAsset
	}
	if a.Stable {
		return dollarValue(a, a.PoolBalance)
	}

	poolValue, err := dollarValue(a, a.PoolBalance)
	if err != nil {
		return nil, err
	}
	reservedValue, err := dollarValue(a, a.ReservedAmount)
	if err != nil {
		return nil, err
	}

	aum := new(uint256.Int).Add(a.GuaranteedUSD, poolValue)
	if reservedValue.Cmp(aum) >= 0 {
		aum = new(uint256.Int)
	} else {
		aum = new(uint256.Int).Sub(aum, reservedValue)
	}

	if shortPnlSigned == nil || shortPnlSigned.IsZero() {
		return aum, nil
	}
	if shortPnlIsProfit {
		if shortPnlSigned.Cmp(aum) >= 0 {
			return new(uint256.Int), nil
		}
		return new(uint256.Int).Sub(aum, shortPnlSigned), nil
	}
	return new(uint256.Int).Add(aum, shortPnlSigned), nil
}

// TotalAUM sums AssetAUM across every asset passed in, in the same USD
// fixed-point denomination (spec §4.2's "sum over assets").
func TotalAUM(assets []*types.Asset, shortPnlUSD map[types.AssetID]*uint256.Int, shortPnlIsProfit map[types.AssetID]bool) (*uint256.Int, error) {
	total := new(uint256.Int)
	for _, a := range assets {
		pnl := shortPnlUSD[a.ID]
		profit := shortPnlIsProfit[a.ID]
		v, err := AssetAUM(a, pnl, profit)
		if err != nil {
			return nil, err
		}
		total = new(uint256.Int).Add(total, v)
	}
	return total, nil
}

// dollarValue converts a native-denominated amount to the DOLLAR_DENOM
// fixed-point representation: amount * price / asset_denom.
func dollarValue(a *types.Asset, amount *uint256.Int) (*uint256.Int, error) {
	return fixedpoint.Ratio(amount, a.PriceUSD, a.Denom())
}
