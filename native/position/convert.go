package position

import (
	"perpcore/core/types"
	"perpcore/fixedpoint"

	"github.com/holiman/uint256"
)

// MinUSDPrice values a native amount at the asset's min (spread-adjusted)
// price — the conservative valuation used when crediting collateral in.
func MinUSDPrice(a *types.Asset, native *uint256.Int) (*uint256.Int, error) {
	min, err := a.MinPrice()
	if err != nil {
		return nil, err
	}
	return fixedpoint.Ratio(native, min, a.Denom())
}

// MaxUSDPrice values a native amount at the asset's max (spread-adjusted)
// price.
func MaxUSDPrice(a *types.Asset, native *uint256.Int) (*uint256.Int, error) {
	max, err := a.MaxPrice()
	if err != nil {
		return nil, err
	}
	return fixedpoint.Ratio(native, max, a.Denom())
}

// FromMaxUSDPrice is the inverse of MaxUSDPrice: how many native units a
// USD amount buys at the max price.
func FromMaxUSDPrice(a *types.Asset, usd *uint256.Int) (*uint256.Int, error) {
	max, err := a.MaxPrice()
	if err != nil {
		return nil, err
	}
	return fixedpoint.Ratio(usd, a.Denom(), max)
}

// FromMinUSDPrice is the inverse of MinUSDPrice.
func FromMinUSDPrice(a *types.Asset, usd *uint256.Int) (*uint256.Int, error) {
	min, err := a.MinPrice()
	if err != nil {
		return nil, err
	}
	return fixedpoint.Ratio(usd, a.Denom(), min)
}
