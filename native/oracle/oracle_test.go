package oracle

import (
	"testing"

	"perpcore/core/types"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func dollars(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000))
}

func TestApplyUpdateClampsToMaxChangePerSecond(t *testing.T) {
	a := &types.Asset{PriceUSD: dollars(5), MaxPriceChangeBPS: 100, LastChangeTimestampMS: 0}
	accepted, err := ApplyUpdate(Update{Asset: a, NewPrice: dollars(10), NowMS: 1_000, PrevNowMS: 0})
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(5_050_000), accepted)
}

func TestApplyUpdateAcceptsWithinAllowedChange(t *testing.T) {
	a := &types.Asset{PriceUSD: dollars(5), MaxPriceChangeBPS: 10_000, LastChangeTimestampMS: 0}
	accepted, err := ApplyUpdate(Update{Asset: a, NewPrice: dollars(6), NowMS: 1_000, PrevNowMS: 0})
	require.NoError(t, err)
	require.Equal(t, dollars(6), accepted)
}

func TestApplyUpdateNoClampWhenDisabled(t *testing.T) {
	a := &types.Asset{PriceUSD: dollars(5), MaxPriceChangeBPS: 0}
	accepted, err := ApplyUpdate(Update{Asset: a, NewPrice: dollars(100), NowMS: 1_000})
	require.NoError(t, err)
	require.Equal(t, dollars(100), accepted)
}

func TestValidatePriceRejectsStale(t *testing.T) {
	a := &types.Asset{PriceUSD: dollars(5), LastChangeTimestampMS: 0}
	err := ValidatePrice(a, 200_000, 120)
	require.ErrorIs(t, err, ErrStalePrice)
}

func TestValidatePriceRejectsZero(t *testing.T) {
	a := &types.Asset{PriceUSD: new(uint256.Int)}
	err := ValidatePrice(a, 0, 120)
	require.ErrorIs(t, err, ErrZeroPrice)
}

func TestValidatePriceSkipsStalenessForStableAssets(t *testing.T) {
	a := &types.Asset{PriceUSD: dollars(1), Stable: true, LastChangeTimestampMS: 0}
	require.NoError(t, ValidatePrice(a, 999_999_999, 120))
}

func TestValidatePriceRejectsNilAsset(t *testing.T) {
	err := ValidatePrice(nil, 0, 120)
	require.ErrorIs(t, err, ErrZeroAsset)
}
