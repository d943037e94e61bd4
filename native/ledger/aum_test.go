package ledger

import (
	"testing"

	"perpcore/core/types"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

// onedollar is PriceUSD for an asset priced at exactly $1.00: prices are
// expressed in DOLLAR_DENOM (10^6) fixed point, same as every USD amount.
var onedollar = uint256.NewInt(1_000_000)

func TestAssetAUMStableValuesPoolDirectly(t *testing.T) {
	a := newTestAsset()
	a.Decimals = 6
	a.Stable = true
	a.PoolBalance = uint256.NewInt(1_000_000) // 1.000000 native units
	a.PriceUSD = onedollar
	v, err := AssetAUM(a, nil, false)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1_000_000), v)
}

func TestAssetAUMNonStableUsesGuaranteedPlusPoolMinusReserved(t *testing.T) {
	a := newTestAsset()
	a.Decimals = 6
	a.PriceUSD = onedollar
	a.PoolBalance = uint256.NewInt(1_000_000)
	a.ReservedAmount = uint256.NewInt(200_000)
	a.GuaranteedUSD = uint256.NewInt(50_000)
	v, err := AssetAUM(a, nil, false)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(850_000), v)
}

func TestAssetAUMClampsAtZeroWhenReservedExceedsGuaranteedPlusPool(t *testing.T) {
	a := newTestAsset()
	a.Decimals = 6
	a.PriceUSD = onedollar
	a.PoolBalance = uint256.NewInt(100)
	a.ReservedAmount = uint256.NewInt(1_000)
	a.GuaranteedUSD = new(uint256.Int)
	v, err := AssetAUM(a, nil, false)
	require.NoError(t, err)
	require.True(t, v.IsZero())
}

func TestAssetAUMSubtractsShortProfit(t *testing.T) {
	a := newTestAsset()
	a.Decimals = 6
	a.PriceUSD = onedollar
	a.PoolBalance = uint256.NewInt(1_000_000)
	v, err := AssetAUM(a, uint256.NewInt(100_000), true)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(900_000), v)
}

func TestAssetAUMAddsShortLoss(t *testing.T) {
	a := newTestAsset()
	a.Decimals = 6
	a.PriceUSD = onedollar
	a.PoolBalance = uint256.NewInt(1_000_000)
	v, err := AssetAUM(a, uint256.NewInt(100_000), false)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1_100_000), v)
}

func TestTotalAUMSumsAcrossAssets(t *testing.T) {
	a1 := newTestAsset()
	a1.ID = "usdc"
	a1.Decimals = 6
	a1.Stable = true
	a1.PoolBalance = uint256.NewInt(500_000)
	a1.PriceUSD = onedollar

	a2 := newTestAsset()
	a2.ID = "near"
	a2.Decimals = 6
	a2.PoolBalance = uint256.NewInt(500_000)
	a2.PriceUSD = onedollar

	total, err := TotalAUM([]*types.Asset{a1, a2}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1_000_000), total)
}

func TestAssetAUMRejectsNil(t *testing.T) {
	_, err := AssetAUM(nil, nil, false)
	require.ErrorIs(t, err, ErrZeroAsset)
}
