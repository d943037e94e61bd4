package position

import (
	"testing"

	"perpcore/core/types"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func mustPow10(n int) *uint256.Int {
	out := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := 0; i < n; i++ {
		out = new(uint256.Int).Mul(out, ten)
	}
	return out
}

func nearUnits(n uint64) *uint256.Int { return new(uint256.Int).Mul(uint256.NewInt(n), mustPow10(24)) }

func dollars(n uint64) *uint256.Int { return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000)) }

func nearAsset(priceUSD uint64) *types.Asset {
	return &types.Asset{
		ID:                         "near",
		Decimals:                   24,
		Stable:                     false,
		Shortable:                  true,
		Balance:                    new(uint256.Int),
		PoolBalance:                new(uint256.Int),
		AccumulatedFees:            new(uint256.Int),
		ReservedAmount:             new(uint256.Int),
		MaxPoolAmount:              new(uint256.Int),
		GuaranteedUSD:              new(uint256.Int),
		BufferAmount:               new(uint256.Int),
		GlobalLongSizeUSD:          new(uint256.Int),
		GlobalShortSizeUSD:         new(uint256.Int),
		GlobalLongAveragePriceUSD:  new(uint256.Int),
		GlobalShortAveragePriceUSD: new(uint256.Int),
		CumulativeFundingRate:      new(uint256.Int),
		PriceUSD:                   dollars(priceUSD),
		LastChangeTimestampMS:      0,
		MaxStalenessDurationSec:    1_000_000,
		PerpState:                  types.PerpEnabled,
	}
}

func wideLeverage() (min, max uint64) { return 1_100, 50_000 }

func newPosition() *types.Position {
	return &types.Position{
		SizeUSD:         new(uint256.Int),
		CollateralUSD:   new(uint256.Int),
		AveragePriceUSD: new(uint256.Int),
		ReserveAmount:   new(uint256.Int),
	}
}

// TestIncreaseThenDecreaseLongWithProfitMatchesScenario1 reproduces spec §8
// scenario 1: add 100 NEAR liquidity, attach 5 NEAR opening a $100 long,
// price moves to $6, full close with collateral_delta=$25. The pool should
// shed exactly 7.5 NEAR (the $45 payout at $6/NEAR).
func TestIncreaseThenDecreaseLongWithProfitMatchesScenario1(t *testing.T) {
	minLev, maxLev := wideLeverage()
	near := nearAsset(5)
	require.NoError(t, addLiquidity(near, near.Denom(), 100))

	pos := newPosition()
	err := Increase(pos, near, near, dollars(100), nearUnits(5), true, 1_000, 1, IncreaseConfig{MinLeverage: minLev, MaxLeverage: maxLev})
	require.NoError(t, err)
	require.Equal(t, dollars(100), pos.SizeUSD)
	require.Equal(t, dollars(25), pos.CollateralUSD)

	poolAfterOpen := new(uint256.Int).Set(near.PoolBalance)

	near.PriceUSD = dollars(6)
	near.LastChangeTimestampMS = 2_000

	result, err := Decrease(pos, near, near, dollars(25), dollars(100), 2_000, 2, DecreaseConfig{MinLeverage: minLev, MaxLeverage: maxLev})
	require.NoError(t, err)
	require.True(t, result.Closed)
	require.Equal(t, dollars(45), result.PayoutUSD)

	poolDrop := new(uint256.Int).Sub(poolAfterOpen, near.PoolBalance)
	wantDrop := new(uint256.Int).Mul(uint256.NewInt(75), mustPow10(23)) // 7.5 NEAR
	require.Equal(t, wantDrop, poolDrop)
}

// TestLiquidationInsolventLongMatchesScenario3 reproduces spec §8 scenario
// 3: 200 NEAR pool, 10x long opened at $20, price collapses to $1. The
// position is Insolvent and the liquidator reward is capped at $25,
// landing at $20 (20 NEAR at the crashed price).
func TestLiquidationInsolventLongMatchesScenario3(t *testing.T) {
	minLev, maxLev := wideLeverage()
	near := nearAsset(20)
	require.NoError(t, addLiquidity(near, near.Denom(), 200))

	pos := newPosition()
	err := Increase(pos, near, near, dollars(2_000), nearUnits(10), true, 1_000, 1, IncreaseConfig{MinLeverage: minLev, MaxLeverage: maxLev})
	require.NoError(t, err)

	near.PriceUSD = dollars(1)
	near.LastChangeTimestampMS = 2_000

	check, err := CheckLiquidation(pos, near, near, 0, false, minLev, maxLev, true, 2_000, 2)
	require.NoError(t, err)
	require.Equal(t, StatusInsolvent, check.Status)
	require.Equal(t, "losses exceed collateral", check.Reason)

	result, err := Liquidate(pos, near, near, LiquidateConfig{
		MinLeverage:          minLev,
		MaxLeverage:          maxLev,
		LiquidationRewardUSD: dollars(25),
	}, 2_000, 2)
	require.NoError(t, err)
	require.True(t, result.Removed)
	require.Equal(t, nearUnits(20), result.RewardNative)
	require.True(t, pos.SizeUSD.IsZero())
}

// TestDeleverageMaxLeverageExceededMatchesScenario4 reproduces spec §8
// scenario 4: a ~6.7x long whose price drop erodes collateral enough to
// push effective leverage past the cap without yet wiping out collateral,
// triggering a forced partial decrease rather than a full liquidation.
func TestDeleverageMaxLeverageExceededMatchesScenario4(t *testing.T) {
	minLev := uint64(1_100)
	maxLev := uint64(10_000) // 10x cap so a ~6.7x position can cross it on a price drop
	near := nearAsset(5)
	require.NoError(t, addLiquidity(near, near.Denom(), 200))

	pos := newPosition()
	err := Increase(pos, near, near, dollars(2_000), nearUnits(60), true, 1_000, 1, IncreaseConfig{MinLeverage: minLev, MaxLeverage: maxLev})
	require.NoError(t, err)

	near.PriceUSD = uint256.NewInt(4_500_000) // $4.50: a loss, but not enough to insolvency
	near.LastChangeTimestampMS = 2_000

	check, err := CheckLiquidation(pos, near, near, 0, false, minLev, maxLev, true, 2_000, 2)
	require.NoError(t, err)
	require.Equal(t, StatusMaxLeverageExceeded, check.Status)

	sizeBefore := new(uint256.Int).Set(pos.SizeUSD)
	result, err := Liquidate(pos, near, near, LiquidateConfig{
		MinLeverage:          minLev,
		MaxLeverage:          maxLev,
		LiquidationRewardUSD: dollars(25),
	}, 2_000, 2)
	require.NoError(t, err)
	require.Equal(t, StatusMaxLeverageExceeded, result.Status)
	require.False(t, result.Removed)
	require.Nil(t, result.RewardNative)
	require.True(t, pos.SizeUSD.Cmp(sizeBefore) < 0)
	require.True(t, pos.SizeUSD.Sign() > 0)
}

func addLiquidity(a *types.Asset, denom *uint256.Int, n uint64) error {
	amt := new(uint256.Int).Mul(uint256.NewInt(n), denom)
	a.Balance = new(uint256.Int).Add(a.Balance, amt)
	a.PoolBalance = new(uint256.Int).Add(a.PoolBalance, amt)
	return nil
}
