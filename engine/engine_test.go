package engine

import (
	"testing"

	"perpcore/config"
	"perpcore/core/state"
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
		Shortable:                  true,
		TokenWeight:                1,
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
		MaxStalenessDurationSec:    1_000_000,
		PerpState:                  types.PerpEnabled,
		LPSupport:                  types.LPSupportEnabled,
		SwapState:                  types.SwapEnabled,
	}
}

func testConfig() config.EngineConfig {
	return config.EngineConfig{
		Fees: config.FeeParameters{
			SwapFeeBPS:     0,
			MintBurnFeeBPS: 0,
			MarginFeeBPS:   0,
		},
		Leverage:                config.LeverageParameters{MinLeverage: 1_100, MaxLeverage: 50_000},
		LiquidationRewardUSD:    "25000000",
		FundingIntervalSec:      3_600,
		MaxStalenessDurationSec: 1_000_000,
		MaxLimitOrderLifeSec:    30 * 24 * 3_600,
	}
}

func newTestEngine(priceUSD uint64) (*Engine, *state.Store) {
	st := state.New()
	st.PutAsset(nearAsset(priceUSD))
	return New(st, testConfig(), nil), st
}

func TestMintThenBurnLPRoundTrips(t *testing.T) {
	e, _ := newTestEngine(5)
	minted, err := e.MintLP("alice", "near", nearUnits(100), nil, 0, 0)
	require.NoError(t, err)
	require.True(t, minted.Sign() > 0)

	out, err := e.BurnLP("alice", minted, "near", nil, 0, 0)
	require.NoError(t, err)
	require.True(t, out.Sign() > 0)
}

func TestIncreaseThenDecreasePositionRoundTrips(t *testing.T) {
	e, st := newTestEngine(5)
	_, err := e.MintLP("lp", "near", nearUnits(100), nil, 0, 0)
	require.NoError(t, err)

	id, err := e.IncreasePosition("alice", "near", "near", dollars(100), nearUnits(5), true, "", 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	pos, ok := st.Position(id)
	require.True(t, ok)
	require.Equal(t, dollars(100).String(), pos.SizeUSD.String())

	err = e.DecreasePosition("alice", id, dollars(25), dollars(100), "", 1000, 1)
	require.NoError(t, err)

	_, ok = st.Position(id)
	require.False(t, ok)
}

func TestPlaceThenCancelOrderRefundsAttachedCollateral(t *testing.T) {
	e, _ := newTestEngine(5)
	_, err := e.MintLP("lp", "near", nearUnits(100), nil, 0, 0)
	require.NoError(t, err)

	id, err := e.PlaceOrder("alice", "near", "near", true, types.OrderIncrease, dollars(6), dollars(100), new(uint256.Int), nearUnits(5), 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	refund, err := e.CancelOrder("alice", id)
	require.NoError(t, err)
	require.Equal(t, nearUnits(5).String(), refund.String())
}

func TestExecuteOrderOpensPositionWhenMarkCrossesThreshold(t *testing.T) {
	e, st := newTestEngine(5)
	_, err := e.MintLP("lp", "near", nearUnits(100), nil, 0, 0)
	require.NoError(t, err)

	id, err := e.PlaceOrder("alice", "near", "near", true, types.OrderIncrease, dollars(6), dollars(100), new(uint256.Int), nearUnits(5), 0, 0)
	require.NoError(t, err)

	err = e.ExecuteOrder("near", id, 0, 0)
	require.NoError(t, err)

	pos, ok := st.OpenPosition("alice", "near", "near", true)
	require.True(t, ok)
	require.Equal(t, dollars(100).String(), pos.SizeUSD.String())

	_, ok = st.Orders.Get(id)
	require.False(t, ok)
}

func TestDecreasePositionRejectsWrongOwner(t *testing.T) {
	e, st := newTestEngine(5)
	_, err := e.MintLP("lp", "near", nearUnits(100), nil, 0, 0)
	require.NoError(t, err)
	id, err := e.IncreasePosition("alice", "near", "near", dollars(100), nearUnits(5), true, "", 0, 0)
	require.NoError(t, err)
	_, ok := st.Position(id)
	require.True(t, ok)

	err = e.DecreasePosition("mallory", id, dollars(0), dollars(10), "", 0, 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGuardRejectsPausedModule(t *testing.T) {
	e, st := newTestEngine(5)
	st.SetPaused("mint_lp", true)
	_, err := e.MintLP("alice", "near", nearUnits(1), nil, 0, 0)
	require.ErrorIs(t, err, ErrPrecondition)
}
