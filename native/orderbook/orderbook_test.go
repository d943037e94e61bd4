package orderbook

import (
	"testing"

	"perpcore/core/types"
	"perpcore/native/position"

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
		MaxStalenessDurationSec:    1_000_000,
		PerpState:                  types.PerpEnabled,
	}
}

func addLiquidity(a *types.Asset, n uint64) {
	amt := new(uint256.Int).Mul(uint256.NewInt(n), a.Denom())
	a.Balance = new(uint256.Int).Add(a.Balance, amt)
	a.PoolBalance = new(uint256.Int).Add(a.PoolBalance, amt)
}

func wideLeverage() (min, max uint64) { return 1_100, 50_000 }

func TestPlaceNewIncreaseOrderInsertsAndDerivesThreshold(t *testing.T) {
	book := New()
	near := nearAsset(5)
	minLev, maxLev := wideLeverage()

	order, err := Place(book, PlaceParams{
		Owner:              "alice",
		CollateralAsset:    near.ID,
		UnderlyingAsset:    near.ID,
		IsLong:             true,
		OrderType:          types.OrderIncrease,
		PriceUSD:           dollars(6),
		SizeDeltaUSD:       dollars(100),
		CollateralDeltaUSD: new(uint256.Int),
		AttachedCollateral: nearUnits(5),
		ExpiryMS:           0,
	}, near, near, nil, PlaceConfig{MaxLimitOrderLifeSec: 86_400, MinLeverage: minLev, MaxLeverage: maxLev}, dollars(5), 1_000)
	require.NoError(t, err)
	require.Equal(t, types.ThresholdBelow, order.Threshold) // mark(5) < price(6)

	got, ok := book.Get(order.ID)
	require.True(t, ok)
	require.Same(t, order, got)
}

func TestPlaceMergesSameTupleSamePrice(t *testing.T) {
	book := New()
	near := nearAsset(5)
	minLev, maxLev := wideLeverage()
	cfg := PlaceConfig{MaxLimitOrderLifeSec: 86_400, MinLeverage: minLev, MaxLeverage: maxLev}

	params := PlaceParams{
		Owner:              "alice",
		CollateralAsset:    near.ID,
		UnderlyingAsset:    near.ID,
		IsLong:             true,
		OrderType:          types.OrderIncrease,
		PriceUSD:           dollars(6),
		SizeDeltaUSD:       dollars(100),
		CollateralDeltaUSD: new(uint256.Int),
		AttachedCollateral: nearUnits(5),
	}
	first, err := Place(book, params, near, near, nil, cfg, dollars(5), 1_000)
	require.NoError(t, err)

	merged, err := Place(book, params, near, near, nil, cfg, dollars(5), 1_000)
	require.NoError(t, err)
	require.Equal(t, first.ID, merged.ID)
	require.Equal(t, dollars(200), merged.SizeDeltaUSD)
	require.Equal(t, nearUnits(10), merged.AttachedCollateral)

	require.Equal(t, 1, len(book.OrdersForOwner("alice")))
}

func TestPlaceRejectsIncreaseWithoutAttachedCollateralAndNoPosition(t *testing.T) {
	book := New()
	near := nearAsset(5)
	minLev, maxLev := wideLeverage()

	_, err := Place(book, PlaceParams{
		Owner:              "alice",
		CollateralAsset:    near.ID,
		UnderlyingAsset:    near.ID,
		IsLong:             true,
		OrderType:          types.OrderIncrease,
		PriceUSD:           dollars(6),
		SizeDeltaUSD:       dollars(100),
		CollateralDeltaUSD: new(uint256.Int),
		AttachedCollateral: new(uint256.Int),
	}, near, near, nil, PlaceConfig{MaxLimitOrderLifeSec: 86_400, MinLeverage: minLev, MaxLeverage: maxLev}, dollars(5), 1_000)
	require.ErrorIs(t, err, ErrBadAttachedAmount)
}

func TestCancelRefundsIncreaseAttachedCollateral(t *testing.T) {
	book := New()
	near := nearAsset(5)
	minLev, maxLev := wideLeverage()

	order, err := Place(book, PlaceParams{
		Owner:              "alice",
		CollateralAsset:    near.ID,
		UnderlyingAsset:    near.ID,
		IsLong:             true,
		OrderType:          types.OrderIncrease,
		PriceUSD:           dollars(6),
		SizeDeltaUSD:       dollars(100),
		CollateralDeltaUSD: new(uint256.Int),
		AttachedCollateral: nearUnits(5),
	}, near, near, nil, PlaceConfig{MaxLimitOrderLifeSec: 86_400, MinLeverage: minLev, MaxLeverage: maxLev}, dollars(5), 1_000)
	require.NoError(t, err)

	_, refund, err := Cancel(book, order.ID)
	require.NoError(t, err)
	require.Equal(t, nearUnits(5), refund)
	_, ok := book.Get(order.ID)
	require.False(t, ok)
}

func TestExecuteIncreaseOrderOpensPosition(t *testing.T) {
	book := New()
	near := nearAsset(5)
	addLiquidity(near, 100)
	minLev, maxLev := wideLeverage()
	cfg := PlaceConfig{MaxLimitOrderLifeSec: 86_400, MinLeverage: minLev, MaxLeverage: maxLev}

	order, err := Place(book, PlaceParams{
		Owner:              "alice",
		CollateralAsset:    near.ID,
		UnderlyingAsset:    near.ID,
		IsLong:             true,
		OrderType:          types.OrderIncrease,
		PriceUSD:           dollars(6),
		SizeDeltaUSD:       dollars(100),
		CollateralDeltaUSD: new(uint256.Int),
		AttachedCollateral: nearUnits(5),
	}, near, near, nil, cfg, dollars(5), 1_000)
	require.NoError(t, err)
	require.Equal(t, types.ThresholdBelow, order.Threshold) // mark(5) < price(6); fires when mark <= price

	pos := &types.Position{
		SizeUSD:         new(uint256.Int),
		CollateralUSD:   new(uint256.Int),
		AveragePriceUSD: new(uint256.Int),
		ReserveAmount:   new(uint256.Int),
	}
	near.PriceUSD = dollars(6)
	near.LastChangeTimestampMS = 2_000

	outcome, err := Execute(book, near.ID, order.ID, dollars(6), pos, near, near, position.IncreaseConfig{MinLeverage: minLev, MaxLeverage: maxLev}, position.DecreaseConfig{}, 2_000, 2)
	require.NoError(t, err)
	require.Equal(t, types.RemoveExecuted, outcome.Reason)
	require.Equal(t, dollars(100), pos.SizeUSD)

	_, ok := book.Get(order.ID)
	require.False(t, ok)
}

func TestExecuteRejectsWhenThresholdNotMet(t *testing.T) {
	book := New()
	near := nearAsset(5)
	addLiquidity(near, 100)
	minLev, maxLev := wideLeverage()
	cfg := PlaceConfig{MaxLimitOrderLifeSec: 86_400, MinLeverage: minLev, MaxLeverage: maxLev}

	order, err := Place(book, PlaceParams{
		Owner:              "alice",
		CollateralAsset:    near.ID,
		UnderlyingAsset:    near.ID,
		IsLong:             true,
		OrderType:          types.OrderIncrease,
		PriceUSD:           dollars(6),
		SizeDeltaUSD:       dollars(100),
		CollateralDeltaUSD: new(uint256.Int),
		AttachedCollateral: nearUnits(5),
	}, near, near, nil, cfg, dollars(5), 1_000)
	require.NoError(t, err)

	pos := &types.Position{SizeUSD: new(uint256.Int), CollateralUSD: new(uint256.Int), AveragePriceUSD: new(uint256.Int), ReserveAmount: new(uint256.Int)}
	// The order derived Below at $6 (placed at mark $5), so it fires only
	// once mark is at or under $6; mark $7 leaves it unmet.
	_, err = Execute(book, near.ID, order.ID, dollars(7), pos, near, near, position.IncreaseConfig{MinLeverage: minLev, MaxLeverage: maxLev}, position.DecreaseConfig{}, 1_500, 1)
	require.ErrorIs(t, err, ErrNotEligible)

	_, ok := book.Get(order.ID)
	require.True(t, ok, "rejected-but-ineligible order must remain on the book")
}

func TestEligibleReturnsOrdersCrossingMark(t *testing.T) {
	book := New()
	near := nearAsset(5)
	minLev, maxLev := wideLeverage()
	cfg := PlaceConfig{MaxLimitOrderLifeSec: 86_400, MinLeverage: minLev, MaxLeverage: maxLev}

	// Placed while mark(3) < price(4): threshold derives Below, so this
	// order fires once mark falls to 4 or under.
	below, err := Place(book, PlaceParams{
		Owner: "alice", CollateralAsset: near.ID, UnderlyingAsset: near.ID, IsLong: true,
		OrderType: types.OrderIncrease, PriceUSD: dollars(4), SizeDeltaUSD: dollars(100),
		CollateralDeltaUSD: new(uint256.Int), AttachedCollateral: nearUnits(5),
	}, near, near, nil, cfg, dollars(3), 1_000)
	require.NoError(t, err)
	require.Equal(t, types.ThresholdBelow, below.Threshold)

	// Placed while mark(7) >= price(6): threshold derives Above, so this
	// order fires once mark rises to 6 or over.
	above, err := Place(book, PlaceParams{
		Owner: "bob", CollateralAsset: near.ID, UnderlyingAsset: near.ID, IsLong: true,
		OrderType: types.OrderIncrease, PriceUSD: dollars(6), SizeDeltaUSD: dollars(100),
		CollateralDeltaUSD: new(uint256.Int), AttachedCollateral: nearUnits(5),
	}, near, near, nil, cfg, dollars(7), 1_000)
	require.NoError(t, err)
	require.Equal(t, types.ThresholdAbove, above.Threshold)

	eligibleAt4 := Eligible(book, near.ID, dollars(4), 0)
	require.Len(t, eligibleAt4, 1)
	require.Equal(t, below.ID, eligibleAt4[0].ID)

	eligibleAt6 := Eligible(book, near.ID, dollars(6), 0)
	require.Len(t, eligibleAt6, 1)
	require.Equal(t, above.ID, eligibleAt6[0].ID)
}

func TestRevalidateInvalidatesDecreaseOrderOnClosedPosition(t *testing.T) {
	book := New()
	near := nearAsset(5)
	minLev, maxLev := wideLeverage()
	cfg := PlaceConfig{MaxLimitOrderLifeSec: 86_400, MinLeverage: minLev, MaxLeverage: maxLev}

	order, err := Place(book, PlaceParams{
		Owner: "alice", CollateralAsset: near.ID, UnderlyingAsset: near.ID, IsLong: true,
		OrderType: types.OrderDecrease, PriceUSD: dollars(7), SizeDeltaUSD: dollars(50),
		CollateralDeltaUSD: new(uint256.Int), AttachedCollateral: new(uint256.Int),
	}, near, near, &types.Position{
		SizeUSD: dollars(100), CollateralUSD: dollars(25), AveragePriceUSD: dollars(5), ReserveAmount: new(uint256.Int),
	}, cfg, dollars(5), 1_000)
	require.NoError(t, err)

	closedPos := &types.Position{SizeUSD: new(uint256.Int), CollateralUSD: new(uint256.Int), AveragePriceUSD: new(uint256.Int), ReserveAmount: new(uint256.Int)}
	removed := Revalidate(book, "alice", near, near, true, closedPos, RevalidateConfig{MinLeverage: minLev, MaxLeverage: maxLev}, 2_000)
	require.Len(t, removed, 1)
	require.Equal(t, order.ID, removed[0].Order.ID)

	_, ok := book.Get(order.ID)
	require.False(t, ok)
}

func TestOrdersForUnderlyingListsLiveOrdersOnly(t *testing.T) {
	book := New()
	near := nearAsset(5)
	minLev, maxLev := wideLeverage()
	cfg := PlaceConfig{MaxLimitOrderLifeSec: 86_400, MinLeverage: minLev, MaxLeverage: maxLev}

	first, err := Place(book, PlaceParams{
		Owner: "alice", CollateralAsset: near.ID, UnderlyingAsset: near.ID, IsLong: true,
		OrderType: types.OrderIncrease, PriceUSD: dollars(6), SizeDeltaUSD: dollars(100),
		CollateralDeltaUSD: new(uint256.Int), AttachedCollateral: nearUnits(5),
	}, near, near, nil, cfg, dollars(5), 1_000)
	require.NoError(t, err)

	second, err := Place(book, PlaceParams{
		Owner: "bob", CollateralAsset: near.ID, UnderlyingAsset: near.ID, IsLong: true,
		OrderType: types.OrderIncrease, PriceUSD: dollars(8), SizeDeltaUSD: dollars(50),
		CollateralDeltaUSD: new(uint256.Int), AttachedCollateral: nearUnits(2),
	}, near, near, nil, cfg, dollars(5), 1_000)
	require.NoError(t, err)

	require.Empty(t, book.OrdersForUnderlying("other"))

	live := book.OrdersForUnderlying(near.ID)
	require.Len(t, live, 2)
	require.Equal(t, first.ID, live[0].ID)
	require.Equal(t, second.ID, live[1].ID)

	_, _, err = Cancel(book, first.ID)
	require.NoError(t, err)
	require.Len(t, book.OrdersForUnderlying(near.ID), 1)
}
