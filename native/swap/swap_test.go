package swap

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

func dollars(n uint64) *uint256.Int { return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000)) }

func baseAsset(id types.AssetID, decimals uint8, price *uint256.Int, poolNative uint64) *types.Asset {
	return &types.Asset{
		ID:              id,
		Decimals:        decimals,
		Balance:         new(uint256.Int).Mul(uint256.NewInt(poolNative), mustPow10(int(decimals))),
		PoolBalance:     new(uint256.Int).Mul(uint256.NewInt(poolNative), mustPow10(int(decimals))),
		AccumulatedFees: new(uint256.Int),
		ReservedAmount:  new(uint256.Int),
		BufferAmount:    new(uint256.Int),
		MaxPoolAmount:   new(uint256.Int),
		GuaranteedUSD:   new(uint256.Int),
		PriceUSD:        price,
		SwapState:       types.SwapEnabled,
		FundingIntervalSec: 3_600,
		MaxStalenessDurationSec: 1_000_000,
	}
}

func TestSwapConvertsAtSpotPriceWithZeroFee(t *testing.T) {
	in := baseAsset("near", 24, dollars(5), 1_000)
	out := baseAsset("usdc", 6, dollars(1), 1_000_000)
	amountIn := new(uint256.Int).Mul(uint256.NewInt(10), mustPow10(24)) // 10 NEAR
	got, err := Swap(Params{In: in, Out: out, AmountIn: amountIn, Fee: FeeParams{}})
	require.NoError(t, err)
	// 10 NEAR @ $5 == $50 == 50 USDC (6dp)
	require.Equal(t, uint256.NewInt(50_000_000), got)
}

func TestSwapRejectsSameAsset(t *testing.T) {
	a := baseAsset("near", 24, dollars(5), 100)
	_, err := Swap(Params{In: a, Out: a, AmountIn: uint256.NewInt(1)})
	require.ErrorIs(t, err, ErrSameAsset)
}

func TestSwapRejectsDisabledState(t *testing.T) {
	in := baseAsset("near", 24, dollars(5), 1_000)
	out := baseAsset("usdc", 6, dollars(1), 1_000_000)
	out.SwapState = types.SwapDisabled
	_, err := Swap(Params{In: in, Out: out, AmountIn: mustPow10(24)})
	require.ErrorIs(t, err, ErrStateDisallows)
}

func TestSwapRejectsSlippage(t *testing.T) {
	in := baseAsset("near", 24, dollars(5), 1_000)
	out := baseAsset("usdc", 6, dollars(1), 1_000_000)
	amountIn := mustPow10(24) // 1 NEAR == $5 == 5_000_000
	_, err := Swap(Params{In: in, Out: out, AmountIn: amountIn, MinOut: uint256.NewInt(6_000_000)})
	require.ErrorIs(t, err, ErrSlippage)
}

func TestSwapRejectsInsufficientLiquidity(t *testing.T) {
	in := baseAsset("near", 24, dollars(5), 1_000_000)
	out := baseAsset("usdc", 6, dollars(1), 10)
	amountIn := new(uint256.Int).Mul(uint256.NewInt(1_000), mustPow10(24))
	_, err := Swap(Params{In: in, Out: out, AmountIn: amountIn})
	require.ErrorIs(t, err, ErrInsufficientOut)
}
