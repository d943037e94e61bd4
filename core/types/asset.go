package types

import "github.com/holiman/uint256"

// AssetID identifies a registered asset: the native chain token or a
// registered fungible-token identifier.
type AssetID string

// LPSupportState controls whether an asset currently participates in LP
// mint/burn flows.
type LPSupportState int

const (
	LPSupportEnabled LPSupportState = iota
	LPSupportMintOnly
	LPSupportBurnOnly
	LPSupportDisabled
)

// SwapState controls whether an asset currently participates in swaps.
type SwapState int

const (
	SwapEnabled SwapState = iota
	SwapInOnly
	SwapOutOnly
	SwapDisabled
)

// PerpState controls whether an asset currently accepts position mutations.
type PerpState int

const (
	PerpEnabled PerpState = iota
	PerpDecreaseOnly
	PerpDisabled
)

// TransferKind distinguishes deposit and withdrawal entries in the sliding
// window (spec §3.1 transfer_history).
type TransferKind int

const (
	TransferDeposit TransferKind = iota
	TransferWithdraw
)

// TransferRecord is one entry of an asset's withdrawal-throttle sliding window.
type TransferRecord struct {
	Amount      *uint256.Int
	Kind        TransferKind
	TimestampMS uint64
}

// PositionLimits bounds the size of an individual position on this asset.
type PositionLimits struct {
	MinSizeUSD *uint256.Int
	MaxSizeUSD *uint256.Int
}

// OpenInterestLimits bounds the aggregate long/short notional on this asset.
type OpenInterestLimits struct {
	MaxLongUSD  *uint256.Int
	MaxShortUSD *uint256.Int
}

// Asset is the per-token ledger row described in spec §3.1. Every field that
// participates in the balance invariant (Balance == PoolBalance +
// AccumulatedFees) is mutated only through native/ledger.
type Asset struct {
	ID            AssetID
	Decimals      uint8
	Stable        bool
	TokenWeight   uint64
	Shortable     bool

	Balance          *uint256.Int
	PoolBalance      *uint256.Int
	AccumulatedFees  *uint256.Int
	ReservedAmount   *uint256.Int
	BufferAmount     *uint256.Int
	MaxPoolAmount    *uint256.Int // 0 disables the cap

	GlobalLongSizeUSD         *uint256.Int
	GlobalShortSizeUSD        *uint256.Int
	GlobalLongAveragePriceUSD *uint256.Int
	GlobalShortAveragePriceUSD *uint256.Int

	PriceUSD               *uint256.Int
	SpreadBPS               uint64
	LastChangeTimestampMS   uint64
	MaxPriceChangeBPS       uint64 // 0 disables the clamp
	MaxStalenessDurationSec uint64

	CumulativeFundingRate *uint256.Int
	LastFundingTimeSec    uint64
	BaseFundingRateBPS    uint64
	FundingIntervalSec    uint64

	GuaranteedUSD *uint256.Int

	PositionLimits     PositionLimits
	OpenInterestLimits OpenInterestLimits

	TransferHistory    []TransferRecord
	WithdrawalLimitBPS uint64
	WithdrawalWindowMS uint64

	LPSupport LPSupportState
	SwapState SwapState
	PerpState PerpState

	MinProfitBPS     uint64
	MinProfitTimeSec uint64
}

// Denom returns 10^Decimals for this asset.
func (a *Asset) Denom() *uint256.Int {
	out := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := uint8(0); i < a.Decimals; i++ {
		out = new(uint256.Int).Mul(out, ten)
	}
	return out
}

// MinPrice returns price*(1-spreadBps/10000).
func (a *Asset) MinPrice() (*uint256.Int, error) {
	return subBPSLocal(a.PriceUSD, a.SpreadBPS)
}

// MaxPrice returns price*(1+spreadBps/10000).
func (a *Asset) MaxPrice() (*uint256.Int, error) {
	return addBPSLocal(a.PriceUSD, a.SpreadBPS)
}

// AvailableLiquidity is max(pool_balance - reserved_amount, 0).
func (a *Asset) AvailableLiquidity() *uint256.Int {
	if a.PoolBalance.Cmp(a.ReservedAmount) <= 0 {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(a.PoolBalance, a.ReservedAmount)
}

// these small local helpers avoid an import cycle with the fixedpoint
// package's BPS helpers, which operate on *uint256.Int the same way.
func addBPSLocal(x *uint256.Int, bps uint64) (*uint256.Int, error) {
	num := new(uint256.Int).Add(uint256.NewInt(10_000), uint256.NewInt(bps))
	prod, overflow := new(uint256.Int).MulOverflow(x, num)
	if overflow {
		return nil, errOverflow
	}
	return new(uint256.Int).Div(prod, uint256.NewInt(10_000)), nil
}

func subBPSLocal(x *uint256.Int, bps uint64) (*uint256.Int, error) {
	if bps > 10_000 {
		bps = 10_000
	}
	num := new(uint256.Int).Sub(uint256.NewInt(10_000), uint256.NewInt(bps))
	prod, overflow := new(uint256.Int).MulOverflow(x, num)
	if overflow {
		return nil, errOverflow
	}
	return new(uint256.Int).Div(prod, uint256.NewInt(10_000)), nil
}
