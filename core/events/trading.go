package events

import (
	"math/big"

	"perpcore/core/types"

	"github.com/holiman/uint256"
)

const (
	TypeSwap              = "swap"
	TypeMintBurnLp        = "mint_lp"
	TypeEditPosition      = "edit_position"
	TypeLiquidatePosition = "liquidate_position"
	TypeUpdateFundingRate = "update_funding_rate"
	TypeLpPriceUpdate     = "lp_price_update"
	TypeOracleUpdate      = "oracle_update"
)

// Swap captures one swap operation (spec §4.3, §6.2).
type Swap struct {
	AccountID       string
	TokenIn         types.AssetID
	TokenOut        types.AssetID
	AmountInNative  *uint256.Int
	AmountInUSD     *uint256.Int
	AmountOutNative *uint256.Int
	AmountOutUSD    *uint256.Int
	FeesNative      *uint256.Int
	FeesUSD         *uint256.Int
	FeeBPS          uint64
	ReferralCode    string // empty if none
}

// EventType implements the Event interface.
func (Swap) EventType() string { return TypeSwap }

// MintBurnDirection distinguishes LP mint from LP burn.
type MintBurnDirection int

const (
	MintLiquidity MintBurnDirection = iota
	BurnLiquidity
)

func (d MintBurnDirection) String() string {
	if d == BurnLiquidity {
		return "burn"
	}
	return "mint"
}

// MintBurnLp captures an LP mint or burn (spec §4.2, §6.2).
type MintBurnLp struct {
	Direction  MintBurnDirection
	AccountID  string
	TokenIn    types.AssetID
	AmountIn   *uint256.Int
	TokenOut   types.AssetID
	AmountOut  *uint256.Int
	FeesNative *uint256.Int
	FeesUSD    *uint256.Int
	FeeBPS     uint64
	LpPriceUSD *uint256.Int
}

// EventType implements the Event interface.
func (MintBurnLp) EventType() string { return TypeMintBurnLp }

// EditPositionDirection distinguishes an Increase edit from a Decrease edit.
type EditPositionDirection int

const (
	EditIncrease EditPositionDirection = iota
	EditDecrease
)

func (d EditPositionDirection) String() string {
	if d == EditDecrease {
		return "decrease"
	}
	return "increase"
}

// EditPositionState reports the position's lifecycle stage after the edit.
type EditPositionState int

const (
	PositionCreated EditPositionState = iota
	PositionClosed
	PositionOpen
)

func (s EditPositionState) String() string {
	switch s {
	case PositionCreated:
		return "created"
	case PositionClosed:
		return "closed"
	default:
		return "open"
	}
}

// EditPosition captures an increase_position or decrease_position operation
// (spec §4.7.2–§4.7.4, §6.2).
type EditPosition struct {
	Direction             EditPositionDirection
	AccountID             string
	PositionID            types.PositionID
	CollateralAsset       types.AssetID
	UnderlyingAsset       types.AssetID
	CollateralDeltaNative *uint256.Int
	CollateralDeltaUSD    *uint256.Int
	SizeDeltaUSD          *uint256.Int
	NewSizeUSD            *uint256.Int
	IsLong                bool
	PriceUSD              *uint256.Int

	USDOut            *uint256.Int
	TotalFeeUSD       *uint256.Int
	MarginFeeUSD      *uint256.Int
	PositionFeeUSD    *uint256.Int
	TotalFeeNative    *uint256.Int
	MarginFeeNative   *uint256.Int
	PositionFeeNative *uint256.Int
	ReferralCode      string

	RealizedPnLToDateUSD *big.Int
	AdjustedDeltaUSD     *big.Int

	State        EditPositionState
	LimitOrderID types.OrderID // empty if not order-triggered
	LiquidatorID string        // empty unless liquidation-driven
}

// EventType implements the Event interface.
func (EditPosition) EventType() string { return TypeEditPosition }

// LiquidatePosition captures a full or partial liquidation (spec §4.7.6–
// §4.7.7, §6.2).
type LiquidatePosition struct {
	LiquidatorID             string
	OwnerID                  string
	PositionID               types.PositionID
	CollateralAsset          types.AssetID
	UnderlyingAsset          types.AssetID
	IsLong                   bool
	SizeUSD                  *uint256.Int
	CollateralUSD            *uint256.Int
	ReserveAmountDeltaNative *uint256.Int
	LiquidationPriceUSD      *uint256.Int
	LiquidatorRewardNative   *uint256.Int
	LiquidatorRewardUSD      *uint256.Int
	FeesNative               *uint256.Int
	FeesUSD                  *uint256.Int
}

// EventType implements the Event interface.
func (LiquidatePosition) EventType() string { return TypeLiquidatePosition }

// UpdateFundingRate captures a funding-rate recompute (spec §4.6, §6.2).
type UpdateFundingRate struct {
	AssetID     types.AssetID
	FundingRate *uint256.Int
}

// EventType implements the Event interface.
func (UpdateFundingRate) EventType() string { return TypeUpdateFundingRate }

// LpPriceUpdate captures the LP share price after a mint/burn/swap touches
// pool composition (spec §4.2, §6.2).
type LpPriceUpdate struct {
	PriceUSD *uint256.Int
}

// EventType implements the Event interface.
func (LpPriceUpdate) EventType() string { return TypeLpPriceUpdate }

// OracleUpdate captures an incoming price push (spec §4.5, §6.2).
type OracleUpdate struct {
	AssetID   types.AssetID
	PriceUSD  *uint256.Int
	SpreadBPS uint64
	Source    string
}

// EventType implements the Event interface.
func (OracleUpdate) EventType() string { return TypeOracleUpdate }
