package types

import "github.com/holiman/uint256"

// Fixed protocol constants (spec §6.4).
var (
	// DollarDenom is the fixed-point denominator for USD amounts (6 decimals).
	DollarDenom = uint256.NewInt(1_000_000)
	// LPDenom is the fixed-point denominator for LP share amounts (18 decimals).
	LPDenom = new(uint256.Int).Mul(uint256.NewInt(1_000_000_000), uint256.NewInt(1_000_000_000))
	// FundingRatePrecision scales the cumulative funding rate accumulator.
	FundingRatePrecision = uint256.NewInt(1_000_000)
	// LevPrecision scales leverage ratios (size*LevPrecision/collateral).
	LevPrecision = uint256.NewInt(1_000)
	// BPSDivisor is the basis-point denominator.
	BPSDivisor = uint256.NewInt(10_000)
	// MaxFeeBPS bounds any single configurable fee.
	MaxFeeBPS uint64 = 500
	// MaxLiquidationRewardUSD bounds the configurable liquidation reward.
	MaxLiquidationRewardUSD = new(uint256.Int).Mul(uint256.NewInt(100), DollarDenom)
)

const (
	// LiquidationRewardPercent is the share of remaining collateral paid to a liquidator.
	LiquidationRewardPercent = 10
	// LiquidationLeveragePercent widens max leverage during the liquidation health check.
	LiquidationLeveragePercent = 25
	// MinMarginPercent is the minimum remaining-collateral-to-collateral ratio.
	MinMarginPercent = 10
)
