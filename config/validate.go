package config

import (
	"fmt"
	"math/big"

	"perpcore/core/types"
)

// ValidateConfig enforces the admin-settable bounds named in spec §6.4,
// one guard clause per invariant, each wrapped with fmt.Errorf using a
// dotted-prefix message.
func ValidateConfig(c EngineConfig) error {
	for _, bps := range []uint64{
		c.Fees.SwapFeeBPS, c.Fees.StableSwapFeeBPS, c.Fees.MintBurnFeeBPS,
		c.Fees.MarginFeeBPS, c.Fees.TaxBPS,
	} {
		if bps > types.MaxFeeBPS {
			return fmt.Errorf("config: fee bps %d exceeds MAX_FEE_BPS", bps)
		}
	}

	levPrecision := types.LevPrecision.Uint64()
	if c.Leverage.MinLeverage <= levPrecision {
		return fmt.Errorf("config: leverage.min_leverage must exceed LEV_PRECISION")
	}
	if c.Leverage.MaxLeverage <= c.Leverage.MinLeverage {
		return fmt.Errorf("config: leverage.max_leverage must exceed min_leverage")
	}

	if c.LiquidationRewardUSD != "" {
		reward, ok := new(big.Int).SetString(c.LiquidationRewardUSD, 10)
		if !ok {
			return fmt.Errorf("config: liquidation_reward_usd is not a valid integer")
		}
		cap := new(big.Int).SetUint64(types.MaxLiquidationRewardUSD.Uint64())
		if reward.Cmp(cap) > 0 {
			return fmt.Errorf("config: liquidation_reward_usd exceeds MAX_LIQUIDATION_REWARD_USD")
		}
	}

	if c.FundingIntervalSec == 0 {
		return fmt.Errorf("config: funding_interval_sec must be positive")
	}
	if c.MaxStalenessDurationSec == 0 {
		return fmt.Errorf("config: max_staleness_duration_sec must be positive")
	}
	if c.MaxLimitOrderLifeSec == 0 {
		return fmt.Errorf("config: max_limit_order_life_sec must be positive")
	}

	for id, asset := range c.Assets {
		if asset.WithdrawalLimitBPS > 10_000 {
			return fmt.Errorf("config: asset %s withdrawal_limit_bps exceeds 10000", id)
		}
	}

	return nil
}
