// Package config loads and validates the admin-settable engine configuration
// described in spec §6.4: a TOML file decoded with github.com/BurntSushi/toml,
// a generated default when the path does not exist yet, and a separate
// ValidateConfig pass applied by the caller before the document is wired
// into the engine.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Load decodes the engine configuration at path, creating a conservative
// default file when none exists yet.
func Load(path string) (*EngineConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &EngineConfig{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createDefault(path string) (*EngineConfig, error) {
	cfg := &EngineConfig{
		Fees: FeeParameters{
			SwapFeeBPS:       30,
			StableSwapFeeBPS: 4,
			MintBurnFeeBPS:   20,
			MarginFeeBPS:     10,
			TaxBPS:           50,
		},
		Leverage: LeverageParameters{
			MinLeverage: 1_100,  // 1.1x, must exceed LEV_PRECISION=1000
			MaxLeverage: 50_000, // 50x
		},
		Assets:                  map[string]AssetParameters{},
		LiquidationRewardUSD:    "25000000", // $25
		FundingIntervalSec:      3_600,
		MaxStalenessDurationSec: 120,
		MaxLimitOrderLifeSec:    30 * 24 * 3_600,
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
