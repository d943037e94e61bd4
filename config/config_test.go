package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(*cfg))

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config file to be written: %v", err)
	}
}

func TestLoadParsesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	contents := fmt.Sprintf(`FundingIntervalSec = 3600
MaxStalenessDurationSec = 120
MaxLimitOrderLifeSec = 604800
LiquidationRewardUSD = "25000000"

[Fees]
SwapFeeBPS = 30
StableSwapFeeBPS = 4
MintBurnFeeBPS = 20
MarginFeeBPS = 10
TaxBPS = 50

[Leverage]
MinLeverage = 1100
MaxLeverage = 50000

[Assets.near]
Shortable = false
WithdrawalLimitBPS = 5000
`)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint64(30), cfg.Fees.SwapFeeBPS)
	require.Equal(t, uint64(1_100), cfg.Leverage.MinLeverage)
	require.Contains(t, cfg.Assets, "near")
	require.NoError(t, ValidateConfig(*cfg))
}

func TestValidateConfigRejectsBounds(t *testing.T) {
	base := func() EngineConfig {
		cfg, err := createDefault(filepath.Join(t.TempDir(), "engine.toml"))
		require.NoError(t, err)
		return *cfg
	}

	t.Run("fee exceeds cap", func(t *testing.T) {
		cfg := base()
		cfg.Fees.SwapFeeBPS = 501
		require.Error(t, ValidateConfig(cfg))
	})

	t.Run("min leverage too small", func(t *testing.T) {
		cfg := base()
		cfg.Leverage.MinLeverage = 1_000
		require.Error(t, ValidateConfig(cfg))
	})

	t.Run("max leverage not above min", func(t *testing.T) {
		cfg := base()
		cfg.Leverage.MaxLeverage = cfg.Leverage.MinLeverage
		require.Error(t, ValidateConfig(cfg))
	})

	t.Run("liquidation reward exceeds cap", func(t *testing.T) {
		cfg := base()
		cfg.LiquidationRewardUSD = "100000001" // $100.000001 > $100 cap
		require.Error(t, ValidateConfig(cfg))
	})

	t.Run("withdrawal limit bps out of range", func(t *testing.T) {
		cfg := base()
		cfg.Assets = map[string]AssetParameters{"near": {WithdrawalLimitBPS: 10_001}}
		require.Error(t, ValidateConfig(cfg))
	})
}
