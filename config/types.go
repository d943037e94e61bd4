package config

// FeeParameters bundles the fee-engine knobs of spec §4.4/§6.4. Every bps
// field is validated against types.MaxFeeBPS.
type FeeParameters struct {
	SwapFeeBPS          uint64 `toml:"SwapFeeBPS"`
	StableSwapFeeBPS    uint64 `toml:"StableSwapFeeBPS"`
	MintBurnFeeBPS      uint64 `toml:"MintBurnFeeBPS"`
	MarginFeeBPS        uint64 `toml:"MarginFeeBPS"`
	TaxBPS              uint64 `toml:"TaxBPS"`
	DynamicSwapFees     bool   `toml:"DynamicSwapFees"`
	DynamicPositionFees bool   `toml:"DynamicPositionFees"`
}

// LeverageParameters bounds open positions (spec §6.4: min > LEV_PRECISION,
// max > min).
type LeverageParameters struct {
	MinLeverage uint64 `toml:"MinLeverage"`
	MaxLeverage uint64 `toml:"MaxLeverage"`
}

// AssetParameters captures the per-asset admin-settable knobs of spec §3.1 /
// §6.4 that are not mutated by engine operations themselves.
type AssetParameters struct {
	BufferAmount            string `toml:"BufferAmount"`
	MaxPoolAmount           string `toml:"MaxPoolAmount"`
	MinProfitBPS            uint64 `toml:"MinProfitBPS"`
	MinProfitTimeSec        uint64 `toml:"MinProfitTimeSec"`
	MaxLongOpenInterestUSD  string `toml:"MaxLongOpenInterestUSD"`
	MaxShortOpenInterestUSD string `toml:"MaxShortOpenInterestUSD"`
	MinPositionSizeUSD      string `toml:"MinPositionSizeUSD"`
	MaxPositionSizeUSD      string `toml:"MaxPositionSizeUSD"`
	Shortable               bool   `toml:"Shortable"`
	WithdrawalWindowSec     uint64 `toml:"WithdrawalWindowSec"`
	WithdrawalLimitBPS      uint64 `toml:"WithdrawalLimitBPS"`
	MaxPriceChangeBPS       uint64 `toml:"MaxPriceChangeBPS"`
}

// EngineConfig is the top-level admin-settable configuration document (spec
// §6.4), decoded from TOML with github.com/BurntSushi/toml exactly like the
// teacher's node configuration.
type EngineConfig struct {
	Fees      FeeParameters           `toml:"Fees"`
	Leverage  LeverageParameters      `toml:"Leverage"`
	Assets    map[string]AssetParameters `toml:"Assets"`

	LiquidationRewardUSD      string `toml:"LiquidationRewardUSD"`
	FundingIntervalSec        uint64 `toml:"FundingIntervalSec"`
	MaxStalenessDurationSec   uint64 `toml:"MaxStalenessDurationSec"`
	MaxLimitOrderLifeSec      uint64 `toml:"MaxLimitOrderLifeSec"`
	PrivateLiquidationOnly    bool   `toml:"PrivateLiquidationOnly"`
}
