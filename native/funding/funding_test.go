package funding

import (
	"testing"

	"perpcore/core/types"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestCurrentRateZeroWhenPoolEmpty(t *testing.T) {
	a := &types.Asset{PoolBalance: new(uint256.Int), ReservedAmount: new(uint256.Int), BaseFundingRateBPS: 100}
	rate, err := CurrentRate(a)
	require.NoError(t, err)
	require.True(t, rate.IsZero())
}

func TestCurrentRateFloorsAtBaseOverFive(t *testing.T) {
	a := &types.Asset{
		PoolBalance:        uint256.NewInt(1_000),
		ReservedAmount:     uint256.NewInt(1),
		BaseFundingRateBPS: 100,
	}
	rate, err := CurrentRate(a)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(20), rate) // 100/5
}

func TestCurrentRateScalesWithUtilization(t *testing.T) {
	a := &types.Asset{
		PoolBalance:        uint256.NewInt(1_000),
		ReservedAmount:     uint256.NewInt(1_000),
		BaseFundingRateBPS: 100,
	}
	rate, err := CurrentRate(a)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(100), rate)
}

func TestUpdateCumulativeNoOpBeforeInterval(t *testing.T) {
	a := &types.Asset{
		PoolBalance:        uint256.NewInt(1_000),
		ReservedAmount:     uint256.NewInt(1_000),
		BaseFundingRateBPS: 100,
		FundingIntervalSec: 3_600,
		LastFundingTimeSec: 0,
		CumulativeFundingRate: uint256.NewInt(0),
	}
	rate, err := UpdateCumulative(a, 1_800)
	require.NoError(t, err)
	require.True(t, rate.IsZero())
	require.Equal(t, uint64(0), a.LastFundingTimeSec)
}

func TestUpdateCumulativeAccruesWholeIntervals(t *testing.T) {
	a := &types.Asset{
		PoolBalance:           uint256.NewInt(1_000),
		ReservedAmount:        uint256.NewInt(1_000),
		BaseFundingRateBPS:    100,
		FundingIntervalSec:    3_600,
		LastFundingTimeSec:    0,
		CumulativeFundingRate: new(uint256.Int),
	}
	rate, err := UpdateCumulative(a, 7_200)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(200), rate) // 2 intervals * 100
	require.Equal(t, uint64(7_200), a.LastFundingTimeSec)
}

func TestPositionFundingFee(t *testing.T) {
	fee, err := PositionFundingFee(uint256.NewInt(1_000_000), uint256.NewInt(500), uint256.NewInt(100))
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(400), fee) // 1_000_000*400/1_000_000
}
