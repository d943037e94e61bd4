package ledger

import (
	"testing"

	"perpcore/core/types"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func newTestAsset() *types.Asset {
	return &types.Asset{
		ID:              "near",
		Decimals:        24,
		Stable:          false,
		Balance:         uint256.NewInt(1_000),
		PoolBalance:     uint256.NewInt(1_000),
		AccumulatedFees: new(uint256.Int),
		ReservedAmount:  new(uint256.Int),
		MaxPoolAmount:   new(uint256.Int),
		GuaranteedUSD:   new(uint256.Int),
		PriceUSD:        uint256.NewInt(1),
	}
}

func TestAddLiquidityGrowsBalanceAndPool(t *testing.T) {
	a := newTestAsset()
	require.NoError(t, AddLiquidity(a, uint256.NewInt(500)))
	require.Equal(t, uint256.NewInt(1_500), a.PoolBalance)
	require.Equal(t, uint256.NewInt(1_500), a.Balance)
}

func TestAddLiquidityRejectsOverCap(t *testing.T) {
	a := newTestAsset()
	a.MaxPoolAmount = uint256.NewInt(1_200)
	err := AddLiquidity(a, uint256.NewInt(500))
	require.ErrorIs(t, err, ErrMaxPoolExceeded)
}

func TestRemoveLiquidityRejectsInsufficientPool(t *testing.T) {
	a := newTestAsset()
	err := RemoveLiquidity(a, uint256.NewInt(2_000))
	require.ErrorIs(t, err, ErrInsufficientPool)
}

func TestAddFeesGrowsBalanceAndFeesLeavingPoolUntouched(t *testing.T) {
	a := newTestAsset()
	require.NoError(t, AddFees(a, uint256.NewInt(100)))
	require.Equal(t, uint256.NewInt(1_000), a.PoolBalance)
	require.Equal(t, uint256.NewInt(100), a.AccumulatedFees)
	require.Equal(t, uint256.NewInt(1_100), a.Balance)
}

func TestRemoveFeesRejectsInsufficientFees(t *testing.T) {
	a := newTestAsset()
	err := RemoveFees(a, uint256.NewInt(1))
	require.ErrorIs(t, err, ErrInsufficientFees)
}

func TestReservedRoundTrip(t *testing.T) {
	a := newTestAsset()
	require.NoError(t, IncreaseReserved(a, uint256.NewInt(400)))
	require.Equal(t, uint256.NewInt(400), a.ReservedAmount)
	require.NoError(t, DecreaseReserved(a, uint256.NewInt(400)))
	require.True(t, a.ReservedAmount.IsZero())
}

func TestIncreaseReservedRejectsOverPool(t *testing.T) {
	a := newTestAsset()
	err := IncreaseReserved(a, uint256.NewInt(5_000))
	require.ErrorIs(t, err, ErrInsufficientPool)
}

func TestDecreaseReservedRejectsUnderflow(t *testing.T) {
	a := newTestAsset()
	err := DecreaseReserved(a, uint256.NewInt(1))
	require.ErrorIs(t, err, ErrInsufficientReserve)
}

func TestGuaranteedUSDSaturatesAtZero(t *testing.T) {
	a := newTestAsset()
	require.NoError(t, IncreaseGuaranteedUSD(a, uint256.NewInt(50)))
	require.NoError(t, DecreaseGuaranteedUSD(a, uint256.NewInt(1_000)))
	require.True(t, a.GuaranteedUSD.IsZero())
}

func TestRegisterDepositAppendsHistoryOnly(t *testing.T) {
	a := newTestAsset()
	require.NoError(t, RegisterDeposit(a, uint256.NewInt(100), 1_000))
	require.Len(t, a.TransferHistory, 1)
	require.Equal(t, types.TransferDeposit, a.TransferHistory[0].Kind)
	require.Equal(t, uint256.NewInt(1_000), a.PoolBalance) // unchanged; callers pair with AddLiquidity
}

func TestRegisterWithdrawalThrottlesBeyondWindowLimit(t *testing.T) {
	a := newTestAsset()
	a.WithdrawalLimitBPS = 1_000 // 10%
	a.WithdrawalWindowMS = 3_600_000
	a.TransferHistory = []types.TransferRecord{
		{Amount: uint256.NewInt(50), Kind: types.TransferWithdraw, TimestampMS: 500},
	}
	err := RegisterWithdrawal(a, uint256.NewInt(200), 1_000)
	require.ErrorIs(t, err, ErrWithdrawalThrottled)
}

func TestRegisterWithdrawalAllowsWithinLimit(t *testing.T) {
	a := newTestAsset()
	a.WithdrawalLimitBPS = 2_000 // 20%
	a.WithdrawalWindowMS = 3_600_000
	a.TransferHistory = []types.TransferRecord{
		{Amount: uint256.NewInt(1), Kind: types.TransferWithdraw, TimestampMS: 500},
	}
	require.NoError(t, RegisterWithdrawal(a, uint256.NewInt(100), 1_000))
	require.Equal(t, uint256.NewInt(1_000), a.PoolBalance) // unchanged; callers pair with RemoveLiquidity
}

func TestRegisterWithdrawalUnthrottledWhenWindowEmpty(t *testing.T) {
	a := newTestAsset()
	a.WithdrawalLimitBPS = 1_000
	a.WithdrawalWindowMS = 3_600_000
	require.NoError(t, RegisterWithdrawal(a, uint256.NewInt(900), 1_000))
}

func TestRegisterWithdrawalUnthrottledWhenLimitIsZero(t *testing.T) {
	a := newTestAsset()
	require.NoError(t, RegisterWithdrawal(a, uint256.NewInt(900), 1_000))
}

func TestGuardDetectsTamperedBalance(t *testing.T) {
	a := newTestAsset()
	a.Balance = uint256.NewInt(999)
	err := Guard(a)
	require.ErrorIs(t, err, ErrInvariantViolation)
}

func TestGuardRejectsNilAsset(t *testing.T) {
	require.ErrorIs(t, Guard(nil), ErrZeroAsset)
}
