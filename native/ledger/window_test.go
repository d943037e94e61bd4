package ledger

import (
	"testing"

	"perpcore/core/types"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestNetWithdrawalsSaturatesAtZeroWhenDepositsExceed(t *testing.T) {
	a := newTestAsset()
	a.WithdrawalWindowMS = 1_000
	a.TransferHistory = []types.TransferRecord{
		{Amount: uint256.NewInt(50), Kind: types.TransferWithdraw, TimestampMS: 900},
		{Amount: uint256.NewInt(200), Kind: types.TransferDeposit, TimestampMS: 950},
	}
	net := NetWithdrawals(a, 1_000)
	require.True(t, net.IsZero())
}

func TestNetWithdrawalsIgnoresEntriesOutsideWindow(t *testing.T) {
	a := newTestAsset()
	a.WithdrawalWindowMS = 100
	a.TransferHistory = []types.TransferRecord{
		{Amount: uint256.NewInt(500), Kind: types.TransferWithdraw, TimestampMS: 0},
	}
	net := NetWithdrawals(a, 1_000)
	require.True(t, net.IsZero())
}

func TestNetWithdrawalsSumsWithinWindow(t *testing.T) {
	a := newTestAsset()
	a.WithdrawalWindowMS = 1_000
	a.TransferHistory = []types.TransferRecord{
		{Amount: uint256.NewInt(300), Kind: types.TransferWithdraw, TimestampMS: 500},
		{Amount: uint256.NewInt(100), Kind: types.TransferDeposit, TimestampMS: 600},
	}
	net := NetWithdrawals(a, 1_000)
	require.Equal(t, uint256.NewInt(200), net)
}

func TestPruneTransferHistoryDropsStaleEntries(t *testing.T) {
	a := newTestAsset()
	a.WithdrawalWindowMS = 100
	a.TransferHistory = []types.TransferRecord{
		{Amount: uint256.NewInt(1), Kind: types.TransferWithdraw, TimestampMS: 0},
		{Amount: uint256.NewInt(2), Kind: types.TransferWithdraw, TimestampMS: 950},
	}
	PruneTransferHistory(a, 1_000)
	require.Len(t, a.TransferHistory, 1)
	require.Equal(t, uint64(950), a.TransferHistory[0].TimestampMS)
}
