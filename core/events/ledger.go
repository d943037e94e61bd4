package events

import (
	"perpcore/core/types"

	"github.com/holiman/uint256"
)

const (
	TypeEditFees             = "edit_fees"
	TypeEditPoolBalance      = "edit_pool_balance"
	TypeEditReservedAmount   = "edit_reserved_amount"
	TypeEditGuaranteedUsd    = "edit_guaranteed_usd"
	TypeTokenDepositWithdraw = "token_deposit_withdraw"
)

// EditFees captures a fee collection, tagged by which mechanism collected it
// (spec §6.2).
type EditFees struct {
	FeeNative                *uint256.Int
	FeeUSD                   *uint256.Int
	FeeType                  types.FeeType
	NewAccumulatedFeesNative *uint256.Int
	NewAccumulatedFeesUSD    *uint256.Int
	Increase                 bool
	AccountID                string
	AssetID                  types.AssetID
}

// EventType implements the Event interface.
func (EditFees) EventType() string { return TypeEditFees }

// EditPoolBalance captures a mutation of an asset's pool_balance (spec
// §3.1 balance invariant, §6.2).
type EditPoolBalance struct {
	AmountNative         *uint256.Int
	NewPoolBalanceNative *uint256.Int
	Increase             bool
	AccountID            string
	AssetID              types.AssetID
}

// EventType implements the Event interface.
func (EditPoolBalance) EventType() string { return TypeEditPoolBalance }

// EditReservedAmount captures a mutation of an asset's reserved_amount
// (spec §3.1, §6.2).
type EditReservedAmount struct {
	AmountNative            *uint256.Int
	NewReservedAmountNative *uint256.Int
	Increase                bool
	AccountID               string
	AssetID                 types.AssetID
}

// EventType implements the Event interface.
func (EditReservedAmount) EventType() string { return TypeEditReservedAmount }

// EditGuaranteedUsd captures a mutation of an asset's guaranteed_usd (spec
// §3.1, §6.2).
type EditGuaranteedUsd struct {
	AmountUSD        *uint256.Int
	NewGuaranteedUSD *uint256.Int
	Increase         bool
	AccountID        string
	AssetID          types.AssetID
}

// EventType implements the Event interface.
func (EditGuaranteedUsd) EventType() string { return TypeEditGuaranteedUsd }

// TokenDepositWithdraw captures a raw native-token transfer in or out of the
// engine (spec §6.2).
type TokenDepositWithdraw struct {
	AmountNative *uint256.Int
	Deposit      bool
	Method       string
	ReceiverID   string
	AccountID    string
	AssetID      types.AssetID
}

// EventType implements the Event interface.
func (TokenDepositWithdraw) EventType() string { return TypeTokenDepositWithdraw }
