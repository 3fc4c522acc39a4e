package events

import (
	"strconv"

	"teranium/core/types"
	"teranium/crypto"
)

const (
	TypeVaultInitialized = "vault.initialized"
	TypeVaultDeposited   = "vault.deposited"
	TypeVaultWithdrawn   = "vault.withdrawn"
)

// VaultInitialized is emitted when a vault record and its custody account are
// created for a mint.
type VaultInitialized struct {
	Vault     crypto.Address
	Mint      crypto.Address
	Authority crypto.Address
}

func (VaultInitialized) EventType() string { return TypeVaultInitialized }

func (e VaultInitialized) Event() *types.Event {
	return &types.Event{
		Type: TypeVaultInitialized,
		Attributes: map[string]string{
			"vault":     e.Vault.String(),
			"mint":      e.Mint.String(),
			"authority": e.Authority.String(),
		},
	}
}

// VaultDeposited carries the post-operation balances for a deposit.
type VaultDeposited struct {
	Owner          crypto.Address
	Vault          crypto.Address
	Amount         uint64
	DepositedAfter uint64
	TotalAfter     uint64
}

func (VaultDeposited) EventType() string { return TypeVaultDeposited }

func (e VaultDeposited) Event() *types.Event {
	return &types.Event{
		Type: TypeVaultDeposited,
		Attributes: map[string]string{
			"owner":              e.Owner.String(),
			"vault":              e.Vault.String(),
			"amount":             strconv.FormatUint(e.Amount, 10),
			"depositedAfter":     strconv.FormatUint(e.DepositedAfter, 10),
			"totalDepositsAfter": strconv.FormatUint(e.TotalAfter, 10),
		},
	}
}

// VaultWithdrawn carries the post-operation balances for a withdrawal.
type VaultWithdrawn struct {
	Owner          crypto.Address
	Vault          crypto.Address
	Amount         uint64
	DepositedAfter uint64
	TotalAfter     uint64
}

func (VaultWithdrawn) EventType() string { return TypeVaultWithdrawn }

func (e VaultWithdrawn) Event() *types.Event {
	return &types.Event{
		Type: TypeVaultWithdrawn,
		Attributes: map[string]string{
			"owner":              e.Owner.String(),
			"vault":              e.Vault.String(),
			"amount":             strconv.FormatUint(e.Amount, 10),
			"depositedAfter":     strconv.FormatUint(e.DepositedAfter, 10),
			"totalDepositsAfter": strconv.FormatUint(e.TotalAfter, 10),
		},
	}
}
