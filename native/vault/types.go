package vault

import "teranium/crypto"

// Vault aggregates the deposit obligations for one asset pool. The actual
// custody balance lives in the token ledger under the vault's derived
// authority; TotalDeposits is the sum of all depositor claims against it.
type Vault struct {
	Mint          crypto.Address
	TotalDeposits uint64
}

// Position is one depositor's claim within one vault. Created lazily on first
// deposit and never deleted, even at zero balance.
type Position struct {
	Owner     crypto.Address
	Vault     crypto.Address
	Deposited uint64
}
