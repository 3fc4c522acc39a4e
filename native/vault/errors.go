package vault

import "errors"

var (
	ErrStoreNotConfigured  = errors.New("vault: store not configured")
	ErrInvalidAmount       = errors.New("vault: amount must be positive")
	ErrVaultExists         = errors.New("vault: vault already exists for mint")
	ErrVaultNotFound       = errors.New("vault: vault not found")
	ErrUnauthorized        = errors.New("vault: position owned by another depositor")
	ErrInvalidPosition     = errors.New("vault: position bound to another vault")
	ErrInsufficientBalance = errors.New("vault: withdrawal exceeds deposited balance")
	ErrMathOverflow        = errors.New("vault: ledger arithmetic overflow")
)
