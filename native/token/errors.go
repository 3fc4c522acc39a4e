package token

import "errors"

var (
	ErrStoreNotConfigured = errors.New("token: store not configured")
	ErrInvalidAmount      = errors.New("token: amount must be positive")
	ErrUnknownMint        = errors.New("token: mint not registered")
	ErrMintExists         = errors.New("token: mint already registered")
	ErrUnknownAccount     = errors.New("token: account not found")
	ErrAccountExists      = errors.New("token: account already exists")
	ErrAssetMismatch      = errors.New("token: account mint mismatch")
	ErrUnauthorized       = errors.New("token: authority cannot move from this account")
	ErrInsufficientFunds  = errors.New("token: insufficient balance")
	ErrBalanceOverflow    = errors.New("token: balance overflow")
)
