package rpc

import (
	"errors"
	"net/http"

	"teranium/native/swap"
	"teranium/native/token"
	"teranium/native/vault"
)

// statusForError maps ledger errors onto HTTP statuses. Unrecognised errors
// surface as 500 so storage faults are never mistaken for caller mistakes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, token.ErrUnknownMint),
		errors.Is(err, vault.ErrVaultNotFound),
		errors.Is(err, token.ErrUnknownAccount):
		return http.StatusNotFound
	case errors.Is(err, vault.ErrVaultExists),
		errors.Is(err, token.ErrMintExists),
		errors.Is(err, token.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, token.ErrInsufficientFunds),
		errors.Is(err, vault.ErrInsufficientBalance),
		errors.Is(err, swap.ErrInsufficientVaultLiquidity),
		errors.Is(err, swap.ErrOracleSlippageExceeded):
		return http.StatusConflict
	case errors.Is(err, vault.ErrUnauthorized),
		errors.Is(err, token.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, vault.ErrInvalidAmount),
		errors.Is(err, token.ErrInvalidAmount),
		errors.Is(err, swap.ErrInvalidAmount),
		errors.Is(err, swap.ErrInvalidSlippageBps),
		errors.Is(err, swap.ErrInvalidStableMint),
		errors.Is(err, swap.ErrInvalidSwapPair),
		errors.Is(err, swap.ErrSwapZeroOutput),
		errors.Is(err, vault.ErrInvalidPosition),
		errors.Is(err, token.ErrAssetMismatch):
		return http.StatusBadRequest
	case errors.Is(err, vault.ErrMathOverflow),
		errors.Is(err, swap.ErrMathOverflow),
		errors.Is(err, token.ErrBalanceOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, swap.ErrOracleNoPrice),
		errors.Is(err, swap.ErrOracleStale),
		errors.Is(err, swap.ErrOracleInvalidPrice),
		errors.Is(err, swap.ErrOracleInvalidConfidence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
