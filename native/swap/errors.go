package swap

import "errors"

var (
	ErrEngineNotConfigured        = errors.New("swap: engine not configured")
	ErrInvalidAmount              = errors.New("swap: amount must be positive")
	ErrInvalidSlippageBps         = errors.New("swap: slippage exceeds basis point denominator")
	ErrInvalidStableMint          = errors.New("swap: stable mint does not match the reference asset")
	ErrInvalidSwapPair            = errors.New("swap: pair must be base/stable in either direction")
	ErrSwapZeroOutput             = errors.New("swap: computed output rounds to zero")
	ErrMathOverflow               = errors.New("swap: arithmetic overflow")
	ErrOracleNoPrice              = errors.New("swap: oracle has no price")
	ErrOracleStale                = errors.New("swap: oracle price is stale")
	ErrOracleInvalidPrice         = errors.New("swap: oracle price must be positive")
	ErrOracleInvalidConfidence    = errors.New("swap: oracle confidence must be non-negative")
	ErrOracleSlippageExceeded     = errors.New("swap: oracle confidence exceeds slippage tolerance")
	ErrInsufficientVaultLiquidity = errors.New("swap: payout would breach vault deposit obligations")
)
