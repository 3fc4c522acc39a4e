package swap

import "teranium/crypto"

const (
	// BpsDenominator is the basis-point scale shared by slippage and
	// confidence bounds.
	BpsDenominator = 10_000
	// MaxStalenessSeconds bounds how old an oracle observation may be.
	MaxStalenessSeconds = 60
	// MaxPow10Exponent keeps power-of-ten scaling within the working
	// integer width.
	MaxPow10Exponent = 38
)

// StableMint is the reference stable asset every swap pair settles against.
var StableMint = crypto.MustDecodeAddress("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

// Direction identifies which leg of the pair pays out.
type Direction string

const (
	DirectionBaseToUSDC Direction = "base_to_usdc"
	DirectionUSDCToBase Direction = "usdc_to_base"
)
