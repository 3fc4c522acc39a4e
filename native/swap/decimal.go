package swap

import "github.com/holiman/uint256"

// pow10 computes 10^exp with an explicit bound on the exponent magnitude so
// every intermediate product stays well inside the working width.
func pow10(exp uint32) (*uint256.Int, error) {
	if exp > MaxPow10Exponent {
		return nil, ErrMathOverflow
	}
	value := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := uint32(0); i < exp; i++ {
		if _, overflow := value.MulOverflow(value, ten); overflow {
			return nil, ErrMathOverflow
		}
	}
	return value, nil
}

func expoSplit(expo int32) (pos, neg uint32) {
	if expo > 0 {
		return uint32(expo), 0
	}
	if expo < 0 {
		return 0, uint32(-expo)
	}
	return 0, 0
}

func checkedProduct(factors ...*uint256.Int) (*uint256.Int, error) {
	product := uint256.NewInt(1)
	for _, factor := range factors {
		if _, overflow := product.MulOverflow(product, factor); overflow {
			return nil, ErrMathOverflow
		}
	}
	return product, nil
}

func quotientToAmount(num, denom *uint256.Int) (uint64, error) {
	if denom.IsZero() {
		return 0, ErrSwapZeroOutput
	}
	out := new(uint256.Int).Div(num, denom)
	if out.IsZero() {
		return 0, ErrSwapZeroOutput
	}
	if !out.IsUint64() {
		return 0, ErrMathOverflow
	}
	return out.Uint64(), nil
}

// BaseToUSDC converts an amount of the base asset's smallest units into stable
// units, truncating toward zero:
//
//	out = amount * price * 10^usdcDecimals * 10^max(expo,0) / (10^baseDecimals * 10^max(-expo,0))
func BaseToUSDC(amountBase, price uint64, expo int32, baseDecimals, usdcDecimals uint8) (uint64, error) {
	expoPos, expoNeg := expoSplit(expo)
	scaleOut, err := pow10(uint32(usdcDecimals))
	if err != nil {
		return 0, err
	}
	scaleExpoPos, err := pow10(expoPos)
	if err != nil {
		return 0, err
	}
	num, err := checkedProduct(uint256.NewInt(amountBase), uint256.NewInt(price), scaleOut, scaleExpoPos)
	if err != nil {
		return 0, err
	}
	scaleIn, err := pow10(uint32(baseDecimals))
	if err != nil {
		return 0, err
	}
	scaleExpoNeg, err := pow10(expoNeg)
	if err != nil {
		return 0, err
	}
	denom, err := checkedProduct(scaleIn, scaleExpoNeg)
	if err != nil {
		return 0, err
	}
	return quotientToAmount(num, denom)
}

// USDCToBase converts stable units into base units. It is the algebraic
// inverse of BaseToUSDC performed in forward order, never by reciprocal
// division:
//
//	out = amount * 10^baseDecimals * 10^max(-expo,0) / (price * 10^usdcDecimals * 10^max(expo,0))
func USDCToBase(amountUSDC, price uint64, expo int32, baseDecimals, usdcDecimals uint8) (uint64, error) {
	expoPos, expoNeg := expoSplit(expo)
	scaleOut, err := pow10(uint32(baseDecimals))
	if err != nil {
		return 0, err
	}
	scaleExpoNeg, err := pow10(expoNeg)
	if err != nil {
		return 0, err
	}
	num, err := checkedProduct(uint256.NewInt(amountUSDC), scaleOut, scaleExpoNeg)
	if err != nil {
		return 0, err
	}
	scaleIn, err := pow10(uint32(usdcDecimals))
	if err != nil {
		return 0, err
	}
	scaleExpoPos, err := pow10(expoPos)
	if err != nil {
		return 0, err
	}
	denom, err := checkedProduct(uint256.NewInt(price), scaleIn, scaleExpoPos)
	if err != nil {
		return 0, err
	}
	return quotientToAmount(num, denom)
}
