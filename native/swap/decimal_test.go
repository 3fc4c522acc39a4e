package swap

import (
	"errors"
	"math"
	"testing"
)

func TestBaseToUSDCReferenceScenario(t *testing.T) {
	// 1 base unit at $2.00: base has 9 decimals, stable has 6,
	// price 2_000_000 with exponent -6.
	out, err := BaseToUSDC(1_000_000_000, 2_000_000, -6, 9, 6)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if out != 2_000_000 {
		t.Fatalf("expected 2_000_000 stable units, got %d", out)
	}
}

func TestUSDCToBaseInverseScenario(t *testing.T) {
	out, err := USDCToBase(2_000_000, 2_000_000, -6, 9, 6)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if out != 1_000_000_000 {
		t.Fatalf("expected 1_000_000_000 base units, got %d", out)
	}
}

func TestConvertersTruncateTowardZero(t *testing.T) {
	// 3 lamports at $2.00 is 0.000006 USDC exactly; 1 lamport is
	// 0.000002, and amounts below half a unit truncate to the failure.
	out, err := BaseToUSDC(1_499, 2_000_000, -6, 9, 6)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if out != 2 {
		t.Fatalf("expected truncation to 2, got %d", out)
	}
}

func TestBaseToUSDCZeroOutput(t *testing.T) {
	// Far below one stable smallest unit.
	if _, err := BaseToUSDC(1, 2_000_000, -6, 9, 6); !errors.Is(err, ErrSwapZeroOutput) {
		t.Fatalf("expected ErrSwapZeroOutput, got %v", err)
	}
}

func TestUSDCToBaseZeroPriceDenominator(t *testing.T) {
	if _, err := USDCToBase(1_000, 0, -6, 9, 6); !errors.Is(err, ErrSwapZeroOutput) {
		t.Fatalf("expected ErrSwapZeroOutput for zero denominator, got %v", err)
	}
}

func TestPow10Bound(t *testing.T) {
	if _, err := pow10(MaxPow10Exponent); err != nil {
		t.Fatalf("exponent at bound must succeed: %v", err)
	}
	if _, err := pow10(MaxPow10Exponent + 1); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected ErrMathOverflow beyond bound, got %v", err)
	}
}

func TestBaseToUSDCPositiveExponent(t *testing.T) {
	// price 3 with exponent +2 means 300 stable per base whole unit.
	out, err := BaseToUSDC(1_000_000_000, 3, 2, 9, 6)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if out != 300_000_000 {
		t.Fatalf("expected 300_000_000, got %d", out)
	}
}

func TestBaseToUSDCMonotonicInAmount(t *testing.T) {
	var prev uint64
	for _, amount := range []uint64{1_000, 10_000, 500_000, 1_000_000_000, math.MaxUint32} {
		out, err := BaseToUSDC(amount, 2_000_000, -6, 9, 6)
		if err != nil {
			t.Fatalf("convert %d: %v", amount, err)
		}
		if out < prev {
			t.Fatalf("output decreased: %d -> %d at amount %d", prev, out, amount)
		}
		prev = out
	}
}

func TestUSDCToBaseMonotonicInAmount(t *testing.T) {
	var prev uint64
	for _, amount := range []uint64{10, 1_000, 250_000, 2_000_000, 90_000_000} {
		out, err := USDCToBase(amount, 2_000_000, -6, 9, 6)
		if err != nil {
			t.Fatalf("convert %d: %v", amount, err)
		}
		if out < prev {
			t.Fatalf("output decreased: %d -> %d at amount %d", prev, out, amount)
		}
		prev = out
	}
}

func TestConvertRoundTripNeverGains(t *testing.T) {
	for _, amount := range []uint64{1_000_000, 123_456_789, 999_999_999_999} {
		stable, err := BaseToUSDC(amount, 2_000_000, -6, 9, 6)
		if err != nil {
			t.Fatalf("forward %d: %v", amount, err)
		}
		back, err := USDCToBase(stable, 2_000_000, -6, 9, 6)
		if err != nil {
			t.Fatalf("inverse %d: %v", stable, err)
		}
		if back > amount {
			t.Fatalf("round trip gained value: %d -> %d", amount, back)
		}
	}
}
