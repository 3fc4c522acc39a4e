package vault

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"teranium/core/state"
	"teranium/crypto"
	"teranium/native/token"
	"teranium/storage"
)

func testAddr(b byte) crypto.Address {
	return crypto.NewAddress(bytes.Repeat([]byte{b}, crypto.AddressLength))
}

type fixture struct {
	engine *Engine
	tokens *token.Ledger
	mint   crypto.Address
	owner  crypto.Address
}

func newFixture(t *testing.T, fund uint64) *fixture {
	t.Helper()
	manager := state.NewManager(storage.NewMemDB())
	tokens := token.NewLedger(manager)
	engine := NewEngine(manager, tokens)
	mint := testAddr(0x1)
	owner := testAddr(0xa)
	if err := tokens.RegisterMint(mint, 9); err != nil {
		t.Fatalf("register mint: %v", err)
	}
	if _, err := engine.InitializeVault(mint); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	if fund > 0 {
		if err := tokens.Mint(mint, owner, fund); err != nil {
			t.Fatalf("fund owner: %v", err)
		}
	}
	return &fixture{engine: engine, tokens: tokens, mint: mint, owner: owner}
}

func TestInitializeVaultOncePerMint(t *testing.T) {
	fx := newFixture(t, 0)
	if _, err := fx.engine.InitializeVault(fx.mint); !errors.Is(err, ErrVaultExists) {
		t.Fatalf("expected ErrVaultExists, got %v", err)
	}
	record, err := fx.engine.Vault(fx.mint)
	if err != nil {
		t.Fatalf("vault: %v", err)
	}
	if record.TotalDeposits != 0 {
		t.Fatalf("fresh vault must have zero deposits: %d", record.TotalDeposits)
	}
}

func TestInitializeVaultUnknownMint(t *testing.T) {
	manager := state.NewManager(storage.NewMemDB())
	engine := NewEngine(manager, token.NewLedger(manager))
	if _, err := engine.InitializeVault(testAddr(0x9)); !errors.Is(err, token.ErrUnknownMint) {
		t.Fatalf("expected ErrUnknownMint, got %v", err)
	}
}

func TestDepositCreatesPositionLazily(t *testing.T) {
	fx := newFixture(t, 1_000)
	if _, found, err := fx.engine.Position(fx.mint, fx.owner); err != nil || found {
		t.Fatalf("expected no position before deposit (found=%v err=%v)", found, err)
	}
	position, record, err := fx.engine.Deposit(fx.mint, fx.owner, 400)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if position.Deposited != 400 || record.TotalDeposits != 400 {
		t.Fatalf("unexpected balances: deposited=%d total=%d", position.Deposited, record.TotalDeposits)
	}
	custody, err := fx.engine.CustodyBalance(fx.mint)
	if err != nil {
		t.Fatalf("custody balance: %v", err)
	}
	if custody != 400 {
		t.Fatalf("custody balance mismatch: %d", custody)
	}
}

func TestDepositZeroAmountRejectedBeforeTransfer(t *testing.T) {
	fx := newFixture(t, 1_000)
	if _, _, err := fx.engine.Deposit(fx.mint, fx.owner, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	balance, _ := fx.tokens.BalanceOf(fx.mint, fx.owner)
	if balance != 1_000 {
		t.Fatalf("rejected deposit touched funds: %d", balance)
	}
}

func TestDepositinsufficientHoldingFunds(t *testing.T) {
	fx := newFixture(t, 10)
	if _, _, err := fx.engine.Deposit(fx.mint, fx.owner, 11); !errors.Is(err, token.ErrInsufficientFunds) {
		t.Fatalf("expected token.ErrInsufficientFunds, got %v", err)
	}
	record, _ := fx.engine.Vault(fx.mint)
	if record.TotalDeposits != 0 {
		t.Fatalf("failed deposit mutated ledger: %d", record.TotalDeposits)
	}
}

func TestDepositOverflowDetectedBeforeTransfer(t *testing.T) {
	fx := newFixture(t, math.MaxUint64)
	if _, _, err := fx.engine.Deposit(fx.mint, fx.owner, math.MaxUint64); err != nil {
		t.Fatalf("first deposit: %v", err)
	}
	second := testAddr(0xb)
	if err := fx.tokens.Mint(fx.mint, second, 1); err != nil {
		t.Fatalf("fund second: %v", err)
	}
	if _, _, err := fx.engine.Deposit(fx.mint, second, 1); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected ErrMathOverflow, got %v", err)
	}
	balance, _ := fx.tokens.BalanceOf(fx.mint, second)
	if balance != 1 {
		t.Fatalf("overflowing deposit moved funds: %d", balance)
	}
}

func TestWithdrawRoundTripRestoresState(t *testing.T) {
	fx := newFixture(t, 1_000)
	if _, _, err := fx.engine.Deposit(fx.mint, fx.owner, 750); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	position, record, err := fx.engine.Withdraw(fx.mint, fx.owner, 750)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if position.Deposited != 0 || record.TotalDeposits != 0 {
		t.Fatalf("round trip left residue: deposited=%d total=%d", position.Deposited, record.TotalDeposits)
	}
	balance, _ := fx.tokens.BalanceOf(fx.mint, fx.owner)
	if balance != 1_000 {
		t.Fatalf("round trip did not restore holding balance: %d", balance)
	}
	// Position survives at zero balance.
	if _, found, err := fx.engine.Position(fx.mint, fx.owner); err != nil || !found {
		t.Fatalf("zero position must persist (found=%v err=%v)", found, err)
	}
}

func TestWithdrawExceedingDeposit(t *testing.T) {
	fx := newFixture(t, 1_000)
	if _, _, err := fx.engine.Deposit(fx.mint, fx.owner, 100); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, _, err := fx.engine.Withdraw(fx.mint, fx.owner, 101); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	record, _ := fx.engine.Vault(fx.mint)
	if record.TotalDeposits != 100 {
		t.Fatalf("failed withdraw mutated ledger: %d", record.TotalDeposits)
	}
	custody, _ := fx.engine.CustodyBalance(fx.mint)
	if custody != 100 {
		t.Fatalf("failed withdraw mutated custody: %d", custody)
	}
}

func TestWithdrawWithoutPosition(t *testing.T) {
	fx := newFixture(t, 0)
	if _, _, err := fx.engine.Withdraw(fx.mint, testAddr(0xc), 1); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTotalDepositsTracksSumOfPositions(t *testing.T) {
	fx := newFixture(t, 500)
	second := testAddr(0xb)
	if err := fx.tokens.Mint(fx.mint, second, 300); err != nil {
		t.Fatalf("fund second: %v", err)
	}
	if _, _, err := fx.engine.Deposit(fx.mint, fx.owner, 500); err != nil {
		t.Fatalf("deposit owner: %v", err)
	}
	if _, _, err := fx.engine.Deposit(fx.mint, second, 300); err != nil {
		t.Fatalf("deposit second: %v", err)
	}
	if _, _, err := fx.engine.Withdraw(fx.mint, second, 100); err != nil {
		t.Fatalf("withdraw second: %v", err)
	}

	first, _, err := fx.engine.Position(fx.mint, fx.owner)
	if err != nil {
		t.Fatalf("position owner: %v", err)
	}
	other, _, err := fx.engine.Position(fx.mint, second)
	if err != nil {
		t.Fatalf("position second: %v", err)
	}
	record, err := fx.engine.Vault(fx.mint)
	if err != nil {
		t.Fatalf("vault: %v", err)
	}
	if first.Deposited+other.Deposited != record.TotalDeposits {
		t.Fatalf("sum of positions %d != total deposits %d", first.Deposited+other.Deposited, record.TotalDeposits)
	}
	custody, err := fx.engine.CustodyBalance(fx.mint)
	if err != nil {
		t.Fatalf("custody: %v", err)
	}
	if record.TotalDeposits > custody {
		t.Fatalf("total deposits %d exceed custody %d", record.TotalDeposits, custody)
	}
}
