package vault

import (
	"fmt"

	"teranium/core/events"
	"teranium/crypto"
	"teranium/native/token"
)

// Storage abstracts the subset of state manager functionality required by the
// vault ledger.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVHas(key []byte) (bool, error)
}

// Engine owns the deposit accounting for all vaults. Custody balances move
// through the token ledger before any bookkeeping field is updated, so the
// ledger only ever reflects transfers that have already succeeded.
type Engine struct {
	store   Storage
	tokens  *token.Ledger
	emitter events.Emitter
}

// NewEngine creates a vault engine with a no-op emitter. Callers can override
// the emitter via SetEmitter.
func NewEngine(store Storage, tokens *token.Ledger) *Engine {
	return &Engine{store: store, tokens: tokens, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) ready() error {
	if e == nil || e.store == nil || e.tokens == nil {
		return ErrStoreNotConfigured
	}
	return nil
}

// Vault loads the vault record custodying mint.
func (e *Engine) Vault(mint crypto.Address) (*Vault, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	var record Vault
	ok, err := e.store.KVGet(vaultRecordKey(crypto.VaultKey(mint)), &record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrVaultNotFound
	}
	return &record, nil
}

// Position loads the depositor's position within the mint's vault. A missing
// position is reported as (nil, false, nil); it is created lazily on first
// deposit.
func (e *Engine) Position(mint, owner crypto.Address) (*Position, bool, error) {
	if err := e.ready(); err != nil {
		return nil, false, err
	}
	vaultKey := crypto.VaultKey(mint)
	var record Position
	ok, err := e.store.KVGet(positionRecordKey(vaultKey, owner), &record)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return &record, true, nil
}

// CustodyBalance returns the vault's actual custody balance held by the token
// ledger.
func (e *Engine) CustodyBalance(mint crypto.Address) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	authority := crypto.DeriveAuthority(crypto.VaultKey(mint))
	return e.tokens.BalanceOf(mint, authority.Address())
}

// InitializeVault creates the vault record and custody account for a
// registered mint. Fails when a vault for the mint already exists.
func (e *Engine) InitializeVault(mint crypto.Address) (*Vault, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if _, err := e.tokens.MintInfo(mint); err != nil {
		return nil, err
	}
	vaultKey := crypto.VaultKey(mint)
	recordKey := vaultRecordKey(vaultKey)
	exists, err := e.store.KVHas(recordKey)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrVaultExists
	}
	record := Vault{Mint: mint, TotalDeposits: 0}
	if err := e.store.KVPut(recordKey, record); err != nil {
		return nil, err
	}
	authority := crypto.DeriveAuthority(vaultKey)
	if err := e.tokens.CreateAccount(mint, authority.Address()); err != nil {
		return nil, fmt.Errorf("vault: create custody account: %w", err)
	}
	e.emit(events.VaultInitialized{Vault: vaultKey, Mint: mint, Authority: authority.Address()})
	return &record, nil
}

// Deposit moves amount from the owner's holding account into the vault's
// custody and credits the owner's position. The new balances are computed with
// checked arithmetic before the transfer runs, so a post-transfer bookkeeping
// failure cannot occur.
func (e *Engine) Deposit(mint, owner crypto.Address, amount uint64) (*Position, *Vault, error) {
	if err := e.ready(); err != nil {
		return nil, nil, err
	}
	if amount == 0 {
		return nil, nil, ErrInvalidAmount
	}
	record, err := e.Vault(mint)
	if err != nil {
		return nil, nil, err
	}
	vaultKey := crypto.VaultKey(mint)

	position, found, err := e.Position(mint, owner)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		position = &Position{Owner: owner, Vault: vaultKey, Deposited: 0}
	}
	if position.Owner != owner {
		return nil, nil, ErrUnauthorized
	}
	if position.Vault != vaultKey {
		return nil, nil, ErrInvalidPosition
	}

	newDeposited, err := checkedAdd(position.Deposited, amount)
	if err != nil {
		return nil, nil, err
	}
	newTotal, err := checkedAdd(record.TotalDeposits, amount)
	if err != nil {
		return nil, nil, err
	}

	authority := crypto.DeriveAuthority(vaultKey)
	if err := e.tokens.Transfer(mint, owner, authority.Address(), token.Self(owner), amount); err != nil {
		return nil, nil, err
	}

	position.Deposited = newDeposited
	record.TotalDeposits = newTotal
	if err := e.store.KVPut(positionRecordKey(vaultKey, owner), *position); err != nil {
		return nil, nil, err
	}
	if err := e.store.KVPut(vaultRecordKey(vaultKey), *record); err != nil {
		return nil, nil, err
	}

	e.emit(events.VaultDeposited{
		Owner:          owner,
		Vault:          vaultKey,
		Amount:         amount,
		DepositedAfter: position.Deposited,
		TotalAfter:     record.TotalDeposits,
	})
	return position, record, nil
}

// Withdraw returns amount from vault custody to the owner's holding account,
// authorized by the vault's derived authority, and debits the owner's
// position.
func (e *Engine) Withdraw(mint, owner crypto.Address, amount uint64) (*Position, *Vault, error) {
	if err := e.ready(); err != nil {
		return nil, nil, err
	}
	if amount == 0 {
		return nil, nil, ErrInvalidAmount
	}
	record, err := e.Vault(mint)
	if err != nil {
		return nil, nil, err
	}
	vaultKey := crypto.VaultKey(mint)

	position, found, err := e.Position(mint, owner)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, ErrUnauthorized
	}
	if position.Owner != owner {
		return nil, nil, ErrUnauthorized
	}
	if position.Vault != vaultKey {
		return nil, nil, ErrInvalidPosition
	}
	if amount > position.Deposited {
		return nil, nil, ErrInsufficientBalance
	}

	newDeposited, err := checkedSub(position.Deposited, amount)
	if err != nil {
		return nil, nil, err
	}
	newTotal, err := checkedSub(record.TotalDeposits, amount)
	if err != nil {
		return nil, nil, err
	}

	authority := crypto.DeriveAuthority(vaultKey)
	if err := e.tokens.Transfer(mint, authority.Address(), owner, authority, amount); err != nil {
		return nil, nil, err
	}

	position.Deposited = newDeposited
	record.TotalDeposits = newTotal
	if err := e.store.KVPut(positionRecordKey(vaultKey, owner), *position); err != nil {
		return nil, nil, err
	}
	if err := e.store.KVPut(vaultRecordKey(vaultKey), *record); err != nil {
		return nil, nil, err
	}

	e.emit(events.VaultWithdrawn{
		Owner:          owner,
		Vault:          vaultKey,
		Amount:         amount,
		DepositedAfter: position.Deposited,
		TotalAfter:     record.TotalDeposits,
	})
	return position, record, nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrMathOverflow
	}
	return sum, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrMathOverflow
	}
	return a - b, nil
}
