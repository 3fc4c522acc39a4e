package token

import (
	"fmt"

	"teranium/crypto"
)

// Storage abstracts the subset of state manager functionality required by the
// token ledger.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVHas(key []byte) (bool, error)
}

// Authority grants the right to move funds out of accounts whose owner it
// covers. Depositors authorize their own debits via Self; vault custody debits
// are covered only by the vault's derived crypto.Authority.
type Authority interface {
	Covers(owner crypto.Address) bool
}

type selfAuthority struct {
	owner crypto.Address
}

func (a selfAuthority) Covers(owner crypto.Address) bool { return a.owner == owner }

// Self returns the authority a depositor holds over their own accounts.
func Self(owner crypto.Address) Authority {
	return selfAuthority{owner: owner}
}

// MintInfo describes a registered asset.
type MintInfo struct {
	Mint     crypto.Address
	Decimals uint8
}

// Account is one holding account: the balance of a single owner in a single
// asset's smallest units.
type Account struct {
	Mint    crypto.Address
	Owner   crypto.Address
	Balance uint64
}

// Ledger mutates holding accounts. It is the sole writer of custody balances;
// the vault and swap engines always move funds through it before touching
// their own bookkeeping.
type Ledger struct {
	store Storage
}

// NewLedger constructs a ledger bound to the provided storage backend.
func NewLedger(store Storage) *Ledger {
	return &Ledger{store: store}
}

// RegisterMint records an asset and its smallest-unit decimal precision.
func (l *Ledger) RegisterMint(mint crypto.Address, decimals uint8) error {
	if l == nil || l.store == nil {
		return ErrStoreNotConfigured
	}
	key := mintKey(mint)
	exists, err := l.store.KVHas(key)
	if err != nil {
		return err
	}
	if exists {
		return ErrMintExists
	}
	return l.store.KVPut(key, MintInfo{Mint: mint, Decimals: decimals})
}

// MintInfo looks up a registered asset.
func (l *Ledger) MintInfo(mint crypto.Address) (MintInfo, error) {
	if l == nil || l.store == nil {
		return MintInfo{}, ErrStoreNotConfigured
	}
	var info MintInfo
	ok, err := l.store.KVGet(mintKey(mint), &info)
	if err != nil {
		return MintInfo{}, err
	}
	if !ok {
		return MintInfo{}, ErrUnknownMint
	}
	return info, nil
}

// CreateAccount provisions a zero-balance holding account for owner in mint.
func (l *Ledger) CreateAccount(mint, owner crypto.Address) error {
	if l == nil || l.store == nil {
		return ErrStoreNotConfigured
	}
	if _, err := l.MintInfo(mint); err != nil {
		return err
	}
	key := accountKey(mint, owner)
	exists, err := l.store.KVHas(key)
	if err != nil {
		return err
	}
	if exists {
		return ErrAccountExists
	}
	return l.store.KVPut(key, Account{Mint: mint, Owner: owner})
}

func (l *Ledger) account(mint, owner crypto.Address) (Account, error) {
	var acct Account
	ok, err := l.store.KVGet(accountKey(mint, owner), &acct)
	if err != nil {
		return Account{}, err
	}
	if !ok {
		return Account{}, ErrUnknownAccount
	}
	return acct, nil
}

// BalanceOf returns the balance of owner's holding account in mint.
func (l *Ledger) BalanceOf(mint, owner crypto.Address) (uint64, error) {
	if l == nil || l.store == nil {
		return 0, ErrStoreNotConfigured
	}
	acct, err := l.account(mint, owner)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// Mint credits freshly issued units to owner's holding account, creating it if
// absent. Used for genesis funding and tests; the swap and vault engines never
// call it.
func (l *Ledger) Mint(mint, owner crypto.Address, amount uint64) error {
	if l == nil || l.store == nil {
		return ErrStoreNotConfigured
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if _, err := l.MintInfo(mint); err != nil {
		return err
	}
	key := accountKey(mint, owner)
	var acct Account
	ok, err := l.store.KVGet(key, &acct)
	if err != nil {
		return err
	}
	if !ok {
		acct = Account{Mint: mint, Owner: owner}
	}
	next := acct.Balance + amount
	if next < acct.Balance {
		return ErrBalanceOverflow
	}
	acct.Balance = next
	return l.store.KVPut(key, acct)
}

// Transfer moves amount of mint from one holding account to another. The
// authority must cover the paying account's owner. Balances are re-read from
// the store at call time, never cached by the caller.
func (l *Ledger) Transfer(mint, from, to crypto.Address, authority Authority, amount uint64) error {
	if l == nil || l.store == nil {
		return ErrStoreNotConfigured
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if authority == nil {
		return ErrUnauthorized
	}
	source, err := l.account(mint, from)
	if err != nil {
		return err
	}
	if !authority.Covers(source.Owner) {
		return ErrUnauthorized
	}
	if from == to {
		// Self transfer: validate funds but leave the balance untouched.
		if source.Balance < amount {
			return ErrInsufficientFunds
		}
		return nil
	}
	dest, err := l.account(mint, to)
	if err != nil {
		return err
	}
	if source.Mint != mint || dest.Mint != mint {
		return ErrAssetMismatch
	}
	if source.Balance < amount {
		return ErrInsufficientFunds
	}
	credited := dest.Balance + amount
	if credited < dest.Balance {
		return ErrBalanceOverflow
	}
	source.Balance -= amount
	dest.Balance = credited
	if err := l.store.KVPut(accountKey(mint, from), source); err != nil {
		return fmt.Errorf("token: persist source account: %w", err)
	}
	if err := l.store.KVPut(accountKey(mint, to), dest); err != nil {
		return fmt.Errorf("token: persist destination account: %w", err)
	}
	return nil
}
