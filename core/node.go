package core

import (
	"sync"

	"teranium/core/events"
	"teranium/core/state"
	"teranium/crypto"
	"teranium/native/swap"
	"teranium/native/token"
	"teranium/native/vault"
	"teranium/storage"
)

// Node is the central controller. Every mutating operation runs against a
// buffered state transaction and commits only after the full operation
// succeeded, so a failure in any step leaves the ledger untouched.
type Node struct {
	db      storage.Database
	state   *state.Manager
	source  swap.PriceSource
	emitter events.Emitter
	nowFn   func() int64

	stateMu sync.Mutex

	feedMu sync.RWMutex
	feeds  map[crypto.Address]string
}

// NewNode wires the state manager and the oracle price source. The source may
// be nil when the deployment never executes swaps.
func NewNode(db storage.Database, source swap.PriceSource) *Node {
	return &Node{
		db:      db,
		state:   state.NewManager(db),
		source:  source,
		emitter: events.NoopEmitter{},
		feeds:   make(map[crypto.Address]string),
	}
}

// SetEmitter configures where committed operations publish their events.
func (n *Node) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	n.emitter = emitter
}

// SetNowFunc overrides the clock used for oracle freshness checks.
func (n *Node) SetNowFunc(now func() int64) {
	n.nowFn = now
}

// RegisterFeed binds a base mint to its oracle price feed identifier.
func (n *Node) RegisterFeed(mint crypto.Address, feed string) {
	n.feedMu.Lock()
	n.feeds[mint] = feed
	n.feedMu.Unlock()
}

// RegisterMint records mint metadata. Decimals are immutable once registered.
func (n *Node) RegisterMint(mint crypto.Address, decimals uint8) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()

	txn := n.state.Begin()
	if err := token.NewLedger(txn).RegisterMint(mint, decimals); err != nil {
		return err
	}
	return txn.Commit()
}

// Fund credits freshly issued units to an account. Genesis and test setup
// only; no operation reachable over RPC mints.
func (n *Node) Fund(mint, owner crypto.Address, amount uint64) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()

	txn := n.state.Begin()
	if err := token.NewLedger(txn).Mint(mint, owner, amount); err != nil {
		return err
	}
	return txn.Commit()
}

// InitializeVault creates the vault record and custody account for mint.
func (n *Node) InitializeVault(mint crypto.Address) (*vault.Vault, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()

	txn := n.state.Begin()
	engine, collector := n.vaultEngine(txn)
	record, err := engine.InitializeVault(mint)
	if err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	n.publish(collector)
	return record, nil
}

// Deposit moves amount of mint from the owner's holding account into vault
// custody and records the obligation.
func (n *Node) Deposit(mint, owner crypto.Address, amount uint64) (*vault.Position, *vault.Vault, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()

	txn := n.state.Begin()
	engine, collector := n.vaultEngine(txn)
	position, record, err := engine.Deposit(mint, owner, amount)
	if err != nil {
		return nil, nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, nil, err
	}
	n.publish(collector)
	return position, record, nil
}

// Withdraw returns previously deposited units to the owner's holding account.
func (n *Node) Withdraw(mint, owner crypto.Address, amount uint64) (*vault.Position, *vault.Vault, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()

	txn := n.state.Begin()
	engine, collector := n.vaultEngine(txn)
	position, record, err := engine.Withdraw(mint, owner, amount)
	if err != nil {
		return nil, nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, nil, err
	}
	n.publish(collector)
	return position, record, nil
}

// Swap executes an oracle-priced exchange between a base vault and the stable
// vault.
func (n *Node) Swap(req swap.Request) (*swap.Receipt, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()

	txn := n.state.Begin()
	engine, collector := n.swapEngine(txn)
	receipt, err := engine.Swap(req)
	if err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	n.publish(collector)
	return receipt, nil
}

// Vault returns the vault record custodying mint.
func (n *Node) Vault(mint crypto.Address) (*vault.Vault, error) {
	engine := vault.NewEngine(n.state, token.NewLedger(n.state))
	return engine.Vault(mint)
}

// Position returns a depositor's accounting entry for the mint's vault. The
// boolean reports whether the position exists.
func (n *Node) Position(mint, owner crypto.Address) (*vault.Position, bool, error) {
	engine := vault.NewEngine(n.state, token.NewLedger(n.state))
	return engine.Position(mint, owner)
}

// CustodyBalance returns the vault custody account balance for mint.
func (n *Node) CustodyBalance(mint crypto.Address) (uint64, error) {
	engine := vault.NewEngine(n.state, token.NewLedger(n.state))
	return engine.CustodyBalance(mint)
}

// Balance returns an owner's holding account balance for mint.
func (n *Node) Balance(mint, owner crypto.Address) (uint64, error) {
	return token.NewLedger(n.state).BalanceOf(mint, owner)
}

func (n *Node) vaultEngine(txn *state.Txn) (*vault.Engine, *events.Collector) {
	collector := &events.Collector{}
	engine := vault.NewEngine(txn, token.NewLedger(txn))
	engine.SetEmitter(collector)
	return engine, collector
}

func (n *Node) swapEngine(txn *state.Txn) (*swap.Engine, *events.Collector) {
	collector := &events.Collector{}
	ledger := token.NewLedger(txn)
	engine := swap.NewEngine(vault.NewEngine(txn, ledger), ledger, n.source)
	engine.SetEmitter(collector)
	if n.nowFn != nil {
		engine.SetNowFunc(n.nowFn)
	}
	n.feedMu.RLock()
	for mint, feed := range n.feeds {
		engine.RegisterFeed(mint, feed)
	}
	n.feedMu.RUnlock()
	return engine, collector
}

func (n *Node) publish(collector *events.Collector) {
	if n.emitter == nil {
		return
	}
	for _, evt := range collector.Events() {
		n.emitter.Emit(evt)
	}
}
