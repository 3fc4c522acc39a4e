package swap

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"teranium/core/events"
	"teranium/crypto"
	"teranium/native/token"
	"teranium/native/vault"
)

// Request names the accounts and bounds for one oracle-priced swap.
type Request struct {
	BaseMint       crypto.Address
	UsdcMint       crypto.Address
	FromMint       crypto.Address
	ToMint         crypto.Address
	User           crypto.Address
	AmountIn       uint64
	MaxSlippageBps uint16
}

// Receipt reports the committed legs of a swap together with the observation
// the pricing used.
type Receipt struct {
	AmountIn    uint64
	AmountOut   uint64
	Direction   Direction
	Observation Observation
}

// Engine composes the decimal converter, oracle validation and the vault and
// token ledgers into the two-leg exchange. It never mutates total deposit
// obligations; swapped funds stay vault-owned.
type Engine struct {
	vaults  *vault.Engine
	tokens  *token.Ledger
	source  PriceSource
	emitter events.Emitter
	nowFn   func() int64

	mu    sync.RWMutex
	feeds map[crypto.Address]string
}

// NewEngine creates a swap engine with a no-op emitter and the wall clock as
// its time source.
func NewEngine(vaults *vault.Engine, tokens *token.Ledger, source PriceSource) *Engine {
	return &Engine{
		vaults:  vaults,
		tokens:  tokens,
		source:  source,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
		feeds:   make(map[crypto.Address]string),
	}
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

// SetNowFunc overrides the time source used for staleness checks. Primarily
// intended for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// RegisterFeed binds a base mint to its price feed reference.
func (e *Engine) RegisterFeed(mint crypto.Address, feed string) {
	if e == nil {
		return
	}
	trimmed := strings.TrimSpace(feed)
	if trimmed == "" {
		return
	}
	e.mu.Lock()
	e.feeds[mint] = trimmed
	e.mu.Unlock()
}

func (e *Engine) feedFor(mint crypto.Address) (string, bool) {
	e.mu.RLock()
	feed, ok := e.feeds[mint]
	e.mu.RUnlock()
	return feed, ok
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) ready() error {
	if e == nil || e.vaults == nil || e.tokens == nil || e.source == nil {
		return ErrEngineNotConfigured
	}
	return nil
}

// Swap executes an oracle-priced exchange between the base vault and the
// reference stable vault. All validation runs before either transfer; the
// caller is expected to wrap the call in a state transaction so a failing leg
// leaves no partial effect.
func (e *Engine) Swap(req Request) (*Receipt, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if req.AmountIn == 0 {
		return nil, ErrInvalidAmount
	}
	if req.MaxSlippageBps > BpsDenominator {
		return nil, ErrInvalidSlippageBps
	}
	if req.UsdcMint != StableMint {
		return nil, ErrInvalidStableMint
	}
	if req.BaseMint == req.UsdcMint {
		return nil, ErrInvalidSwapPair
	}

	var direction Direction
	switch {
	case req.FromMint == req.BaseMint && req.ToMint == req.UsdcMint:
		direction = DirectionBaseToUSDC
	case req.FromMint == req.UsdcMint && req.ToMint == req.BaseMint:
		direction = DirectionUSDCToBase
	default:
		return nil, ErrInvalidSwapPair
	}

	baseVault, err := e.vaults.Vault(req.BaseMint)
	if err != nil {
		return nil, err
	}
	usdcVault, err := e.vaults.Vault(req.UsdcMint)
	if err != nil {
		return nil, err
	}

	baseInfo, err := e.tokens.MintInfo(req.BaseMint)
	if err != nil {
		return nil, err
	}
	usdcInfo, err := e.tokens.MintInfo(req.UsdcMint)
	if err != nil {
		return nil, err
	}

	feed, ok := e.feedFor(req.BaseMint)
	if !ok {
		return nil, fmt.Errorf("%w: no feed registered for mint %s", ErrOracleNoPrice, req.BaseMint)
	}
	obs, err := e.source.Observe(feed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleNoPrice, err)
	}
	if err := ValidateObservation(obs, e.nowFn(), req.MaxSlippageBps); err != nil {
		return nil, err
	}

	price := uint64(obs.Price)
	var (
		amountOut   uint64
		payingMint  crypto.Address
		payingVault *vault.Vault
	)
	switch direction {
	case DirectionBaseToUSDC:
		amountOut, err = BaseToUSDC(req.AmountIn, price, obs.Expo, baseInfo.Decimals, usdcInfo.Decimals)
		payingMint = req.UsdcMint
		payingVault = usdcVault
	default:
		amountOut, err = USDCToBase(req.AmountIn, price, obs.Expo, baseInfo.Decimals, usdcInfo.Decimals)
		payingMint = req.BaseMint
		payingVault = baseVault
	}
	if err != nil {
		return nil, err
	}

	// Swap liquidity is strictly the custody surplus above outstanding
	// deposit obligations; depositors' claims are never drained.
	custody, err := e.vaults.CustodyBalance(payingMint)
	if err != nil {
		return nil, err
	}
	if amountOut > custody {
		return nil, ErrInsufficientVaultLiquidity
	}
	if custody-amountOut < payingVault.TotalDeposits {
		return nil, ErrInsufficientVaultLiquidity
	}

	receivingMint := req.FromMint
	receivingAuthority := crypto.DeriveAuthority(crypto.VaultKey(receivingMint))
	payingAuthority := crypto.DeriveAuthority(crypto.VaultKey(payingMint))

	if err := e.tokens.Transfer(receivingMint, req.User, receivingAuthority.Address(), token.Self(req.User), req.AmountIn); err != nil {
		return nil, err
	}
	if err := e.tokens.Transfer(payingMint, payingAuthority.Address(), req.User, payingAuthority, amountOut); err != nil {
		return nil, err
	}

	e.emit(events.SwapExecuted{
		User:        req.User,
		BaseVault:   crypto.VaultKey(req.BaseMint),
		StableVault: crypto.VaultKey(req.UsdcMint),
		FromMint:    req.FromMint,
		ToMint:      req.ToMint,
		AmountIn:    req.AmountIn,
		AmountOut:   amountOut,
		Price:       obs.Price,
		Conf:        uint64(obs.Conf),
		Expo:        obs.Expo,
		PublishTime: obs.PublishTime,
		Direction:   string(direction),
	})

	return &Receipt{
		AmountIn:    req.AmountIn,
		AmountOut:   amountOut,
		Direction:   direction,
		Observation: obs,
	}, nil
}
