package rpc

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"teranium/core"
	"teranium/crypto"
	"teranium/native/swap"
	"teranium/native/vault"
)

// Server exposes the ledger over REST.
type Server struct {
	node    *core.Node
	logger  *slog.Logger
	handler http.Handler
}

// Options tunes the HTTP surface. Zero values fall back to sane defaults.
type Options struct {
	RequestsPerSecond float64
	Burst             int
}

func NewServer(node *core.Node, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{node: node, logger: logger}

	metrics := NewMetrics()
	limiter := NewRateLimiter(opts.RequestsPerSecond, opts.Burst)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(limiter.Middleware)
		v1.Use(metrics.Middleware("v1"))

		v1.Post("/vaults", s.handleInitializeVault)
		v1.Get("/vaults/{mint}", s.handleGetVault)
		v1.Post("/vaults/{mint}/deposits", s.handleDeposit)
		v1.Post("/vaults/{mint}/withdrawals", s.handleWithdraw)
		v1.Get("/vaults/{mint}/positions/{owner}", s.handleGetPosition)
		v1.Post("/swaps", s.handleSwap)
	})

	s.handler = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

type vaultResponse struct {
	Mint           string `json:"mint"`
	Authority      string `json:"authority"`
	TotalDeposits  string `json:"total_deposits"`
	CustodyBalance string `json:"custody_balance"`
}

type positionResponse struct {
	Owner     string `json:"owner"`
	Vault     string `json:"vault"`
	Deposited string `json:"deposited"`
}

type swapResponse struct {
	AmountIn    string `json:"amount_in"`
	AmountOut   string `json:"amount_out"`
	Direction   string `json:"direction"`
	Price       int64  `json:"price"`
	Conf        int64  `json:"conf"`
	Expo        int32  `json:"expo"`
	PublishTime int64  `json:"publish_time"`
}

type initializeVaultRequest struct {
	Mint string `json:"mint"`
}

type movementRequest struct {
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

type swapRequest struct {
	BaseMint       string `json:"base_mint"`
	UsdcMint       string `json:"usdc_mint"`
	FromMint       string `json:"from_mint"`
	ToMint         string `json:"to_mint"`
	User           string `json:"user"`
	AmountIn       string `json:"amount_in"`
	MaxSlippageBps uint16 `json:"max_slippage_bps"`
}

func (s *Server) handleInitializeVault(w http.ResponseWriter, r *http.Request) {
	var req initializeVaultRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	mint, err := crypto.DecodeAddress(strings.TrimSpace(req.Mint))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	record, err := s.node.InitializeVault(mint)
	if err != nil {
		s.writeError(w, r, statusForError(err), err)
		return
	}
	custody, err := s.node.CustodyBalance(mint)
	if err != nil {
		s.writeError(w, r, statusForError(err), err)
		return
	}
	s.writeJSON(w, http.StatusCreated, vaultResponse{
		Mint:           mint.String(),
		Authority:      crypto.DeriveAuthority(crypto.VaultKey(mint)).Address().String(),
		TotalDeposits:  strconv.FormatUint(record.TotalDeposits, 10),
		CustodyBalance: strconv.FormatUint(custody, 10),
	})
}

func (s *Server) handleGetVault(w http.ResponseWriter, r *http.Request) {
	mint, err := pathAddress(r, "mint")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	record, err := s.node.Vault(mint)
	if err != nil {
		s.writeError(w, r, statusForError(err), err)
		return
	}
	custody, err := s.node.CustodyBalance(mint)
	if err != nil {
		s.writeError(w, r, statusForError(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, vaultResponse{
		Mint:           mint.String(),
		Authority:      crypto.DeriveAuthority(crypto.VaultKey(mint)).Address().String(),
		TotalDeposits:  strconv.FormatUint(record.TotalDeposits, 10),
		CustodyBalance: strconv.FormatUint(custody, 10),
	})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleMovement(w, r, s.node.Deposit)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleMovement(w, r, s.node.Withdraw)
}

type movementFn func(mint, owner crypto.Address, amount uint64) (*vault.Position, *vault.Vault, error)

func (s *Server) handleMovement(w http.ResponseWriter, r *http.Request, move movementFn) {
	mint, err := pathAddress(r, "mint")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	var req movementRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	owner, err := crypto.DecodeAddress(strings.TrimSpace(req.Owner))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	position, record, err := move(mint, owner, amount)
	if err != nil {
		s.writeError(w, r, statusForError(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		Position positionResponse `json:"position"`
		Vault    struct {
			Mint          string `json:"mint"`
			TotalDeposits string `json:"total_deposits"`
		} `json:"vault"`
	}{
		Position: positionResponse{
			Owner:     owner.String(),
			Vault:     mint.String(),
			Deposited: strconv.FormatUint(position.Deposited, 10),
		},
		Vault: struct {
			Mint          string `json:"mint"`
			TotalDeposits string `json:"total_deposits"`
		}{Mint: mint.String(), TotalDeposits: strconv.FormatUint(record.TotalDeposits, 10)},
	})
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	mint, err := pathAddress(r, "mint")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	owner, err := pathAddress(r, "owner")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	position, ok, err := s.node.Position(mint, owner)
	if err != nil {
		s.writeError(w, r, statusForError(err), err)
		return
	}
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: "position not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, positionResponse{
		Owner:     owner.String(),
		Vault:     mint.String(),
		Deposited: strconv.FormatUint(position.Deposited, 10),
	})
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	parsed := swap.Request{MaxSlippageBps: req.MaxSlippageBps}
	var err error
	if parsed.BaseMint, err = crypto.DecodeAddress(strings.TrimSpace(req.BaseMint)); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if parsed.UsdcMint, err = crypto.DecodeAddress(strings.TrimSpace(req.UsdcMint)); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if parsed.FromMint, err = crypto.DecodeAddress(strings.TrimSpace(req.FromMint)); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if parsed.ToMint, err = crypto.DecodeAddress(strings.TrimSpace(req.ToMint)); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if parsed.User, err = crypto.DecodeAddress(strings.TrimSpace(req.User)); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if parsed.AmountIn, err = parseAmount(req.AmountIn); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	receipt, err := s.node.Swap(parsed)
	if err != nil {
		s.writeError(w, r, statusForError(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, swapResponse{
		AmountIn:    strconv.FormatUint(receipt.AmountIn, 10),
		AmountOut:   strconv.FormatUint(receipt.AmountOut, 10),
		Direction:   string(receipt.Direction),
		Price:       receipt.Observation.Price,
		Conf:        receipt.Observation.Conf,
		Expo:        receipt.Observation.Expo,
		PublishTime: receipt.Observation.PublishTime,
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", r.Header.Get(requestIDHeader)),
			slog.Any("error", err),
		)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response", slog.Any("error", err))
	}
}

func decodeBody(r *http.Request, out interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func pathAddress(r *http.Request, key string) (crypto.Address, error) {
	return crypto.DecodeAddress(strings.TrimSpace(chi.URLParam(r, key)))
}

func parseAmount(raw string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
}
