package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"teranium/config"
	"teranium/core"
	"teranium/crypto"
	"teranium/native/swap"
	"teranium/native/token"
	"teranium/observability/logging"
	"teranium/rpc"
	"teranium/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup("teraniumd", logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		logger.Error("open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	var source swap.PriceSource
	if strings.TrimSpace(cfg.Oracle.Endpoint) != "" {
		source = swap.NewHTTPSource(&http.Client{Timeout: 5 * time.Second}, cfg.Oracle.Endpoint, cfg.Oracle.APIKey)
	} else {
		logger.Warn("no oracle endpoint configured; swaps will be rejected")
		source = swap.NewManualSource()
	}

	node := core.NewNode(db, source)
	if err := seedMints(node, cfg, logger); err != nil {
		logger.Error("seed mints", slog.Any("error", err))
		os.Exit(1)
	}

	server := &http.Server{
		Addr: cfg.ListenAddress,
		Handler: rpc.NewServer(node, logger, rpc.Options{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", slog.String("address", cfg.ListenAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}

// seedMints registers configured mints and their oracle feeds. Re-registering
// an existing mint on restart is not an error.
func seedMints(node *core.Node, cfg *config.Config, logger *slog.Logger) error {
	for _, mint := range cfg.Mints {
		addr, err := crypto.DecodeAddress(strings.TrimSpace(mint.Address))
		if err != nil {
			return fmt.Errorf("mint %q: %w", mint.Address, err)
		}
		if err := node.RegisterMint(addr, mint.Decimals); err != nil {
			if !errors.Is(err, token.ErrMintExists) {
				return fmt.Errorf("register mint %q: %w", mint.Address, err)
			}
		} else {
			logger.Info("registered mint", slog.String("mint", addr.String()), slog.Int("decimals", int(mint.Decimals)))
		}
		if feed := strings.TrimSpace(mint.Feed); feed != "" {
			node.RegisterFeed(addr, feed)
		}
	}
	return nil
}
