package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"emberchain/config"
	"emberchain/core"
	"emberchain/crypto"
	"emberchain/observability/logging"
	"emberchain/rpc"
	"emberchain/storage"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the node configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "emberd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.Setup("emberd", cfg.Env, logging.Options{File: cfg.LogFile})

	params, err := genesisParams(cfg)
	if err != nil {
		return err
	}

	store, err := storage.Open(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		return err
	}
	defer store.Close()

	snap := &core.Snapshot{}
	switch err := store.LoadSnapshot(snap); {
	case errors.Is(err, storage.ErrNoSnapshot):
		snap = nil
	case err != nil:
		return err
	}

	node, err := core.NewNode(logger, params)
	if err != nil {
		return err
	}
	if err := node.Bootstrap(params, snap); err != nil {
		return fmt.Errorf("bootstrap ledger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := rpc.NewServer(node, logger)
	if err := server.Serve(ctx, cfg.RPCAddress); err != nil {
		return fmt.Errorf("rpc server: %w", err)
	}

	logger.Info("shutting down, persisting snapshot")
	if err := store.SaveSnapshot(node.ExportSnapshot()); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

func genesisParams(cfg *config.Config) (core.GenesisParams, error) {
	var params core.GenesisParams
	owner, err := crypto.DecodeAddress(strings.TrimSpace(cfg.Genesis.Owner))
	if err != nil {
		return params, fmt.Errorf("genesis owner: %w", err)
	}
	supply, ok := new(big.Int).SetString(strings.TrimSpace(cfg.Genesis.TotalSupply), 10)
	if !ok || supply.Sign() <= 0 {
		return params, fmt.Errorf("genesis total supply %q", cfg.Genesis.TotalSupply)
	}
	params.Owner = owner.Array()
	params.TotalSupply = supply
	params.TxTrigger = cfg.Genesis.TxTrigger
	params.WalletsLimit = cfg.Genesis.WalletsLimitPercent
	params.AprNinety = cfg.Genesis.AprNinety
	params.AprOneEighty = cfg.Genesis.AprOneEighty
	params.AprThreeSixty = cfg.Genesis.AprThreeSixty

	recipients := []struct {
		raw  string
		dest **[20]byte
	}{
		{cfg.Genesis.OwnerRecipient, &params.OwnerRecipient},
		{cfg.Genesis.MarketingRecipient, &params.MarketingRecipient},
		{cfg.Genesis.DevRecipient, &params.DevRecipient},
	}
	configured := 0
	for _, r := range recipients {
		raw := strings.TrimSpace(r.raw)
		if raw == "" {
			continue
		}
		addr, err := crypto.DecodeAddress(raw)
		if err != nil {
			return params, fmt.Errorf("genesis recipient %q: %w", raw, err)
		}
		arr := addr.Array()
		*r.dest = &arr
		configured++
	}
	if configured != 0 && configured != len(recipients) {
		return params, fmt.Errorf("genesis fee recipients must be set together")
	}
	return params, nil
}
