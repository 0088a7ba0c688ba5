// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command poncd is the consensus core's composition root. It owns
// nothing a JSON-RPC server, P2P listener, or wallet would own (spec §1
// places all three out of scope); it opens the store, wires the node
// context, and exposes the few read/write operations spec §6 names so a
// future outer shell has something concrete to call.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	flags "github.com/jessevdk/go-flags"

	"github.com/ponknot/ponc/config"
	"github.com/ponknot/ponc/node"
	"github.com/ponknot/ponc/wire"
)

func main() {
	if err := run(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "poncd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logFile := cfg.LogDir
	if logFile == "" {
		logFile = filepath.Join(cfg.DataDir, "logs")
	}
	if err := initLogRotator(filepath.Join(logFile, "poncd.log")); err != nil {
		return err
	}
	if err := setLogLevels(cfg.Debug); err != nil {
		return err
	}

	params, err := cfg.Params()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return err
	}

	ctx, err := node.New(node.Config{
		DataDir:  filepath.Join(cfg.DataDir, "chain"),
		Compress: cfg.Compress,
		Params:   params,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize node: %w", err)
	}
	defer ctx.Close()

	height, tipHash, err := ctx.Tip()
	if err != nil {
		return err
	}
	fmt.Printf("poncd: %s ready at height %d, tip %s\n", params.Name, height, tipHash)

	if cfg.Mine {
		miner, err := parseMinerAddress(cfg.MinerAddress)
		if err != nil {
			return err
		}
		ctx.StartMining(miner, cfg.MineWorker)
		defer ctx.StopMining()
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt

	return nil
}

// parseMinerAddress decodes a hex-encoded 32-byte address flag. There is
// no wallet component in this module (spec §1), so the operator supplies
// the address a running wallet already controls.
func parseMinerAddress(s string) (wire.Address, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return wire.Address{}, fmt.Errorf("-mineraddress: %w", err)
	}
	if len(raw) != wire.AddressSize {
		return wire.Address{}, fmt.Errorf("-mineraddress: want %d bytes, got %d", wire.AddressSize, len(raw))
	}
	var addr wire.Address
	copy(addr[:], raw)
	return addr, nil
}
