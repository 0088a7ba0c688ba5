// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config parses poncd's command-line flags. It covers only the
// knobs the consensus core itself cares about (spec §9 Open Question 3's
// deployment-tunable ranges, data directory, network selection, log
// level); listen address and RPC credential flags are accepted here only
// so a future RPC/P2P shell has somewhere to read them from (spec §1
// places that shell itself out of scope) and are passed through
// untouched.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"

	"github.com/ponknot/ponc/chaincfg"
)

// defaultDataDirname is the subdirectory created under the user's home
// directory when -datadir is not given.
const defaultDataDirname = "poncd"

// Config holds every flag poncd understands.
type Config struct {
	DataDir string `short:"b" long:"datadir" description:"Directory to store data"`
	TestNet bool   `long:"testnet" description:"Use the test network"`
	LogDir  string `long:"logdir" description:"Directory to log output"`
	Debug   string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}" default:"info"`

	Compress bool `long:"compress" description:"LZ4-compress the blocks and accounts column families"`

	PoNCRounds      uint32 `long:"poncrounds" description:"Scratchpad-mixing rounds per nonce evaluation (256-2048)"`
	ScratchpadBytes uint64 `long:"scratchpadbytes" description:"PoNC scratchpad size in bytes, must be a power of two (2MiB-256MiB)"`

	Mine         bool   `long:"mine" description:"Mine blocks once the node has started"`
	MineWorker   uint32 `long:"mineworkers" description:"Number of mining worker goroutines" default:"1"`
	MinerAddress string `long:"mineraddress" description:"Hex-encoded 32-byte address credited with mined blocks, required with -mine"`

	// Listen, RPCListen, RPCUser, and RPCPass are accepted but never
	// read by this module: they belong to the out-of-scope P2P/RPC
	// shell (spec §1). A node embedding this package for those layers
	// reads them back off the parsed Config.
	Listen    []string `long:"listen" description:"Add an address to listen for peer connections (outer shell concern)"`
	RPCListen []string `long:"rpclisten" description:"Add an address to listen for RPC connections (outer shell concern)"`
	RPCUser   string   `long:"rpcuser" description:"RPC username (outer shell concern)"`
	RPCPass   string   `long:"rpcpass" description:"RPC password (outer shell concern)"`
}

// Load parses os.Args into a Config, applying defaults for anything left
// unset. It never calls os.Exit itself; the caller decides how to react
// to flags.ErrHelp or a parse error.
func Load() (*Config, error) {
	cfg := Config{
		DataDir: defaultDataDir(),
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	cfg.DataDir = filepath.Join(cfg.DataDir, networkDirname(cfg.TestNet))

	return &cfg, nil
}

// Params returns the chaincfg.Params this Config selects, with any
// overridden tunables applied.
func (c *Config) Params() (chaincfg.Params, error) {
	params := chaincfg.MainNetParams
	if c.TestNet {
		params = chaincfg.TestNetParams
	}

	if c.PoNCRounds != 0 {
		if c.PoNCRounds < 256 || c.PoNCRounds > 2048 {
			return chaincfg.Params{}, fmt.Errorf("poncrounds %d out of range [256, 2048]", c.PoNCRounds)
		}
		params.Tunables.PoNCRounds = c.PoNCRounds
	}

	if c.ScratchpadBytes != 0 {
		const minBytes = 2 * 1024 * 1024
		const maxBytes = 256 * 1024 * 1024
		if c.ScratchpadBytes < minBytes || c.ScratchpadBytes > maxBytes {
			return chaincfg.Params{}, fmt.Errorf("scratchpadbytes %d out of range [%d, %d]", c.ScratchpadBytes, minBytes, maxBytes)
		}
		if c.ScratchpadBytes&(c.ScratchpadBytes-1) != 0 {
			return chaincfg.Params{}, fmt.Errorf("scratchpadbytes %d is not a power of two", c.ScratchpadBytes)
		}
		params.Tunables.ScratchpadBytes = c.ScratchpadBytes
	}

	return params, nil
}

func networkDirname(testnet bool) string {
	if testnet {
		return "testnet"
	}
	return "mainnet"
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDataDirname
	}
	return filepath.Join(home, "."+defaultDataDirname)
}
