// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/ponknot/ponc/blockchain"
	"github.com/ponknot/ponc/mempool"
	"github.com/ponknot/ponc/node"
	"github.com/ponknot/ponc/ponc"
	"github.com/ponknot/ponc/store"
)

// logRotator writes logged output to standard out and to a rolling log
// file, exactly like the teacher's cmd/shelld logger: rotation is
// size-triggered, not time-triggered, so a quiet testnet node never
// churns through empty files.
var logRotator *rotator.Rotator

// logWriter implements io.Writer, fanning every write out to both
// stdout and the rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	logRotator.Write(p)
	return len(p), nil
}

// initLogRotator initializes the logging rotator to write logs to
// logFile and create roll files in the same directory.
func initLogRotator(logFile string) error {
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	logRotator = r
	return nil
}

// subsystemLoggers maps each package's logger setter to its name, so
// setLogLevels has one place to find everything poncd instruments.
var subsystemLoggers = map[string]func(btclog.Logger){
	"NODE": node.UseLogger,
	"CHAN": blockchain.UseLogger,
	"STOR": store.UseLogger,
	"MEMP": mempool.UseLogger,
	"PONC": ponc.UseLogger,
}

// setLogLevels sets the logging level for every registered subsystem
// logger, backed by a single shared backend writing to logWriter.
func setLogLevels(levelStr string) error {
	level, ok := btclog.LevelFromString(levelStr)
	if !ok {
		return fmt.Errorf("unknown log level %q", levelStr)
	}

	backend := btclog.NewBackend(logWriter{})
	for tag, setter := range subsystemLoggers {
		logger := backend.Logger(tag)
		logger.SetLevel(level)
		setter(logger)
	}
	return nil
}
