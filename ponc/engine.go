// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ponc implements the memory-hard proof-of-work kernel specified
// in spec.md §4.2: scratchpad construction, per-nonce evaluation, and a
// worker-pool mining engine modeled on the teacher's
// mining/randomx.RandomXMiner.
package ponc

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/decred/dcrd/lru"

	"github.com/ponknot/ponc/chainhash"
	"github.com/ponknot/ponc/wire"
)

// log is a logger that is initialized with no output filters. This means
// the package will not perform any logging by default until the caller
// requests it.
var log btclog.Logger

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

func init() {
	DisableLog()
}

// DisableLog disables all library log output. Logging output is disabled
// by default until UseLogger is called.
func DisableLog() {
	log = btclog.Disabled
}

const (
	// maxNonce is the maximum value a PoNC nonce can take (spec §4.2).
	maxNonce = ^uint64(0)

	// hpsUpdateSecs is the number of seconds between hashes-per-second
	// monitor updates.
	hpsUpdateSecs = 10

	// hashUpdateSecs is the number of seconds each worker waits between
	// notifying the speed monitor of completed hashes.
	hashUpdateSecs = 15

	// scratchpadCacheSize bounds the number of distinct (parent, miner)
	// scratchpads kept in memory at once.
	scratchpadCacheSize = 8
)

// scratchpadKey identifies a scratchpad by the inputs that determine it.
type scratchpadKey struct {
	parent chainhash.Hash
	miner  wire.Address
}

// Engine searches for valid PoNC nonces across one or more worker
// goroutines (spec §4.2). It caches recently built scratchpads since
// construction cost is the point of the memory-hardness but repeated
// rebuilds for the same (parent, miner) pair within one mining session
// would be pure waste.
type Engine struct {
	mutex   sync.Mutex
	started bool

	scratchpads *lru.Map[scratchpadKey, *Scratchpad]

	quit             chan struct{}
	speedMonitorQuit chan struct{}
	updateHashes     chan uint64
	wg               sync.WaitGroup

	hashesPerSec float64
	hpsMutex     sync.RWMutex
}

// NewEngine returns an idle Engine ready to have Start called on it.
func NewEngine() *Engine {
	return &Engine{
		scratchpads:      lru.NewMap[scratchpadKey, *Scratchpad](scratchpadCacheSize),
		updateHashes:     make(chan uint64),
		speedMonitorQuit: make(chan struct{}),
		quit:             make(chan struct{}),
	}
}

// scratchpadFor returns the cached scratchpad for (parent, miner),
// building and caching it on a miss.
func (e *Engine) scratchpadFor(parent chainhash.Hash, miner wire.Address, params Params) (*Scratchpad, error) {
	key := scratchpadKey{parent: parent, miner: miner}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	if sp, ok := e.scratchpads.Get(key); ok {
		return sp, nil
	}

	sp, err := NewScratchpad(parent, miner, params.ScratchpadBytes)
	if err != nil {
		return nil, err
	}
	e.scratchpads.Put(key, sp)
	return sp, nil
}

// EvaluateNonce runs the PoNC kernel for a single nonce against an
// already-built scratchpad (spec §4.2):
//
//	state = SHA3_256(header_prefix || LE_u64(nonce))
//	repeat R times:
//	    idx   = LE_u32(state[0:4]) & (numChunks-1)
//	    state = SHA3_256(state || scratchpad[idx])
//	hash = SHA3_256(state)
//
// header.Nonce is used as the nonce input; the returned hash is the PoW
// hash to compare against header.Target.
func EvaluateNonce(header *wire.BlockHeader, sp *Scratchpad, rounds uint32) chainhash.Hash {
	prefix := header.SerializePrefix()

	var nonceBuf [8]byte
	binary.LittleEndian.PutUint64(nonceBuf[:], header.Nonce)
	state := chainhash.Sum(prefix, nonceBuf[:])

	mask := sp.NumChunks() - 1
	for i := uint32(0); i < rounds; i++ {
		idx := uint64(binary.LittleEndian.Uint32(state[0:4])) & mask
		state = chainhash.Sum(state[:], sp.chunkAt(idx))
	}

	return chainhash.HashH(state[:])
}

// VerifyNonce recomputes the PoW hash for header against a scratchpad
// built fresh from header.PrevBlock and header.MinerAddress, and reports
// whether it satisfies header.Target (spec §4.2). This is the function
// the validator calls; it never touches the engine's mining cache so
// validation never races against in-progress mining.
func VerifyNonce(header *wire.BlockHeader, rounds uint32, scratchpadBytes uint64) error {
	sp, err := NewScratchpad(header.PrevBlock, header.MinerAddress, scratchpadBytes)
	if err != nil {
		return err
	}
	hash := EvaluateNonce(header, sp, rounds)
	var target chainhash.Hash
	copy(target[:], header.Target[:])
	if !hash.IsLessOrEqual(target) {
		return ruleError(ErrBadNonce, "PoW hash exceeds target")
	}
	return nil
}

// speedMonitor tracks hashes-per-second across all workers. Must be run
// as a goroutine.
func (e *Engine) speedMonitor() {
	log.Tracef("PoNC speed monitor started")

	var hashesPerSec int64
	var totalHashes uint64
	ticker := time.NewTicker(time.Second * hpsUpdateSecs)
	defer ticker.Stop()

out:
	for {
		select {
		case numHashes := <-e.updateHashes:
			totalHashes += numHashes

		case <-ticker.C:
			curHashesPerSec := int64(totalHashes / hpsUpdateSecs)
			if curHashesPerSec != hashesPerSec {
				hashesPerSec = curHashesPerSec
				e.hpsMutex.Lock()
				e.hashesPerSec = float64(hashesPerSec)
				e.hpsMutex.Unlock()
				log.Infof("PoNC hash speed: %d hashes/s", hashesPerSec)
			}
			totalHashes = 0

		case <-e.speedMonitorQuit:
			break out

		case <-e.quit:
			break out
		}
	}

	e.wg.Done()
	log.Tracef("PoNC speed monitor done")
}

// HashesPerSecond returns the most recently measured hash rate. It
// returns 0 if the engine is not running.
func (e *Engine) HashesPerSecond() float64 {
	e.hpsMutex.RLock()
	defer e.hpsMutex.RUnlock()
	return e.hashesPerSec
}

// solveBlock searches the nonce space of blk's header for a value
// satisfying header.Target, periodically checking quit and reporting
// progress to the speed monitor (spec §4.2). It returns true and leaves
// blk.Header.Nonce set to the solution on success.
func (e *Engine) solveBlock(blk *wire.Block, params Params, quit chan struct{}) bool {
	sp, err := e.scratchpadFor(blk.Header.PrevBlock, blk.Header.MinerAddress, params)
	if err != nil {
		log.Errorf("failed to build scratchpad: %v", err)
		return false
	}

	var target chainhash.Hash
	copy(target[:], blk.Header.Target[:])

	ticker := time.NewTicker(time.Second * hashUpdateSecs)
	defer ticker.Stop()

	var hashesCompleted uint64
	for nonce := uint64(0); nonce < maxNonce; nonce++ {
		select {
		case <-quit:
			return false
		case <-ticker.C:
			select {
			case e.updateHashes <- hashesCompleted:
			default:
			}
			hashesCompleted = 0
		default:
		}

		blk.Header.Nonce = nonce
		hash := EvaluateNonce(&blk.Header, sp, params.Rounds)
		hashesCompleted++

		if hash.IsLessOrEqual(target) {
			select {
			case e.updateHashes <- hashesCompleted:
			default:
			}
			return true
		}
	}

	return false
}

// generateBlocks is a single mining worker. It repeatedly pulls a fresh
// template, attempts to solve it, and submits any solution found, until
// told to quit.
func (e *Engine) generateBlocks(quit chan struct{}, cfg *Config) {
	log.Tracef("PoNC worker started")
	defer e.wg.Done()

out:
	for {
		select {
		case <-quit:
			break out
		default:
		}

		if cfg.IsCurrent != nil && !cfg.IsCurrent() {
			time.Sleep(time.Second)
			continue
		}

		blk, err := cfg.BlockTemplateGenerator()
		if err != nil {
			log.Errorf("failed to generate block template: %v", err)
			time.Sleep(time.Second)
			continue
		}

		if e.solveBlock(blk, cfg.Params, quit) {
			if err := cfg.SubmitBlock(blk); err != nil {
				log.Errorf("failed to submit solved block: %v", err)
			} else {
				hash := blk.Header.BlockHash()
				log.Infof("solved block at height %d (%s)", blk.Header.Height, hash)
			}
		}
	}

	log.Tracef("PoNC worker done")
}

// mineWorkerController launches and tears down worker goroutines in
// response to cfg.NumWorkers and cfg.UpdateNumWorkers.
func (e *Engine) mineWorkerController(cfg *Config) {
	var runningWorkers []chan struct{}
	launchWorkers := func(n uint32) {
		for i := uint32(0); i < n; i++ {
			quit := make(chan struct{})
			runningWorkers = append(runningWorkers, quit)
			e.wg.Add(1)
			go e.generateBlocks(quit, cfg)
		}
	}

	runningWorkers = make([]chan struct{}, 0, cfg.NumWorkers)
	launchWorkers(cfg.NumWorkers)

out:
	for {
		select {
		case <-cfg.UpdateNumWorkers:
			numRunning := uint32(len(runningWorkers))
			if cfg.NumWorkers == numRunning {
				continue
			}
			if cfg.NumWorkers > numRunning {
				launchWorkers(cfg.NumWorkers - numRunning)
				continue
			}
			// Signal the most recently launched workers to exit.
			for numRunning > cfg.NumWorkers {
				numRunning--
				close(runningWorkers[numRunning])
				runningWorkers = runningWorkers[:numRunning]
			}

		case <-e.quit:
			for _, quit := range runningWorkers {
				close(quit)
			}
			break out
		}
	}

	close(e.speedMonitorQuit)
	e.wg.Done()
	log.Tracef("PoNC worker controller done")
}

// Start begins mining with the given configuration. Calling Start when
// the engine is already running has no effect.
func (e *Engine) Start(cfg *Config) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.started {
		return
	}

	log.Infof("starting PoNC engine with %d workers", cfg.NumWorkers)

	e.quit = make(chan struct{})
	e.speedMonitorQuit = make(chan struct{})
	e.wg.Add(2)
	go e.speedMonitor()
	go e.mineWorkerController(cfg)

	e.started = true
}

// Stop signals all workers and the speed monitor to quit and blocks
// until they have. Calling Stop when the engine is not running has no
// effect.
func (e *Engine) Stop() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.started {
		return
	}

	close(e.quit)
	e.wg.Wait()
	e.hpsMutex.Lock()
	e.hashesPerSec = 0
	e.hpsMutex.Unlock()
	e.started = false
	log.Infof("PoNC engine stopped")
}

// IsMining reports whether the engine is currently running.
func (e *Engine) IsMining() bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.started
}
