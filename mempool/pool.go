// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btclog"

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

// DisableLog disables all library log output.
func DisableLog() {
	log = btclog.Disabled
}

// TxPool is PONC's fee-priority transaction pool. It is safe for
// concurrent use; writers take mtx for writing, readers for reading
// (spec §5: "mempool insertion acquires a short write lock on the pool
// only, not on the chain").
type TxPool struct {
	mtx sync.RWMutex
	cfg Config

	pool          map[chainhash.Hash]*TxDesc
	bySenderNonce map[senderNonceKey]chainhash.Hash

	totalBytes uint32

	// lastUpdated is accessed atomically, mirroring the teacher's
	// TxPool.lastUpdated.
	lastUpdated int64
}

// New returns an empty pool bound to cfg.
func New(cfg *Config) *TxPool {
	return &TxPool{
		cfg:           *cfg,
		pool:          make(map[chainhash.Hash]*TxDesc),
		bySenderNonce: make(map[senderNonceKey]chainhash.Hash),
	}
}

// Count returns the number of transactions currently pooled.
func (mp *TxPool) Count() int {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	return len(mp.pool)
}

// LastUpdated returns the last time the pool's contents changed.
func (mp *TxPool) LastUpdated() time.Time {
	return time.Unix(atomic.LoadInt64(&mp.lastUpdated), 0)
}

// HaveTransaction reports whether txid is currently pooled.
func (mp *TxPool) HaveTransaction(txid chainhash.Hash) bool {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	_, ok := mp.pool[txid]
	return ok
}

// FetchTransaction returns the pooled transaction with the given txid, or
// nil if it isn't pooled.
func (mp *TxPool) FetchTransaction(txid chainhash.Hash) *wire.Transaction {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	desc, ok := mp.pool[txid]
	if !ok {
		return nil
	}
	return desc.Tx
}

// TxDescs returns every pooled transaction in fee-priority order: highest
// effective fee-per-byte first, ties broken by ascending txid (spec §4.5
// "Ordering").
func (mp *TxPool) TxDescs() []*TxDesc {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	descs := make([]*TxDesc, 0, len(mp.pool))
	for _, d := range mp.pool {
		descs = append(descs, d)
	}
	sortByPriority(descs)
	return descs
}

func sortByPriority(descs []*TxDesc) {
	sort.Slice(descs, func(i, j int) bool {
		a, b := descs[i], descs[j]
		if a.feeRateMicro != b.feeRateMicro {
			return a.feeRateMicro > b.feeRateMicro
		}
		return bytes.Compare(a.TxID[:], b.TxID[:]) < 0
	})
}

// SelectForTemplate returns, in priority order, as many pooled
// transactions as fit within maxBytes and maxCount (spec §4.5 "Block
// template generation"). The coinbase is not included here; the caller
// (blockchain) prepends it.
func (mp *TxPool) SelectForTemplate(maxBytes uint32, maxCount int) []*wire.Transaction {
	descs := mp.TxDescs()

	var (
		selected  []*wire.Transaction
		usedBytes uint32
	)
	for _, d := range descs {
		if maxCount > 0 && len(selected) >= maxCount {
			break
		}
		if usedBytes+d.Size > maxBytes {
			continue
		}
		selected = append(selected, d.Tx)
		usedBytes += d.Size
	}
	return selected
}

// ProcessTransaction validates tx against the committed-tip state and, if
// admissible, adds it to the pool (spec §4.5 "Admission", "Replace-by-fee",
// "Duplicate suppression"). Re-submitting an already-pooled transaction is
// a no-op that returns the existing descriptor.
func (mp *TxPool) ProcessTransaction(tx *wire.Transaction) (*TxDesc, error) {
	txid, err := tx.TxID()
	if err != nil {
		return nil, ruleError(ErrSignatureInvalid, "malformed transaction")
	}

	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	if existing, ok := mp.pool[txid]; ok {
		return existing, nil
	}

	raw, err := tx.Serialize()
	if err != nil {
		return nil, ruleError(ErrSignatureInvalid, "malformed transaction")
	}
	size := uint32(len(raw))
	if size > mp.cfg.Policy.MaxTxBytes {
		return nil, ruleError(ErrMempoolFull, fmt.Sprintf("transaction size %d exceeds maximum %d", size, mp.cfg.Policy.MaxTxBytes))
	}

	if tx.Fee < wire.MinTxFee {
		return nil, ruleError(ErrFeeTooLow, fmt.Sprintf("fee %d below minimum %d", tx.Fee, wire.MinTxFee))
	}

	if !mp.cfg.VerifySignature(tx) {
		return nil, ruleError(ErrSignatureInvalid, "signature does not verify")
	}

	account, err := mp.cfg.GetAccount(tx.Sender)
	if err != nil {
		return nil, err
	}
	expectedNonce := uint64(0)
	var balance wire.Amount
	if account != nil {
		expectedNonce = account.Nonce
		balance = account.Balance
	}
	if tx.Nonce != expectedNonce {
		return nil, ruleError(ErrNonceGap, fmt.Sprintf("expected nonce %d, got %d", expectedNonce, tx.Nonce))
	}

	need, ok := wire.AddChecked(tx.Amount, tx.Fee)
	if !ok || balance < need {
		return nil, ruleError(ErrInsufficientFunds, fmt.Sprintf("balance %d insufficient for amount+fee %d", balance, need))
	}

	key := keyOf(tx)
	var replacedBytes uint32
	oldTxID, replacing := mp.bySenderNonce[key]
	if replacing {
		old := mp.pool[oldTxID]
		if err := validateReplacement(old.Fee, tx.Fee); err != nil {
			return nil, err
		}
		replacedBytes = old.Size
	} else {
		if mp.cfg.Policy.MaxPoolCount > 0 && len(mp.pool) >= mp.cfg.Policy.MaxPoolCount {
			return nil, ruleError(ErrMempoolFull, "pool transaction count ceiling reached")
		}
	}

	if mp.totalBytes-replacedBytes+size > mp.cfg.Policy.MaxPoolBytes {
		return nil, ruleError(ErrMempoolFull, "pool byte ceiling reached")
	}
	if replacing {
		delete(mp.pool, oldTxID)
	}

	desc := &TxDesc{
		Tx:           tx,
		TxID:         txid,
		Size:         size,
		Fee:          tx.Fee,
		Added:        time.Now(),
		feeRateMicro: feeRateMicro(tx.Fee, size),
	}
	mp.pool[txid] = desc
	mp.bySenderNonce[key] = txid
	mp.totalBytes = mp.totalBytes - replacedBytes + size
	atomic.StoreInt64(&mp.lastUpdated, time.Now().Unix())

	return desc, nil
}

// validateReplacement enforces spec §4.5's RBF rule: the new fee must be
// at least 10% higher than the old one AND the absolute increase must be
// at least 1 knot. Both conditions are checked with integer arithmetic —
// 10*newFee >= 11*oldFee is the overflow-free equivalent of
// newFee >= oldFee*1.1 for the fee magnitudes this protocol can reach.
func validateReplacement(oldFee, newFee wire.Amount) error {
	tenPctOK := 10*uint64(newFee) >= 11*uint64(oldFee)
	absoluteOK := uint64(newFee) >= uint64(oldFee)+1
	if !tenPctOK || !absoluteOK {
		return ruleError(ErrRBFRejected, fmt.Sprintf("replacement fee %d does not beat existing fee %d by >=10%% and >=1 knot", newFee, oldFee))
	}
	return nil
}

// feeRateMicro scales fee/size by 1e6 to preserve ordering precision
// without floating point.
func feeRateMicro(fee wire.Amount, size uint32) uint64 {
	if size == 0 {
		return 0
	}
	return uint64(fee) * 1_000_000 / uint64(size)
}

// RemoveTransaction drops txid from the pool unconditionally (used when a
// block that includes it is accepted).
func (mp *TxPool) RemoveTransaction(txid chainhash.Hash) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	mp.removeTransaction(txid)
}

// This function MUST be called with the pool lock held (for writes).
func (mp *TxPool) removeTransaction(txid chainhash.Hash) {
	desc, ok := mp.pool[txid]
	if !ok {
		return
	}
	delete(mp.pool, txid)
	delete(mp.bySenderNonce, keyOf(desc.Tx))
	mp.totalBytes -= desc.Size
	atomic.StoreInt64(&mp.lastUpdated, time.Now().Unix())
}

// HandleTipChange re-validates every pooled transaction against the new
// committed tip and evicts anything no longer applicable: a nonce that's
// now in the past (the tx was mined or superseded), a balance that no
// longer covers amount+fee, or a signature that now fails re-check (spec
// §4.5 "Eviction"). It returns the set of evicted transaction ids.
func (mp *TxPool) HandleTipChange() []chainhash.Hash {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	var evicted []chainhash.Hash
	for txid, desc := range mp.pool {
		account, err := mp.cfg.GetAccount(desc.Tx.Sender)
		if err != nil {
			log.Warnf("mempool: skipping eviction check for %v: %v", txid, err)
			continue
		}
		expectedNonce := uint64(0)
		var balance wire.Amount
		if account != nil {
			expectedNonce = account.Nonce
			balance = account.Balance
		}

		need, ok := wire.AddChecked(desc.Tx.Amount, desc.Tx.Fee)
		stale := desc.Tx.Nonce != expectedNonce ||
			!ok || balance < need ||
			!mp.cfg.VerifySignature(desc.Tx)

		if stale {
			mp.removeTransaction(txid)
			evicted = append(evicted, txid)
		}
	}
	return evicted
}
