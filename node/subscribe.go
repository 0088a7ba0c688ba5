// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"sync"

	"github.com/ponknot/ponc/chainhash"
)

// subscriberBuffer is how many pending events a subscriber channel holds
// before publish starts dropping each new event for that subscriber (the
// events already buffered are kept) rather than blocking the publisher. A slow network-facing
// subscriber must never be able to stall block acceptance or mempool
// admission (spec §5: block application is non-cancellable and must not
// wait on anything outside the store).
const subscriberBuffer = 32

// TipEvent is published to every subscriber registered with
// SubscribeNewTip each time AcceptBlock commits a new tip (spec §6
// "subscribe_new_tip() -> stream<(hash, height)>").
type TipEvent struct {
	Hash   chainhash.Hash
	Height uint32
}

// tipBroadcaster fans a TipEvent out to every currently registered
// subscriber. Grounded on the same one-writer-many-readers shape as
// mempool.TxPool's own mutex discipline: registration/removal take the
// write lock, publish takes the read lock and never blocks on a full
// subscriber channel.
type tipBroadcaster struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan TipEvent
}

func newTipBroadcaster() *tipBroadcaster {
	return &tipBroadcaster{subs: make(map[int]chan TipEvent)}
}

func (b *tipBroadcaster) subscribe() (<-chan TipEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan TipEvent, subscriberBuffer)
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, unsubscribe
}

func (b *tipBroadcaster) publish(ev TipEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			log.Warnf("tip subscriber channel full, dropping event at height %d", ev.Height)
		}
	}
}

// txBroadcaster is tipBroadcaster's transaction-id analog (spec §6
// "subscribe_new_tx() -> stream<txid>").
type txBroadcaster struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan chainhash.Hash
}

func newTxBroadcaster() *txBroadcaster {
	return &txBroadcaster{subs: make(map[int]chan chainhash.Hash)}
}

func (b *txBroadcaster) subscribe() (<-chan chainhash.Hash, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan chainhash.Hash, subscriberBuffer)
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, unsubscribe
}

func (b *txBroadcaster) publish(txid chainhash.Hash) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- txid:
		default:
			log.Warnf("tx subscriber channel full, dropping txid %s", txid)
		}
	}
}

// SubscribeNewTip registers a new subscriber for committed-tip events.
// The returned function must be called to release the subscription and
// its channel.
func (c *Context) SubscribeNewTip() (<-chan TipEvent, func()) {
	return c.tipSubs.subscribe()
}

// SubscribeNewTx registers a new subscriber for mempool-admission
// events. The returned function must be called to release the
// subscription and its channel.
func (c *Context) SubscribeNewTx() (<-chan chainhash.Hash, func()) {
	return c.txSubs.subscribe()
}
