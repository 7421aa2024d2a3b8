// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"math/rand"
	"sync"
	"time"

	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
	"github.com/libcoin/libcoin-sub001/wire"
)

// TxChain is the subset of *blockchain.BlockChain TransactionFilter needs.
type TxChain interface {
	Claim(tx *wire.MsgTx, verify bool) error
	HaveTx(hash chainhash.Hash) bool
	GetTransaction(hash chainhash.Hash) (*wire.MsgTx, bool)
	Mempool() []chainhash.Hash
}

// bloomState is the minimal per-peer filter state filterload/filteradd/
// filterclear manage; matching logic belongs to
// the wallet-facing SPV path and is out of this engine's scope — the
// engine only needs to track whether a filter is active so inv
// announcements can be judged relevant to the remote wallet.
type bloomState struct {
	active bool
	data   []byte
}

// RebroadcastMinInterval/MaxInterval bound the random 30-minute-average
// cadence at which a peer's own unconfirmed transactions are re-announced.
const (
	RebroadcastMinInterval = 20 * time.Minute
	RebroadcastMaxInterval = 40 * time.Minute
)

// TransactionFilter is the fifth pipeline stage: "tx", "mempool",
// and the bloom-filter management trio, plus the periodic rebroadcast of
// this node's own unconfirmed transactions.
type TransactionFilter struct {
	Chain TxChain

	// AnnounceFunc broadcasts a newly claimed transaction's hash to
	// every other peer.
	AnnounceFunc func(hash chainhash.Hash)

	// OwnTransactions lists this node's self-originated unconfirmed
	// transactions eligible for periodic rebroadcast.
	OwnTransactions func() []chainhash.Hash

	mu      sync.Mutex
	filters map[*Peer]*bloomState
	rnd     *rand.Rand
	stopCh  chan struct{}
}

// NewTransactionFilter constructs a TransactionFilter over chain.
func NewTransactionFilter(chain TxChain, announce func(hash chainhash.Hash)) *TransactionFilter {
	f := &TransactionFilter{
		Chain:        chain,
		AnnounceFunc: announce,
		filters:      make(map[*Peer]*bloomState),
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
		stopCh:       make(chan struct{}),
	}
	return f
}

// Name identifies the filter for logging.
func (f *TransactionFilter) Name() string { return "TransactionFilter" }

// HandleMessage implements Filter.
func (f *TransactionFilter) HandleMessage(p *Peer, msg wire.Message) (bool, error) {
	switch m := msg.(type) {
	case *wire.MsgTx:
		return true, f.handleTx(p, m)
	case *wire.MsgInv:
		return true, f.handleInv(p, m)
	case *wire.MsgGetData:
		return true, f.handleGetData(p, m)
	case *wire.MsgMemPool:
		return true, f.handleMempool(p)
	case *wire.MsgFilterLoad:
		f.setFilter(p, m.Filter)
		return true, nil
	case *wire.MsgFilterAdd:
		f.appendFilter(p, m.Data)
		return true, nil
	case *wire.MsgFilterClear:
		f.clearFilter(p)
		return true, nil
	}
	return false, nil
}

func (f *TransactionFilter) handleTx(p *Peer, tx *wire.MsgTx) error {
	hash := tx.TxHash()
	if f.Chain.HaveTx(hash) {
		return nil
	}
	if err := f.Chain.Claim(tx, true); err != nil {
		if libcoinerr.Is(err, libcoinerr.DoubleSpend) || libcoinerr.Is(err, libcoinerr.ImmatureCoinbase) {
			return libcoinerr.Wrap(libcoinerr.Reject, err, "transaction %s rejected", hash)
		}
		return err
	}
	if f.AnnounceFunc != nil {
		f.AnnounceFunc(hash)
	}
	return nil
}

// handleInv requests the announced transactions this node has not yet
// confirmed or claimed. Block and share inventory was already handled by
// the earlier stages; any such vectors reaching this stage are ignored.
func (f *TransactionFilter) handleInv(p *Peer, m *wire.MsgInv) error {
	getData := &wire.MsgGetData{}
	for _, iv := range m.InvList {
		if iv.Type != wire.InvTypeTx {
			continue
		}
		if f.Chain.HaveTx(iv.Hash) {
			continue
		}
		if err := getData.AddInvVect(iv); err != nil {
			break
		}
	}
	if len(getData.InvList) > 0 {
		p.QueueMessage(getData)
	}
	return nil
}

// handleGetData serves transaction requests from the pool or confirmed
// storage, answering the rest with notfound.
func (f *TransactionFilter) handleGetData(p *Peer, m *wire.MsgGetData) error {
	notFound := &wire.MsgNotFound{}
	for _, iv := range m.InvList {
		if iv.Type != wire.InvTypeTx {
			continue
		}
		tx, ok := f.Chain.GetTransaction(iv.Hash)
		if !ok {
			notFound.InvList = append(notFound.InvList, iv)
			continue
		}
		p.QueueMessage(tx)
	}
	if len(notFound.InvList) > 0 {
		p.QueueMessage(notFound)
	}
	return nil
}

func (f *TransactionFilter) handleMempool(p *Peer) error {
	inv := &wire.MsgInv{}
	for _, hash := range f.Chain.Mempool() {
		h := hash
		if err := inv.AddInvVect(wire.NewInvVect(wire.InvTypeTx, &h)); err != nil {
			break
		}
	}
	if len(inv.InvList) > 0 {
		p.QueueMessage(inv)
	}
	return nil
}

func (f *TransactionFilter) setFilter(p *Peer, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters[p] = &bloomState{active: true, data: append([]byte(nil), data...)}
}

func (f *TransactionFilter) appendFilter(p *Peer, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.filters[p]
	if !ok || !st.active {
		return
	}
	st.data = append(st.data, data...)
}

func (f *TransactionFilter) clearFilter(p *Peer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.filters, p)
}

// StartRebroadcast launches the random-interval rebroadcast loop, invoking
// announce for each of OwnTransactions' current entries every tick.
// Callers stop it with StopRebroadcast at node shutdown.
func (f *TransactionFilter) StartRebroadcast() {
	go f.rebroadcastLoop()
}

// StopRebroadcast ends the rebroadcast loop started by StartRebroadcast.
func (f *TransactionFilter) StopRebroadcast() {
	close(f.stopCh)
}

func (f *TransactionFilter) rebroadcastLoop() {
	for {
		wait := RebroadcastMinInterval + time.Duration(f.rnd.Int63n(int64(RebroadcastMaxInterval-RebroadcastMinInterval)))
		select {
		case <-time.After(wait):
			f.rebroadcastOnce()
		case <-f.stopCh:
			return
		}
	}
}

func (f *TransactionFilter) rebroadcastOnce() {
	if f.OwnTransactions == nil || f.AnnounceFunc == nil {
		return
	}
	for _, hash := range f.OwnTransactions() {
		f.AnnounceFunc(hash)
	}
}
