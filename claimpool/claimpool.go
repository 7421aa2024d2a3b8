// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package claimpool implements the claims pool: the keyed set of
// unconfirmed transactions the BlockChain engine consults when building a
// block template and mutates on every `claim` call. The pool never talks
// to storage directly — it resolves inputs against either an earlier
// pool entry or the Chain interface the engine supplies, keeping the
// circular blockchain<->claimpool dependency one-directional.
package claimpool

import (
	"time"

	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
	"github.com/libcoin/libcoin-sub001/logs"
	"github.com/libcoin/libcoin-sub001/wire"
)

var log = logs.Get(logs.SubsystemTags.POOL)

// PurgeAge is the wall-clock age after which an unconfirmed claim is
// dropped.
const PurgeAge = 24 * time.Hour

// UnspentInfo is what the pool needs to know about a confirmed output to
// resolve an input against it: its value, locking script, and the block
// count it was confirmed in (negative for an as-yet-immature coinbase).
type UnspentInfo struct {
	Value      int64
	Script     []byte
	BlockCount int64
}

// Chain is the confirmed-state view the pool resolves inputs against. The
// blockchain engine implements it; claimpool never reaches into storage
// or the UTXO trie directly.
type Chain interface {
	// UnspentOutput returns the confirmed unspent at op, if any.
	UnspentOutput(op wire.OutPoint) (UnspentInfo, bool)
	// Height returns the current best-chain height.
	Height() int64
	// CoinbaseMaturity returns the maturity depth at height.
	CoinbaseMaturity(height int64) int64
	// MinRelayFee returns the minimum per-transaction fee the chain
	// will relay.
	MinRelayFee() int64
}

// ScriptVerifier checks a single input's signature script against the
// locking script it redeems; nil disables verification.
type ScriptVerifier func(tx *wire.MsgTx, inputIndex int, prevScript []byte) error

// NameValidator checks a transaction's name operations, if any, against
// current name state, given the fee the transaction pays. nil disables
// name validation for chains that don't adhere to it.
type NameValidator func(tx *wire.MsgTx, fee int64) error

// Entry is one pool-resident unconfirmed transaction.
type Entry struct {
	Tx             *wire.MsgTx
	SpentOutpoints map[wire.OutPoint]struct{}
	Fee            int64
	Arrived        time.Time
}

// Pool is the claims pool.
type Pool struct {
	Chain    Chain
	Verify   ScriptVerifier
	Names    NameValidator
	entries  map[chainhash.Hash]*Entry
	outpoint map[wire.OutPoint]chainhash.Hash
}

// New returns an empty Pool bound to chain.
func New(chain Chain) *Pool {
	return &Pool{
		Chain:    chain,
		entries:  make(map[chainhash.Hash]*Entry),
		outpoint: make(map[wire.OutPoint]chainhash.Hash),
	}
}

// Count returns the number of claims held.
func (p *Pool) Count() int { return len(p.entries) }

// Get returns the pool entry for hash, if any.
func (p *Pool) Get(hash chainhash.Hash) (*Entry, bool) {
	e, ok := p.entries[hash]
	return e, ok
}

// Have reports whether hash is already claimed.
func (p *Pool) Have(hash chainhash.Hash) bool {
	_, ok := p.entries[hash]
	return ok
}

// resolveOutput looks up op first among this pool's own entries (an
// earlier, still-unconfirmed claim), then against the confirmed chain.
func (p *Pool) resolveOutput(op wire.OutPoint) (UnspentInfo, bool) {
	if src, ok := p.entries[op.Hash]; ok {
		if int(op.Index) < len(src.Tx.TxOut) {
			out := src.Tx.TxOut[op.Index]
			return UnspentInfo{Value: out.Value, Script: out.PkScript, BlockCount: p.Chain.Height() + 1}, true
		}
		return UnspentInfo{}, false
	}
	return p.Chain.UnspentOutput(op)
}

// TryClaim validates tx against the pool's admission rules without
// mutating the pool:
// (a) rejects duplicates, (b) resolves every input, (c) rejects
// within-pool double-spends, (d) enforces coinbase maturity, (e)
// optionally verifies scripts, (f) computes fee >= 0 and >= the chain's
// minimum relay fee, (g) validates any name operations. On success it
// returns the set of outpoints tx spends and its fee; Insert persists
// that into the pool.
func (p *Pool) TryClaim(tx *wire.MsgTx, verify bool) (map[wire.OutPoint]struct{}, int64, error) {
	txHash := tx.TxHash()
	if p.Have(txHash) {
		return nil, 0, libcoinerr.New(libcoinerr.Reject, "transaction %s already claimed", txHash)
	}
	if tx.IsCoinBase() {
		return nil, 0, libcoinerr.New(libcoinerr.Reject, "coinbase transaction %s cannot be claimed", txHash)
	}

	spent := make(map[wire.OutPoint]struct{}, len(tx.TxIn))
	var valueIn int64
	height := p.Chain.Height()

	for idx, in := range tx.TxIn {
		op := in.PreviousOutPoint
		if _, already := p.outpoint[op]; already {
			return nil, 0, libcoinerr.New(libcoinerr.DoubleSpend,
				"input %d of %s double-spends outpoint %s:%d already claimed", idx, txHash, op.Hash, op.Index)
		}
		if _, dup := spent[op]; dup {
			return nil, 0, libcoinerr.New(libcoinerr.DoubleSpend,
				"transaction %s spends outpoint %s:%d twice", txHash, op.Hash, op.Index)
		}

		info, ok := p.resolveOutput(op)
		if !ok {
			return nil, 0, libcoinerr.New(libcoinerr.UnknownTx,
				"input %d of %s spends unknown outpoint %s:%d", idx, txHash, op.Hash, op.Index)
		}
		if info.BlockCount < 0 {
			maturity := p.Chain.CoinbaseMaturity(height)
			originHeight := -info.BlockCount
			if height-originHeight+1 < maturity {
				return nil, 0, libcoinerr.New(libcoinerr.ImmatureCoinbase,
					"input %d of %s spends coinbase from height %d before maturity %d", idx, txHash, originHeight, maturity)
			}
		}
		if verify && p.Verify != nil {
			if err := p.Verify(tx, idx, info.Script); err != nil {
				return nil, 0, libcoinerr.Wrap(libcoinerr.InvalidScript, err, "input %d of %s", idx, txHash)
			}
		}
		if info.Value < 0 {
			return nil, 0, libcoinerr.New(libcoinerr.ValueOutOfRange, "input %d of %s has negative value", idx, txHash)
		}
		valueIn += info.Value
		spent[op] = struct{}{}
	}

	var valueOut int64
	for _, out := range tx.TxOut {
		if out.Value < 0 {
			return nil, 0, libcoinerr.New(libcoinerr.ValueOutOfRange, "output of %s has negative value", txHash)
		}
		valueOut += out.Value
	}

	fee := valueIn - valueOut
	if fee < 0 {
		return nil, 0, libcoinerr.New(libcoinerr.ValueOutOfRange,
			"transaction %s spends more (%d) than it redeems (%d)", txHash, valueOut, valueIn)
	}
	if fee < p.Chain.MinRelayFee() {
		return nil, 0, libcoinerr.New(libcoinerr.FeeBelowMinimum,
			"transaction %s pays fee %d below minimum %d", txHash, fee, p.Chain.MinRelayFee())
	}

	if p.Names != nil {
		if err := p.Names(tx, fee); err != nil {
			return nil, 0, libcoinerr.Wrap(libcoinerr.NameRuleViolation, err, "transaction %s", txHash)
		}
	}

	return spent, fee, nil
}

// Insert records a claim already validated by TryClaim.
func (p *Pool) Insert(tx *wire.MsgTx, spent map[wire.OutPoint]struct{}, fee int64) {
	txHash := tx.TxHash()
	p.entries[txHash] = &Entry{Tx: tx, SpentOutpoints: spent, Fee: fee, Arrived: time.Now()}
	for op := range spent {
		p.outpoint[op] = txHash
	}
	log.Debugf("claimed %s (fee %d, %d inputs)", txHash, fee, len(spent))
}

// Erase removes hash from the pool, called as its transaction is attached
// in a block.
func (p *Pool) Erase(hash chainhash.Hash) {
	e, ok := p.entries[hash]
	if !ok {
		return
	}
	for op := range e.SpentOutpoints {
		delete(p.outpoint, op)
	}
	delete(p.entries, hash)
}

// Purge drops every entry that arrived strictly before cutoff.
func (p *Pool) Purge(cutoff time.Time) {
	for hash, e := range p.entries {
		if e.Arrived.Before(cutoff) {
			p.Erase(hash)
		}
	}
}

// Hashes returns every claimed transaction's hash.
func (p *Pool) Hashes() []chainhash.Hash {
	out := make([]chainhash.Hash, 0, len(p.entries))
	for h := range p.entries {
		out = append(out, h)
	}
	return out
}

// FeeDensityOrder returns every claimed transaction sorted by descending
// fee-per-byte, used by block templating. Ties are broken by arrival time
// (earlier first) so selection is deterministic.
func (p *Pool) FeeDensityOrder() []*Entry {
	out := make([]*Entry, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, e)
	}
	sortByFeeDensity(out)
	return out
}

func sortByFeeDensity(entries []*Entry) {
	less := func(i, j int) bool {
		di := feeDensity(entries[i])
		dj := feeDensity(entries[j])
		if di != dj {
			return di > dj
		}
		return entries[i].Arrived.Before(entries[j].Arrived)
	}
	// Simple insertion sort: claim pools are small relative to a block's
	// transaction budget, and this keeps the comparator above the only
	// place that needs to know the ordering rule.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

func feeDensity(e *Entry) float64 {
	size := e.Tx.SerializeSize()
	if size == 0 {
		return 0
	}
	return float64(e.Fee) / float64(size)
}
