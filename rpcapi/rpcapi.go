// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpcapi is the consumer-facing query-and-mutation surface a
// JSON-RPC server or wallet wires requests through; request framing,
// authentication, and wire transport are the caller's concern, not this
// package's.
package rpcapi

import (
	"github.com/libcoin/libcoin-sub001/blockchain"
	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
	"github.com/libcoin/libcoin-sub001/logs"
	"github.com/libcoin/libcoin-sub001/store"
	"github.com/libcoin/libcoin-sub001/wire"
)

var log = logs.Get(logs.SubsystemTags.BCHN)

// Chain is the subset of *blockchain.BlockChain the API needs; narrowing
// to an interface keeps command handlers testable against a fake, the
// same dependency-direction discipline claimpool.Chain and p2p.Chain use.
type Chain interface {
	Height() int64
	HaveBlock(hash chainhash.Hash) bool
	HaveTx(hash chainhash.Hash) bool
	GetBlock(hash chainhash.Hash) (*wire.MsgBlock, error)
	GetBlockHeader(hash chainhash.Hash) (*wire.BlockHeader, error)
	GetTransaction(hash chainhash.Hash) (*wire.MsgTx, bool)
	GetUnspents(script []byte, before int64) ([]store.UnspentRow, error)
	Balance(script []byte, height int64) (int64, error)
	IsSpent(op wire.OutPoint, minConf int64) (bool, error)
	GetBestLocator() wire.BlockLocator
	GetDistanceBack(locator wire.BlockLocator) int64
	GetBlockTemplate(tip chainhash.Hash, payees []blockchain.Payee) (*wire.MsgBlock, error)
	Claim(tx *wire.MsgTx, verify bool) error
}

// API wraps a Chain with the read-query and mutation surface named in
// the engine and consumed by a JSON-RPC server or wallet.
type API struct {
	chain Chain
}

// New returns an API backed by chain.
func New(chain Chain) *API {
	return &API{chain: chain}
}

// GetBestHeight returns the height of the current best chain tip.
func (a *API) GetBestHeight() int64 {
	return a.chain.Height()
}

// GetBlock returns the full block identified by hash.
func (a *API) GetBlock(hash chainhash.Hash) (*wire.MsgBlock, error) {
	return a.chain.GetBlock(hash)
}

// GetBlockHeader returns just the header identified by hash.
func (a *API) GetBlockHeader(hash chainhash.Hash) (*wire.BlockHeader, error) {
	return a.chain.GetBlockHeader(hash)
}

// GetTransaction returns a transaction by hash, searching both confirmed
// storage and the claims pool; ok is false if the hash is unknown.
func (a *API) GetTransaction(hash chainhash.Hash) (*wire.MsgTx, bool) {
	return a.chain.GetTransaction(hash)
}

// GetUnspents returns the unspent outputs locking to script, confirmed
// at or before height before; immature coinbase outputs, stored with a
// negative block count, are always included.
func (a *API) GetUnspents(script []byte, before int64) ([]store.UnspentRow, error) {
	return a.chain.GetUnspents(script, before)
}

// Balance sums the unspent value locking to script as of height.
func (a *API) Balance(script []byte, height int64) (int64, error) {
	return a.chain.Balance(script, height)
}

// IsSpent reports whether op has been redeemed with at least minConf
// confirmations.
func (a *API) IsSpent(op wire.OutPoint, minConf int64) (bool, error) {
	return a.chain.IsSpent(op, minConf)
}

// GetBestLocator returns a block locator for the current best chain tip,
// suitable for a peer's getblocks/getheaders request.
func (a *API) GetBestLocator() wire.BlockLocator {
	return a.chain.GetBestLocator()
}

// GetDistanceBack estimates how far locator's best match sits behind the
// current tip.
func (a *API) GetDistanceBack(locator wire.BlockLocator) int64 {
	return a.chain.GetDistanceBack(locator)
}

// GetBlockTemplate assembles an unmined block atop tip distributing the
// subsidy and collected fees across payees.
func (a *API) GetBlockTemplate(tip chainhash.Hash, payees []blockchain.Payee) (*wire.MsgBlock, error) {
	return a.chain.GetBlockTemplate(tip, payees)
}

// Claim submits a relayed or self-originated transaction to the claims
// pool; verify requests script verification against the confirmed UTXO
// set.
func (a *API) Claim(tx *wire.MsgTx, verify bool) error {
	return a.chain.Claim(tx, verify)
}

// CommandHandler services one named operator command; Post dispatches to
// the handler registered under cmd, mirroring the classic command-table
// RPC servers in this family use to route JSON-RPC methods.
type CommandHandler func(a *API, payload interface{}) (interface{}, error)

var commandHandlers = map[string]CommandHandler{}

// RegisterCommand adds or replaces the handler for a named operator
// command; a JSON-RPC server registers its method table through this
// before Post is ever called.
func RegisterCommand(cmd string, handler CommandHandler) {
	commandHandlers[cmd] = handler
}

// Post routes an operator action to its registered handler.
func (a *API) Post(cmd string, payload interface{}) (interface{}, error) {
	handler, ok := commandHandlers[cmd]
	if !ok {
		return nil, libcoinerr.New(libcoinerr.ProtocolViolation, "unknown rpc command "+cmd)
	}
	result, err := handler(a, payload)
	if err != nil {
		log.Warnf("rpc command %s failed: %v", cmd, err)
	}
	return result, err
}
