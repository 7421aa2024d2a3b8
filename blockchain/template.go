// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"time"

	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/claimpool"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
	"github.com/libcoin/libcoin-sub001/wire"
)

// timeOfHeader converts a header's unix timestamp field to a time.Time.
func timeOfHeader(ts uint32) time.Time { return time.Unix(int64(ts), 0) }

// Payee is one block-template beneficiary: a locking script plus its share
// of the subsidy and of the collected fees.
type Payee struct {
	Script         []byte
	RewardFraction int64
	FeeFraction    int64
}

// GetBlockTemplate selects claims in fee-density order (respecting input
// dependency order), builds a coinbase committing the coming height and
// the tip's trie root (the parent state the new block will build on),
// distributes the subsidy and fees across payees, and returns an unmined
// block with nonce 0 and the tip's next-required bits.
func (bc *BlockChain) GetBlockTemplate(tip chainhash.Hash, payees []Payee) (*wire.MsgBlock, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if len(payees) == 0 {
		return nil, libcoinerr.New(libcoinerr.ProtocolViolation, "block template requires at least one payee")
	}
	tipHeight, ok := bc.tree.Height(tip)
	if !ok {
		return nil, libcoinerr.New(libcoinerr.UnknownBlock, "tip %s not indexed", tip)
	}
	tipHeader, err := bc.GetBlockHeader(tip)
	if err != nil {
		return nil, err
	}

	height := tipHeight + 1
	selected, fees := bc.selectClaims()

	subsidy := bc.cfg.Params.Subsidy(height)
	coinbase := bc.buildCoinbase(height, subsidy, fees, payees)

	txs := make([]*wire.MsgTx, 0, len(selected)+1)
	txs = append(txs, coinbase)
	txs = append(txs, selected...)

	firstTime := tipHeader.Timestamp
	if firstHeight := tipHeight + 1 - bc.cfg.Params.RetargetInterval; firstHeight >= 0 {
		if h, ok := bc.Header(firstHeight); ok {
			firstTime = h.Timestamp
		}
	}
	bits := bc.cfg.Params.NextWorkRequired(tipHeight, tipHeader.Bits,
		timeOfHeader(tipHeader.Timestamp), timeOfHeader(firstTime), bc)

	block := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:    wire.BlockVersion3,
			PrevBlock:  tip,
			MerkleRoot: CalcMerkleRoot(txs),
			Timestamp:  uint32(bc.cfg.Now().Unix()),
			Bits:       bits,
			Nonce:      0,
		},
		Transactions: txs,
	}
	return block, nil
}

// selectClaims walks the pool's fee-density order, deferring any claim
// whose input spends another still-pooled transaction until that ancestor
// has been placed, so the template never orders a child before its parent.
func (bc *BlockChain) selectClaims() ([]*wire.MsgTx, int64) {
	ordered := bc.pool.FeeDensityOrder()
	pooled := make(map[chainhash.Hash]bool, len(ordered))
	for _, e := range ordered {
		pooled[e.Tx.TxHash()] = true
	}

	included := make(map[chainhash.Hash]bool, len(ordered))
	var selected []*wire.MsgTx
	var fees int64

	remaining := ordered
	for len(remaining) > 0 {
		var deferred []*claimpool.Entry
		progressed := false
		for _, e := range remaining {
			ready := true
			for _, in := range e.Tx.TxIn {
				if pooled[in.PreviousOutPoint.Hash] && !included[in.PreviousOutPoint.Hash] {
					ready = false
					break
				}
			}
			if ready {
				selected = append(selected, e.Tx)
				fees += e.Fee
				included[e.Tx.TxHash()] = true
				progressed = true
				continue
			}
			deferred = append(deferred, e)
		}
		if !progressed {
			break // remaining entries depend on a pool tx that never resolved; drop them
		}
		remaining = deferred
	}
	return selected, fees
}

// buildCoinbase constructs the coinbase transaction: a single null-input
// carrying the height commitment, one output per payee splitting subsidy
// and fees by their fraction vectors (remainder to the first payee), and
// a trailing OP_RETURN committing the trie root.
func (bc *BlockChain) buildCoinbase(height, subsidy, fees int64, payees []Payee) *wire.MsgTx {
	var rewardTotal, feeTotalFrac int64
	for _, p := range payees {
		rewardTotal += p.RewardFraction
		feeTotalFrac += p.FeeFraction
	}

	tx := &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{{
			PreviousOutPoint: wire.OutPoint{Hash: chainhash.HashZero, Index: 0xffffffff},
			SignatureScript:  encodeHeightPush(height),
			Sequence:         wire.MaxTxInSequenceNum,
		}},
	}

	shares := make([]int64, len(payees))
	var rewardPaid, feesPaid int64
	for i := 1; i < len(payees); i++ {
		reward := fractionShare(subsidy, payees[i].RewardFraction, rewardTotal)
		fee := fractionShare(fees, payees[i].FeeFraction, feeTotalFrac)
		rewardPaid += reward
		feesPaid += fee
		shares[i] = reward + fee
	}
	// The remainder of both the subsidy and fee division goes to the
	// first payee.
	shares[0] = (subsidy - rewardPaid) + (fees - feesPaid)
	for i, p := range payees {
		tx.TxOut = append(tx.TxOut, &wire.TxOut{Value: shares[i], PkScript: p.Script})
	}

	root := bc.trie.RootHash()
	commitment := make([]byte, 0, 2+chainhash.HashSize)
	commitment = append(commitment, 0x6a) // OP_RETURN
	commitment = append(commitment, byte(chainhash.HashSize))
	commitment = append(commitment, root[:]...)
	tx.TxOut = append(tx.TxOut, &wire.TxOut{Value: 0, PkScript: commitment})

	return tx
}

// fractionShare returns amount*fraction/total, or 0 when total is 0.
func fractionShare(amount, fraction, total int64) int64 {
	if total == 0 {
		return 0
	}
	return amount * fraction / total
}
