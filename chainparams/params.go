// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainparams holds the per-currency constant table:
// genesis, PoW limit, retarget rule, subsidy schedule, address version
// bytes, network magic, checkpoints, and the version-gating quorum
// constants. One parameter record per currency, populated as package
// vars, rather than a type hierarchy.
package chainparams

import (
	"math/big"
	"time"

	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/wire"
)

// Checkpoint pins a known-good (height, hash) pair; a reorg that would
// cross a passed checkpoint is refused.
type Checkpoint struct {
	Height int64
	Hash   *chainhash.Hash
}

// BlockIterator lets NextWorkRequired walk backward over recent headers
// without depending on the blockchain package; *blockchain.BlockChain
// satisfies it.
type BlockIterator interface {
	// Header returns the header at height, or ok=false if height is
	// below genesis or above the iterator's starting point.
	Header(height int64) (header *wire.BlockHeader, ok bool)
}

// NameOperationFeeSchedule returns the minimum fee (in satoshi) a
// Namecoin name operation must pay at the given height.
type NameOperationFeeSchedule func(height int64) int64

// Params is the per-currency parameter record.
type Params struct {
	Name string

	// Network identity.
	Net         wire.BitcoinNet
	DefaultPort string
	IRCChannel  string
	IRCChannels int
	SeedHosts   []string

	ProtocolVersion uint32

	// Consensus.
	GenesisBlock *wire.MsgBlock
	GenesisHash  *chainhash.Hash
	PowLimit     *big.Int
	PowLimitBits uint32

	// Classic 2016-block retarget, bounded ×/÷4 per period; overridden
	// per currency.
	RetargetInterval        int64
	TargetTimespan          time.Duration
	TargetSpacing           time.Duration
	RetargetAdjustmentFactor int64
	ReduceMinDifficulty     bool
	MinDiffReductionTime    time.Duration // "maxInterBlockTime" escape

	// Subsidy.
	SubsidyInitial           int64
	SubsidyReductionInterval int64
	MaxMoney                 int64
	MinRelayTxFee            int64

	// Coinbase maturity; dogecoinMaturity (currencies.go) shows the
	// height-dependent variant.
	CoinbaseMaturity func(height int64) int64

	// Address/key encoding.
	PubKeyHashAddrID byte
	ScriptHashAddrID byte
	PrivateKeyID     byte
	HasP2SH          bool

	// BIP activation timestamps/heights.
	BIP0016Time  int64 // BIP-16 (P2SH) strict-mode activation, unix time
	BIP0030Time  int64 // BIP-30 (duplicate-coinbase) activation, unix time

	// Version-gated upgrade quorum/majority.
	BlockUpgradeAcceptWindow    int64
	BlockUpgradeAcceptMajority  int64
	BlockUpgradeEnforceWindow   int64
	BlockUpgradeEnforceMajority int64

	// Merge-mining / name-system adherence flags.
	MergeMiningAdherent bool
	NameSystemAdherent  bool
	NameExpirationDepth int64
	NameFeeSchedule     NameOperationFeeSchedule

	RelayNonStdTxs bool

	Checkpoints []Checkpoint
}

// checkpointByHeight finds the checkpoint at height, if any, by a linear
// scan of Checkpoints.
func (p *Params) checkpointByHeight(height int64) (*Checkpoint, bool) {
	for i := range p.Checkpoints {
		if p.Checkpoints[i].Height == height {
			return &p.Checkpoints[i], true
		}
	}
	return nil, false
}

// CheckPoints reports whether hash is acceptable at height: true unless a
// hard-coded checkpoint at that height names a different hash.
func (p *Params) CheckPoints(height int64, hash *chainhash.Hash) bool {
	cp, ok := p.checkpointByHeight(height)
	if !ok {
		return true
	}
	return cp.Hash.IsEqual(hash)
}

// LatestCheckpointHeight returns the height of the newest checkpoint at or
// below height, or -1 if none qualifies. Used to refuse reorganisations
// that would cross a passed checkpoint.
func (p *Params) LatestCheckpointHeight(height int64) int64 {
	best := int64(-1)
	for i := range p.Checkpoints {
		if p.Checkpoints[i].Height <= height && p.Checkpoints[i].Height > best {
			best = p.Checkpoints[i].Height
		}
	}
	return best
}

// Subsidy returns the block reward at height, halving every
// SubsidyReductionInterval blocks down to zero.
func (p *Params) Subsidy(height int64) int64 {
	halvings := height / p.SubsidyReductionInterval
	if halvings >= 64 {
		return 0
	}
	return p.SubsidyInitial >> uint(halvings)
}

// FixedCoinbaseMaturity returns a CoinbaseMaturity func for chains whose
// maturity depth never varies by height.
func FixedCoinbaseMaturity(depth int64) func(int64) int64 {
	return func(int64) int64 { return depth }
}
