// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
	"github.com/libcoin/libcoin-sub001/wire"
)

// versionCounts walks back window blocks from the tip and bins them by
// header version, for the version-upgrade quorum computation.
func (bc *BlockChain) versionCounts(window int64) map[int32]int64 {
	counts := make(map[int32]int64)
	tip, _, ok := bc.tree.Best()
	if !ok {
		return counts
	}
	it, ok := bc.tree.Iter(tip.Hash())
	for i := int64(0); i < window && ok; i++ {
		elem, eok := it.Elem()
		if !eok {
			break
		}
		be, isBlockElem := elem.(*blockElem)
		if !isBlockElem {
			break
		}
		counts[be.header.Version]++
		it, ok = it.Prev()
	}
	return counts
}

// atLeastVersion sums every bin whose version is >= v.
func atLeastVersion(counts map[int32]int64, v int32) int64 {
	var total int64
	for version, n := range counts {
		if version >= v {
			total += n
		}
	}
	return total
}

// minAcceptedBlockVersion is the highest V such that V-or-higher blocks
// form a majority within the acceptance quorum.
func (bc *BlockChain) minAcceptedBlockVersion() int32 {
	return bc.thresholdVersion(bc.cfg.Params.BlockUpgradeAcceptWindow, bc.cfg.Params.BlockUpgradeAcceptMajority)
}

// minEnforcedBlockVersion is minAcceptedBlockVersion's tighter
// counterpart, gating the height/trie-root coinbase commitments rather
// than mere acceptance.
func (bc *BlockChain) minEnforcedBlockVersion() int32 {
	return bc.thresholdVersion(bc.cfg.Params.BlockUpgradeEnforceWindow, bc.cfg.Params.BlockUpgradeEnforceMajority)
}

// thresholdVersion finds the highest version V present in the last window
// blocks such that at least majority of them carry version >= V, starting
// from the highest observed version and working down. Candidate versions
// are bounded to wire.BlockVersion3, the newest version this currency
// family defines.
func (bc *BlockChain) thresholdVersion(window, majority int64) int32 {
	if window <= 0 {
		return 1
	}
	counts := bc.versionCounts(window)
	for v := int32(wire.BlockVersion3); v >= 1; v-- {
		if atLeastVersion(counts, v) >= majority {
			return v
		}
	}
	return 1
}

// checkVersionInvariants applies the enforcement threshold to one newly
// attached block: v2 blocks must carry their height in the coinbase; v3
// blocks must additionally commit parentRoot, the trie root as it stood
// before the block's own transactions were applied. Callers capture
// parentRoot per block inside the attach loop — the same root a template
// built on the parent embeds — so a multi-block reorganisation checks
// every block against its own parent state, not the batch's final state.
func (bc *BlockChain) checkVersionInvariants(blk *wire.MsgBlock, height int64, threshold int32, parentRoot chainhash.Hash) error {
	if threshold < 2 {
		return nil
	}
	hash := blk.BlockHash()
	coinbase := blk.Coinbase()
	if coinbase == nil || len(coinbase.TxIn) == 0 {
		return libcoinerr.New(libcoinerr.VersionPolicyViolation, "block %s has no coinbase input to carry a height commitment", hash)
	}
	if blk.Header.Version >= 2 {
		if !coinbaseCommitsHeight(coinbase.TxIn[0].SignatureScript, height) {
			return libcoinerr.New(libcoinerr.VersionPolicyViolation, "block %s coinbase does not commit its height", hash)
		}
	}
	if blk.Header.Version >= wire.BlockVersion3 && threshold >= wire.BlockVersion3 {
		if !coinbaseCommitsTrieRoot(coinbase, parentRoot) {
			return libcoinerr.New(libcoinerr.VersionPolicyViolation, "block %s coinbase does not commit its parent's trie root", hash)
		}
	}
	return nil
}

// coinbaseCommitsHeight reports whether script's leading push matches the
// minimally-encoded height (BIP-34 style commitment).
func coinbaseCommitsHeight(script []byte, height int64) bool {
	encoded := encodeHeightPush(height)
	if len(script) < len(encoded) {
		return false
	}
	for i := range encoded {
		if script[i] != encoded[i] {
			return false
		}
	}
	return true
}

// encodeHeightPush minimally encodes height as a script push: a length
// byte followed by the little-endian minimal-width encoding.
func encodeHeightPush(height int64) []byte {
	if height == 0 {
		return []byte{0x00}
	}
	var b []byte
	v := height
	for v > 0 {
		b = append(b, byte(v&0xff))
		v >>= 8
	}
	if b[len(b)-1]&0x80 != 0 {
		b = append(b, 0x00)
	}
	return append([]byte{byte(len(b))}, b...)
}

// coinbaseCommitsTrieRoot reports whether coinbase's last output carries an
// OP_RETURN commitment to root, the v3 "coinbase commits the trie root"
// invariant.
func coinbaseCommitsTrieRoot(coinbase *wire.MsgTx, root chainhash.Hash) bool {
	if len(coinbase.TxOut) == 0 {
		return false
	}
	script := coinbase.TxOut[len(coinbase.TxOut)-1].PkScript
	if len(script) < 2+chainhash.HashSize || script[0] != 0x6a {
		return false
	}
	commitment := script[len(script)-chainhash.HashSize:]
	for i := 0; i < chainhash.HashSize; i++ {
		if commitment[i] != root[i] {
			return false
		}
	}
	return true
}
