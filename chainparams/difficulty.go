// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainparams

import (
	"math/big"
	"time"
)

// bigOne is reused to avoid repeated allocation.
var bigOne = big.NewInt(1)

// CompactToBig expands the compact "nBits" encoding into a big.Int target.
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	exponent := compact >> 24

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, 8*(uint(exponent)-3))
	}

	if compact&0x00800000 != 0 {
		bn = bn.Neg(bn)
	}
	return bn
}

// BigToCompact packs target into the compact "nBits" representation.
func BigToCompact(target *big.Int) uint32 {
	if target.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	exponent := uint(len(target.Bytes()))
	if exponent <= 3 {
		mantissa = uint32(target.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn := new(big.Int).Set(target)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent<<24) | mantissa
	if target.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}

// NextWorkRequired computes the difficulty bits for the block following
// tipHeight, given the currency's retarget rule. Every
// RetargetInterval blocks the target is rescaled by the ratio of actual to
// expected timespan, clamped to the RetargetAdjustmentFactor bound in both
// directions; off-interval blocks simply repeat the previous bits, except
// where ReduceMinDifficulty licenses the testnet "twenty-minute" escape to
// the proof-of-work floor.
func (p *Params) NextWorkRequired(tipHeight int64, tipBits uint32, tipTime, firstTime time.Time, iter BlockIterator) uint32 {
	nextHeight := tipHeight + 1

	if p.ReduceMinDifficulty && nextHeight%p.RetargetInterval != 0 {
		if tipTime.Add(p.MinDiffReductionTime).Before(timeOf(nextHeight, iter)) {
			return p.PowLimitBits
		}
		h, ok := lastNonMinDifficultyHeader(tipHeight, p.RetargetInterval, p.PowLimitBits, iter)
		if ok {
			return h
		}
		return tipBits
	}

	if nextHeight%p.RetargetInterval != 0 {
		return tipBits
	}

	actualTimespan := tipTime.Sub(firstTime)
	minTimespan := p.TargetTimespan / time.Duration(p.RetargetAdjustmentFactor)
	maxTimespan := p.TargetTimespan * time.Duration(p.RetargetAdjustmentFactor)
	if actualTimespan < minTimespan {
		actualTimespan = minTimespan
	}
	if actualTimespan > maxTimespan {
		actualTimespan = maxTimespan
	}

	oldTarget := CompactToBig(tipBits)
	newTarget := new(big.Int).Mul(oldTarget, big.NewInt(int64(actualTimespan)))
	newTarget.Div(newTarget, big.NewInt(int64(p.TargetTimespan)))

	if newTarget.Cmp(p.PowLimit) > 0 {
		newTarget.Set(p.PowLimit)
	}
	return BigToCompact(newTarget)
}

// timeOf returns the timestamp of the header the iterator holds at height,
// or the current wall-clock time when it holds none there yet (the
// candidate block is not indexed). NextWorkRequired compares the result
// with tipTime plus MinDiffReductionTime for the minimum-difficulty escape.
func timeOf(height int64, iter BlockIterator) time.Time {
	if h, ok := iter.Header(height); ok {
		return time.Unix(int64(h.Timestamp), 0)
	}
	return time.Now()
}

// lastNonMinDifficultyHeader walks backward from tipHeight to find the most
// recent block whose bits were not the proof-of-work floor, so the twenty-
// minute testnet escape resumes at the correct target rather than the floor.
func lastNonMinDifficultyHeader(tipHeight, retargetInterval int64, powLimitBits uint32, iter BlockIterator) (uint32, bool) {
	h := tipHeight
	for h > 0 {
		hdr, ok := iter.Header(h)
		if !ok {
			return 0, false
		}
		if h%retargetInterval == 0 || hdr.Bits != powLimitBits {
			return hdr.Bits, true
		}
		h--
	}
	return 0, false
}
