// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainparams

import (
	"testing"
	"time"

	"github.com/libcoin/libcoin-sub001/wire"
)

func TestSubsidyHalving(t *testing.T) {
	if got := Bitcoin.Subsidy(0); got != 50*1e8 {
		t.Fatalf("genesis subsidy = %d, want 5000000000", got)
	}
	if got := Bitcoin.Subsidy(210000); got != 25*1e8 {
		t.Fatalf("post-halving subsidy = %d, want 2500000000", got)
	}
	if got := Bitcoin.Subsidy(210000 * 64); got != 0 {
		t.Fatalf("subsidy after 64 halvings = %d, want 0", got)
	}
}

func TestDogecoinMaturitySchedule(t *testing.T) {
	cases := []struct {
		height int64
		want   int64
	}{
		{0, 30},
		{144999, 30},
		{145000, 240},
		{371337, 30},
	}
	for _, c := range cases {
		if got := Dogecoin.CoinbaseMaturity(c.height); got != c.want {
			t.Fatalf("CoinbaseMaturity(%d) = %d, want %d", c.height, got, c.want)
		}
	}
}

func TestCheckPointsRejectsMismatch(t *testing.T) {
	if !Bitcoin.CheckPoints(0, Bitcoin.GenesisHash) {
		t.Fatal("genesis hash should satisfy the genesis checkpoint")
	}
	other := mustHash("deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	if Bitcoin.CheckPoints(0, &other) {
		t.Fatal("mismatched hash at a checkpointed height must be rejected")
	}
}

func TestCompactBigRoundTrip(t *testing.T) {
	for _, bits := range []uint32{0x1d00ffff, 0x1b0404cb, 0x207fffff} {
		target := CompactToBig(bits)
		if got := BigToCompact(target); got != bits {
			t.Fatalf("round trip of %#x produced %#x", bits, got)
		}
	}
}

func TestNextWorkRequiredOffIntervalRepeatsBits(t *testing.T) {
	got := Bitcoin.NextWorkRequired(100, 0x1d00ffff, time.Unix(2000, 0), time.Unix(1000, 0), noopIterator{})
	if got != 0x1d00ffff {
		t.Fatalf("off-interval bits = %#x, want repeat of previous bits", got)
	}
}

type noopIterator struct{}

func (noopIterator) Header(height int64) (*wire.BlockHeader, bool) { return nil, false }
