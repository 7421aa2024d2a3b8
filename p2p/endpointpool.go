// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"math/rand"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/libcoin/libcoin-sub001/wire"
)

// endpointEntry is one known candidate address and its probation state.
type endpointEntry struct {
	addr      *wire.NetAddress
	addedAt   time.Time
	lastTried time.Time
	lastGood  time.Time
	attempts  int
	lowTrust  bool // seeded from chat/IRC discovery rather than a peer's own addr relay
}

func key(na *wire.NetAddress) string {
	return net.JoinHostPort(na.IP.String(), strconv.Itoa(int(na.Port)))
}

// EndpointPool is the address book the EndpointFilter consults to
// answer getaddr and to supply the outbound connector with unconnected
// candidates. Addresses learned from the chat/IRC discovery path are
// recorded with lowTrust set but are otherwise treated identically:
// normal probation, not a separate trust tier.
type EndpointPool struct {
	mu      sync.Mutex
	entries map[string]*endpointEntry
	rand    *rand.Rand
}

// NewEndpointPool constructs an empty pool.
func NewEndpointPool() *EndpointPool {
	return &EndpointPool{
		entries: make(map[string]*endpointEntry),
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AddAddress records na as a candidate, updating its timestamp if already
// known.
func (ep *EndpointPool) AddAddress(na *wire.NetAddress) {
	ep.add(na, false)
}

// AddLowTrustAddress records na as discovered via chat/IRC bootstrap.
func (ep *EndpointPool) AddLowTrustAddress(na *wire.NetAddress) {
	ep.add(na, true)
}

func (ep *EndpointPool) add(na *wire.NetAddress, lowTrust bool) {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	k := key(na)
	if e, ok := ep.entries[k]; ok {
		e.addr = na
		return
	}
	ep.entries[k] = &endpointEntry{addr: na, addedAt: time.Now(), lowTrust: lowTrust}
}

// MarkGood records a successful handshake with addr, clearing probation.
func (ep *EndpointPool) MarkGood(addrKey string) {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	if e, ok := ep.entries[addrKey]; ok {
		e.lastGood = time.Now()
		e.attempts = 0
	}
}

// MarkFailed records a failed connection attempt against addr.
func (ep *EndpointPool) MarkFailed(addrKey string) {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	if e, ok := ep.entries[addrKey]; ok {
		e.attempts++
		e.lastTried = time.Now()
	}
}

// maxProbationAttempts bounds how many consecutive failures a candidate
// tolerates before AddressCandidate stops offering it.
const maxProbationAttempts = 8

// AddressCandidate samples an address not present in connected, or ok=false
// if the pool holds no eligible candidate.
func (ep *EndpointPool) AddressCandidate(connected map[string]bool) (*wire.NetAddress, bool) {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	var candidates []*endpointEntry
	for k, e := range ep.entries {
		if connected[k] {
			continue
		}
		if e.attempts >= maxProbationAttempts {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[ep.rand.Intn(len(candidates))].addr, true
}

// Sample returns up to max known addresses, for answering getaddr.
func (ep *EndpointPool) Sample(max int) []*wire.NetAddress {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	out := make([]*wire.NetAddress, 0, max)
	for _, e := range ep.entries {
		if len(out) >= max {
			break
		}
		out = append(out, e.addr)
	}
	return out
}

// Count returns the number of known addresses.
func (ep *EndpointPool) Count() int {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	return len(ep.entries)
}
