// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"math/rand"
	"sync"
	"time"

	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/wire"
)

// MaxInboundPeers/MaxOutboundPeers bound the acceptor and outbound
// connector respectively.
const (
	MaxInboundPeers  = 125
	MaxOutboundPeers = 8
)

// cadenceInterval is how often the reply/trickle/broadcast cycle runs.
// Classic bitcoind-family nodes trickle on a short, roughly-second-scale
// tick.
const cadenceInterval = 1 * time.Second

// trickleInvDelayNumerator/Denominator select which fraction of queued tx
// invs a broadcast turn holds back to the next tick.
const (
	trickleInvDelayNumerator   = 3
	trickleInvDelayDenominator = 4
)

// PeerManager owns every connected Peer and drives the send cadence:
// after each batch of inbound messages that produced state changes, it
// replies on the originating peer, trickles one random peer's addr/inv
// queues, and broadcasts every peer's inv queue (holding back a
// deterministic fraction of transaction invs).
type PeerManager struct {
	mu    sync.Mutex
	peers map[*Peer]bool

	Pipeline *Pipeline

	salt uint64
	rnd  *rand.Rand

	pendingBatch bool
	stopCh       chan struct{}
}

// NewPeerManager constructs a PeerManager dispatching through pipeline.
func NewPeerManager(pipeline *Pipeline) *PeerManager {
	return &PeerManager{
		peers:    make(map[*Peer]bool),
		Pipeline: pipeline,
		salt:     uint64(time.Now().UnixNano()),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		stopCh:   make(chan struct{}),
	}
}

// InboundCount/OutboundCount report current connection counts.
func (pm *PeerManager) InboundCount() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	n := 0
	for p := range pm.peers {
		if p.Inbound {
			n++
		}
	}
	return n
}

func (pm *PeerManager) OutboundCount() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	n := 0
	for p := range pm.peers {
		if !p.Inbound {
			n++
		}
	}
	return n
}

// Connected reports every currently-connected peer's address, keyed the
// same way EndpointPool keys candidates, for "not already connected"
// selection.
func (pm *PeerManager) Connected() map[string]bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	out := make(map[string]bool, len(pm.peers))
	for p := range pm.peers {
		out[p.Addr] = true
	}
	return out
}

// Add registers p and starts its pump, dispatching every inbound message
// through the Pipeline.
func (pm *PeerManager) Add(p *Peer) {
	pm.mu.Lock()
	pm.peers[p] = true
	pm.mu.Unlock()

	p.OnDisconnect = pm.remove
	p.Start(func(peer *Peer, msg wire.Message) {
		pm.Pipeline.Dispatch(peer, msg)
		pm.mu.Lock()
		pm.pendingBatch = true
		pm.mu.Unlock()
		pm.reply(peer)
	})
}

func (pm *PeerManager) remove(p *Peer) {
	pm.mu.Lock()
	delete(pm.peers, p)
	pm.mu.Unlock()
}

// Broadcast enqueues an inv for hash of the given type on every connected
// peer's inv queue, to be flushed by the cadence loop.
func (pm *PeerManager) Broadcast(typ wire.InvType, hash chainhash.Hash) {
	iv := wire.NewInvVect(typ, &hash)
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for p := range pm.peers {
		p.QueueInv(iv)
	}
}

// BroadcastMessage queues msg directly (bypassing the inv/trickle queues)
// on every connected peer except, optionally, one to avoid echoing a
// message back to the peer it arrived from. Alerts have
// no inventory type of their own and relay this way.
func (pm *PeerManager) BroadcastMessage(msg wire.Message, except *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for p := range pm.peers {
		if p == except {
			continue
		}
		p.QueueMessage(msg)
	}
}

// reply drains p's own getdata queue immediately, honoring the
// "reply on the originating peer" step of the cadence without waiting for
// the next tick.
func (pm *PeerManager) reply(p *Peer) {
	for _, iv := range p.drainGetData(0) {
		getData := &wire.MsgGetData{InvList: []*wire.InvVect{iv}}
		p.QueueMessage(getData)
	}
}

// Run starts the trickle/broadcast cadence loop; it blocks until Stop is
// called, so callers run it on its own goroutine.
func (pm *PeerManager) Run() {
	ticker := time.NewTicker(cadenceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			pm.tick()
		case <-pm.stopCh:
			return
		}
	}
}

// Stop ends the cadence loop started by Run.
func (pm *PeerManager) Stop() {
	close(pm.stopCh)
}

func (pm *PeerManager) tick() {
	pm.mu.Lock()
	if !pm.pendingBatch {
		pm.mu.Unlock()
		return
	}
	pm.pendingBatch = false
	peerList := make([]*Peer, 0, len(pm.peers))
	for p := range pm.peers {
		peerList = append(peerList, p)
	}
	pm.mu.Unlock()

	if len(peerList) > 0 {
		pm.trickle(peerList[pm.rnd.Intn(len(peerList))])
	}
	for _, p := range peerList {
		pm.broadcastTo(p)
	}
}

// trickle flushes one randomly chosen peer's addr and inv queues in full.
func (pm *PeerManager) trickle(p *Peer) {
	if addrs := p.drainAddr(); len(addrs) > 0 {
		msg := &wire.MsgAddr{}
		for _, na := range addrs {
			if err := msg.AddAddress(na); err != nil {
				break
			}
		}
		p.QueueMessage(msg)
	}
	if invs := p.drainInv(func(*wire.InvVect) bool { return false }); len(invs) > 0 {
		pm.flushInv(p, invs)
	}
}

// broadcastTo flushes p's inv queue, holding back a deterministic fraction
// of transaction invs to the next tick to slow transaction-origin
// fingerprinting.
func (pm *PeerManager) broadcastTo(p *Peer) {
	invs := p.drainInv(func(iv *wire.InvVect) bool {
		if iv.Type != wire.InvTypeTx {
			return false
		}
		return pm.delayThisTick(iv)
	})
	if len(invs) > 0 {
		pm.flushInv(p, invs)
	}
}

// delayThisTick reports whether iv's tx inv should be held back this tick:
// deterministic by hash XOR salt, selecting trickleInvDelayNumerator/
// trickleInvDelayDenominator of the space.
func (pm *PeerManager) delayThisTick(iv *wire.InvVect) bool {
	var folded uint64
	for i := 0; i < chainhash.HashSize; i += 8 {
		end := i + 8
		if end > chainhash.HashSize {
			end = chainhash.HashSize
		}
		var chunk uint64
		for _, b := range iv.Hash[i:end] {
			chunk = chunk<<8 | uint64(b)
		}
		folded ^= chunk
	}
	folded ^= pm.salt
	return folded%trickleInvDelayDenominator < trickleInvDelayNumerator
}

func (pm *PeerManager) flushInv(p *Peer, invs []*wire.InvVect) {
	msg := &wire.MsgInv{}
	for _, iv := range invs {
		if err := msg.AddInvVect(iv); err != nil {
			p.QueueMessage(msg)
			msg = &wire.MsgInv{}
			_ = msg.AddInvVect(iv)
		}
	}
	if len(msg.InvList) > 0 {
		p.QueueMessage(msg)
	}
}
