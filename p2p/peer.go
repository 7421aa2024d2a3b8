// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package p2p implements the message filter pipeline and the peer/peer-manager
// connection model: framed messages are parsed off a socket and dispatched
// through an ordered filter chain, each connection carries a state machine
// with suicide/keep-alive timers, and outbound traffic follows the
// reply/trickle/broadcast cadence.
package p2p

import (
	"bufio"
	"net"
	"sync"
	"time"

	"github.com/libcoin/libcoin-sub001/logs"
	"github.com/libcoin/libcoin-sub001/wire"
)

var log = logs.Get(logs.SubsystemTags.PEER)

// State is a connection's position in the peer lifecycle.
type State int

// Peer lifecycle states, in order.
const (
	StateConnecting State = iota
	StateHandshaking
	StateReady
	StateDisconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// Handshake timeout and post-handshake keep-alive windows: a suicide
// timer resets on any inbound activity, firing
// after 60s unless the handshake completes, 90 minutes thereafter; a
// separate 30-minute keep-alive timer sends a ping when the connection has
// otherwise been idle.
const (
	HandshakeTimeout = 60 * time.Second
	IdleTimeout      = 90 * time.Minute
	KeepAliveTimeout = 30 * time.Minute
)

// sendQueueDepth bounds how many messages may be queued for write; once it
// is full QueueMessage drops further messages, so a slow peer backs up its
// own queue rather than ever blocking the goroutine that queues to it.
const sendQueueDepth = 100

// Peer is one TCP connection and the mutable state the filter pipeline
// hangs off it. A Peer is owned by the PeerManager that created it; the
// filter callbacks that receive a *Peer run on that peer's own read
// goroutine, one message at a time, so the
// fields filters read and write are not separately locked — only the
// fields the read/write goroutines touch (state, queues) take peerMu.
type Peer struct {
	conn    net.Conn
	Addr    string
	Inbound bool
	Magic   wire.BitcoinNet
	Pver    uint32 // negotiated protocol version floor until handshake completes

	peerMu sync.Mutex
	state  State

	// Negotiated during the handshake.
	ProtocolVersion int32
	Services        uint64
	UserAgent       string
	LastBlock       int32
	Nonce           uint64
	VerAckReceived  bool

	// Per-connection send queues, flushed by the reply/trickle/broadcast
	// cadence.
	getDataQueue []*wire.InvVect
	invQueue     []*wire.InvVect
	addrQueue    []*wire.NetAddress

	sendCh chan wire.Message
	quit   chan struct{}
	closer sync.Once

	suicideTimer   *time.Timer
	keepAliveTimer *time.Timer

	ConnectedAt time.Time

	// OnDisconnect is invoked exactly once, from whichever goroutine
	// first observes the connection closing (read error, write error,
	// or a fired suicide timer), so the PeerManager can drop its
	// reference and recycle the endpoint.
	OnDisconnect func(p *Peer)
}

// NewPeer wraps conn as a Peer in the StateConnecting state. inbound
// distinguishes an accepted connection from one this node initiated.
func NewPeer(conn net.Conn, inbound bool, magic wire.BitcoinNet) *Peer {
	p := &Peer{
		conn:        conn,
		Addr:        conn.RemoteAddr().String(),
		Inbound:     inbound,
		Magic:       magic,
		Pver:        wire.BIP0031Version,
		state:       StateConnecting,
		sendCh:      make(chan wire.Message, sendQueueDepth),
		quit:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}
	return p
}

// State returns the peer's current lifecycle state.
func (p *Peer) State() State {
	p.peerMu.Lock()
	defer p.peerMu.Unlock()
	return p.state
}

// setState transitions the peer's state.
func (p *Peer) setState(s State) {
	p.peerMu.Lock()
	p.state = s
	p.peerMu.Unlock()
}

// Start launches the read and write pumps. Each inbound message is handed
// to dispatch on the read goroutine, so one peer's messages are dispatched
// in arrival order; different peers dispatch concurrently.
func (p *Peer) Start(dispatch func(p *Peer, msg wire.Message)) {
	p.setState(StateHandshaking)
	p.resetSuicideTimer()
	p.resetKeepAliveTimer()
	go p.readLoop(dispatch)
	go p.writeLoop()
}

func (p *Peer) readLoop(dispatch func(p *Peer, msg wire.Message)) {
	r := bufio.NewReaderSize(p.conn, 64*1024)
	for {
		msg, _, err := wire.ReadMessage(r, uint32(p.Pver), p.Magic)
		if err != nil {
			log.Debugf("peer %s: read error: %v", p.Addr, err)
			p.Disconnect()
			return
		}
		p.resetSuicideTimer()
		dispatch(p, msg)
	}
}

func (p *Peer) writeLoop() {
	for {
		select {
		case msg := <-p.sendCh:
			if err := wire.WriteMessage(p.conn, msg, uint32(p.Pver), p.Magic); err != nil {
				log.Debugf("peer %s: write error: %v", p.Addr, err)
				p.Disconnect()
				return
			}
		case <-p.quit:
			return
		}
	}
}

// QueueMessage enqueues msg for asynchronous write; a full queue drops the
// message rather than blocking the caller, matching the cadence model
// where reply/trickle/broadcast never wait on a single slow peer.
func (p *Peer) QueueMessage(msg wire.Message) {
	select {
	case p.sendCh <- msg:
	default:
		log.Warnf("peer %s: send queue full, dropping %s", p.Addr, msg.Command())
	}
}

// QueueGetData appends an inventory vector to the outbound getdata queue,
// drained on this peer's own "reply" turn.
func (p *Peer) QueueGetData(iv *wire.InvVect) {
	p.peerMu.Lock()
	p.getDataQueue = append(p.getDataQueue, iv)
	p.peerMu.Unlock()
}

// QueueInv appends an inventory vector to the outbound inv queue, flushed
// on a trickle or broadcast turn.
func (p *Peer) QueueInv(iv *wire.InvVect) {
	p.peerMu.Lock()
	p.invQueue = append(p.invQueue, iv)
	p.peerMu.Unlock()
}

// QueueAddr appends a peer address to the outbound addr queue, flushed on
// a trickle turn.
func (p *Peer) QueueAddr(na *wire.NetAddress) {
	p.peerMu.Lock()
	p.addrQueue = append(p.addrQueue, na)
	p.peerMu.Unlock()
}

// drainGetData removes and returns up to max queued getdata vectors.
func (p *Peer) drainGetData(max int) []*wire.InvVect {
	p.peerMu.Lock()
	defer p.peerMu.Unlock()
	if len(p.getDataQueue) == 0 {
		return nil
	}
	if max <= 0 || max > len(p.getDataQueue) {
		max = len(p.getDataQueue)
	}
	out := p.getDataQueue[:max]
	p.getDataQueue = p.getDataQueue[max:]
	return out
}

// drainInv removes and returns every queued inv vector whose predicate
// holds, leaving the rest queued.
func (p *Peer) drainInv(keep func(iv *wire.InvVect) bool) []*wire.InvVect {
	p.peerMu.Lock()
	defer p.peerMu.Unlock()
	var flushed, kept []*wire.InvVect
	for _, iv := range p.invQueue {
		if keep(iv) {
			kept = append(kept, iv)
		} else {
			flushed = append(flushed, iv)
		}
	}
	p.invQueue = kept
	return flushed
}

// drainAddr removes and returns every queued address.
func (p *Peer) drainAddr() []*wire.NetAddress {
	p.peerMu.Lock()
	defer p.peerMu.Unlock()
	out := p.addrQueue
	p.addrQueue = nil
	return out
}

// resetSuicideTimer restarts the suicide timer with the window matching
// the peer's current handshake state.
func (p *Peer) resetSuicideTimer() {
	window := HandshakeTimeout
	if p.State() == StateReady {
		window = IdleTimeout
	}
	if p.suicideTimer == nil {
		p.suicideTimer = time.AfterFunc(window, p.Disconnect)
		return
	}
	p.suicideTimer.Reset(window)
}

// resetKeepAliveTimer restarts the keep-alive timer; firing sends a ping
// on an otherwise idle connection.
func (p *Peer) resetKeepAliveTimer() {
	if p.keepAliveTimer == nil {
		p.keepAliveTimer = time.AfterFunc(KeepAliveTimeout, p.sendKeepAlive)
		return
	}
	p.keepAliveTimer.Reset(KeepAliveTimeout)
}

func (p *Peer) sendKeepAlive() {
	if p.State() == StateDisconnecting {
		return
	}
	p.QueueMessage(&wire.MsgPing{Nonce: uint64(time.Now().UnixNano())})
	p.resetKeepAliveTimer()
}

// Disconnect transitions the peer to StateDisconnecting, closes the socket,
// and invokes OnDisconnect exactly once.
func (p *Peer) Disconnect() {
	p.closer.Do(func() {
		p.setState(StateDisconnecting)
		close(p.quit)
		_ = p.conn.Close()
		if p.suicideTimer != nil {
			p.suicideTimer.Stop()
		}
		if p.keepAliveTimer != nil {
			p.keepAliveTimer.Stop()
		}
		if p.OnDisconnect != nil {
			p.OnDisconnect(p)
		}
	})
}
