// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"time"

	"github.com/libcoin/libcoin-sub001/libcoinerr"
	"github.com/libcoin/libcoin-sub001/wire"
)

// MinAcceptedProtocolVersion is the floor this node will negotiate down to;
// a peer announcing anything lower is rejected outright.
const MinAcceptedProtocolVersion = 209

// VersionFilter is the first filter in the pipeline: it negotiates
// the handshake, requires "version" before anything else, rejects a nonce
// equal to our own (a self-connection), and blocks all further traffic
// until "verack" completes the handshake.
type VersionFilter struct {
	Nonce           uint64
	ProtocolVersion int32
	Services        uint64
	UserAgent       string
	BestHeight      func() int32
	Now             func() time.Time
}

// NewVersionFilter constructs a VersionFilter with a random self-nonce.
func NewVersionFilter(nonce uint64, pver int32, services uint64, userAgent string, bestHeight func() int32) *VersionFilter {
	return &VersionFilter{
		Nonce: nonce, ProtocolVersion: pver, Services: services,
		UserAgent: userAgent, BestHeight: bestHeight, Now: time.Now,
	}
}

// Name identifies the filter for logging.
func (f *VersionFilter) Name() string { return "VersionFilter" }

// HandleMessage implements Filter.
func (f *VersionFilter) HandleMessage(p *Peer, msg wire.Message) (bool, error) {
	if p.State() != StateReady {
		switch m := msg.(type) {
		case *wire.MsgVersion:
			return true, f.handleVersion(p, m)
		case *wire.MsgVerAck:
			return true, f.handleVerAck(p)
		default:
			return true, libcoinerr.New(libcoinerr.ProtocolViolation,
				"command %s received before handshake complete", msg.Command())
		}
	}

	switch m := msg.(type) {
	case *wire.MsgPing:
		p.QueueMessage(&wire.MsgPong{Nonce: m.Nonce})
		return true, nil
	case *wire.MsgPong:
		return true, nil
	case *wire.MsgVersion, *wire.MsgVerAck:
		return true, libcoinerr.New(libcoinerr.ProtocolViolation, "duplicate handshake message %s", msg.Command())
	}
	return false, nil
}

func (f *VersionFilter) handleVersion(p *Peer, m *wire.MsgVersion) error {
	if m.Nonce == f.Nonce {
		return libcoinerr.New(libcoinerr.ProtocolViolation, "peer announced our own nonce: self-connection")
	}
	if uint32(m.ProtocolVersion) < MinAcceptedProtocolVersion {
		return libcoinerr.New(libcoinerr.ProtocolViolation,
			"peer protocol version %d below minimum %d", m.ProtocolVersion, MinAcceptedProtocolVersion)
	}

	p.ProtocolVersion = m.ProtocolVersion
	p.Services = m.Services
	p.UserAgent = m.UserAgent
	p.LastBlock = m.LastBlock
	p.Nonce = m.Nonce
	if uint32(m.ProtocolVersion) < uint32(p.Pver) {
		p.Pver = uint32(m.ProtocolVersion)
	}

	if !p.Inbound {
		// We initiated the connection and already sent our version;
		// an inbound connection replies with its own version first.
	} else {
		f.sendVersion(p)
	}
	p.QueueMessage(&wire.MsgVerAck{})
	return nil
}

func (f *VersionFilter) handleVerAck(p *Peer) error {
	if p.ProtocolVersion == 0 {
		return libcoinerr.New(libcoinerr.ProtocolViolation, "verack received before version")
	}
	p.VerAckReceived = true
	p.setState(StateReady)
	log.Infof("peer %s: handshake complete (pver=%d, agent=%q, height=%d)",
		p.Addr, p.ProtocolVersion, p.UserAgent, p.LastBlock)
	return nil
}

// SendVersion writes the initial version message on a freshly connected
// outbound peer, starting the handshake.
func (f *VersionFilter) SendVersion(p *Peer) {
	f.sendVersion(p)
}

func (f *VersionFilter) sendVersion(p *Peer) {
	now := f.Now()
	p.QueueMessage(&wire.MsgVersion{
		ProtocolVersion: f.ProtocolVersion,
		Services:        f.Services,
		Timestamp:       now.Unix(),
		AddrYou:         wire.NetAddress{Timestamp: uint32(now.Unix())},
		AddrMe:          wire.NetAddress{Timestamp: uint32(now.Unix())},
		Nonce:           f.Nonce,
		UserAgent:       f.UserAgent,
		LastBlock:       f.BestHeight(),
	})
}
