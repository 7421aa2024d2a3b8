// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"context"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/chainparams"
	"github.com/libcoin/libcoin-sub001/logs"
	"github.com/libcoin/libcoin-sub001/wire"
	"golang.org/x/sys/unix"
)

// listenConfig sets SO_REUSEADDR on the acceptor socket before bind, so
// a restarted node can rebind its listen address while a prior
// connection is still draining through TIME_WAIT.
var listenConfig = net.ListenConfig{
	Control: func(_, _ string, c syscall.RawConn) error {
		var sockErr error
		if err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		}); err != nil {
			return err
		}
		return sockErr
	},
}

var nodeLog = logs.Get(logs.SubsystemTags.NODE)

// outboundDialInterval is how often the outbound connector tries to top
// up its connection count when below MaxOutboundPeers.
const outboundDialInterval = 5 * time.Second

// Config bundles every collaborator Node needs to own an io-service-style
// event loop over P2P connections.
type Config struct {
	Params     *chainparams.Params
	ListenAddr string // empty disables the acceptor (outbound-only node)

	Chain interface {
		Chain
		TxChain
	}

	UserAgent  string
	Services   uint64
	Nonce      uint64
	BestHeight func() int32

	// AlertPublicKey verifies operator alerts; nil
	// disables alert verification (every alert is then rejected as
	// unverifiable).
	AlertPublicKey *btcec.PublicKey

	// OnAlert is the operator-notify hook for verified alerts.
	OnAlert func(*wire.AlertDetails)

	Dialer func(network, address string) (net.Conn, error)
}

// Node owns the acceptor, outbound connector, and endpoint pool, and wires
// the filter pipeline to a BlockChain.
type Node struct {
	cfg Config

	Pool     *EndpointPool
	Manager  *PeerManager
	Pipeline *Pipeline

	versionFilter *VersionFilter

	listener net.Listener
	stopCh   chan struct{}
}

// NewNode constructs a Node from cfg, assembling the required filter order.
func NewNode(cfg Config) *Node {
	if cfg.Dialer == nil {
		cfg.Dialer = net.Dial
	}
	if cfg.BestHeight == nil {
		cfg.BestHeight = func() int32 { return 0 }
	}

	pool := NewEndpointPool()
	n := &Node{cfg: cfg, Pool: pool, stopCh: make(chan struct{})}

	announce := func(hash chainhash.Hash) {
		n.Manager.Broadcast(wire.InvTypeBlock, hash)
	}
	announceTx := func(hash chainhash.Hash) {
		n.Manager.Broadcast(wire.InvTypeTx, hash)
	}
	relayAlert := func(msg *wire.MsgAlert) {
		n.Manager.BroadcastMessage(msg, nil)
	}

	versionFilter := NewVersionFilter(cfg.Nonce, int32(wireProtocolVersion), cfg.Services, cfg.UserAgent, cfg.BestHeight)
	n.versionFilter = versionFilter

	txFilter := NewTransactionFilter(cfg.Chain, announceTx)
	txFilter.OwnTransactions = cfg.Chain.Mempool
	txFilter.StartRebroadcast()

	n.Pipeline = NewPipeline(
		versionFilter,
		NewEndpointFilter(pool),
		NewBlockFilter(cfg.Chain, announce),
		NewShareFilter(cfg.Chain, announce),
		txFilter,
		NewAlertFilter(cfg.AlertPublicKey, cfg.OnAlert, relayAlert),
	)
	n.Manager = NewPeerManager(n.Pipeline)

	for _, host := range cfg.Params.SeedHosts {
		if ips, err := net.LookupIP(host); err == nil {
			for _, ip := range ips {
				pool.AddAddress(&wire.NetAddress{IP: ip, Port: defaultPortFor(cfg.Params)})
			}
		}
	}
	return n
}

// wireProtocolVersion is the version this node announces in its own
// handshake. At BIP0031Version pings carry no nonce; the node still
// answers every ping with a pong.
const wireProtocolVersion = wire.BIP0031Version

func defaultPortFor(p *chainparams.Params) uint16 {
	port, err := strconv.Atoi(p.DefaultPort)
	if err != nil {
		return 0
	}
	return uint16(port)
}

// Start begins accepting inbound connections (if ListenAddr is set),
// dialing outbound peers, and running the send cadence. It returns once
// the listener (if any) is bound; connection handling continues on
// background goroutines until Stop is called.
func (n *Node) Start() error {
	if n.cfg.ListenAddr != "" {
		l, err := listenConfig.Listen(context.Background(), "tcp", n.cfg.ListenAddr)
		if err != nil {
			return err
		}
		n.listener = l
		go n.acceptLoop()
	}
	go n.outboundLoop()
	go n.Manager.Run()
	return nil
}

// Stop closes the acceptor and every connected peer, and ends the cadence
// loop.
func (n *Node) Stop() {
	close(n.stopCh)
	if n.listener != nil {
		_ = n.listener.Close()
	}
	n.Manager.Stop()
	for p := range n.Manager.peers {
		p.Disconnect()
	}
}

func (n *Node) acceptLoop() {
	for {
		conn, err := n.listener.Accept()
		if err != nil {
			select {
			case <-n.stopCh:
				return
			default:
				nodeLog.Warnf("accept error: %v", err)
				continue
			}
		}
		if n.Manager.InboundCount() >= MaxInboundPeers {
			_ = conn.Close()
			continue
		}
		n.addPeer(conn, true)
	}
}

func (n *Node) outboundLoop() {
	ticker := time.NewTicker(outboundDialInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n.fillOutbound()
		case <-n.stopCh:
			return
		}
	}
}

func (n *Node) fillOutbound() {
	for n.Manager.OutboundCount() < MaxOutboundPeers {
		na, ok := n.Pool.AddressCandidate(n.Manager.Connected())
		if !ok {
			return
		}
		addr := net.JoinHostPort(na.IP.String(), strconv.Itoa(int(na.Port)))
		conn, err := n.cfg.Dialer("tcp", addr)
		if err != nil {
			n.Pool.MarkFailed(addr)
			continue
		}
		n.addPeer(conn, false)
	}
}

func (n *Node) addPeer(conn net.Conn, inbound bool) {
	p := NewPeer(conn, inbound, n.cfg.Params.Net)
	n.Manager.Add(p)
	if !inbound {
		n.versionFilter.SendVersion(p)
	}
}

// InjectDiscoveredEndpoint feeds an address sampled by an external
// discovery collaborator. The node treats it exactly like any
// other low-trust candidate, subject to normal probation.
func (n *Node) InjectDiscoveredEndpoint(ip net.IP, port uint16) {
	n.Pool.AddLowTrustAddress(&wire.NetAddress{IP: ip, Port: port})
}
