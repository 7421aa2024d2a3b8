// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import "github.com/libcoin/libcoin-sub001/wire"

// EndpointFilter is the second pipeline stage: it ingests "addr",
// answers "getaddr" (capped at 1000 entries per message), and feeds
// everything it sees into the shared EndpointPool.
type EndpointFilter struct {
	Pool *EndpointPool
}

// NewEndpointFilter constructs an EndpointFilter over pool.
func NewEndpointFilter(pool *EndpointPool) *EndpointFilter {
	return &EndpointFilter{Pool: pool}
}

// Name identifies the filter for logging.
func (f *EndpointFilter) Name() string { return "EndpointFilter" }

// HandleMessage implements Filter.
func (f *EndpointFilter) HandleMessage(p *Peer, msg wire.Message) (bool, error) {
	switch m := msg.(type) {
	case *wire.MsgAddr:
		for _, na := range m.AddrList {
			f.Pool.AddAddress(na)
		}
		return true, nil
	case *wire.MsgGetAddr:
		addrs := f.Pool.Sample(wire.MaxAddrPerMsg)
		for _, na := range addrs {
			p.QueueAddr(na)
		}
		return true, nil
	}
	return false, nil
}
