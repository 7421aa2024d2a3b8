// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"github.com/libcoin/libcoin-sub001/libcoinerr"
	"github.com/libcoin/libcoin-sub001/logs"
	"github.com/libcoin/libcoin-sub001/wire"
)

var pipelineLog = logs.Get(logs.SubsystemTags.P2P)

// Filter is one stage of the ordered filter chain. HandleMessage
// returns consumed=true when it handled msg, terminating dispatch for that
// message; an error aborts this filter's handling of msg only — dispatch
// continues with the next inbound message.
type Filter interface {
	Name() string
	HandleMessage(p *Peer, msg wire.Message) (consumed bool, err error)
}

// Pipeline dispatches one message at a time through a fixed, ordered list
// of filters.
type Pipeline struct {
	filters []Filter
}

// NewPipeline builds a Pipeline with the required filter order: Version,
// Endpoint, Block, Share, Transaction, Alert.
func NewPipeline(filters ...Filter) *Pipeline {
	return &Pipeline{filters: filters}
}

// Dispatch runs msg through the pipeline. A peer-attributable error is
// logged and, when it is not Recoverable, queues the peer for disconnect;
// the pipeline never aborts the node over a single bad message.
func (pl *Pipeline) Dispatch(p *Peer, msg wire.Message) {
	for _, f := range pl.filters {
		consumed, err := f.HandleMessage(p, msg)
		if err != nil {
			pipelineLog.Warnf("%s: peer %s: %v", f.Name(), p.Addr, err)
			if !libcoinerr.Recoverable(err) {
				p.Disconnect()
			}
			return
		}
		if consumed {
			return
		}
	}
	pipelineLog.Warnf("peer %s: no filter consumed command %s", p.Addr, msg.Command())
}
