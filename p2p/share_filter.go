// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/wire"
)

// ShareFilter is the fourth pipeline stage: the same "inv"/"getdata"
// handling as BlockFilter, narrowed to the InvTypeShare
// inventory class. The blockchain engine itself decides whether a v3
// block qualifies as a share and accepts it into
// the same index BlockFilter already feeds, so ShareFilter's job is
// narrower than BlockFilter's: it only needs to request and serve
// share-tagged inventory that BlockFilter, matching only InvTypeBlock,
// would otherwise ignore. It does not announce shares itself. The share payout table belongs to mining
// tooling outside this engine (see DESIGN.md).
type ShareFilter struct {
	Chain        Chain
	AnnounceFunc func(hash chainhash.Hash)
}

// NewShareFilter constructs a ShareFilter over chain.
func NewShareFilter(chain Chain, announce func(hash chainhash.Hash)) *ShareFilter {
	return &ShareFilter{Chain: chain, AnnounceFunc: announce}
}

// Name identifies the filter for logging.
func (f *ShareFilter) Name() string { return "ShareFilter" }

// HandleMessage implements Filter.
func (f *ShareFilter) HandleMessage(p *Peer, msg wire.Message) (bool, error) {
	switch m := msg.(type) {
	case *wire.MsgInv:
		return f.handleInv(p, m)
	case *wire.MsgGetData:
		return f.handleGetData(p, m)
	}
	return false, nil
}

func (f *ShareFilter) handleInv(p *Peer, m *wire.MsgInv) (bool, error) {
	getData := &wire.MsgGetData{}
	handled := false
	others := false
	for _, iv := range m.InvList {
		if iv.Type != wire.InvTypeShare {
			if iv.Type == wire.InvTypeTx {
				others = true
			}
			continue
		}
		handled = true
		if !f.Chain.HaveBlock(iv.Hash) {
			getData.InvList = append(getData.InvList, iv)
		}
	}
	if !handled {
		return false, nil
	}
	if len(getData.InvList) > 0 {
		p.QueueMessage(getData)
	}
	// A message also carrying transaction inventory continues down the
	// pipeline so TransactionFilter sees its class.
	return !others, nil
}

func (f *ShareFilter) handleGetData(p *Peer, m *wire.MsgGetData) (bool, error) {
	handled := false
	others := false
	for _, iv := range m.InvList {
		if iv.Type != wire.InvTypeShare {
			if iv.Type == wire.InvTypeTx {
				others = true
			}
			continue
		}
		handled = true
		blk, err := f.Chain.GetBlock(iv.Hash)
		if err != nil {
			continue
		}
		p.QueueMessage(blk)
	}
	if !handled {
		return false, nil
	}
	return !others, nil
}
