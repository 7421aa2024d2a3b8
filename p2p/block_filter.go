// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"sync"

	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
	"github.com/libcoin/libcoin-sub001/wire"
)

// Chain is the subset of *blockchain.BlockChain the block/share filters
// need. It is expressed as an interface so p2p never imports blockchain
// directly, keeping the dependency one-directional (node.go wires a
// concrete *blockchain.BlockChain into both filters).
type Chain interface {
	Append(blk *wire.MsgBlock) error
	HaveBlock(hash chainhash.Hash) bool
	GetBlock(hash chainhash.Hash) (*wire.MsgBlock, error)
	GetBlockHeader(hash chainhash.Hash) (*wire.BlockHeader, error)
	GetBestLocator() wire.BlockLocator
	GetDistanceBack(locator wire.BlockLocator) int64
	HashesAfter(locator wire.BlockLocator, hashStop chainhash.Hash, max int) []chainhash.Hash
}

// maxGetBlocksResponseBytes caps a single getblocks/inv response.
const maxGetBlocksResponseBytes = 500 * 1024

// BlockFilter is the third pipeline stage: "block", "getblocks",
// "getheaders", "getdata", and "inv" for main-chain blocks. It holds an
// orphan-block area keyed by the missing parent's hash and, on a
// successful attach, walks that map to process any now-connectable
// descendants.
type BlockFilter struct {
	Chain Chain

	// AnnounceFunc broadcasts a newly attached block's hash to every
	// other peer; wired by the Node to the PeerManager's inv queues.
	AnnounceFunc func(hash chainhash.Hash)

	mu      sync.Mutex
	orphans map[chainhash.Hash]*wire.MsgBlock   // orphan hash -> orphan block
	byPrev  map[chainhash.Hash][]chainhash.Hash // missing-parent hash -> orphan hashes waiting on it
}

// NewBlockFilter constructs a BlockFilter over chain.
func NewBlockFilter(chain Chain, announce func(hash chainhash.Hash)) *BlockFilter {
	return &BlockFilter{
		Chain:        chain,
		AnnounceFunc: announce,
		orphans:      make(map[chainhash.Hash]*wire.MsgBlock),
		byPrev:       make(map[chainhash.Hash][]chainhash.Hash),
	}
}

// Name identifies the filter for logging.
func (f *BlockFilter) Name() string { return "BlockFilter" }

// HandleMessage implements Filter.
func (f *BlockFilter) HandleMessage(p *Peer, msg wire.Message) (bool, error) {
	switch m := msg.(type) {
	case *wire.MsgBlock:
		return true, f.handleBlock(p, m)
	case *wire.MsgGetBlocks:
		return true, f.handleGetBlocks(p, m)
	case *wire.MsgGetHeaders:
		return true, f.handleGetHeaders(p, m)
	case *wire.MsgGetData:
		return f.handleGetData(p, m)
	case *wire.MsgInv:
		return f.handleInv(p, m)
	}
	return false, nil
}

func (f *BlockFilter) handleBlock(p *Peer, blk *wire.MsgBlock) error {
	hash := blk.BlockHash()
	if f.Chain.HaveBlock(hash) {
		return nil
	}
	err := f.Chain.Append(blk)
	if err == nil {
		if f.AnnounceFunc != nil {
			f.AnnounceFunc(hash)
		}
		f.processOrphansOf(hash)
		return nil
	}
	if !libcoinerr.Is(err, libcoinerr.OrphanBlock) {
		return err
	}

	// Hold the orphan and request its missing ancestry from the peer
	// that sent it.
	f.mu.Lock()
	f.orphans[hash] = blk
	missingParent := blk.Header.PrevBlock
	f.byPrev[missingParent] = append(f.byPrev[missingParent], hash)
	f.mu.Unlock()

	p.QueueMessage(&wire.MsgGetBlocks{
		ProtocolVersion:    p.Pver,
		BlockLocatorHashes: f.Chain.GetBestLocator(),
		HashStop:           hash,
	})
	return nil
}

// processOrphansOf re-attempts every orphan waiting on parentHash, which
// recursively unblocks their own descendants in turn.
func (f *BlockFilter) processOrphansOf(parentHash chainhash.Hash) {
	f.mu.Lock()
	waiting := f.byPrev[parentHash]
	delete(f.byPrev, parentHash)
	f.mu.Unlock()

	for _, h := range waiting {
		f.mu.Lock()
		blk, ok := f.orphans[h]
		if ok {
			delete(f.orphans, h)
		}
		f.mu.Unlock()
		if !ok {
			continue
		}
		if err := f.Chain.Append(blk); err == nil {
			if f.AnnounceFunc != nil {
				f.AnnounceFunc(h)
			}
			f.processOrphansOf(h)
		}
	}
}

func (f *BlockFilter) handleGetBlocks(p *Peer, m *wire.MsgGetBlocks) error {
	// Walk forward from the locator match toward the tip, announcing up
	// to the inv-per-message cap or maxGetBlocksResponseBytes, whichever
	// binds first.
	max := wire.MaxInvPerMsg
	if byBytes := maxGetBlocksResponseBytes / (chainhash.HashSize + 4); byBytes < max {
		max = byBytes
	}
	hashes := f.Chain.HashesAfter(m.BlockLocatorHashes, m.HashStop, max)
	inv := &wire.MsgInv{}
	for i := range hashes {
		if err := inv.AddInvVect(wire.NewInvVect(wire.InvTypeBlock, &hashes[i])); err != nil {
			break
		}
	}
	if len(inv.InvList) > 0 {
		p.QueueMessage(inv)
	}
	return nil
}

func (f *BlockFilter) handleGetHeaders(p *Peer, m *wire.MsgGetHeaders) error {
	hashes := f.Chain.HashesAfter(m.BlockLocatorHashes, m.HashStop, wire.MaxHeadersPerMsg)
	headers := &wire.MsgHeaders{}
	for i := range hashes {
		hdr, err := f.Chain.GetBlockHeader(hashes[i])
		if err != nil {
			continue
		}
		if err := headers.AddBlockHeader(hdr); err != nil {
			break
		}
	}
	p.QueueMessage(headers)
	return nil
}

// handleGetData serves the block requests in m. It consumes the message
// only when every requested vector was a block class; a mixed request is
// partially answered here and passed down the pipeline for the share and
// transaction filters to finish.
func (f *BlockFilter) handleGetData(p *Peer, m *wire.MsgGetData) (bool, error) {
	notFound := &wire.MsgNotFound{}
	others := false
	for _, iv := range m.InvList {
		switch iv.Type {
		case wire.InvTypeBlock, wire.InvTypeFilteredBlock:
			blk, err := f.Chain.GetBlock(iv.Hash)
			if err != nil {
				notFound.InvList = append(notFound.InvList, iv)
				continue
			}
			p.QueueMessage(blk)
		default:
			others = true
		}
	}
	if len(notFound.InvList) > 0 {
		p.QueueMessage(notFound)
	}
	return !others, nil
}

// handleInv requests the announced blocks this node is missing. As with
// getdata, a message also carrying share or transaction inventory is not
// consumed, so the later stages see their classes too.
func (f *BlockFilter) handleInv(p *Peer, m *wire.MsgInv) (bool, error) {
	getData := &wire.MsgGetData{}
	others := false
	for _, iv := range m.InvList {
		if iv.Type != wire.InvTypeBlock {
			others = true
			continue
		}
		if f.Chain.HaveBlock(iv.Hash) {
			continue
		}
		if err := getData.AddInvVect(iv); err != nil {
			break
		}
	}
	if len(getData.InvList) > 0 {
		p.QueueMessage(getData)
	}
	return !others, nil
}
