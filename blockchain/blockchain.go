// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain implements the BlockChain engine: the only two
// mutation paths into consensus state (append and claim), backed by the
// SparseTree block index, the authenticated UTXO trie, the SQL persistence
// layer, and the claims pool. Every other package in the module is a
// collaborator this one wires together; nothing outside it is allowed to
// touch storage, the trie, or the pool directly.
package blockchain

import (
	"bytes"
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/libcoin/libcoin-sub001/blockindex"
	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/chainparams"
	"github.com/libcoin/libcoin-sub001/claimpool"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
	"github.com/libcoin/libcoin-sub001/logs"
	"github.com/libcoin/libcoin-sub001/script"
	"github.com/libcoin/libcoin-sub001/store"
	"github.com/libcoin/libcoin-sub001/utxotrie"
	"github.com/libcoin/libcoin-sub001/wire"
)

var log = logs.Get(logs.SubsystemTags.BCHN)

// maxInvalidTreeLead is the operator-tolerance margin: once the
// best-work invalid branch outgrows the best valid chain by more than
// this many blocks, the node considers itself on the economic minority
// and exits.
const maxInvalidTreeLead = 3

// Config bundles every collaborator and policy constant BlockChain needs,
// taken at construction rather than read from package globals.
type Config struct {
	Params *chainparams.Params
	Store  *store.Store

	// ValidationDepth selects the UTXO index strategy. Zero keeps the
	// authoritative coin set in storage behind its UNIQUE(hash, index)
	// index; any other value makes the Merkle trie authoritative, with
	// leaf/branch hashing enabled once the chain has grown past this
	// depth (bulk sync below it runs unauthenticated).
	ValidationDepth int64

	// PurgeDepth bounds how far behind the tip Spendings/Confirmations
	// rows are kept; must never be shallower than the deepest
	// allowable reorganisation.
	PurgeDepth int64

	// StrictP2SH gates the BIP-16 strict evaluation mode in script.Verify.
	StrictP2SH bool

	// Now returns the current time; tests substitute a fixed clock.
	Now func() time.Time

	// OnFatal is invoked, with the invalid tree's lead over the best
	// chain, when that lead exceeds maxInvalidTreeLead. The
	// default implementation logs and leaves process exit to the
	// caller (cmd/libcoind wires os.Exit).
	OnFatal func(lead int64)
}

// blockElem adapts a stored block header to blockindex.Elem.
type blockElem struct {
	hash   chainhash.Hash
	header wire.BlockHeader
	work   *big.Int
}

func (e *blockElem) Hash() chainhash.Hash { return e.hash }
func (e *blockElem) Prev() chainhash.Hash { return e.header.PrevBlock }
func (e *blockElem) Work() *big.Int       { return e.work }

// maxWorkTarget bounds proof-of-work-to-work conversion: work = 2^256 /
// (target+1), the standard btcsuite/bitcoin-core accumulated-work metric.
var maxWorkTarget = new(big.Int).Lsh(big.NewInt(1), 256)

// workFromBits converts a compact difficulty target into the accumulated
// work a block satisfying it contributes to its chain.
func workFromBits(bits uint32) *big.Int {
	target := chainparams.CompactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}
	denom := new(big.Int).Add(target, bigOne)
	return new(big.Int).Div(maxWorkTarget, denom)
}

var bigOne = big.NewInt(1)

// BlockChain is the consensus engine. Append, Claim, Mempool, HaveBlock,
// HaveTx, GetTransaction, GetBestLocator, HashesAfter, GetDistanceBack and
// GetBlockTemplate serialise on mu; Height, Balance, GetUnspents,
// GetBlock, GetBlockHeader and IsSpent do not take it.
type BlockChain struct {
	cfg Config

	mu       sync.Mutex
	tree     *blockindex.SparseTree
	trie     *utxotrie.Trie
	pool     *claimpool.Pool
	branches map[chainhash.Hash][]byte // side-branch raw blocks, keyed by hash

	bestLocator wire.BlockLocator

	// invalid records every hash ever offered, valid or not, so a
	// descendant of a rejected block is itself rejected cheaply.
	// invalidHeight tracks the deepest rejected descent; when it leads
	// the best chain by more than maxInvalidTreeLead the node is on the
	// economic minority and OnFatal fires.
	invalid       *blockindex.InvalidTree
	invalidHeight int64

	txListeners    []TxListener
	blockListeners []BlockListener
}

// TxListener receives every transaction confirmed by a newly attached
// block, with the height it confirmed at. Wallets subscribe here.
type TxListener func(tx *wire.MsgTx, height int64)

// BlockListener receives every newly attached best-chain block.
type BlockListener func(blk *wire.MsgBlock, height int64)

// AddTxListener registers l for confirmed-transaction fan-out. Listeners
// run on the append path and must not call back into the engine.
func (bc *BlockChain) AddTxListener(l TxListener) {
	bc.txListeners = append(bc.txListeners, l)
}

// AddBlockListener registers l for attached-block fan-out.
func (bc *BlockChain) AddBlockListener(l BlockListener) {
	bc.blockListeners = append(bc.blockListeners, l)
}

// trieAuthoritative reports whether the Merkle trie, rather than storage,
// is the authoritative UTXO set under this configuration.
func (bc *BlockChain) trieAuthoritative() bool {
	return bc.cfg.ValidationDepth != 0
}

// verifyInput runs the configured script verifier for one input, falling
// back to script.Verify with the chain's BIP-16 policy when no override is
// set.
func verifyInput(verifier func(tx *wire.MsgTx, idx int, prevScript []byte) error, tx *wire.MsgTx, idx int, prevScript []byte, strictP2SH bool) error {
	if verifier != nil {
		return verifier(tx, idx, prevScript)
	}
	return script.Verify(tx, idx, prevScript, strictP2SH)
}

// New constructs a BlockChain over cfg's collaborators, loading the
// trunk already recorded in storage (if any) and seeding the genesis
// block when the store is empty.
func New(cfg Config) (*BlockChain, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.OnFatal == nil {
		cfg.OnFatal = func(lead int64) {
			log.Errorf("invalid tree has outgrown the best chain by %d blocks; exiting", lead)
		}
	}
	bc := &BlockChain{
		cfg:      cfg,
		tree:     blockindex.New(),
		trie:     utxotrie.New(),
		branches: make(map[chainhash.Hash][]byte),
		invalid:  blockindex.NewInvalidTree(),
	}
	bc.pool = claimpool.New(bc)
	bc.pool.Verify = func(tx *wire.MsgTx, inputIndex int, prevScript []byte) error {
		return script.Verify(tx, inputIndex, prevScript, cfg.StrictP2SH)
	}
	if cfg.Params.NameSystemAdherent {
		bc.pool.Names = bc.validateNameTx
	}

	ctx := context.Background()
	max, err := cfg.Store.MaxBlockCount(ctx)
	if err != nil {
		return nil, err
	}
	if max < 0 {
		if err := bc.seedGenesis(ctx); err != nil {
			return nil, err
		}
		return bc, nil
	}
	if err := bc.loadTrunk(ctx, max); err != nil {
		return nil, err
	}
	if bc.trieAuthoritative() {
		if err := bc.rebuildTrie(ctx, max); err != nil {
			return nil, err
		}
	}
	return bc, nil
}

// rebuildTrie replays every stored Unspent into the trie, hashing only
// once at the end rather than per insert.
func (bc *BlockChain) rebuildTrie(ctx context.Context, tipCount int64) error {
	bc.trie.SetAuthenticated(false)
	rows, err := bc.cfg.Store.AllUnspents(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		bc.trie.Insert(coinElem{
			key:        utxotrie.NewKey(row.TxHash, row.OutIndex),
			value:      row.Value,
			script:     row.Script,
			blockCount: row.BlockCount,
		})
	}
	bc.trie.SetAuthenticated(tipCount > bc.cfg.ValidationDepth)
	return nil
}

func (bc *BlockChain) seedGenesis(ctx context.Context) error {
	genesis := bc.cfg.Params.GenesisBlock
	tx, err := bc.cfg.Store.Begin(ctx)
	if err != nil {
		return err
	}
	if err := bc.writeHeader(ctx, tx, genesis, 0); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := bc.attachTransactions(ctx, tx, genesis, 0); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	elem := &blockElem{hash: genesis.BlockHash(), header: genesis.Header, work: workFromBits(genesis.Header.Bits)}
	if err := bc.tree.Assign([]blockindex.Elem{elem}); err != nil {
		return err
	}
	bc.refreshBestLocator()
	return nil
}

func (bc *BlockChain) loadTrunk(ctx context.Context, max int64) error {
	elems := make([]blockindex.Elem, 0, max+1)
	for count := int64(0); count <= max; count++ {
		row, err := bc.cfg.Store.GetBlockByCount(ctx, count)
		if err != nil {
			return err
		}
		elems = append(elems, &blockElem{
			hash: row.Hash,
			header: wire.BlockHeader{
				Version: row.Version, PrevBlock: row.PrevHash, MerkleRoot: row.MerkleRoot,
				Timestamp: row.Time, Bits: row.Bits, Nonce: row.Nonce,
			},
			work: workFromBits(row.Bits),
		})
	}
	if err := bc.tree.Assign(elems); err != nil {
		return err
	}
	bc.refreshBestLocator()
	return nil
}

func (bc *BlockChain) refreshBestLocator() {
	_, height, ok := bc.tree.Best()
	if !ok {
		bc.bestLocator = nil
		return
	}
	bc.bestLocator = bc.buildLocator(height)
}

// buildLocator assembles the exponentially-thinning locator for the
// trunk ending at height: offsets 0..9, then doubling step size down to
// genesis.
func (bc *BlockChain) buildLocator(height int64) wire.BlockLocator {
	var locator wire.BlockLocator
	step := int64(1)
	h := height
	for {
		hash := bc.hashAtHeight(h)
		if hash != chainhash.HashZero {
			hh := hash
			locator = append(locator, &hh)
		}
		if h == 0 {
			break
		}
		if len(locator) >= 10 {
			step *= 2
		}
		if h < step {
			h = 0
		} else {
			h -= step
		}
	}
	return locator
}

// hashAtHeight returns the best-chain hash at height, or the zero hash
// when height is outside the trunk.
func (bc *BlockChain) hashAtHeight(height int64) chainhash.Hash {
	elem, ok := bc.tree.AtHeight(height)
	if !ok {
		return chainhash.HashZero
	}
	return elem.Hash()
}

// GetBestLocator returns the locator for the current best chain tip.
func (bc *BlockChain) GetBestLocator() wire.BlockLocator {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.bestLocator
}

// GetDistanceBack returns how many blocks separate the best chain tip
// from the most recent hash in locator that this chain still recognises,
// or -1 if none of locator is known.
func (bc *BlockChain) GetDistanceBack(locator wire.BlockLocator) int64 {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	_, tipHeight, ok := bc.tree.Best()
	if !ok {
		return -1
	}
	for _, h := range locator {
		if bc.tree.OnTrunk(*h) {
			height, _ := bc.tree.Height(*h)
			return tipHeight - height
		}
	}
	return -1
}

// HashesAfter returns the trunk hashes strictly after the most recent
// locator hash this chain recognises (from genesis when nothing matches),
// in forward order, up to max entries, ending early once hashStop has
// been included. Peers answering getblocks/getheaders drive their
// responses from this.
func (bc *BlockChain) HashesAfter(locator wire.BlockLocator, hashStop chainhash.Hash, max int) []chainhash.Hash {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	_, tipHeight, ok := bc.tree.Best()
	if !ok || max <= 0 {
		return nil
	}
	start := int64(0)
	for _, h := range locator {
		if bc.tree.OnTrunk(*h) {
			height, _ := bc.tree.Height(*h)
			start = height + 1
			break
		}
	}
	if start > tipHeight {
		return nil
	}
	it, ok := bc.tree.Iter(bc.hashAtHeight(start))
	var out []chainhash.Hash
	for ok && len(out) < max {
		elem, eok := it.Elem()
		if !eok {
			break
		}
		out = append(out, elem.Hash())
		if elem.Hash() == hashStop {
			break
		}
		it, ok = it.Next()
	}
	return out
}

// HaveBlock reports whether hash is already indexed, on the trunk or a
// side branch.
func (bc *BlockChain) HaveBlock(hash chainhash.Hash) bool {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.tree.Have(hash)
}

// HaveTx reports whether hash is confirmed or currently claimed.
func (bc *BlockChain) HaveTx(hash chainhash.Hash) bool {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if bc.pool.Have(hash) {
		return true
	}
	_, err := bc.cfg.Store.GetConfirmationByTx(context.Background(), hash[:])
	return err == nil
}

// Height returns the best-chain height; part of claimpool.Chain.
func (bc *BlockChain) Height() int64 {
	_, height, ok := bc.tree.Best()
	if !ok {
		return -1
	}
	return height
}

// CoinbaseMaturity returns cfg.Params.CoinbaseMaturity(height); part of
// claimpool.Chain.
func (bc *BlockChain) CoinbaseMaturity(height int64) int64 {
	return bc.cfg.Params.CoinbaseMaturity(height)
}

// MinRelayFee returns cfg.Params.MinRelayTxFee; part of claimpool.Chain.
func (bc *BlockChain) MinRelayFee() int64 {
	return bc.cfg.Params.MinRelayTxFee
}

// UnspentOutput resolves op against the UTXO trie (when authoritative) or
// storage, for claimpool.Chain and for attach's own input resolution.
func (bc *BlockChain) UnspentOutput(op wire.OutPoint) (claimpool.UnspentInfo, bool) {
	if bc.trieAuthoritative() {
		it, ok := bc.trie.Find(utxotrie.NewKey(op.Hash, op.Index))
		if !ok {
			return claimpool.UnspentInfo{}, false
		}
		coin := it.Elem().(coinElem)
		return claimpool.UnspentInfo{Value: coin.value, Script: coin.script, BlockCount: coin.blockCount}, true
	}
	row, err := bc.cfg.Store.GetUnspentByOutpoint(context.Background(), op.Hash[:], op.Index)
	if err != nil {
		return claimpool.UnspentInfo{}, false
	}
	return claimpool.UnspentInfo{Value: row.Value, Script: row.Script, BlockCount: row.BlockCount}, true
}

// Claim is the only mutation path for new unconfirmed transactions: it
// validates tx against the claims pool and, on success, records it.
func (bc *BlockChain) Claim(tx *wire.MsgTx, verify bool) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	spent, fee, err := bc.pool.TryClaim(tx, verify)
	if err != nil {
		return err
	}
	bc.pool.Insert(tx, spent, fee)
	return nil
}

// Mempool returns the hashes of every transaction currently in the claims
// pool, for answering a peer's "mempool" request and for the claim
// re-broadcast cadence the TransactionFilter drives.
func (bc *BlockChain) Mempool() []chainhash.Hash {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.pool.Hashes()
}

// GetTransaction returns a confirmed or pooled transaction by hash.
func (bc *BlockChain) GetTransaction(hash chainhash.Hash) (*wire.MsgTx, bool) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if e, ok := bc.pool.Get(hash); ok {
		return e.Tx, true
	}
	cnf, err := bc.cfg.Store.GetConfirmationByTx(context.Background(), hash[:])
	if err != nil {
		return nil, false
	}
	row, err := bc.cfg.Store.GetBlockByCount(context.Background(), absInt64(cnf.BlockCount))
	if err != nil {
		return nil, false
	}
	blk, err := decodeBlock(row.RawBlock)
	if err != nil {
		return nil, false
	}
	if cnf.TxIndex < 0 || cnf.TxIndex >= len(blk.Transactions) {
		return nil, false
	}
	return blk.Transactions[cnf.TxIndex], true
}

// GetBlock returns the full raw block at hash.
func (bc *BlockChain) GetBlock(hash chainhash.Hash) (*wire.MsgBlock, error) {
	row, err := bc.cfg.Store.GetBlockByHash(context.Background(), hash)
	if err != nil {
		return nil, err
	}
	return decodeBlock(row.RawBlock)
}

// GetBlockHeader returns just the header at hash.
func (bc *BlockChain) GetBlockHeader(hash chainhash.Hash) (*wire.BlockHeader, error) {
	row, err := bc.cfg.Store.GetBlockByHash(context.Background(), hash)
	if err != nil {
		return nil, err
	}
	return &wire.BlockHeader{
		Version: row.Version, PrevBlock: row.PrevHash, MerkleRoot: row.MerkleRoot,
		Timestamp: row.Time, Bits: row.Bits, Nonce: row.Nonce,
	}, nil
}

// IsSpent reports whether the coin at op has been redeemed by a spend
// with at least minConf confirmations. A coin whose spending transaction
// is still shallower than minConf is not yet definitively spent — a
// reorganisation could return it to the unspent set — so the query joins
// the Spendings row to its redeeming confirmation and measures that
// confirmation's depth against the tip.
func (bc *BlockChain) IsSpent(op wire.OutPoint, minConf int64) (bool, error) {
	ctx := context.Background()
	if _, err := bc.cfg.Store.GetUnspentByOutpoint(ctx, op.Hash[:], op.Index); err == nil {
		return false, nil
	}
	sp, err := bc.cfg.Store.GetSpendingByOutpoint(ctx, op.Hash[:], op.Index)
	if err != nil {
		if libcoinerr.Is(err, libcoinerr.UnknownTx) {
			// Neither unspent nor recorded as a spending: the coin is
			// gone beyond purge depth and counts as spent at any depth.
			return true, nil
		}
		return false, err
	}
	if minConf <= 1 {
		return true, nil
	}
	cnf, err := bc.cfg.Store.GetConfirmation(ctx, sp.ICnf)
	if err != nil {
		return false, err
	}
	if bc.Height()-cnf.BlockCount+1 < minConf {
		return false, nil
	}
	return true, nil
}

// Balance sums the mature, confirmed value locked to script at or before
// height.
func (bc *BlockChain) Balance(script []byte, height int64) (int64, error) {
	return bc.cfg.Store.SumUnspentsForScript(context.Background(), script, height)
}

// GetUnspents returns every mature-or-unconfirmed unspent locked to script,
// at or before height.
func (bc *BlockChain) GetUnspents(script []byte, before int64) ([]store.UnspentRow, error) {
	return bc.cfg.Store.GetUnspentsForScript(context.Background(), script, before)
}

// IsFinal reports whether tx may be included in a block at the given
// height and time: every input's sequence must be the final marker, or
// the lock-time must already have passed.
func IsFinal(tx *wire.MsgTx, height int64, blockTime time.Time) bool {
	if tx.LockTime == 0 {
		return true
	}
	threshold := int64(500000000) // locktimeThreshold: below this, lock-time is a block height
	var actual int64
	if int64(tx.LockTime) < threshold {
		actual = height
	} else {
		actual = blockTime.Unix()
	}
	if int64(tx.LockTime) < actual {
		return true
	}
	for _, in := range tx.TxIn {
		if in.Sequence != wire.MaxTxInSequenceNum {
			return false
		}
	}
	return true
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func decodeBlock(raw []byte) (*wire.MsgBlock, error) {
	blk := &wire.MsgBlock{}
	if err := blk.BtcDecode(bytes.NewReader(raw), 0); err != nil {
		return nil, libcoinerr.Wrap(libcoinerr.StorageError, err, "decoding stored block")
	}
	return blk, nil
}
