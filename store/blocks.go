// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"database/sql"

	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

var qInsertBlock = `INSERT INTO Blocks (count, hash, version, prevhash, merkleroot, time, bits, nonce, rawblock)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

var qSelectBlockByCount = `SELECT count, hash, version, prevhash, merkleroot, time, bits, nonce, rawblock
	FROM Blocks WHERE count = ?`

var qSelectBlockByHash = `SELECT count, hash, version, prevhash, merkleroot, time, bits, nonce, rawblock
	FROM Blocks WHERE hash = ?`

var qDeleteBlock = `DELETE FROM Blocks WHERE count = ?`

var qMaxBlockCount = `SELECT COALESCE(MAX(count), -1) FROM Blocks`

// InsertBlock writes a block header row at the given height.
func (t *Tx) InsertBlock(ctx context.Context, row BlockRow) error {
	st, err := t.stmt(ctx, &qInsertBlock)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, row.Count, row.Hash[:], row.Version, row.PrevHash[:],
		row.MerkleRoot[:], row.Time, row.Bits, row.Nonce, row.RawBlock); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "inserting block %d", row.Count)
	}
	return nil
}

// DeleteBlock removes the block row at count.
func (t *Tx) DeleteBlock(ctx context.Context, count int64) error {
	st, err := t.stmt(ctx, &qDeleteBlock)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, count); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "deleting block %d", count)
	}
	return nil
}

func scanBlockRow(row *sql.Row) (BlockRow, error) {
	var br BlockRow
	var hash, prev, merkle []byte
	if err := row.Scan(&br.Count, &hash, &br.Version, &prev, &merkle, &br.Time, &br.Bits, &br.Nonce, &br.RawBlock); err != nil {
		if err == sql.ErrNoRows {
			return BlockRow{}, libcoinerr.New(libcoinerr.UnknownBlock, "block not found")
		}
		return BlockRow{}, libcoinerr.Wrap(libcoinerr.StorageError, err, "scanning block row")
	}
	_ = br.Hash.SetBytes(hash)
	_ = br.PrevHash.SetBytes(prev)
	_ = br.MerkleRoot.SetBytes(merkle)
	return br, nil
}

// GetBlockByCount reads the block row at the given height.
func (s *Store) GetBlockByCount(ctx context.Context, count int64) (BlockRow, error) {
	st, err := s.stmt(ctx, &qSelectBlockByCount)
	if err != nil {
		return BlockRow{}, err
	}
	return scanBlockRow(st.QueryRowContext(ctx, count))
}

// GetBlockByHash reads the block row identified by hash.
func (s *Store) GetBlockByHash(ctx context.Context, hash chainhash.Hash) (BlockRow, error) {
	st, err := s.stmt(ctx, &qSelectBlockByHash)
	if err != nil {
		return BlockRow{}, err
	}
	return scanBlockRow(st.QueryRowContext(ctx, hash[:]))
}

// GetBlockByHash is Store.GetBlockByHash's in-transaction counterpart,
// used while a detach or version check runs inside an open attach
// transaction.
func (t *Tx) GetBlockByHash(ctx context.Context, hash chainhash.Hash) (BlockRow, error) {
	st, err := t.stmt(ctx, &qSelectBlockByHash)
	if err != nil {
		return BlockRow{}, err
	}
	return scanBlockRow(st.QueryRowContext(ctx, hash[:]))
}

// MaxBlockCount returns the highest stored block height, or -1 if Blocks
// is empty.
func (s *Store) MaxBlockCount(ctx context.Context) (int64, error) {
	st, err := s.stmt(ctx, &qMaxBlockCount)
	if err != nil {
		return 0, err
	}
	var max int64
	if err := st.QueryRowContext(ctx).Scan(&max); err != nil {
		return 0, libcoinerr.Wrap(libcoinerr.StorageError, err, "reading max block count")
	}
	return max, nil
}
