// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"database/sql"

	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

var qInsertUnspent = `INSERT INTO Unspents (txhash, outindex, value, script, blockcount, ocnf)
	VALUES (?, ?, ?, ?, ?, ?)`

var qDeleteUnspentByCoinID = `DELETE FROM Unspents WHERE coinid = ?`

var qDeleteUnspentByOutpoint = `DELETE FROM Unspents WHERE txhash = ? AND outindex = ?`

var qSelectUnspentByOutpoint = `SELECT coinid, txhash, outindex, value, script, blockcount, ocnf
	FROM Unspents WHERE txhash = ? AND outindex = ?`

var qSelectUnspentsForScript = `SELECT coinid, txhash, outindex, value, script, blockcount, ocnf
	FROM Unspents WHERE script = ? AND blockcount <= ?`

var qSumUnspentsForScript = `SELECT COALESCE(SUM(value), 0) FROM Unspents
	WHERE script = ? AND blockcount <= ? AND blockcount >= 0`

var qMatureCoinbaseUnspents = `SELECT coinid, txhash, outindex, value, script, blockcount, ocnf
	FROM Unspents WHERE blockcount < 0 AND blockcount <= ?`

// InsertUnspent creates an Unspent row. BlockCount is
// negative for a coinbase output, recording the block it was mined in as
// -count until maturation flips it positive.
func (t *Tx) InsertUnspent(ctx context.Context, row UnspentRow) (int64, error) {
	st, err := t.stmt(ctx, &qInsertUnspent)
	if err != nil {
		return 0, err
	}
	res, err := st.ExecContext(ctx, row.TxHash[:], row.OutIndex, row.Value, row.Script, row.BlockCount, row.OCnf)
	if err != nil {
		return 0, libcoinerr.Wrap(libcoinerr.StorageError, err, "inserting unspent")
	}
	return res.LastInsertId()
}

// DeleteUnspentByCoinID removes the unspent row identified by coinid.
func (t *Tx) DeleteUnspentByCoinID(ctx context.Context, coinID int64) error {
	st, err := t.stmt(ctx, &qDeleteUnspentByCoinID)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, coinID); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "deleting unspent %d", coinID)
	}
	return nil
}

// DeleteUnspentByOutpoint removes the unspent row for (txhash, index).
func (t *Tx) DeleteUnspentByOutpoint(ctx context.Context, txhash []byte, index uint32) error {
	st, err := t.stmt(ctx, &qDeleteUnspentByOutpoint)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, txhash, index); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "deleting unspent (%x,%d)", txhash, index)
	}
	return nil
}

func scanUnspentRow(row *sql.Row) (UnspentRow, error) {
	var u UnspentRow
	var hash []byte
	if err := row.Scan(&u.CoinID, &hash, &u.OutIndex, &u.Value, &u.Script, &u.BlockCount, &u.OCnf); err != nil {
		if err == sql.ErrNoRows {
			return UnspentRow{}, libcoinerr.New(libcoinerr.UnknownTx, "unspent not found")
		}
		return UnspentRow{}, libcoinerr.Wrap(libcoinerr.StorageError, err, "scanning unspent row")
	}
	_ = u.TxHash.SetBytes(hash)
	return u, nil
}

// GetUnspentByOutpoint reads the unspent row for (txhash, index). This is
// the storage-authoritative lookup path; trie-authoritative
// deployments serve the same question from utxotrie instead.
func (s *Store) GetUnspentByOutpoint(ctx context.Context, txhash []byte, index uint32) (UnspentRow, error) {
	st, err := s.stmt(ctx, &qSelectUnspentByOutpoint)
	if err != nil {
		return UnspentRow{}, err
	}
	return scanUnspentRow(st.QueryRowContext(ctx, txhash, index))
}

// GetUnspentByOutpoint reads the unspent row for (txhash, index) within an
// open transaction, so a pending attach/detach never blocks the
// single-connection store waiting on its own uncommitted write.
func (t *Tx) GetUnspentByOutpoint(ctx context.Context, txhash []byte, index uint32) (UnspentRow, error) {
	st, err := t.stmt(ctx, &qSelectUnspentByOutpoint)
	if err != nil {
		return UnspentRow{}, err
	}
	return scanUnspentRow(st.QueryRowContext(ctx, txhash, index))
}

func scanUnspentRows(rows *sql.Rows, err error) ([]UnspentRow, error) {
	if err != nil {
		return nil, libcoinerr.Wrap(libcoinerr.StorageError, err, "querying unspents")
	}
	defer rows.Close()
	var out []UnspentRow
	for rows.Next() {
		var u UnspentRow
		var hash []byte
		if err := rows.Scan(&u.CoinID, &hash, &u.OutIndex, &u.Value, &u.Script, &u.BlockCount, &u.OCnf); err != nil {
			return nil, libcoinerr.Wrap(libcoinerr.StorageError, err, "scanning unspent row")
		}
		_ = u.TxHash.SetBytes(hash)
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetUnspentsForScript returns every mature-or-unconfirmed unspent output
// locked to script, at or before height. Requires
// Options.ScriptToUnspents for efficient lookup.
func (s *Store) GetUnspentsForScript(ctx context.Context, script []byte, before int64) ([]UnspentRow, error) {
	st, err := s.stmt(ctx, &qSelectUnspentsForScript)
	if err != nil {
		return nil, err
	}
	return scanUnspentRows(st.QueryContext(ctx, script, before))
}

// SumUnspentsForScript aggregates the mature confirmed value locked to
// script, at or before height — the storage-side half of balance queries
// (the engine layers recent confirmations/spendings adjustments on top).
func (s *Store) SumUnspentsForScript(ctx context.Context, script []byte, before int64) (int64, error) {
	st, err := s.stmt(ctx, &qSumUnspentsForScript)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := st.QueryRowContext(ctx, script, before).Scan(&sum); err != nil {
		return 0, libcoinerr.Wrap(libcoinerr.StorageError, err, "summing unspents for script")
	}
	return sum, nil
}

// MatureCoinbaseUnspents returns every immature-coinbase row whose
// originating block is now at or before maturityBlockCount (i.e.
// BlockCount <= -maturityBlockCount), the candidate set for
// maturation.
func (s *Store) MatureCoinbaseUnspents(ctx context.Context, maturityBlockCount int64) ([]UnspentRow, error) {
	st, err := s.stmt(ctx, &qMatureCoinbaseUnspents)
	if err != nil {
		return nil, err
	}
	return scanUnspentRows(st.QueryContext(ctx, -maturityBlockCount))
}

// MatureCoinbaseUnspents is Store.MatureCoinbaseUnspents's in-transaction
// counterpart, used while an attach's storage transaction is still open.
func (t *Tx) MatureCoinbaseUnspents(ctx context.Context, maturityBlockCount int64) ([]UnspentRow, error) {
	st, err := t.stmt(ctx, &qMatureCoinbaseUnspents)
	if err != nil {
		return nil, err
	}
	return scanUnspentRows(st.QueryContext(ctx, -maturityBlockCount))
}

var qSelectAllUnspents = `SELECT coinid, txhash, outindex, value, script, blockcount, ocnf FROM Unspents`

// AllUnspents returns every Unspent row, in storage order. Used to rebuild
// the trie when a trie-authoritative node restarts.
func (s *Store) AllUnspents(ctx context.Context) ([]UnspentRow, error) {
	st, err := s.stmt(ctx, &qSelectAllUnspents)
	if err != nil {
		return nil, err
	}
	return scanUnspentRows(st.QueryContext(ctx))
}

var qSelectUnspentsByOCnf = `SELECT coinid, txhash, outindex, value, script, blockcount, ocnf
	FROM Unspents WHERE ocnf = ?`

// UnspentsByOCnf returns the unspent rows owned by confirmation ocnf,
// the surviving outputs of one confirmed transaction.
func (t *Tx) UnspentsByOCnf(ctx context.Context, ocnf int64) ([]UnspentRow, error) {
	st, err := t.stmt(ctx, &qSelectUnspentsByOCnf)
	if err != nil {
		return nil, err
	}
	return scanUnspentRows(st.QueryContext(ctx, ocnf))
}

var qUpdateUnspentBlockCount = `UPDATE Unspents SET blockcount = ? WHERE coinid = ?`

// MaturateUnspent flips an immature coinbase row's BlockCount from
// negative to its positive originating height.
func (t *Tx) MaturateUnspent(ctx context.Context, coinID int64, blockCount int64) error {
	st, err := t.stmt(ctx, &qUpdateUnspentBlockCount)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, blockCount, coinID); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "maturating unspent %d", coinID)
	}
	return nil
}

var qDemoteCoinbaseUnspents = `UPDATE Unspents SET blockcount = ? WHERE ocnf = ? AND blockcount > 0`

// DemoteCoinbaseUnspents reverses MaturateUnspent for every coinbase
// output of the block whose coinbase confirmation is ocnf, flipping
// BlockCount back to negative. Used by detach to undo the maturation the
// detached block performed.
func (t *Tx) DemoteCoinbaseUnspents(ctx context.Context, blockCount int64) error {
	st, err := t.stmt(ctx, &qDemoteCoinbaseUnspents)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, -blockCount, -blockCount); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "demoting coinbase unspents of block %d", blockCount)
	}
	return nil
}
