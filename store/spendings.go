// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"database/sql"

	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

var qInsertSpending = `INSERT INTO Spendings
	(coinid, txhash, outindex, value, script, blockcount, icnf, ocnf, sig, sequence, inputindex)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

var qDeleteSpendingByCoinID = `DELETE FROM Spendings WHERE coinid = ?`

var qSelectSpendingByCoinID = `SELECT coinid, txhash, outindex, value, script, blockcount, icnf, ocnf, sig, sequence, inputindex
	FROM Spendings WHERE coinid = ?`

var qSelectSpendingByOutpoint = `SELECT coinid, txhash, outindex, value, script, blockcount, icnf, ocnf, sig, sequence, inputindex
	FROM Spendings WHERE txhash = ? AND outindex = ?`

var qPurgeSpendings = `DELETE FROM Spendings
	WHERE icnf IN (SELECT cnf FROM Confirmations WHERE blockcount < ?)`

// InsertSpending records a redeemed Unspent as a Spending row.
func (t *Tx) InsertSpending(ctx context.Context, row SpendingRow) error {
	st, err := t.stmt(ctx, &qInsertSpending)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, row.CoinID, row.TxHash[:], row.OutIndex, row.Value, row.Script,
		row.BlockCount, row.ICnf, row.OCnf, row.Sig, row.Sequence, row.InputIndex); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "inserting spending for coin %d", row.CoinID)
	}
	return nil
}

// DeleteSpendingByCoinID removes a Spending row, restoring it to Unspent
// on detach.
func (t *Tx) DeleteSpendingByCoinID(ctx context.Context, coinID int64) error {
	st, err := t.stmt(ctx, &qDeleteSpendingByCoinID)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, coinID); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "deleting spending %d", coinID)
	}
	return nil
}

func scanSpendingRow(row *sql.Row) (SpendingRow, error) {
	var sp SpendingRow
	var hash []byte
	if err := row.Scan(&sp.CoinID, &hash, &sp.OutIndex, &sp.Value, &sp.Script,
		&sp.BlockCount, &sp.ICnf, &sp.OCnf, &sp.Sig, &sp.Sequence, &sp.InputIndex); err != nil {
		if err == sql.ErrNoRows {
			return SpendingRow{}, libcoinerr.New(libcoinerr.UnknownTx, "spending not found")
		}
		return SpendingRow{}, libcoinerr.Wrap(libcoinerr.StorageError, err, "scanning spending row")
	}
	_ = sp.TxHash.SetBytes(hash)
	return sp, nil
}

// GetSpendingByCoinID reads the spending row for coinID.
func (s *Store) GetSpendingByCoinID(ctx context.Context, coinID int64) (SpendingRow, error) {
	st, err := s.stmt(ctx, &qSelectSpendingByCoinID)
	if err != nil {
		return SpendingRow{}, err
	}
	return scanSpendingRow(st.QueryRowContext(ctx, coinID))
}

// GetSpendingByOutpoint reads the spending row for the coin originally at
// (txhash, index), used by detach to find what to restore to Unspents.
func (s *Store) GetSpendingByOutpoint(ctx context.Context, txhash []byte, index uint32) (SpendingRow, error) {
	st, err := s.stmt(ctx, &qSelectSpendingByOutpoint)
	if err != nil {
		return SpendingRow{}, err
	}
	return scanSpendingRow(st.QueryRowContext(ctx, txhash, index))
}

// GetSpendingByOutpoint is Store.GetSpendingByOutpoint's in-transaction
// counterpart, used while a detach's storage transaction is still open.
func (t *Tx) GetSpendingByOutpoint(ctx context.Context, txhash []byte, index uint32) (SpendingRow, error) {
	st, err := t.stmt(ctx, &qSelectSpendingByOutpoint)
	if err != nil {
		return SpendingRow{}, err
	}
	return scanSpendingRow(st.QueryRowContext(ctx, txhash, index))
}

// PurgeSpendings deletes spending rows redeemed in blocks strictly below
// before. It must run before PurgeConfirmations for the same height so
// the icnf join still resolves. Branch bodies can only be re-attached
// while their spendings survive purge, so callers must keep before no
// shallower than the deepest reorganisation they are willing to serve.
func (t *Tx) PurgeSpendings(ctx context.Context, before int64) error {
	st, err := t.stmt(ctx, &qPurgeSpendings)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, before); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "purging spendings before %d", before)
	}
	return nil
}
