// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"database/sql"

	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

var qInsertConfirmation = `INSERT INTO Confirmations (version, locktime, blockcount, txindex, txhash)
	VALUES (?, ?, ?, ?, ?)`

var qInsertConfirmationWithCnf = `INSERT INTO Confirmations (cnf, version, locktime, blockcount, txindex, txhash)
	VALUES (?, ?, ?, ?, ?, ?)`

var qDeleteConfirmation = `DELETE FROM Confirmations WHERE cnf = ?`

var qSelectConfirmation = `SELECT cnf, version, locktime, blockcount, txindex, txhash FROM Confirmations WHERE cnf = ?`

var qSelectConfirmationByTx = `SELECT cnf, version, locktime, blockcount, txindex, txhash FROM Confirmations WHERE txhash = ?`

var qPurgeConfirmations = `DELETE FROM Confirmations WHERE blockcount < ?`

// InsertConfirmation allocates a confirmation row for a non-coinbase
// transaction and returns its auto-incremented cnf.
func (t *Tx) InsertConfirmation(ctx context.Context, row ConfirmationRow) (int64, error) {
	st, err := t.stmt(ctx, &qInsertConfirmation)
	if err != nil {
		return 0, err
	}
	res, err := st.ExecContext(ctx, row.Version, row.LockTime, row.BlockCount, row.TxIndex, row.TxHash[:])
	if err != nil {
		return 0, libcoinerr.Wrap(libcoinerr.StorageError, err, "inserting confirmation")
	}
	return res.LastInsertId()
}

// InsertCoinbaseConfirmation allocates the synthetic cnf = -blockcount row
// coinbase transactions use.
func (t *Tx) InsertCoinbaseConfirmation(ctx context.Context, row ConfirmationRow) error {
	st, err := t.stmt(ctx, &qInsertConfirmationWithCnf)
	if err != nil {
		return err
	}
	cnf := -row.BlockCount
	if _, err := st.ExecContext(ctx, cnf, row.Version, row.LockTime, row.BlockCount, row.TxIndex, row.TxHash[:]); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "inserting coinbase confirmation")
	}
	return nil
}

// DeleteConfirmation removes the confirmation row for cnf, on detach.
func (t *Tx) DeleteConfirmation(ctx context.Context, cnf int64) error {
	st, err := t.stmt(ctx, &qDeleteConfirmation)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, cnf); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "deleting confirmation %d", cnf)
	}
	return nil
}

func scanConfirmationRow(row *sql.Row) (ConfirmationRow, error) {
	var c ConfirmationRow
	var hash []byte
	if err := row.Scan(&c.Cnf, &c.Version, &c.LockTime, &c.BlockCount, &c.TxIndex, &hash); err != nil {
		if err == sql.ErrNoRows {
			return ConfirmationRow{}, libcoinerr.New(libcoinerr.UnknownTx, "confirmation not found")
		}
		return ConfirmationRow{}, libcoinerr.Wrap(libcoinerr.StorageError, err, "scanning confirmation row")
	}
	_ = c.TxHash.SetBytes(hash)
	return c, nil
}

// GetConfirmation reads the confirmation row for cnf.
func (s *Store) GetConfirmation(ctx context.Context, cnf int64) (ConfirmationRow, error) {
	st, err := s.stmt(ctx, &qSelectConfirmation)
	if err != nil {
		return ConfirmationRow{}, err
	}
	return scanConfirmationRow(st.QueryRowContext(ctx, cnf))
}

// GetConfirmationByTx reads the confirmation row for txhash.
func (s *Store) GetConfirmationByTx(ctx context.Context, txhash []byte) (ConfirmationRow, error) {
	st, err := s.stmt(ctx, &qSelectConfirmationByTx)
	if err != nil {
		return ConfirmationRow{}, err
	}
	return scanConfirmationRow(st.QueryRowContext(ctx, txhash))
}

// GetConfirmationByTx is Store.GetConfirmationByTx's in-transaction
// counterpart, used while a detach's storage transaction is still open.
func (t *Tx) GetConfirmationByTx(ctx context.Context, txhash []byte) (ConfirmationRow, error) {
	st, err := t.stmt(ctx, &qSelectConfirmationByTx)
	if err != nil {
		return ConfirmationRow{}, err
	}
	return scanConfirmationRow(st.QueryRowContext(ctx, txhash))
}

// PurgeConfirmations deletes every confirmation, coinbase included, whose
// block sits strictly below before. Run PurgeSpendings first.
func (t *Tx) PurgeConfirmations(ctx context.Context, before int64) error {
	st, err := t.stmt(ctx, &qPurgeConfirmations)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, before); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "purging confirmations before %d", before)
	}
	return nil
}
