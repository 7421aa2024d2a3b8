// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"database/sql"

	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

var qUpsertName = `INSERT INTO Names (name, value, height, expiry) VALUES (?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET value = excluded.value, height = excluded.height, expiry = excluded.expiry`

var qSelectName = `SELECT name, value, height, expiry FROM Names WHERE name = ?`

var qDeleteName = `DELETE FROM Names WHERE name = ?`

// UpsertName records or updates a name's current value/expiry.
func (t *Tx) UpsertName(ctx context.Context, row NameRow) error {
	st, err := t.stmt(ctx, &qUpsertName)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, row.Name, row.Value, row.Height, row.Expiry); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "upserting name %q", row.Name)
	}
	return nil
}

// DeleteName removes an expired or detached name record.
func (t *Tx) DeleteName(ctx context.Context, name string) error {
	st, err := t.stmt(ctx, &qDeleteName)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, name); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "deleting name %q", name)
	}
	return nil
}

func scanNameRow(row *sql.Row) (NameRow, bool, error) {
	var n NameRow
	if err := row.Scan(&n.Name, &n.Value, &n.Height, &n.Expiry); err != nil {
		if err == sql.ErrNoRows {
			return NameRow{}, false, nil
		}
		return NameRow{}, false, libcoinerr.Wrap(libcoinerr.StorageError, err, "reading name row")
	}
	return n, true, nil
}

// GetName reads the current record for name.
func (s *Store) GetName(ctx context.Context, name string) (NameRow, bool, error) {
	st, err := s.stmt(ctx, &qSelectName)
	if err != nil {
		return NameRow{}, false, err
	}
	return scanNameRow(st.QueryRowContext(ctx, name))
}

// GetName is Store.GetName's in-transaction counterpart, used while an
// attach's storage transaction is still open.
func (t *Tx) GetName(ctx context.Context, name string) (NameRow, bool, error) {
	st, err := t.stmt(ctx, &qSelectName)
	if err != nil {
		return NameRow{}, false, err
	}
	return scanNameRow(st.QueryRowContext(ctx, name))
}
