// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"database/sql"

	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

var qInsertAuxPow = `INSERT INTO AuxProofOfWorks (count, raw) VALUES (?, ?)`
var qSelectAuxPow = `SELECT raw FROM AuxProofOfWorks WHERE count = ?`
var qDeleteAuxPow = `DELETE FROM AuxProofOfWorks WHERE count = ?`

// InsertAuxPow stores the raw AuxPow appendix for a merge-mined block.
func (t *Tx) InsertAuxPow(ctx context.Context, count int64, raw []byte) error {
	st, err := t.stmt(ctx, &qInsertAuxPow)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, count, raw); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "inserting auxpow for block %d", count)
	}
	return nil
}

// DeleteAuxPow removes the AuxPow row for count, on detach.
func (t *Tx) DeleteAuxPow(ctx context.Context, count int64) error {
	st, err := t.stmt(ctx, &qDeleteAuxPow)
	if err != nil {
		return err
	}
	if _, err := st.ExecContext(ctx, count); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "deleting auxpow for block %d", count)
	}
	return nil
}

// GetAuxPow reads the raw AuxPow appendix for count, if any.
func (s *Store) GetAuxPow(ctx context.Context, count int64) ([]byte, bool, error) {
	st, err := s.stmt(ctx, &qSelectAuxPow)
	if err != nil {
		return nil, false, err
	}
	var raw []byte
	if err := st.QueryRowContext(ctx, count).Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, libcoinerr.Wrap(libcoinerr.StorageError, err, "reading auxpow for block %d", count)
	}
	return raw, true, nil
}
