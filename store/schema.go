// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

// schema holds the table/index set: Blocks, Confirmations, Unspents,
// Spendings, AuxProofOfWorks, Names. scriptToUnspents/scriptToSpendings
// are created only when Options.ScriptToUnspents/Options.ScriptToSpendings
// respectively are set.
const schema = `
CREATE TABLE IF NOT EXISTS Blocks (
	count      INTEGER PRIMARY KEY,
	hash       BLOB NOT NULL UNIQUE,
	version    INTEGER NOT NULL,
	prevhash   BLOB NOT NULL,
	merkleroot BLOB NOT NULL,
	time       INTEGER NOT NULL,
	bits       INTEGER NOT NULL,
	nonce      INTEGER NOT NULL,
	rawblock   BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS AuxProofOfWorks (
	count INTEGER PRIMARY KEY REFERENCES Blocks(count),
	raw   BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS Confirmations (
	cnf       INTEGER PRIMARY KEY AUTOINCREMENT,
	version   INTEGER NOT NULL,
	locktime  INTEGER NOT NULL,
	blockcount INTEGER NOT NULL,
	txindex   INTEGER NOT NULL,
	txhash    BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_confirmations_blockcount ON Confirmations(blockcount);
CREATE INDEX IF NOT EXISTS idx_confirmations_txhash ON Confirmations(txhash);

CREATE TABLE IF NOT EXISTS Unspents (
	coinid     INTEGER PRIMARY KEY AUTOINCREMENT,
	txhash     BLOB NOT NULL,
	outindex   INTEGER NOT NULL,
	value      INTEGER NOT NULL,
	script     BLOB NOT NULL,
	blockcount INTEGER NOT NULL,
	ocnf       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_unspents_count_ocnf ON Unspents(blockcount, ocnf);

CREATE TABLE IF NOT EXISTS Spendings (
	coinid     INTEGER NOT NULL,
	txhash     BLOB NOT NULL,
	outindex   INTEGER NOT NULL,
	value      INTEGER NOT NULL,
	script     BLOB NOT NULL,
	blockcount INTEGER NOT NULL,
	icnf       INTEGER NOT NULL,
	ocnf       INTEGER NOT NULL,
	sig        BLOB NOT NULL,
	sequence   INTEGER NOT NULL,
	inputindex INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_spendings_icnf_ocnf ON Spendings(icnf, ocnf);

CREATE TABLE IF NOT EXISTS Names (
	name   TEXT PRIMARY KEY,
	value  BLOB NOT NULL,
	height INTEGER NOT NULL,
	expiry INTEGER NOT NULL
);
`

// uniqueUnspentIndexDDL is the UNIQUE(hash, index) index maintained only
// when validation_depth == 0 (UTXO lookups go to storage
// rather than the trie).
const uniqueUnspentIndexDDL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_unspents_hash_index ON Unspents(txhash, outindex);`
const dropUniqueUnspentIndexDDL = `DROP INDEX IF EXISTS idx_unspents_hash_index;`

const scriptToUnspentsDDL = `CREATE INDEX IF NOT EXISTS idx_unspents_script ON Unspents(script);`
const dropScriptToUnspentsDDL = `DROP INDEX IF EXISTS idx_unspents_script;`
const scriptToSpendingsDDL = `CREATE INDEX IF NOT EXISTS idx_spendings_script ON Spendings(script);`
const dropScriptToSpendingsDDL = `DROP INDEX IF EXISTS idx_spendings_script;`
