// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store implements the SQL persistence layer: Blocks,
// Confirmations, Unspents, Spendings, AuxProofOfWorks and Names tables
// over a WAL-journaled SQLite database, with a parameterised statement
// cache keyed by pointer identity (so call sites pass the address of a
// package-level query string rather than the string itself, avoiding a
// text-keyed map lookup on every query).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/libcoin/libcoin-sub001/libcoinerr"
	"github.com/libcoin/libcoin-sub001/logs"
)

var log = logs.Get(logs.SubsystemTags.STOR)

// IndexStrategy selects whether Unspents carries the authoritative
// UNIQUE(hash, index) index (ValidationDepthZero) or whether the UTXO
// trie is authoritative and storage exists for durability/cold queries
// only (TrieAuthoritative).
type IndexStrategy int

const (
	// TrieAuthoritative drops the UNIQUE(hash, index) index; the UTXO
	// merkle trie is the authoritative coin set.
	TrieAuthoritative IndexStrategy = iota
	// ValidationDepthZero keeps the UNIQUE(hash, index) index so UTXO
	// lookups can be served directly from storage.
	ValidationDepthZero
)

// Options configures a Store's pragma tuning and optional indices.
type Options struct {
	// Strategy picks whether Unspents carries its own UNIQUE index
	// or defers to the trie.
	Strategy IndexStrategy
	// ScriptToUnspents/ScriptToSpendings toggle the address-balance
	// lookup indices on Unspents(script)/Spendings(script).
	ScriptToUnspents  bool
	ScriptToSpendings bool
	// CacheSizeKiB sizes SQLite's page cache; 0 picks the DefaultOptions
	// size.
	CacheSizeKiB int
}

// DefaultOptions returns sensible defaults: trie-authoritative UTXO set,
// no script indices, and a cache sized to one quarter of a 512 MiB default
// budget (operators needing more size Options.CacheSizeKiB explicitly;
// there is no portable way to read physical RAM from the stdlib alone).
func DefaultOptions() Options {
	return Options{
		Strategy:     TrieAuthoritative,
		CacheSizeKiB: 512 * 1024 / 4,
	}
}

// Store is the SQL-backed persistence layer.
type Store struct {
	db   *sql.DB
	opts Options

	mu    sync.Mutex
	stmts map[*string]*sql.Stmt
}

// Open creates (if necessary) and opens the SQLite database at path,
// applies the WAL/page-size/cache pragmas, creates the schema, and sets
// up the index strategy named by opts.
func Open(path string, opts Options) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, libcoinerr.Wrap(libcoinerr.StorageError, err, "opening %s", path)
	}
	// SQLite allows only one writer; a single shared connection avoids
	// SQLITE_BUSY churn from the standard library's connection pool.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, opts: opts, stmts: make(map[*string]*sql.Stmt)}
	if err := s.applyPragmas(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, libcoinerr.Wrap(libcoinerr.StorageError, err, "creating schema")
	}
	if err := s.applyIndexStrategy(); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Infof("opened store at %s (strategy=%v)", path, opts.Strategy)
	return s, nil
}

func (s *Store) applyPragmas() error {
	cacheKiB := s.opts.CacheSizeKiB
	if cacheKiB == 0 {
		cacheKiB = DefaultOptions().CacheSizeKiB
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA page_size = 4096;",
		fmt.Sprintf("PRAGMA cache_size = -%d;", cacheKiB), // negative = KiB
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return libcoinerr.Wrap(libcoinerr.StorageError, err, "applying pragma %q", p)
		}
	}
	return nil
}

func (s *Store) applyIndexStrategy() error {
	ddl := dropUniqueUnspentIndexDDL
	if s.opts.Strategy == ValidationDepthZero {
		ddl = uniqueUnspentIndexDDL
	}
	if _, err := s.db.Exec(ddl); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "applying index strategy")
	}
	scriptUnspentsDDL := dropScriptToUnspentsDDL
	if s.opts.ScriptToUnspents {
		scriptUnspentsDDL = scriptToUnspentsDDL
	}
	if _, err := s.db.Exec(scriptUnspentsDDL); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "applying script-to-unspents index")
	}
	scriptSpendingsDDL := dropScriptToSpendingsDDL
	if s.opts.ScriptToSpendings {
		scriptSpendingsDDL = scriptToSpendingsDDL
	}
	if _, err := s.db.Exec(scriptSpendingsDDL); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "applying script-to-spendings index")
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// stmt returns the prepared statement for query, preparing and caching it
// on first use. Callers pass the address of a package-level string
// literal so the cache key is a stable pointer rather than query text.
func (s *Store) stmt(ctx context.Context, query *string) (*sql.Stmt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stmts[query]; ok {
		return st, nil
	}
	st, err := s.db.PrepareContext(ctx, *query)
	if err != nil {
		return nil, libcoinerr.Wrap(libcoinerr.StorageError, err, "preparing statement")
	}
	s.stmts[query] = st
	return st, nil
}

// Tx wraps a single storage transaction. Every append is exactly one Tx,
// committed on success and
// rolled back on any failure in attach/detach.
type Tx struct {
	store *sql.Tx
	outer *Store
}

// Begin opens a new storage transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, libcoinerr.Wrap(libcoinerr.StorageError, err, "beginning transaction")
	}
	return &Tx{store: tx, outer: s}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.store.Commit(); err != nil {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "committing transaction")
	}
	return nil
}

// Rollback aborts the transaction, discarding every statement issued
// against it.
func (t *Tx) Rollback() error {
	if err := t.store.Rollback(); err != nil && err != sql.ErrTxDone {
		return libcoinerr.Wrap(libcoinerr.StorageError, err, "rolling back transaction")
	}
	return nil
}

// stmt returns a statement for query bound to this transaction. A statement
// the outer Store has already cached is re-bound with Tx.StmtContext, which
// re-uses the existing prepare; any other query is prepared on the
// transaction itself, since the transaction holds the store's only
// connection. Statements prepared that way close with the transaction and
// are not cached.
func (t *Tx) stmt(ctx context.Context, query *string) (*sql.Stmt, error) {
	t.outer.mu.Lock()
	base, ok := t.outer.stmts[query]
	t.outer.mu.Unlock()
	if ok {
		return t.store.StmtContext(ctx, base), nil
	}
	st, err := t.store.PrepareContext(ctx, *query)
	if err != nil {
		return nil, libcoinerr.Wrap(libcoinerr.StorageError, err, "preparing statement")
	}
	return st, nil
}

