// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"

	"github.com/libcoin/libcoin-sub001/chainparams"
)

const (
	defaultNetwork         = "bitcoin"
	defaultListenAddr      = ":8333"
	defaultValidationDepth = int64(0)
	defaultPurgeDepth      = int64(1000)
	defaultLogFilename     = "libcoind.log"
	defaultMaxLogRolls     = 10
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".libcoind")
}

// config is parsed from the command line with go-flags. There is no
// package-level mutable configuration: every
// collaborator is built from the struct parseConfig returns rather than
// from globals read mid-call.
type config struct {
	DataDir string `long:"datadir" description:"Directory to store block and UTXO data"`
	Network string `long:"network" description:"Currency parameter set: bitcoin, testnet, namecoin, litecoin, dogecoin, terracoin" default:"bitcoin"`

	Listen  string   `long:"listen" description:"Address to accept inbound peer connections on; empty disables listening"`
	Connect []string `long:"connect" description:"Address of a peer to connect to outside of the normal discovery process (repeatable)"`

	ValidationDepth int64 `long:"validationdepth" description:"Reorg-safety margin past which the UTXO trie becomes authoritative over storage"`
	PurgeDepth      int64 `long:"purgedepth" description:"How far behind the tip Spendings/Confirmations rows are kept"`
	StrictP2SH      bool  `long:"strictp2sh" description:"Enable BIP-16 strict pay-to-script-hash evaluation"`

	CacheSizeKiB int `long:"dbcache" description:"SQLite page cache size in KiB (0 picks the store package default)"`

	LogDir      string `long:"logdir" description:"Directory to write the rotating log file to; empty disables file logging"`
	MaxLogRolls int    `long:"maxlogrolls" description:"Number of rotated log files to retain" default:"10"`
	Verbose     bool   `long:"verbose" description:"Enable debug-level logging"`

	// AlertNotify is run (via the shell) with the alert's status-bar text as
	// its argument whenever a verified operator alert arrives, mirroring
	// the classic bitcoind "-alertnotify" hook.
	AlertNotify string `long:"alertnotify" description:"Shell command to run, with the alert text appended, when a verified alert arrives"`
}

// parseConfig parses the command line into a config and resolves defaults
// that depend on other flags (data directory, currency parameter lookup).
func parseConfig() (*config, *chainparams.Params, error) {
	cfg := &config{
		DataDir:         defaultDataDir(),
		Listen:          defaultListenAddr,
		ValidationDepth: defaultValidationDepth,
		PurgeDepth:      defaultPurgeDepth,
		MaxLogRolls:     defaultMaxLogRolls,
	}
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, nil, err
	}

	params, ok := chainparams.ByName(cfg.Network)
	if !ok {
		return nil, nil, fmt.Errorf("unknown network %q", cfg.Network)
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("creating data directory %s: %w", cfg.DataDir, err)
	}

	return cfg, params, nil
}
