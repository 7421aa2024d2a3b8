// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command libcoind runs a full node: it validates and relays blocks and
// transactions over the filter pipeline in package p2p, persisting the
// chain through package store and package blockchain.
package main

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/decred/slog"

	"github.com/libcoin/libcoin-sub001/blockchain"
	"github.com/libcoin/libcoin-sub001/logs"
	"github.com/libcoin/libcoin-sub001/p2p"
	"github.com/libcoin/libcoin-sub001/store"
	"github.com/libcoin/libcoin-sub001/wire"
)

const userAgent = "/libcoind:0.1.0/"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, params, err := parseConfig()
	if err != nil {
		return err
	}

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
			return fmt.Errorf("creating log directory %s: %w", cfg.LogDir, err)
		}
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := logs.InitLogRotator(logFile, cfg.MaxLogRolls); err != nil {
			return fmt.Errorf("initializing log rotator: %w", err)
		}
	}
	if cfg.Verbose {
		logs.SetLevel(slog.LevelDebug)
	}
	log := logs.Get(logs.SubsystemTags.NODE)

	opts := store.DefaultOptions()
	if cfg.ValidationDepth == 0 {
		opts.Strategy = store.ValidationDepthZero
	}
	if cfg.CacheSizeKiB > 0 {
		opts.CacheSizeKiB = cfg.CacheSizeKiB
	}
	dbPath := filepath.Join(cfg.DataDir, "libcoin.db")
	s, err := store.Open(dbPath, opts)
	if err != nil {
		return fmt.Errorf("opening store at %s: %w", dbPath, err)
	}
	defer s.Close()

	bc, err := blockchain.New(blockchain.Config{
		Params:          params,
		Store:           s,
		ValidationDepth: cfg.ValidationDepth,
		PurgeDepth:      cfg.PurgeDepth,
		StrictP2SH:      cfg.StrictP2SH,
		OnFatal: func(lead int64) {
			fmt.Fprintf(os.Stderr, "libcoind: rejected chain leads the best chain by %d blocks; shutting down\n", lead)
			os.Exit(2)
		},
	})
	if err != nil {
		return fmt.Errorf("initializing block chain: %w", err)
	}

	var onAlert func(*wire.AlertDetails)
	if cfg.AlertNotify != "" {
		onAlert = func(details *wire.AlertDetails) {
			cmd := exec.Command("/bin/sh", "-c", cfg.AlertNotify+" \""+details.StatusBar+"\"")
			cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
			if err := cmd.Run(); err != nil {
				log.Warnf("alertnotify command failed: %v", err)
			}
		}
	}

	node := p2p.NewNode(p2p.Config{
		Params:     params,
		ListenAddr: cfg.Listen,
		Chain:      bc,
		UserAgent:  userAgent,
		Nonce:      randomNonce(),
		BestHeight: func() int32 { return int32(bc.Height()) },
		OnAlert:    onAlert,
	})

	if err := node.Start(); err != nil {
		return fmt.Errorf("starting node: %w", err)
	}
	log.Infof("listening on %s (network %s)", cfg.Listen, params.Name)

	for _, addr := range cfg.Connect {
		host, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			log.Warnf("skipping -connect address %q: %v", addr, err)
			continue
		}
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			log.Warnf("skipping -connect address %q: could not resolve host", addr)
			continue
		}
		var port uint64
		if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
			log.Warnf("skipping -connect address %q: bad port", addr)
			continue
		}
		node.InjectDiscoveredEndpoint(ips[0], uint16(port))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Infof("shutting down")
	node.Stop()
	return nil
}

// randomNonce generates the nonce this node announces in its version
// handshake, used by peers to detect self-connections.
func randomNonce() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(buf[:])
}
