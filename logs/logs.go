// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package logs wires up the per-subsystem loggers shared by every package in
// the engine. A single backend writes to stdout and to a rotating log file;
// subsystems fetch their own *slog.Logger from the registry at init time.
package logs

import (
	"fmt"
	"os"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// Tag identifies a logging subsystem.
type Tag string

// SubsystemTags enumerates the logging subsystems used across the module.
var SubsystemTags = struct {
	BCHN Tag // blockchain engine
	STOR Tag // persistence layer
	TRIE Tag // UTXO merkle trie
	SCPT Tag // script evaluator
	PARM Tag // chain parameters
	POOL Tag // claims pool
	P2P  Tag // filter pipeline
	PEER Tag // peer / peer manager
	NODE Tag // node wiring
}{
	BCHN: "BCHN",
	STOR: "STOR",
	TRIE: "TRIE",
	SCPT: "SCPT",
	PARM: "PARM",
	POOL: "POOL",
	P2P:  "P2P ",
	PEER: "PEER",
	NODE: "NODE",
}

type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if LogRotator != nil {
		LogRotator.Write(p)
	}
	return len(p), nil
}

// LogRotator is the rotating log file backend. It must be initialized with
// InitLogRotator before subsystem loggers are used in anger; until then,
// loggers silently write to stdout only.
var LogRotator *rotator.Rotator

var backendLog = slog.NewBackend(logWriter{})

var subsystemLoggers = map[Tag]slog.Logger{}

func init() {
	for _, tag := range []Tag{
		SubsystemTags.BCHN, SubsystemTags.STOR, SubsystemTags.TRIE,
		SubsystemTags.SCPT, SubsystemTags.PARM, SubsystemTags.POOL,
		SubsystemTags.P2P, SubsystemTags.PEER, SubsystemTags.NODE,
	} {
		l := backendLog.Logger(string(tag))
		l.SetLevel(slog.LevelInfo)
		subsystemLoggers[tag] = l
	}
}

// Get returns the logger registered for tag.
func Get(tag Tag) slog.Logger {
	if l, ok := subsystemLoggers[tag]; ok {
		return l
	}
	return backendLog.Logger(string(tag))
}

// SetLevel adjusts the verbosity of every registered subsystem logger.
func SetLevel(level slog.Level) {
	for _, l := range subsystemLoggers {
		l.SetLevel(level)
	}
}

// InitLogRotator creates a rotating log file at logFile, replacing the
// default stdout-only behavior. Call once during process startup.
func InitLogRotator(logFile string, maxRolls int) error {
	r, err := rotator.New(logFile, 10*1024, false, maxRolls)
	if err != nil {
		return fmt.Errorf("failed to create log rotator: %w", err)
	}
	LogRotator = r
	return nil
}
