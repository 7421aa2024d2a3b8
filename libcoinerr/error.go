// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package libcoinerr defines the typed error kinds raised by the
// consensus kernel. Errors are plain result values; callers
// pattern-match on Kind.
package libcoinerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind enumerates the error categories the engine and filter pipeline can
// raise, per the error handling design.
type Kind int

const (
	MalformedMessage Kind = iota
	ProtocolViolation
	UnknownBlock
	UnknownTx
	// OrphanBlock is recoverable: the block is held and its ancestry
	// re-requested from the originating peer.
	OrphanBlock
	InvalidProofOfWork
	InvalidScript
	DoubleSpend
	ImmatureCoinbase
	ValueOutOfRange
	FeeBelowMinimum
	CheckpointViolation
	VersionPolicyViolation
	// NameRuleViolation is raised only on name-system-adherent chains.
	NameRuleViolation
	StorageError
	// Reject is soft: the subject may be offered again later.
	Reject
	// Fatal means this node has diverged from the economic majority and
	// must stop.
	Fatal
)

var kindNames = map[Kind]string{
	MalformedMessage:       "MalformedMessage",
	ProtocolViolation:      "ProtocolViolation",
	UnknownBlock:           "UnknownBlock",
	UnknownTx:              "UnknownTx",
	OrphanBlock:            "OrphanBlock",
	InvalidProofOfWork:     "InvalidProofOfWork",
	InvalidScript:          "InvalidScript",
	DoubleSpend:            "DoubleSpend",
	ImmatureCoinbase:       "ImmatureCoinbase",
	ValueOutOfRange:        "ValueOutOfRange",
	FeeBelowMinimum:        "FeeBelowMinimum",
	CheckpointViolation:    "CheckpointViolation",
	VersionPolicyViolation: "VersionPolicyViolation",
	NameRuleViolation:      "NameRuleViolation",
	StorageError:           "StorageError",
	Reject:                 "Reject",
	Fatal:                  "Fatal",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Error is the concrete error type raised by the core packages.
type Error struct {
	Kind        Kind
	Description string
	Cause       error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Description, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with a formatted description.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Description: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind, attaching cause as the underlying
// error so errors.Is/errors.As can still see it.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Description: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Recoverable reports whether the error kind represents a condition the
// filter pipeline can continue past without disconnecting the peer or
// aborting the node (OrphanBlock, Reject).
func Recoverable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == OrphanBlock || e.Kind == Reject
	}
	return false
}
