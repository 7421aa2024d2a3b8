// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"bytes"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
	"github.com/libcoin/libcoin-sub001/wire"
)

// AlertFilter is the sixth, terminal pipeline stage: it verifies a
// signed operator alert against a hard-coded public key and relays every
// alert it has not already seen.
type AlertFilter struct {
	PublicKey *btcec.PublicKey

	// OnAlert is invoked with the decoded AlertDetails once signature
	// verification succeeds; the node wires this to its notify hook.
	OnAlert func(details *wire.AlertDetails)

	// Relay re-sends a verified, not-yet-seen alert message to every
	// other peer; alerts carry no dedicated inventory type and are
	// relayed as the message itself.
	Relay func(msg *wire.MsgAlert)

	mu   sync.Mutex
	seen map[chainhash.Hash]bool
}

// NewAlertFilter constructs an AlertFilter that verifies against pubKey.
func NewAlertFilter(pubKey *btcec.PublicKey, onAlert func(*wire.AlertDetails), relay func(*wire.MsgAlert)) *AlertFilter {
	return &AlertFilter{
		PublicKey: pubKey,
		OnAlert:   onAlert,
		Relay:     relay,
		seen:      make(map[chainhash.Hash]bool),
	}
}

// Name identifies the filter for logging.
func (f *AlertFilter) Name() string { return "AlertFilter" }

// HandleMessage implements Filter.
func (f *AlertFilter) HandleMessage(p *Peer, msg wire.Message) (bool, error) {
	m, ok := msg.(*wire.MsgAlert)
	if !ok {
		return false, nil
	}
	hash := chainhash.DoubleHashH(append(append([]byte(nil), m.Payload...), m.Signature...))

	f.mu.Lock()
	alreadySeen := f.seen[hash]
	f.mu.Unlock()
	if alreadySeen {
		return true, nil
	}

	if f.PublicKey == nil {
		return true, libcoinerr.New(libcoinerr.ProtocolViolation, "no operator alert key configured")
	}
	sig, err := ecdsa.ParseDERSignature(m.Signature)
	if err != nil {
		return true, libcoinerr.New(libcoinerr.MalformedMessage, "alert signature does not parse")
	}
	digest := chainhash.DoubleHashB(m.Payload)
	if !sig.Verify(digest, f.PublicKey) {
		return true, libcoinerr.New(libcoinerr.ProtocolViolation, "alert signature does not verify against operator key")
	}

	var details wire.AlertDetails
	if err := details.Decode(bytes.NewReader(m.Payload)); err != nil {
		return true, libcoinerr.Wrap(libcoinerr.MalformedMessage, err, "decoding alert payload")
	}

	f.mu.Lock()
	f.seen[hash] = true
	f.mu.Unlock()

	if f.OnAlert != nil {
		f.OnAlert(&details)
	}
	if f.Relay != nil {
		f.Relay(m)
	}
	return true, nil
}
