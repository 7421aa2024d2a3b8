// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import "testing"

func TestHashStringRoundTrip(t *testing.T) {
	const hex64 = "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"
	h, err := NewHashFromStr(hex64)
	if err != nil {
		t.Fatalf("NewHashFromStr: %v", err)
	}
	if got := h.String(); got != hex64 {
		t.Fatalf("round trip mismatch: got %s want %s", got, hex64)
	}
}

func TestDoubleHash(t *testing.T) {
	got := DoubleHashB([]byte("libcoin"))
	if len(got) != HashSize {
		t.Fatalf("unexpected digest length %d", len(got))
	}
	// Hashing twice must differ from hashing once.
	single := HashB([]byte("libcoin"))
	allEqual := true
	for i := range got {
		if got[i] != single[i] {
			allEqual = false
			break
		}
	}
	if allEqual {
		t.Fatal("DoubleHashB should not equal single HashB")
	}
}

func TestBase58CheckRoundTrip(t *testing.T) {
	payload := Hash160([]byte("some pubkey bytes"))
	encoded := Base58CheckEncode(0x00, payload)
	decodedPayload, version, err := Base58CheckDecode(encoded)
	if err != nil {
		t.Fatalf("Base58CheckDecode: %v", err)
	}
	if version != 0x00 {
		t.Fatalf("version mismatch: got %d", version)
	}
	if len(decodedPayload) != len(payload) {
		t.Fatalf("payload length mismatch: got %d want %d", len(decodedPayload), len(payload))
	}
	for i := range payload {
		if decodedPayload[i] != payload[i] {
			t.Fatalf("payload mismatch at byte %d", i)
		}
	}
}

func TestBase58CheckBadChecksum(t *testing.T) {
	encoded := Base58CheckEncode(0x00, Hash160([]byte("x")))
	tampered := []byte(encoded)
	tampered[0] = tampered[0]&0x7f | 0x20
	if string(tampered) == encoded {
		t.Skip("tamper produced identical string")
	}
	if _, _, err := Base58CheckDecode(string(tampered)); err == nil {
		t.Fatal("expected checksum mismatch error")
	}
}
