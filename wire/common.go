// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the canonical binary encodings: the framed P2P
// message envelope, the compact BlockHeader/Transaction/Block
// serialisations, and the varint/endpoint helpers they share.
package wire

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

var littleEndian = binary.LittleEndian

// MaxVarIntPayload is the maximum payload size for a variable length
// integer.
const MaxVarIntPayload = 9

// ReadVarInt reads a CompactSize-encoded unsigned integer: a single byte for
// values below 0xfd, else a marker byte followed by a fixed-width field.
func ReadVarInt(r io.Reader) (uint64, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, err
	}
	switch prefix[0] {
	case 0xff:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		v := littleEndian.Uint64(buf[:])
		if v <= math.MaxUint32 {
			return 0, nonCanonicalVarIntErr(v, prefix[0], math.MaxUint32)
		}
		return v, nil
	case 0xfe:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		v := uint64(littleEndian.Uint32(buf[:]))
		if v <= 0xffff {
			return 0, nonCanonicalVarIntErr(v, prefix[0], 0xffff)
		}
		return v, nil
	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		v := uint64(littleEndian.Uint16(buf[:]))
		if v < 0xfd {
			return 0, nonCanonicalVarIntErr(v, prefix[0], 0xfd)
		}
		return v, nil
	default:
		return uint64(prefix[0]), nil
	}
}

func nonCanonicalVarIntErr(v uint64, discriminant byte, min uint64) error {
	return libcoinerr.New(libcoinerr.MalformedMessage,
		"non-canonical varint %x - discriminant %x must encode a value greater than %x",
		v, discriminant, min)
}

// WriteVarInt writes v using the minimal CompactSize encoding.
func WriteVarInt(w io.Writer, v uint64) error {
	switch {
	case v < 0xfd:
		_, err := w.Write([]byte{byte(v)})
		return err
	case v <= math.MaxUint16:
		buf := make([]byte, 3)
		buf[0] = 0xfd
		littleEndian.PutUint16(buf[1:], uint16(v))
		_, err := w.Write(buf)
		return err
	case v <= math.MaxUint32:
		buf := make([]byte, 5)
		buf[0] = 0xfe
		littleEndian.PutUint32(buf[1:], uint32(v))
		_, err := w.Write(buf)
		return err
	default:
		buf := make([]byte, 9)
		buf[0] = 0xff
		littleEndian.PutUint64(buf[1:], v)
		_, err := w.Write(buf)
		return err
	}
}

// VarIntSerializeSize returns the number of bytes WriteVarInt would emit
// for v.
func VarIntSerializeSize(v uint64) int {
	switch {
	case v < 0xfd:
		return 1
	case v <= math.MaxUint16:
		return 3
	case v <= math.MaxUint32:
		return 5
	default:
		return 9
	}
}

// ReadVarBytes reads a varint-prefixed byte slice, rejecting a declared
// length above maxAllowed (fieldName is used only for error text).
func ReadVarBytes(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxAllowed {
		return nil, libcoinerr.New(libcoinerr.MalformedMessage,
			"%s is larger than the max allowed size [count %d, max %d]",
			fieldName, count, maxAllowed)
	}
	b := make([]byte, count)
	if count > 0 {
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// WriteVarBytes writes b as a varint-prefixed byte slice.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadVarString reads a varint-prefixed UTF-8 string.
func ReadVarString(r io.Reader, maxAllowed uint64) (string, error) {
	b, err := ReadVarBytes(r, maxAllowed, "variable length string")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteVarString writes s as a varint-prefixed UTF-8 string.
func WriteVarString(w io.Writer, s string) error {
	return WriteVarBytes(w, []byte(s))
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return littleEndian.Uint32(buf[:]), nil
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	littleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return littleEndian.Uint64(buf[:]), nil
}

func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	littleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readInt64(r io.Reader) (int64, error) {
	v, err := readUint64(r)
	return int64(v), err
}

func writeInt64(w io.Writer, v int64) error {
	return writeUint64(w, uint64(v))
}

func readInt32(r io.Reader) (int32, error) {
	v, err := readUint32(r)
	return int32(v), err
}

func writeInt32(w io.Writer, v int32) error {
	return writeUint32(w, uint32(v))
}

// commandString renders a 12-byte zero-padded command as a Go string.
func commandString(cmd [CommandSize]byte) string {
	n := 0
	for n < len(cmd) && cmd[n] != 0 {
		n++
	}
	return string(cmd[:n])
}
