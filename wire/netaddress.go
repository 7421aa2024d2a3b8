// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"
	"net"
)

// MaxAddrPerMsg caps the number of addresses carried by a single addr
// message.
const MaxAddrPerMsg = 1000

// NetAddress is a peer endpoint: services(u64) | ipv6(16) | port(u16,
// big-endian). Versions below 31402 omit the 32-bit timestamp that
// otherwise precedes it inside an addr message.
type NetAddress struct {
	Timestamp uint32
	Services  uint64
	IP        net.IP
	Port      uint16
}

// NAVersionTimestamp is the protocol version at and above which addr
// messages carry a per-entry timestamp.
const NAVersionTimestamp = 31402

func readNetAddress(r io.Reader, pver uint32, na *NetAddress, hasTimestamp bool) error {
	if hasTimestamp {
		ts, err := readUint32(r)
		if err != nil {
			return err
		}
		na.Timestamp = ts
	}
	services, err := readUint64(r)
	if err != nil {
		return err
	}
	na.Services = services

	var ip [16]byte
	if _, err := io.ReadFull(r, ip[:]); err != nil {
		return err
	}
	na.IP = net.IP(append([]byte(nil), ip[:]...))

	var portBuf [2]byte
	if _, err := io.ReadFull(r, portBuf[:]); err != nil {
		return err
	}
	na.Port = binary.BigEndian.Uint16(portBuf[:])
	return nil
}

func writeNetAddress(w io.Writer, pver uint32, na *NetAddress, hasTimestamp bool) error {
	if hasTimestamp {
		if err := writeUint32(w, na.Timestamp); err != nil {
			return err
		}
	}
	if err := writeUint64(w, na.Services); err != nil {
		return err
	}
	var ip [16]byte
	if ip4 := na.IP.To4(); ip4 != nil {
		copy(ip[10:], []byte{0xff, 0xff})
		copy(ip[12:], ip4)
	} else if ip16 := na.IP.To16(); ip16 != nil {
		copy(ip[:], ip16)
	}
	if _, err := w.Write(ip[:]); err != nil {
		return err
	}
	var portBuf [2]byte
	binary.BigEndian.PutUint16(portBuf[:], na.Port)
	_, err := w.Write(portBuf[:])
	return err
}
