// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"encoding/hex"

	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

// asBool converts byte-string truthiness the Script way: false is an empty
// array or an array of zero bytes whose only non-zero byte, if any, is the
// sign bit of the final byte.
func asBool(b []byte) bool {
	for i := range b {
		if b[i] != 0 {
			if i == len(b)-1 && b[i] == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

// fromBool encodes a Go bool as the canonical Script truth value: {1} for
// true, the empty array for false.
func fromBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return nil
}

// stack implements a byte-string LIFO with the peek/pick/roll operations
// the opcode table needs.
type stack struct {
	data [][]byte
}

func (s *stack) Depth() int32 { return int32(len(s.data)) }

func (s *stack) PushByteArray(so []byte) {
	s.data = append(s.data, so)
}

func (s *stack) PushInt(v scriptNum) {
	s.PushByteArray(v.Bytes())
}

func (s *stack) PushBool(v bool) {
	s.PushByteArray(fromBool(v))
}

func (s *stack) PopByteArray() ([]byte, error) {
	return s.nipN(0)
}

func (s *stack) PopInt() (scriptNum, error) {
	so, err := s.PopByteArray()
	if err != nil {
		return 0, err
	}
	return makeScriptNum(so, true, defaultScriptNumLen)
}

func (s *stack) PopBool() (bool, error) {
	so, err := s.PopByteArray()
	if err != nil {
		return false, err
	}
	return asBool(so), nil
}

func (s *stack) PeekByteArray(idx int32) ([]byte, error) {
	sz := int32(len(s.data))
	if idx < 0 || idx >= sz {
		return nil, libcoinerr.New(libcoinerr.InvalidScript, "stack index %d out of range", idx)
	}
	return s.data[sz-idx-1], nil
}

func (s *stack) PeekInt(idx int32) (scriptNum, error) {
	so, err := s.PeekByteArray(idx)
	if err != nil {
		return 0, err
	}
	return makeScriptNum(so, true, defaultScriptNumLen)
}

func (s *stack) PeekBool(idx int32) (bool, error) {
	so, err := s.PeekByteArray(idx)
	if err != nil {
		return false, err
	}
	return asBool(so), nil
}

func (s *stack) nipN(idx int32) ([]byte, error) {
	sz := int32(len(s.data))
	if idx < 0 || idx >= sz {
		return nil, libcoinerr.New(libcoinerr.InvalidScript, "stack index %d out of range", idx)
	}
	so := s.data[sz-idx-1]
	copy(s.data[sz-idx-1:], s.data[sz-idx:])
	s.data[sz-1] = nil
	s.data = s.data[:sz-1]
	return so, nil
}

func (s *stack) NipN(idx int32) error {
	_, err := s.nipN(idx)
	return err
}

func (s *stack) Tuck() error {
	so2, err := s.PopByteArray()
	if err != nil {
		return err
	}
	so1, err := s.PopByteArray()
	if err != nil {
		return err
	}
	s.PushByteArray(so2)
	s.PushByteArray(so1)
	s.PushByteArray(so2)
	return nil
}

func (s *stack) DropN(n int32) error {
	for ; n > 0; n-- {
		if _, err := s.PopByteArray(); err != nil {
			return err
		}
	}
	return nil
}

func (s *stack) DupN(n int32) error {
	if n < 1 {
		return libcoinerr.New(libcoinerr.InvalidScript, "dup count %d too small", n)
	}
	for i := n; i > 0; i-- {
		so, err := s.PeekByteArray(n - 1)
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

func (s *stack) RotN(n int32) error {
	entry := 3*n - 1
	for i := int32(0); i < n; i++ {
		so, err := s.nipN(entry)
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

func (s *stack) SwapN(n int32) error {
	entry := 2*n - 1
	for i := int32(0); i < n; i++ {
		so, err := s.nipN(entry)
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

func (s *stack) OverN(n int32) error {
	entry := 2*n - 1
	for ; n > 0; n-- {
		so, err := s.PeekByteArray(entry)
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

func (s *stack) PickN(n int32) error {
	so, err := s.PeekByteArray(n)
	if err != nil {
		return err
	}
	s.PushByteArray(so)
	return nil
}

func (s *stack) RollN(n int32) error {
	so, err := s.nipN(n)
	if err != nil {
		return err
	}
	s.PushByteArray(so)
	return nil
}

func (s *stack) String() string {
	var out string
	for i := len(s.data) - 1; i >= 0; i-- {
		out += hex.EncodeToString(s.data[i]) + "\n"
	}
	return out
}
