// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package serial implements the primitive binary encoding shared by every
// Antelope p2p message: little-endian fixed width integers, variable length
// unsigned integers, and length-prefixed byte strings.
package serial

import "errors"

const (
	// MaxVarUint32Length is the maximum number of bytes in an encoded varuint32
	MaxVarUint32Length = 5
)

var (
	// ErrBufferUnderrun is returned when a read needs more bytes than remain in the buffer
	ErrBufferUnderrun = errors.New("serial: buffer underrun")
	// ErrBufferOverflow is recorded when a write does not fit in a fixed capacity buffer
	ErrBufferOverflow = errors.New("serial: buffer overflow")
	// ErrVarintOverflow is returned when a varuint32 does not terminate within MaxVarUint32Length bytes
	ErrVarintOverflow = errors.New("serial: varint overflow")
	// ErrInvalidUtf8 is returned when string data is not valid UTF-8
	ErrInvalidUtf8 = errors.New("serial: invalid utf-8 string")
)

// VarUint32Size returns the number of bytes needed to encode n as a varuint32
func VarUint32Size(n uint32) int {
	size := 1
	for n >= 0x80 {
		n >>= 7
		size++
	}
	return size
}
