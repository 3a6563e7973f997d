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

package serial

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Reader is a read cursor over a byte slice. A failed read does not advance the cursor
type Reader struct {
	data   []byte
	offset int
}

// NewReader returns a Reader positioned at the start of data. The slice is not copied
// and is never modified
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the number of bytes consumed so far
func (r *Reader) Offset() int {
	return r.offset
}

// Len returns the number of unread bytes
func (r *Reader) Len() int {
	return len(r.data) - r.offset
}

// Bytes returns the unread portion of the buffer without consuming it
func (r *Reader) Bytes() []byte {
	return r.data[r.offset:]
}

func (r *Reader) next(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, fmt.Errorf(
			"%w: need %d bytes at offset %d, have %d",
			ErrBufferUnderrun,
			n,
			r.offset,
			r.Len(),
		)
	}
	ret := r.data[r.offset : r.offset+n]
	r.offset += n
	return ret, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ReadVarUint32 reads a variable length unsigned integer. Each byte carries 7 bits of the
// value, least significant group first, and the high bit marks that another byte follows
func (r *Reader) ReadVarUint32() (uint32, error) {
	start := r.offset
	var ret uint32
	for i := 0; i < MaxVarUint32Length; i++ {
		b, err := r.ReadUint8()
		if err != nil {
			r.offset = start
			return 0, err
		}
		ret |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return ret, nil
		}
	}
	r.offset = start
	return 0, fmt.Errorf("%w: at offset %d", ErrVarintOverflow, start)
}

// ReadBytes returns a copy of the next n bytes
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	buf, err := r.next(n)
	if err != nil {
		return nil, err
	}
	ret := make([]byte, n)
	copy(ret, buf)
	return ret, nil
}

// ReadInto fills dst with the next len(dst) bytes
func (r *Reader) ReadInto(dst []byte) error {
	buf, err := r.next(len(dst))
	if err != nil {
		return err
	}
	copy(dst, buf)
	return nil
}

// ReadString reads a varuint32 byte length followed by that many bytes of UTF-8 text
func (r *Reader) ReadString() (string, error) {
	start := r.offset
	length, err := r.ReadVarUint32()
	if err != nil {
		return "", err
	}
	buf, err := r.next(int(length))
	if err != nil {
		r.offset = start
		return "", err
	}
	if !utf8.Valid(buf) {
		r.offset = start
		return "", fmt.Errorf("%w: at offset %d", ErrInvalidUtf8, start)
	}
	return string(buf), nil
}
