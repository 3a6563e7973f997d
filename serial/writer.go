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

// Writer is a write cursor. A Writer created with NewWriter grows as needed. A Writer
// created with NewFixedWriter never grows: a write that does not fit is skipped entirely
// and the first such failure is kept and returned by Err
type Writer struct {
	data   []byte
	offset int
	fixed  bool
	err    error
}

// NewWriter returns an empty Writer that grows on demand
func NewWriter() *Writer {
	return &Writer{}
}

// NewFixedWriter returns a Writer that writes into buf and never writes past its length
func NewFixedWriter(buf []byte) *Writer {
	return &Writer{
		data:  buf,
		fixed: true,
	}
}

// Bytes returns the written portion of the buffer
func (w *Writer) Bytes() []byte {
	return w.data[:w.offset]
}

// Offset returns the number of bytes written so far
func (w *Writer) Offset() int {
	return w.offset
}

// Err returns the first error recorded by a write, if any
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) setErr(err error) {
	if w.err == nil {
		w.err = err
	}
}

// reserve returns a slice of n writable bytes at the current offset and advances past them,
// or nil when a fixed buffer lacks the capacity
func (w *Writer) reserve(n int) []byte {
	if w.offset+n > len(w.data) {
		if w.fixed {
			w.setErr(
				fmt.Errorf(
					"%w: need %d bytes at offset %d, capacity %d",
					ErrBufferOverflow,
					n,
					w.offset,
					len(w.data),
				),
			)
			return nil
		}
		w.data = append(w.data[:w.offset], make([]byte, n)...)
	}
	ret := w.data[w.offset : w.offset+n]
	w.offset += n
	return ret
}

func (w *Writer) WriteUint8(v uint8) {
	if buf := w.reserve(1); buf != nil {
		buf[0] = v
	}
}

func (w *Writer) WriteUint16(v uint16) {
	if buf := w.reserve(2); buf != nil {
		binary.LittleEndian.PutUint16(buf, v)
	}
}

func (w *Writer) WriteUint32(v uint32) {
	if buf := w.reserve(4); buf != nil {
		binary.LittleEndian.PutUint32(buf, v)
	}
}

func (w *Writer) WriteUint64(v uint64) {
	if buf := w.reserve(8); buf != nil {
		binary.LittleEndian.PutUint64(buf, v)
	}
}

// WriteVarUint32 writes v 7 bits at a time, setting the high bit on every byte but the last
func (w *Writer) WriteVarUint32(v uint32) {
	for {
		b := uint8(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.WriteUint8(b)
		if v == 0 {
			return
		}
	}
}

// WriteBytes copies data at the current offset
func (w *Writer) WriteBytes(data []byte) {
	if buf := w.reserve(len(data)); buf != nil {
		copy(buf, data)
	}
}

// WriteString writes the varuint32 byte length of s followed by its bytes
func (w *Writer) WriteString(s string) {
	if !utf8.ValidString(s) {
		w.setErr(fmt.Errorf("%w: %q", ErrInvalidUtf8, s))
		return
	}
	w.WriteVarUint32(uint32(len(s)))
	w.WriteBytes([]byte(s))
}
