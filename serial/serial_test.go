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

package serial_test

import (
	"encoding/hex"
	"math"
	"math/bits"
	"testing"

	"github.com/blinklabs-io/antelope-p2p/internal/test"
	"github.com/blinklabs-io/antelope-p2p/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var varUint32Tests = []struct {
	value uint32
	hex   string
}{
	{0, "00"},
	{1, "01"},
	{127, "7f"},
	{128, "8001"},
	{300, "ac02"},
	{16383, "ff7f"},
	{16384, "808001"},
	{math.MaxUint32, "ffffffff0f"},
}

func TestVarUint32Encode(t *testing.T) {
	for _, testDef := range varUint32Tests {
		w := serial.NewWriter()
		w.WriteVarUint32(testDef.value)
		require.NoError(t, w.Err())
		assert.Equal(t, testDef.hex, hex.EncodeToString(w.Bytes()), "value %d", testDef.value)
	}
}

func TestVarUint32Decode(t *testing.T) {
	for _, testDef := range varUint32Tests {
		r := serial.NewReader(test.DecodeHexString(testDef.hex))
		v, err := r.ReadVarUint32()
		require.NoError(t, err)
		assert.Equal(t, testDef.value, v)
		assert.Equal(t, 0, r.Len())
	}
}

func TestVarUint32Law(t *testing.T) {
	values := []uint32{0, 1, 2, 63, 64, 127, 128, 255, 256, 1<<14 - 1, 1 << 14, 1<<21 - 1, 1 << 21, 1<<28 - 1, 1 << 28, math.MaxUint32 - 1, math.MaxUint32}
	for shift := 0; shift < 32; shift++ {
		values = append(values, uint32(1)<<shift, uint32(1)<<shift|0x5a)
	}
	for _, n := range values {
		w := serial.NewWriter()
		w.WriteVarUint32(n)
		bitsNeeded := bits.Len32(n)
		expectedLen := (bitsNeeded + 6) / 7
		if expectedLen == 0 {
			expectedLen = 1
		}
		assert.Len(t, w.Bytes(), expectedLen, "value %d", n)
		assert.Equal(t, expectedLen, serial.VarUint32Size(n))
		v, err := serial.NewReader(w.Bytes()).ReadVarUint32()
		require.NoError(t, err)
		assert.Equal(t, n, v)
	}
}

func TestVarUint32Overflow(t *testing.T) {
	r := serial.NewReader(test.DecodeHexString("ffffffffff01"))
	_, err := r.ReadVarUint32()
	assert.ErrorIs(t, err, serial.ErrVarintOverflow)
	assert.Equal(t, 0, r.Offset())
}

func TestVarUint32Truncated(t *testing.T) {
	r := serial.NewReader(test.DecodeHexString("8080"))
	_, err := r.ReadVarUint32()
	assert.ErrorIs(t, err, serial.ErrBufferUnderrun)
	assert.Equal(t, 0, r.Offset())
}

func TestFixedWidthLittleEndian(t *testing.T) {
	w := serial.NewWriter()
	w.WriteUint8(0x01)
	w.WriteUint16(0x0203)
	w.WriteUint32(0x04050607)
	w.WriteUint64(0x08090a0b0c0d0e0f)
	require.NoError(t, w.Err())
	assert.Equal(t, "010302070605040f0e0d0c0b0a0908", hex.EncodeToString(w.Bytes()))

	r := serial.NewReader(w.Bytes())
	u8, err := r.ReadUint8()
	require.NoError(t, err)
	u16, err := r.ReadUint16()
	require.NoError(t, err)
	u32, err := r.ReadUint32()
	require.NoError(t, err)
	u64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), u8)
	assert.Equal(t, uint16(0x0203), u16)
	assert.Equal(t, uint32(0x04050607), u32)
	assert.Equal(t, uint64(0x08090a0b0c0d0e0f), u64)
	assert.Equal(t, 15, r.Offset())
}

func TestReadUnderrun(t *testing.T) {
	data := test.DecodeHexString("01020304050607")
	reads := map[string]func(r *serial.Reader) error{
		"uint64": func(r *serial.Reader) error {
			_, err := r.ReadUint64()
			return err
		},
		"bytes": func(r *serial.Reader) error {
			_, err := r.ReadBytes(8)
			return err
		},
		"into": func(r *serial.Reader) error {
			return r.ReadInto(make([]byte, 32))
		},
		"string": func(r *serial.Reader) error {
			// length prefix of 1 followed by too few bytes
			_, err := serial.NewReader([]byte{0x09, 'a'}).ReadString()
			return err
		},
	}
	for name, read := range reads {
		r := serial.NewReader(data)
		err := read(r)
		assert.ErrorIs(t, err, serial.ErrBufferUnderrun, name)
		assert.Equal(t, 0, r.Offset(), name)
	}
	// Every truncation of a valid buffer fails cleanly
	w := serial.NewWriter()
	w.WriteUint32(1)
	w.WriteString("hello")
	w.WriteUint64(2)
	full := w.Bytes()
	for i := 0; i < len(full); i++ {
		r := serial.NewReader(full[:i])
		_, err1 := r.ReadUint32()
		_, err2 := r.ReadString()
		_, err3 := r.ReadUint64()
		assert.ErrorIs(
			t,
			firstErr(err1, err2, err3),
			serial.ErrBufferUnderrun,
			"truncated at %d",
			i,
		)
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func TestReadBytesCopies(t *testing.T) {
	data := []byte{1, 2, 3}
	buf, err := serial.NewReader(data).ReadBytes(3)
	require.NoError(t, err)
	buf[0] = 9
	assert.Equal(t, byte(1), data[0])
}

func TestString(t *testing.T) {
	w := serial.NewWriter()
	w.WriteString("Antelope P2P Client")
	w.WriteString("")
	require.NoError(t, w.Err())
	r := serial.NewReader(w.Bytes())
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "Antelope P2P Client", s)
	s, err = r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "", s)
	assert.Equal(t, 0, r.Len())
}

func TestStringInvalidUtf8(t *testing.T) {
	r := serial.NewReader([]byte{0x02, 0xc3, 0x28})
	_, err := r.ReadString()
	assert.ErrorIs(t, err, serial.ErrInvalidUtf8)
	assert.Equal(t, 0, r.Offset())

	w := serial.NewWriter()
	w.WriteString(string([]byte{0xff, 0xfe}))
	assert.ErrorIs(t, w.Err(), serial.ErrInvalidUtf8)
	assert.Equal(t, 0, w.Offset())
}

func TestFixedWriterOverflow(t *testing.T) {
	buf := make([]byte, 5)
	w := serial.NewFixedWriter(buf)
	w.WriteUint32(0xdeadbeef)
	// Does not fit, skipped entirely
	w.WriteUint16(0xffff)
	assert.ErrorIs(t, w.Err(), serial.ErrBufferOverflow)
	assert.Equal(t, 4, w.Offset())
	// Smaller writes that still fit are applied
	w.WriteUint8(0x01)
	assert.Equal(t, 5, w.Offset())
	assert.Equal(t, "efbeadde01", hex.EncodeToString(w.Bytes()))
	w.WriteBytes([]byte{0x02})
	assert.Equal(t, 5, w.Offset())
}

func TestFixedWriterFilled(t *testing.T) {
	w := serial.NewFixedWriter(make([]byte, 512))
	w.WriteUint16(1212)
	w.WriteString("Linux")
	require.NoError(t, w.Err())
	assert.Equal(t, "bc04054c696e7578", hex.EncodeToString(w.Bytes()))
}
