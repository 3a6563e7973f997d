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

// Package framer implements the Antelope p2p message framing: a 4-byte little-endian
// length (payload length plus one) followed by a 1-byte message type and the payload.
package framer

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/antelope-p2p/serial"
)

const (
	// HeaderLength is the size of the length prefix plus the message type byte
	HeaderLength = 5

	// DefaultMaxPayloadLength bounds the payload size accepted by a Decoder
	DefaultMaxPayloadLength = 8 * 1024 * 1024
)

// ErrMalformedFrame is returned when a frame's declared length is inconsistent with its contents
var ErrMalformedFrame = errors.New("malformed frame")

// FrameHeader is the fixed header in front of every message payload. Length counts the
// type byte and the payload
type FrameHeader struct {
	Length uint32
	Type   uint8
}

// PayloadLength returns the number of payload bytes following the header
func (h FrameHeader) PayloadLength() uint32 {
	return h.Length - 1
}

type Frame struct {
	FrameHeader
	Payload []byte
}

// NewFrame returns a frame for the given message type and payload
func NewFrame(msgType uint8, payload []byte) *Frame {
	return &Frame{
		FrameHeader: FrameHeader{
			Length: uint32(len(payload)) + 1,
			Type:   msgType,
		},
		Payload: payload,
	}
}

// Encode returns the frame header followed by the payload, ready for transmission
func (f *Frame) Encode() []byte {
	w := serial.NewFixedWriter(make([]byte, HeaderLength+len(f.Payload)))
	w.WriteUint32(uint32(len(f.Payload)) + 1)
	w.WriteUint8(f.Type)
	w.WriteBytes(f.Payload)
	return w.Bytes()
}

// DecodeHeader reads the frame header at the start of buf and returns the message type and
// the length of the payload that follows it
func DecodeHeader(buf []byte) (uint8, uint32, error) {
	r := serial.NewReader(buf)
	length, err := r.ReadUint32()
	if err != nil {
		return 0, 0, fmt.Errorf("framer: decode header: %w", err)
	}
	msgType, err := r.ReadUint8()
	if err != nil {
		return 0, 0, fmt.Errorf("framer: decode header: %w", err)
	}
	if length < 1 {
		return 0, 0, fmt.Errorf(
			"framer: %w: declared length %d does not cover the message type",
			ErrMalformedFrame,
			length,
		)
	}
	return msgType, length - 1, nil
}
