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

package framer

import (
	"fmt"
)

type decoderState int

const (
	stateNeedHeader decoderState = iota
	stateNeedPayload
	stateHaveFrame
	stateFailed
)

// Decoder splits a byte stream that may arrive in arbitrary chunks into frames. Bytes of an
// incomplete frame are kept until the rest arrives. A Decoder is not safe for concurrent use
type Decoder struct {
	buf              []byte
	start            int
	state            decoderState
	header           FrameHeader
	frame            *Frame
	err              error
	maxPayloadLength uint32
}

// NewDecoder returns a Decoder that rejects frames with a payload larger than maxPayloadLength.
// A value of 0 selects DefaultMaxPayloadLength
func NewDecoder(maxPayloadLength uint32) *Decoder {
	if maxPayloadLength == 0 {
		maxPayloadLength = DefaultMaxPayloadLength
	}
	return &Decoder{
		maxPayloadLength: maxPayloadLength,
	}
}

// Feed appends newly received bytes
func (d *Decoder) Feed(data []byte) {
	if d.start > 0 {
		// Reclaim space used by frames that were already returned
		n := copy(d.buf, d.buf[d.start:])
		d.buf = d.buf[:n]
		d.start = 0
	}
	d.buf = append(d.buf, data...)
}

// Buffered returns the number of bytes held for frames that are not complete yet
func (d *Decoder) Buffered() int {
	return len(d.buf) - d.start
}

// Next returns the next complete frame. It returns a nil frame and a nil error when more input
// is needed. Once a framing error has been returned, every later call returns the same error
func (d *Decoder) Next() (*Frame, error) {
	for {
		switch d.state {
		case stateNeedHeader:
			if d.Buffered() < HeaderLength {
				return nil, nil
			}
			msgType, payloadLength, err := DecodeHeader(d.buf[d.start:])
			if err != nil {
				return nil, d.fail(err)
			}
			if payloadLength > d.maxPayloadLength {
				return nil, d.fail(
					fmt.Errorf(
						"framer: %w: payload length %d exceeds maximum %d",
						ErrMalformedFrame,
						payloadLength,
						d.maxPayloadLength,
					),
				)
			}
			d.header = FrameHeader{
				Length: payloadLength + 1,
				Type:   msgType,
			}
			d.state = stateNeedPayload
		case stateNeedPayload:
			frameLength := HeaderLength + int(d.header.PayloadLength())
			if d.Buffered() < frameLength {
				return nil, nil
			}
			payload := make([]byte, d.header.PayloadLength())
			copy(payload, d.buf[d.start+HeaderLength:d.start+frameLength])
			d.start += frameLength
			d.frame = &Frame{
				FrameHeader: d.header,
				Payload:     payload,
			}
			d.state = stateHaveFrame
		case stateHaveFrame:
			frame := d.frame
			d.frame = nil
			d.state = stateNeedHeader
			return frame, nil
		default:
			return nil, d.err
		}
	}
}

func (d *Decoder) fail(err error) error {
	d.state = stateFailed
	d.err = err
	return err
}
