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

// Package protocol implements the Antelope p2p messages exchanged during a peer handshake
package protocol

import (
	"fmt"

	"github.com/blinklabs-io/antelope-p2p/framer"
	"github.com/blinklabs-io/antelope-p2p/serial"
)

// Message types
const (
	MessageTypeHandshake uint8 = 0
	MessageTypeChainSize uint8 = 1
	MessageTypeGoAway    uint8 = 2
	MessageTypeTime      uint8 = 3
	MessageTypeNotice    uint8 = 4
)

// Message provides a common interface for message utility functions
type Message interface {
	Type() uint8
	encode(w *serial.Writer)
	decode(r *serial.Reader) error
}

// MessageBase is the common set of fields shared by all messages
type MessageBase struct {
	MessageType uint8
}

func (m *MessageBase) Type() uint8 {
	return m.MessageType
}

// MessageTypeName returns a human readable name for a message type
func MessageTypeName(msgType uint8) string {
	switch msgType {
	case MessageTypeHandshake:
		return "handshake"
	case MessageTypeChainSize:
		return "chain_size"
	case MessageTypeGoAway:
		return "go_away"
	case MessageTypeTime:
		return "time"
	case MessageTypeNotice:
		return "notice"
	default:
		return fmt.Sprintf("unknown(%d)", msgType)
	}
}

// NewMsgFromBytes decodes a message payload for the given message type. Unrecognized message
// types are returned as *MsgUnknown
func NewMsgFromBytes(msgType uint8, data []byte) (Message, error) {
	var ret Message
	switch msgType {
	case MessageTypeHandshake:
		ret = &MsgHandshake{}
	case MessageTypeChainSize:
		ret = &MsgChainSize{}
	case MessageTypeGoAway:
		ret = &MsgGoAway{}
	case MessageTypeTime:
		ret = &MsgTime{}
	case MessageTypeNotice:
		ret = &MsgNotice{}
	default:
		ret = &MsgUnknown{}
	}
	if err := ret.decode(serial.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%s: decode error: %w", MessageTypeName(msgType), err)
	}
	// The message type is not part of the payload
	if msg, ok := ret.(*MsgUnknown); ok {
		msg.MessageType = msgType
	}
	return ret, nil
}

// DecodeFrame decodes the payload of a complete frame
func DecodeFrame(frame *framer.Frame) (Message, error) {
	return NewMsgFromBytes(frame.Type, frame.Payload)
}

// EncodeMessage returns the payload for a message, without the frame header
func EncodeMessage(msg Message) ([]byte, error) {
	w := serial.NewWriter()
	msg.encode(w)
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("%s: encode error: %w", MessageTypeName(msg.Type()), err)
	}
	return w.Bytes(), nil
}

// EncodeFrame returns a complete frame for a message, ready to be written to a peer
func EncodeFrame(msg Message) ([]byte, error) {
	payload, err := EncodeMessage(msg)
	if err != nil {
		return nil, err
	}
	return framer.NewFrame(msg.Type(), payload).Encode(), nil
}
