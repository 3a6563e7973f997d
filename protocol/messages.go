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

package protocol

import (
	"fmt"

	"github.com/blinklabs-io/antelope-p2p/framer"
	"github.com/blinklabs-io/antelope-p2p/protocol/common"
	"github.com/blinklabs-io/antelope-p2p/serial"
)

// MsgChainSize is kept as an opaque payload
type MsgChainSize struct {
	MessageBase
	Payload []byte
}

func NewMsgChainSize(payload []byte) *MsgChainSize {
	return &MsgChainSize{
		MessageBase: MessageBase{
			MessageType: MessageTypeChainSize,
		},
		Payload: payload,
	}
}

func (m *MsgChainSize) encode(w *serial.Writer) {
	w.WriteBytes(m.Payload)
}

func (m *MsgChainSize) decode(r *serial.Reader) error {
	m.MessageType = MessageTypeChainSize
	m.Payload, _ = r.ReadBytes(r.Len())
	return nil
}

// MsgGoAway is kept as an opaque payload. The first byte is normally the reason code
type MsgGoAway struct {
	MessageBase
	Payload []byte
}

func NewMsgGoAway(payload []byte) *MsgGoAway {
	return &MsgGoAway{
		MessageBase: MessageBase{
			MessageType: MessageTypeGoAway,
		},
		Payload: payload,
	}
}

func (m *MsgGoAway) encode(w *serial.Writer) {
	w.WriteBytes(m.Payload)
}

func (m *MsgGoAway) decode(r *serial.Reader) error {
	m.MessageType = MessageTypeGoAway
	m.Payload, _ = r.ReadBytes(r.Len())
	return nil
}

// MsgTime carries the four timestamps (nanoseconds) used for clock synchronization
type MsgTime struct {
	MessageBase
	Org uint64 // origin timestamp
	Rec uint64 // receive timestamp
	Xmt uint64 // transmit timestamp
	Dst uint64 // destination timestamp
}

func NewMsgTime(org, rec, xmt, dst uint64) *MsgTime {
	return &MsgTime{
		MessageBase: MessageBase{
			MessageType: MessageTypeTime,
		},
		Org: org,
		Rec: rec,
		Xmt: xmt,
		Dst: dst,
	}
}

func (m *MsgTime) encode(w *serial.Writer) {
	w.WriteUint64(m.Org)
	w.WriteUint64(m.Rec)
	w.WriteUint64(m.Xmt)
	w.WriteUint64(m.Dst)
}

func (m *MsgTime) decode(r *serial.Reader) error {
	m.MessageType = MessageTypeTime
	for _, field := range []*uint64{&m.Org, &m.Rec, &m.Xmt, &m.Dst} {
		v, err := r.ReadUint64()
		if err != nil {
			return err
		}
		*field = v
	}
	return nil
}

// IdListRequest is one list of transaction or block IDs in a notice message
type IdListRequest struct {
	Mode    common.IdListMode
	Pending uint32
	Ids     []common.Checksum256
}

func (l *IdListRequest) encode(w *serial.Writer) {
	w.WriteUint32(uint32(l.Mode))
	w.WriteUint32(l.Pending)
	w.WriteVarUint32(uint32(len(l.Ids))) // #nosec G115
	for _, id := range l.Ids {
		w.WriteBytes(id[:])
	}
}

func (l *IdListRequest) decode(r *serial.Reader) error {
	mode, err := r.ReadUint32()
	if err != nil {
		return err
	}
	l.Mode = common.IdListMode(mode)
	if l.Pending, err = r.ReadUint32(); err != nil {
		return err
	}
	count, err := r.ReadVarUint32()
	if err != nil {
		return err
	}
	// Reject counts the payload cannot hold before allocating for them
	if uint64(count)*common.Checksum256Size > uint64(r.Len()) {
		return fmt.Errorf(
			"%w: id count %d exceeds remaining payload of %d bytes",
			framer.ErrMalformedFrame,
			count,
			r.Len(),
		)
	}
	l.Ids = make([]common.Checksum256, count)
	for i := range l.Ids {
		if err := r.ReadInto(l.Ids[i][:]); err != nil {
			return err
		}
	}
	return nil
}

// MsgNotice announces the transactions and blocks a peer already knows about
type MsgNotice struct {
	MessageBase
	KnownTrx    IdListRequest
	KnownBlocks IdListRequest
}

func NewMsgNotice(knownTrx, knownBlocks IdListRequest) *MsgNotice {
	return &MsgNotice{
		MessageBase: MessageBase{
			MessageType: MessageTypeNotice,
		},
		KnownTrx:    knownTrx,
		KnownBlocks: knownBlocks,
	}
}

func (m *MsgNotice) encode(w *serial.Writer) {
	m.KnownTrx.encode(w)
	m.KnownBlocks.encode(w)
}

func (m *MsgNotice) decode(r *serial.Reader) error {
	m.MessageType = MessageTypeNotice
	if err := m.KnownTrx.decode(r); err != nil {
		return fmt.Errorf("known_trx: %w", err)
	}
	if err := m.KnownBlocks.decode(r); err != nil {
		return fmt.Errorf("known_blocks: %w", err)
	}
	return nil
}

// MsgUnknown holds the raw payload of a message type this package does not handle
type MsgUnknown struct {
	MessageBase
	Payload []byte
}

func (m *MsgUnknown) encode(w *serial.Writer) {
	w.WriteBytes(m.Payload)
}

func (m *MsgUnknown) decode(r *serial.Reader) error {
	m.Payload, _ = r.ReadBytes(r.Len())
	return nil
}
