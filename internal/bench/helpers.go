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

// Package bench provides benchmark fixtures for the wire codec and session.
package bench

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/blinklabs-io/antelope-p2p/framer"
	"github.com/blinklabs-io/antelope-p2p/protocol"
	"github.com/blinklabs-io/antelope-p2p/protocol/common"
)

// FrameFixture contains a pre-encoded frame for benchmarking.
type FrameFixture struct {
	Name    string
	Message protocol.Message
	Frame   []byte
}

// Payload returns the frame without its header
func (f *FrameFixture) Payload() []byte {
	return f.Frame[framer.HeaderLength:]
}

var fixtureBuilders = map[string]func() protocol.Message{
	"handshake": func() protocol.Message {
		return BenchHandshake()
	},
	"time": func() protocol.Message {
		return protocol.NewMsgTime(1, 2, 1700000000000000000, 0)
	},
	"notice": func() protocol.Message {
		return BenchNotice(64)
	},
	"go_away": func() protocol.Message {
		return protocol.NewMsgGoAway([]byte{0x08})
	},
}

// FixtureNames returns the names accepted by LoadFrameFixture, sorted.
func FixtureNames() []string {
	ret := make([]string, 0, len(fixtureBuilders))
	for name := range fixtureBuilders {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// LoadFrameFixture builds and encodes the named fixture.
func LoadFrameFixture(name string) (*FrameFixture, error) {
	builder, ok := fixtureBuilders[name]
	if !ok {
		return nil, fmt.Errorf("unknown fixture: %s", name)
	}
	msg := builder()
	frame, err := protocol.EncodeFrame(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s fixture: %w", name, err)
	}
	return &FrameFixture{
		Name:    name,
		Message: msg,
		Frame:   frame,
	}, nil
}

// BenchChainId is the chain ID used by the handshake fixture
var BenchChainId = filledChecksum(0x10)

// BenchHandshake returns a handshake with every field populated
func BenchHandshake() *protocol.MsgHandshake {
	msg := protocol.NewMsgHandshake()
	msg.NetworkVersion = 1212
	msg.ChainId = BenchChainId
	msg.NodeId = filledChecksum(0xaa)
	msg.Time = 1700000000000000000
	msg.Token = protocol.HandshakeToken(msg.Time)
	msg.P2PAddress = "bench.peer:9876"
	msg.LibBlockNum = 90
	msg.LibBlockId = filledChecksum(0x5a)
	msg.HeadBlockNum = 100
	msg.HeadBlockId = filledChecksum(0x64)
	msg.Os = "linux"
	msg.Agent = "Bench Peer"
	msg.Generation = 1
	return msg
}

// BenchNotice returns a notice announcing count transaction ids
func BenchNotice(count int) *protocol.MsgNotice {
	ids := make([]common.Checksum256, count)
	for i := range ids {
		ids[i][0] = byte(i)
		ids[i][31] = byte(i >> 8)
	}
	return protocol.NewMsgNotice(
		protocol.IdListRequest{Mode: common.IdListModeNormal, Ids: ids},
		protocol.IdListRequest{Mode: common.IdListModeNone, Ids: []common.Checksum256{}},
	)
}

// StreamFixture returns count copies of the named fixture's frame back to back
func StreamFixture(name string, count int) ([]byte, error) {
	fixture, err := LoadFrameFixture(name)
	if err != nil {
		return nil, err
	}
	return bytes.Repeat(fixture.Frame, count), nil
}

func filledChecksum(b byte) common.Checksum256 {
	var ret common.Checksum256
	for i := range ret {
		ret[i] = b
	}
	return ret
}
