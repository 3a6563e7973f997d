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

package antelope_mock

import (
	"github.com/blinklabs-io/antelope-p2p/protocol"
	"github.com/blinklabs-io/antelope-p2p/protocol/common"
)

const (
	MockHeadBlockNum uint32 = 100
	MockLibBlockNum  uint32 = 90
	MockAgent               = "Mock Peer"
)

// MockChainId is the WAX chain ID
var MockChainId = common.Checksum256{
	0x10, 0x64, 0x48, 0x7b, 0x3c, 0xd1, 0xa8, 0x97,
	0xce, 0x03, 0xae, 0x5b, 0x6a, 0x86, 0x56, 0x51,
	0x74, 0x7e, 0x2e, 0x15, 0x20, 0x90, 0xf9, 0x9c,
	0x1d, 0x19, 0xd4, 0x4e, 0x01, 0xae, 0xa5, 0xa4,
}

type EntryType int

const (
	EntryTypeNone   EntryType = 0
	EntryTypeInput  EntryType = 1
	EntryTypeOutput EntryType = 2
	EntryTypeClose  EntryType = 3
)

// InputMatchFunc checks a received message and returns an error if it is not the expected one
type InputMatchFunc func(protocol.Message) error

type ConversationEntry struct {
	Type             EntryType
	OutputMessages   []protocol.Message
	InputMessage     protocol.Message
	InputMessageType uint8
	InputMatchFunc   InputMatchFunc
}

// ConversationEntryHandshakeRequestGeneric is a pre-defined conversation entry that matches any
// handshake from the client
var ConversationEntryHandshakeRequestGeneric = ConversationEntry{
	Type:             EntryTypeInput,
	InputMessageType: protocol.MessageTypeHandshake,
}

// ConversationEntryTimeRequestGeneric is a pre-defined conversation entry that matches any time
// message from the client
var ConversationEntryTimeRequestGeneric = ConversationEntry{
	Type:             EntryTypeInput,
	InputMessageType: protocol.MessageTypeTime,
}

// ConversationEntryTime is a pre-defined conversation entry for a time message from the peer
var ConversationEntryTime = ConversationEntry{
	Type: EntryTypeOutput,
	OutputMessages: []protocol.Message{
		protocol.NewMsgTime(0, 0, 1700000000000000000, 0),
	},
}

// ConversationEntryHandshakeResponse is a pre-defined conversation entry for a handshake from a
// peer on the mock chain
var ConversationEntryHandshakeResponse = ConversationEntry{
	Type: EntryTypeOutput,
	OutputMessages: []protocol.Message{
		NewMockHandshake(MockChainId),
	},
}

// ConversationEntryClose closes the connection from the peer side
var ConversationEntryClose = ConversationEntry{
	Type: EntryTypeClose,
}

// NewMockHandshake returns a handshake announcing the mock head and LIB for the given chain
func NewMockHandshake(chainId common.Checksum256) *protocol.MsgHandshake {
	msg := protocol.NewMsgHandshake()
	msg.NetworkVersion = 1212
	msg.ChainId = chainId
	msg.NodeId = common.Checksum256{0x01}
	msg.Time = 1700000000000000000
	msg.P2PAddress = "mock.peer:9876"
	msg.LibBlockNum = MockLibBlockNum
	msg.LibBlockId = common.Checksum256{0x00, 0x00, 0x00, 0x5a}
	msg.HeadBlockNum = MockHeadBlockNum
	msg.HeadBlockId = common.Checksum256{0x00, 0x00, 0x00, 0x64}
	msg.Os = "linux"
	msg.Agent = MockAgent
	msg.Generation = 1
	return msg
}
