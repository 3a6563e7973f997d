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

package protocol_test

import (
	"bytes"
	"encoding/hex"
	"reflect"
	"strings"
	"testing"

	"github.com/blinklabs-io/antelope-p2p/framer"
	"github.com/blinklabs-io/antelope-p2p/internal/test"
	"github.com/blinklabs-io/antelope-p2p/protocol"
	"github.com/blinklabs-io/antelope-p2p/protocol/common"
	"github.com/blinklabs-io/antelope-p2p/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDefinition struct {
	Name        string
	MessageType uint8
	PayloadHex  string
	Message     protocol.Message
}

var noticePayloadHex = strings.Join(
	[]string{
		// known_trx: mode, pending, count, ids
		"00000000",
		"00000000",
		"02",
		strings.Repeat("01", 32),
		strings.Repeat("02", 32),
		// known_blocks
		"01000000",
		"00000000",
		"00",
	},
	"",
)

func bytes32(b byte) common.Checksum256 {
	var ret common.Checksum256
	copy(ret[:], bytes.Repeat([]byte{b}, 32))
	return ret
}

var tests = []testDefinition{
	{
		Name:        "Time",
		MessageType: protocol.MessageTypeTime,
		PayloadHex:  "0100000000000000020000000000000015cd5b07000000000000000000000000",
		Message:     protocol.NewMsgTime(1, 2, 123456789, 0),
	},
	{
		Name:        "Notice",
		MessageType: protocol.MessageTypeNotice,
		PayloadHex:  noticePayloadHex,
		Message: protocol.NewMsgNotice(
			protocol.IdListRequest{
				Mode:    common.IdListModeNone,
				Pending: 0,
				Ids: []common.Checksum256{
					bytes32(0x01),
					bytes32(0x02),
				},
			},
			protocol.IdListRequest{
				Mode: common.IdListModeCatchUp,
				Ids:  []common.Checksum256{},
			},
		),
	},
	{
		Name:        "ChainSize",
		MessageType: protocol.MessageTypeChainSize,
		PayloadHex:  "0a000000",
		Message:     protocol.NewMsgChainSize(test.DecodeHexString("0a000000")),
	},
	{
		Name:        "GoAway",
		MessageType: protocol.MessageTypeGoAway,
		PayloadHex:  "08",
		Message:     protocol.NewMsgGoAway(test.DecodeHexString("08")),
	},
	{
		Name:        "Unknown",
		MessageType: 9,
		PayloadHex:  "deadbeef",
		Message: &protocol.MsgUnknown{
			MessageBase: protocol.MessageBase{MessageType: 9},
			Payload:     test.DecodeHexString("deadbeef"),
		},
	},
}

func TestDecode(t *testing.T) {
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			payload, err := hex.DecodeString(test.PayloadHex)
			require.NoError(t, err)
			msg, err := protocol.NewMsgFromBytes(test.MessageType, payload)
			require.NoError(t, err)
			if !reflect.DeepEqual(msg, test.Message) {
				t.Fatalf(
					"message does not match expected value\n  got:    %#v\n  wanted: %#v",
					msg,
					test.Message,
				)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			payload, err := protocol.EncodeMessage(test.Message)
			require.NoError(t, err)
			assert.Equal(t, test.PayloadHex, hex.EncodeToString(payload))
		})
	}
}

func TestEncodeTimeFrame(t *testing.T) {
	data, err := protocol.EncodeFrame(protocol.NewMsgTime(1, 2, 123456789, 0))
	require.NoError(t, err)
	assert.Equal(t, "2100000003"+tests[0].PayloadHex, hex.EncodeToString(data))
	d := framer.NewDecoder(0)
	d.Feed(data)
	frame, err := d.Next()
	require.NoError(t, err)
	require.NotNil(t, frame)
	msg, err := protocol.DecodeFrame(frame)
	require.NoError(t, err)
	msgTime, ok := msg.(*protocol.MsgTime)
	require.True(t, ok)
	assert.Equal(t, uint64(123456789), msgTime.Xmt)
}

func TestNoticeScenario(t *testing.T) {
	msg, err := protocol.NewMsgFromBytes(
		protocol.MessageTypeNotice,
		test.DecodeHexString(noticePayloadHex),
	)
	require.NoError(t, err)
	notice, ok := msg.(*protocol.MsgNotice)
	require.True(t, ok)
	require.Len(t, notice.KnownTrx.Ids, 2)
	assert.Equal(t, bytes32(0x01), notice.KnownTrx.Ids[0])
	assert.Equal(t, bytes32(0x02), notice.KnownTrx.Ids[1])
	assert.Equal(t, common.IdListModeCatchUp, notice.KnownBlocks.Mode)
	assert.Empty(t, notice.KnownBlocks.Ids)
}

func TestNoticeCountOverrun(t *testing.T) {
	// A count of 3 with room for only one id
	payload := test.DecodeHexString(
		"00000000" + "00000000" + "03" + strings.Repeat("01", 32),
	)
	_, err := protocol.NewMsgFromBytes(protocol.MessageTypeNotice, payload)
	assert.ErrorIs(t, err, framer.ErrMalformedFrame)
	// A huge count must not be allocated
	payload = test.DecodeHexString("00000000" + "00000000" + "ffffffff0f")
	_, err = protocol.NewMsgFromBytes(protocol.MessageTypeNotice, payload)
	assert.ErrorIs(t, err, framer.ErrMalformedFrame)
}

func TestTruncatedTime(t *testing.T) {
	payload := test.DecodeHexString(tests[0].PayloadHex)
	for i := range len(payload) {
		_, err := protocol.NewMsgFromBytes(protocol.MessageTypeTime, payload[:i])
		assert.ErrorIs(t, err, serial.ErrBufferUnderrun, "truncated to %d", i)
	}
}

func TestDecodeIdempotent(t *testing.T) {
	data, err := protocol.EncodeFrame(newTestHandshake())
	require.NoError(t, err)
	msgType, _, err := framer.DecodeHeader(data)
	require.NoError(t, err)
	payload := data[framer.HeaderLength:]
	first, err := protocol.NewMsgFromBytes(msgType, payload)
	require.NoError(t, err)
	second, err := protocol.NewMsgFromBytes(msgType, payload)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMessageTypeName(t *testing.T) {
	assert.Equal(t, "handshake", protocol.MessageTypeName(protocol.MessageTypeHandshake))
	assert.Equal(t, "notice", protocol.MessageTypeName(protocol.MessageTypeNotice))
	assert.Equal(t, "unknown(42)", protocol.MessageTypeName(42))
}
