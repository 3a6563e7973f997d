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
	"testing"

	"github.com/blinklabs-io/antelope-p2p/framer"
	"github.com/blinklabs-io/antelope-p2p/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func readClientMessage(t *testing.T, c *Connection) protocol.Message {
	t.Helper()
	d := framer.NewDecoder(0)
	buf := make([]byte, 1024)
	for {
		n, err := c.Read(buf)
		require.NoError(t, err)
		d.Feed(buf[:n])
		frame, err := d.Next()
		require.NoError(t, err)
		if frame != nil {
			msg, err := protocol.DecodeFrame(frame)
			require.NoError(t, err)
			return msg
		}
	}
}

func writeClientMessage(t *testing.T, c *Connection, msg protocol.Message) {
	t.Helper()
	data, err := protocol.EncodeFrame(msg)
	require.NoError(t, err)
	_, err = c.Write(data)
	require.NoError(t, err)
}

// Basic test of conversation mock functionality
func TestBasic(t *testing.T) {
	defer goleak.VerifyNone(t)
	mockConn := NewConnection(
		[]ConversationEntry{
			ConversationEntryTime,
			ConversationEntryHandshakeRequestGeneric,
			ConversationEntryHandshakeResponse,
		},
	)
	msg := readClientMessage(t, mockConn)
	assert.Equal(t, protocol.MessageTypeTime, msg.Type())
	writeClientMessage(t, mockConn, protocol.NewMsgHandshake())
	msg = readClientMessage(t, mockConn)
	handshake, ok := msg.(*protocol.MsgHandshake)
	require.True(t, ok)
	assert.Equal(t, MockChainId, handshake.ChainId)
	for err := range mockConn.ErrorChan() {
		t.Errorf("unexpected conversation error: %s", err)
	}
	require.NoError(t, mockConn.Close())
}

func TestUnexpectedInput(t *testing.T) {
	defer goleak.VerifyNone(t)
	mockConn := NewConnection(
		[]ConversationEntry{
			ConversationEntryHandshakeRequestGeneric,
		},
	)
	writeClientMessage(t, mockConn, protocol.NewMsgTime(0, 0, 1, 0))
	err, ok := <-mockConn.ErrorChan()
	require.True(t, ok)
	assert.ErrorContains(t, err, "input message is not of expected type")
	require.NoError(t, mockConn.Close())
	mockConn.Wait()
}

func TestIgnoreMessageType(t *testing.T) {
	defer goleak.VerifyNone(t)
	mockConn := NewConnection(
		[]ConversationEntry{
			{
				Type:         EntryTypeInput,
				InputMessage: protocol.NewMsgChainSize([]byte{0x01}),
			},
		},
		protocol.MessageTypeTime,
	)
	writeClientMessage(t, mockConn, protocol.NewMsgTime(0, 0, 1, 0))
	writeClientMessage(t, mockConn, protocol.NewMsgChainSize([]byte{0x01}))
	for err := range mockConn.ErrorChan() {
		t.Errorf("unexpected conversation error: %s", err)
	}
	require.NoError(t, mockConn.Close())
}
