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

package antelope_test

import (
	"io"
	"net"
	"testing"
	"time"

	antelope "github.com/blinklabs-io/antelope-p2p"
	"github.com/blinklabs-io/antelope-p2p/framer"
	"github.com/blinklabs-io/antelope-p2p/internal/test/antelope_mock"
	"github.com/blinklabs-io/antelope-p2p/protocol"
	"github.com/blinklabs-io/antelope-p2p/protocol/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestSessionConfig(options ...antelope.SessionOptionFunc) antelope.SessionConfig {
	return antelope.NewSessionConfig(
		append(
			[]antelope.SessionOptionFunc{
				antelope.WithChainId(antelope_mock.MockChainId),
				antelope.WithHeartbeatInterval(0),
				antelope.WithLogger(discardLogger),
			},
			options...,
		)...,
	)
}

func checkConversation(t *testing.T, mockConn *antelope_mock.Connection) {
	t.Helper()
	for err := range mockConn.ErrorChan() {
		t.Errorf("conversation error: %s", err)
	}
}

func TestConnectionHandshake(t *testing.T) {
	defer goleak.VerifyNone(t)
	mockConn := antelope_mock.NewConnection(
		[]antelope_mock.ConversationEntry{
			antelope_mock.ConversationEntryTime,
			antelope_mock.ConversationEntryHandshakeRequestGeneric,
			antelope_mock.ConversationEntryHandshakeResponse,
		},
	)
	handshakeChan := make(chan *protocol.MsgHandshake, 1)
	oConn, err := antelope.NewConnection(
		antelope.WithConnection(mockConn),
		antelope.WithSessionConfig(
			newTestSessionConfig(
				antelope.WithHandshakeFunc(
					func(_ antelope.CallbackContext, msg *protocol.MsgHandshake) error {
						handshakeChan <- msg
						return nil
					},
				),
			),
		),
	)
	require.NoError(t, err)
	select {
	case msg := <-handshakeChan:
		assert.Equal(t, antelope_mock.MockAgent, msg.Agent)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for peer handshake")
	}
	checkConversation(t, mockConn)
	session := oConn.Session()
	assert.Equal(t, antelope_mock.MockHeadBlockNum, session.HeadBlockNum())
	assert.Equal(t, antelope_mock.MockLibBlockNum, session.LibBlockNum())
	assert.Equal(t, antelope.StateSynced, session.State())
	assert.True(t, session.HandshakeSent())
	require.NoError(t, oConn.Close())
	assert.Equal(t, antelope.StateClosed, session.State())
	// Closing twice is harmless
	require.NoError(t, oConn.Close())
}

func TestConnectionPeerClose(t *testing.T) {
	defer goleak.VerifyNone(t)
	mockConn := antelope_mock.NewConnection(
		[]antelope_mock.ConversationEntry{
			antelope_mock.ConversationEntryTime,
			antelope_mock.ConversationEntryHandshakeRequestGeneric,
			antelope_mock.ConversationEntryClose,
		},
	)
	oConn, err := antelope.NewConnection(
		antelope.WithConnection(mockConn),
		antelope.WithSessionConfig(newTestSessionConfig()),
	)
	require.NoError(t, err)
	select {
	case err := <-oConn.ErrorChan():
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for connection error")
	}
	checkConversation(t, mockConn)
	select {
	case <-oConn.Session().DoneChan():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session to close")
	}
	assert.Equal(t, antelope.StateClosed, oConn.Session().State())
	_ = oConn.Close()
}

func TestConnectionChainIdMismatch(t *testing.T) {
	defer goleak.VerifyNone(t)
	var otherChain common.Checksum256
	otherChain[31] = 0x01
	mockConn := antelope_mock.NewConnection(
		[]antelope_mock.ConversationEntry{
			{
				Type: antelope_mock.EntryTypeOutput,
				OutputMessages: []protocol.Message{
					antelope_mock.NewMockHandshake(otherChain),
				},
			},
		},
	)
	oConn, err := antelope.NewConnection(
		antelope.WithConnection(mockConn),
		antelope.WithSessionConfig(newTestSessionConfig()),
	)
	require.NoError(t, err)
	select {
	case err := <-oConn.ErrorChan():
		assert.ErrorIs(t, err, antelope.ErrChainIdMismatch)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for connection error")
	}
	checkConversation(t, mockConn)
	assert.Equal(t, antelope.StateClosed, oConn.Session().State())
	assert.False(t, oConn.Session().HandshakeSent())
	_ = oConn.Close()
}

func TestConnectionCloseFromStateChange(t *testing.T) {
	defer goleak.VerifyNone(t)
	var otherChain common.Checksum256
	otherChain[31] = 0x01
	mockConn := antelope_mock.NewConnection(
		[]antelope_mock.ConversationEntry{
			{
				Type: antelope_mock.EntryTypeOutput,
				OutputMessages: []protocol.Message{
					antelope_mock.NewMockHandshake(otherChain),
				},
			},
		},
	)
	connChan := make(chan *antelope.Connection, 1)
	closeErrChan := make(chan error, 1)
	oConn, err := antelope.NewConnection(
		antelope.WithConnection(mockConn),
		antelope.WithSessionConfig(
			newTestSessionConfig(
				antelope.WithStateChangeFunc(
					func(_ antelope.CallbackContext, _, newState protocol.State) {
						if newState == antelope.StateClosed {
							conn := <-connChan
							closeErrChan <- conn.Close()
						}
					},
				),
			),
		),
	)
	require.NoError(t, err)
	connChan <- oConn
	select {
	case err := <-closeErrChan:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Close called from the state change callback")
	}
	// The error channel is closed once the read loop exits
	drained := make(chan struct{})
	go func() {
		for range oConn.ErrorChan() {
		}
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the error channel to close")
	}
	checkConversation(t, mockConn)
	assert.Equal(t, antelope.StateClosed, oConn.Session().State())
	require.NoError(t, oConn.Close())
}

func TestConnectionHeartbeat(t *testing.T) {
	defer goleak.VerifyNone(t)
	mockConn := antelope_mock.NewConnection(
		[]antelope_mock.ConversationEntry{
			antelope_mock.ConversationEntryTimeRequestGeneric,
			antelope_mock.ConversationEntryTimeRequestGeneric,
			antelope_mock.ConversationEntryTimeRequestGeneric,
		},
	)
	oConn, err := antelope.NewConnection(
		antelope.WithConnection(mockConn),
		antelope.WithSessionConfig(
			newTestSessionConfig(antelope.WithHeartbeatInterval(10*time.Millisecond)),
		),
	)
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		checkConversation(t, mockConn)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("timed out waiting for heartbeats")
	}
	require.NoError(t, oConn.Close())
	<-done
	assert.GreaterOrEqual(t, oConn.Session().Metrics().Snapshot().HeartbeatsSent, uint64(3))
}

func TestConnectionNoChainId(t *testing.T) {
	defer goleak.VerifyNone(t)
	mockConn := antelope_mock.NewConnection(nil)
	_, err := antelope.NewConnection(
		antelope.WithConnection(mockConn),
		antelope.WithSessionConfig(antelope.NewSessionConfig()),
	)
	assert.ErrorIs(t, err, antelope.ErrInvalidChainId)
	mockConn.Wait()
}

func TestConnectionDial(t *testing.T) {
	defer goleak.VerifyNone(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	peerChan := make(chan *framer.Frame, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			close(peerChan)
			return
		}
		defer conn.Close()
		timeFrame, _ := protocol.EncodeFrame(protocol.NewMsgTime(0, 0, 1, 0))
		if _, err := conn.Write(timeFrame); err != nil {
			close(peerChan)
			return
		}
		d := framer.NewDecoder(0)
		buf := make([]byte, 1024)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				close(peerChan)
				return
			}
			d.Feed(buf[:n])
			frame, err := d.Next()
			if err != nil {
				close(peerChan)
				return
			}
			if frame != nil {
				peerChan <- frame
				return
			}
		}
	}()
	oConn, err := antelope.NewConnection(
		antelope.WithSessionConfig(newTestSessionConfig()),
		antelope.WithReadBufferSize(16),
	)
	require.NoError(t, err)
	assert.Nil(t, oConn.Session())
	require.NoError(t, oConn.Dial("tcp", listener.Addr().String()))
	assert.Error(t, oConn.Dial("tcp", listener.Addr().String()))
	select {
	case frame, ok := <-peerChan:
		require.True(t, ok, "peer did not receive a frame")
		assert.Equal(t, protocol.MessageTypeHandshake, frame.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for handshake")
	}
	require.NoError(t, oConn.Close())
}
