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

package bench

import (
	"reflect"
	"testing"

	"github.com/blinklabs-io/antelope-p2p/framer"
	"github.com/blinklabs-io/antelope-p2p/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureNames(t *testing.T) {
	assert.Equal(
		t,
		[]string{"go_away", "handshake", "notice", "time"},
		FixtureNames(),
	)
}

func TestLoadFrameFixture(t *testing.T) {
	for _, name := range FixtureNames() {
		t.Run(name, func(t *testing.T) {
			fixture, err := LoadFrameFixture(name)
			require.NoError(t, err)
			require.NotNil(t, fixture)
			assert.Equal(t, name, fixture.Name)
			msgType, payloadLength, err := framer.DecodeHeader(fixture.Frame)
			require.NoError(t, err)
			assert.Equal(t, fixture.Message.Type(), msgType)
			assert.Len(t, fixture.Payload(), int(payloadLength))
			msg, err := protocol.NewMsgFromBytes(msgType, fixture.Payload())
			require.NoError(t, err)
			if !reflect.DeepEqual(msg, fixture.Message) {
				t.Fatalf("fixture %s does not decode to its message", name)
			}
		})
	}
}

func TestLoadFrameFixtureUnknown(t *testing.T) {
	_, err := LoadFrameFixture("chain_size")
	require.Error(t, err)
}

func TestStreamFixture(t *testing.T) {
	fixture, err := LoadFrameFixture("time")
	require.NoError(t, err)
	stream, err := StreamFixture("time", 3)
	require.NoError(t, err)
	require.Len(t, stream, 3*len(fixture.Frame))
	d := framer.NewDecoder(0)
	d.Feed(stream)
	count := 0
	for {
		frame, err := d.Next()
		require.NoError(t, err)
		if frame == nil {
			break
		}
		count++
	}
	assert.Equal(t, 3, count)
}

func TestBenchHandshakeToken(t *testing.T) {
	msg := BenchHandshake()
	assert.Equal(t, protocol.HandshakeToken(msg.Time), msg.Token)
	assert.ErrorIs(t, msg.Verify(), protocol.ErrAnonymousHandshake)
}
