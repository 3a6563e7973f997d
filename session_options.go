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

package antelope

import (
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/blinklabs-io/antelope-p2p/protocol"
	"github.com/blinklabs-io/antelope-p2p/protocol/common"
	"github.com/btcsuite/btcd/btcec/v2"
)

const (
	DefaultP2PAddress        = "127.0.0.1:9876"
	DefaultAgent             = "Antelope P2P Client"
	DefaultHeartbeatInterval = 20 * time.Second
)

// CallbackContext provides context information to session callbacks
type CallbackContext struct {
	Session *Session
}

// Callback function types
type (
	HandshakeFunc      func(CallbackContext, *protocol.MsgHandshake) error
	TimeFunc           func(CallbackContext, *protocol.MsgTime) error
	NoticeFunc         func(CallbackContext, *protocol.MsgNotice) error
	ChainSizeFunc      func(CallbackContext, *protocol.MsgChainSize) error
	GoAwayFunc         func(CallbackContext, *protocol.MsgGoAway) error
	UnknownMessageFunc func(CallbackContext, *protocol.MsgUnknown) error
	StateChangeFunc    func(ctx CallbackContext, oldState, newState protocol.State)
	ErrorFunc          func(CallbackContext, error)
)

// SessionConfig holds the identity, behavior and callbacks of a Session
type SessionConfig struct {
	ChainId            common.Checksum256
	NetworkVersion     uint16
	P2PAddress         string
	Os                 string
	Agent              string
	HeartbeatInterval  time.Duration
	MaxFrameSize       uint32
	VerifySignatures   bool
	CloseOnGoAway      bool
	SigningKey         *btcec.PrivateKey
	Logger             *slog.Logger
	Sink               io.Writer
	HandshakeFunc      HandshakeFunc
	TimeFunc           TimeFunc
	NoticeFunc         NoticeFunc
	ChainSizeFunc      ChainSizeFunc
	GoAwayFunc         GoAwayFunc
	UnknownMessageFunc UnknownMessageFunc
	StateChangeFunc    StateChangeFunc
	ErrorFunc          ErrorFunc
}

// SessionOptionFunc is a type that represents functions that modify the Session config
type SessionOptionFunc func(*SessionConfig)

// NewSessionConfig returns a new SessionConfig with the specified options applied on top of the defaults
func NewSessionConfig(options ...SessionOptionFunc) SessionConfig {
	c := SessionConfig{
		NetworkVersion:    DefaultProtocolVersion,
		P2PAddress:        DefaultP2PAddress,
		Os:                runtime.GOOS,
		Agent:             DefaultAgent,
		HeartbeatInterval: DefaultHeartbeatInterval,
		Logger:            slog.Default(),
		Sink:              io.Discard,
	}
	// Apply provided options functions
	for _, option := range options {
		option(&c)
	}
	return c
}

// WithChainId specifies the chain ID that peers must announce
func WithChainId(chainId common.Checksum256) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.ChainId = chainId
	}
}

// WithNetwork specifies the chain ID of a known network
func WithNetwork(network Network) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.ChainId = network.ChainId
	}
}

// WithNetworkVersion specifies the net protocol version announced in the handshake
func WithNetworkVersion(version uint16) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.NetworkVersion = version
	}
}

// WithP2PAddress specifies the address announced in the handshake
func WithP2PAddress(address string) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.P2PAddress = address
	}
}

// WithOs specifies the OS string announced in the handshake
func WithOs(osName string) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.Os = osName
	}
}

// WithAgent specifies the agent string announced in the handshake
func WithAgent(agent string) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.Agent = agent
	}
}

// WithHeartbeatInterval specifies the period between time messages. A value of 0 disables the heartbeat
func WithHeartbeatInterval(interval time.Duration) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.HeartbeatInterval = interval
	}
}

// WithMaxFrameSize specifies the largest frame payload accepted from the peer
func WithMaxFrameSize(size uint32) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.MaxFrameSize = size
	}
}

// WithVerifySignatures specifies whether signed peer handshakes are checked. Failures are
// reported to the error callback and do not close the session
func WithVerifySignatures(verify bool) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.VerifySignatures = verify
	}
}

// WithCloseOnGoAway specifies whether a go away message from the peer closes the session
func WithCloseOnGoAway(closeOnGoAway bool) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.CloseOnGoAway = closeOnGoAway
	}
}

// WithSigningKey specifies a K1 key used to sign outbound handshakes. Handshakes are anonymous by default
func WithSigningKey(key *btcec.PrivateKey) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.SigningKey = key
	}
}

// WithLogger specifies the logger to use
func WithLogger(logger *slog.Logger) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.Logger = logger
	}
}

// WithSink specifies where outbound frames are written. The sink is closed with the session if it is an io.Closer
func WithSink(sink io.Writer) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.Sink = sink
	}
}

// WithHandshakeFunc specifies the callback for a validated peer handshake
func WithHandshakeFunc(handshakeFunc HandshakeFunc) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.HandshakeFunc = handshakeFunc
	}
}

// WithTimeFunc specifies the callback for time messages
func WithTimeFunc(timeFunc TimeFunc) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.TimeFunc = timeFunc
	}
}

// WithNoticeFunc specifies the callback for notice messages
func WithNoticeFunc(noticeFunc NoticeFunc) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.NoticeFunc = noticeFunc
	}
}

// WithChainSizeFunc specifies the callback for chain size messages
func WithChainSizeFunc(chainSizeFunc ChainSizeFunc) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.ChainSizeFunc = chainSizeFunc
	}
}

// WithGoAwayFunc specifies the callback for go away messages
func WithGoAwayFunc(goAwayFunc GoAwayFunc) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.GoAwayFunc = goAwayFunc
	}
}

// WithUnknownMessageFunc specifies the callback for messages of an unhandled type
func WithUnknownMessageFunc(unknownMessageFunc UnknownMessageFunc) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.UnknownMessageFunc = unknownMessageFunc
	}
}

// WithStateChangeFunc specifies the callback for session state changes
func WithStateChangeFunc(stateChangeFunc StateChangeFunc) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.StateChangeFunc = stateChangeFunc
	}
}

// WithErrorFunc specifies the callback for errors that do not close the session
func WithErrorFunc(errorFunc ErrorFunc) SessionOptionFunc {
	return func(c *SessionConfig) {
		c.ErrorFunc = errorFunc
	}
}
