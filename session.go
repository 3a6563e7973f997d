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

// Package antelope implements the client side of the Antelope (EOSIO/Leap) peer-to-peer
// handshake protocol.
//
// A Session consumes the byte stream received from a peer, answers the peer's first time
// message with a handshake, keeps the connection alive with periodic time messages and
// reports the peer's announced head and last irreversible block. A Connection drives a
// Session over a net.Conn.
package antelope

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/antelope-p2p/framer"
	"github.com/blinklabs-io/antelope-p2p/protocol"
	"github.com/blinklabs-io/antelope-p2p/serial"
)

// Session states
var (
	StateConnected          = protocol.NewState(1, "Connected")
	StateHandshakeExchanged = protocol.NewState(2, "HandshakeExchanged")
	StateSynced             = protocol.NewState(3, "Synced")
	StateClosed             = protocol.NewState(4, "Closed")
)

// StateMap defines the state transitions driven by received messages. Sending our own
// handshake moves a session from Connected to HandshakeExchanged, and errors move it to Closed
var StateMap = protocol.StateMap{
	StateConnected: protocol.StateMapEntry{
		Transitions: []protocol.StateTransition{
			{
				MsgType:  protocol.MessageTypeTime,
				NewState: StateSynced,
			},
		},
	},
	StateHandshakeExchanged: protocol.StateMapEntry{
		Transitions: []protocol.StateTransition{
			{
				MsgType:  protocol.MessageTypeTime,
				NewState: StateSynced,
			},
		},
	},
	StateSynced: protocol.StateMapEntry{},
	StateClosed: protocol.StateMapEntry{
		Terminal: true,
	},
}

// Session is the state of one logical connection to a peer
type Session struct {
	config  SessionConfig
	logger  *slog.Logger
	metrics *Metrics
	// Guards the decoder and serializes message handling
	recvMutex sync.Mutex
	decoder   *framer.Decoder
	// Guards writes to the sink and handshakeSent
	sendMutex     sync.Mutex
	handshakeSent bool
	// Guards the fields below
	mutex         sync.Mutex
	stateMap      protocol.StateMap
	state         protocol.State
	headBlockNum  uint32
	libBlockNum   uint32
	peerHandshake *protocol.MsgHandshake
	peerXmt       uint64
	heartbeat     *heartbeat
	doneChan      chan struct{}
	onceClose     sync.Once
}

// NewSession returns a new Session with the specified options. A chain ID is required
func NewSession(options ...SessionOptionFunc) (*Session, error) {
	return newSession(NewSessionConfig(options...))
}

func newSession(config SessionConfig) (*Session, error) {
	if config.ChainId.IsZero() {
		return nil, fmt.Errorf("%w: no chain ID configured", ErrInvalidChainId)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Sink == nil {
		config.Sink = io.Discard
	}
	s := &Session{
		config:   config,
		logger:   config.Logger.With("component", "session"),
		metrics:  NewMetrics(),
		decoder:  framer.NewDecoder(config.MaxFrameSize),
		stateMap: StateMap.Copy(),
		state:    StateConnected,
		doneChan: make(chan struct{}),
	}
	s.heartbeat = newHeartbeat(
		config.HeartbeatInterval,
		s.sendHeartbeat,
		func(err error) {
			if s.isClosed() {
				return
			}
			s.reportError(fmt.Errorf("heartbeat: %w", err))
		},
	)
	return s, nil
}

// Start arms the heartbeat
func (s *Session) Start() error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	s.heartbeat.start()
	return nil
}

// Receive processes a chunk of bytes from the peer. Chunks may contain any number of frames
// or partial frames. An error is returned when the session was closed as a result
func (s *Session) Receive(data []byte) error {
	s.recvMutex.Lock()
	defer s.recvMutex.Unlock()
	if s.isClosed() {
		return ErrSessionClosed
	}
	s.metrics.RecordReceive(len(data))
	s.decoder.Feed(data)
	for !s.isClosed() {
		frame, err := s.decoder.Next()
		if err != nil {
			s.logger.Error(
				"framing error, closing session",
				"error", err,
			)
			_ = s.Close()
			return err
		}
		if frame == nil {
			break
		}
		msg, err := protocol.DecodeFrame(frame)
		s.metrics.RecordFrame(err)
		if err != nil {
			s.logger.Warn(
				"dropping message that failed to decode",
				"type", protocol.MessageTypeName(frame.Type),
				"length", frame.Length,
				"error", err,
			)
			s.reportError(err)
			continue
		}
		s.logger.Debug(
			"received message",
			"type", protocol.MessageTypeName(frame.Type),
			"length", frame.Length,
		)
		if err := s.handleMessage(msg); err != nil {
			_ = s.Close()
			return err
		}
	}
	return nil
}

// EndOfStream closes the session after the peer stopped sending. An error wrapping
// serial.ErrBufferUnderrun is returned if a partial frame was left over
func (s *Session) EndOfStream() error {
	s.recvMutex.Lock()
	buffered := s.decoder.Buffered()
	s.recvMutex.Unlock()
	s.logger.Info("peer closed the connection")
	closeErr := s.Close()
	if buffered > 0 {
		return fmt.Errorf(
			"end of stream with %d bytes of an incomplete frame: %w",
			buffered,
			serial.ErrBufferUnderrun,
		)
	}
	return closeErr
}

// SendHandshake sends our handshake if it has not been sent yet
func (s *Session) SendHandshake() error {
	_, err := s.sendHandshakeOnce()
	return err
}

// Close stops the heartbeat and closes the sink if it is an io.Closer. It is safe to call more than once,
// including from a session callback
func (s *Session) Close() error {
	var err error
	var oldState protocol.State
	var changed bool
	s.onceClose.Do(func() {
		close(s.doneChan)
		// Closing the sink unblocks a write in progress
		if closer, ok := s.config.Sink.(io.Closer); ok {
			err = closer.Close()
		}
		s.heartbeat.stop()
		oldState, changed = s.swapState(StateClosed)
		s.logger.Debug("session closed")
	})
	// Observers are notified outside of the once so that they may call Close again
	if changed {
		s.notifyStateChange(oldState, StateClosed)
	}
	return err
}

// DoneChan returns a channel that is closed when the session is closed
func (s *Session) DoneChan() <-chan struct{} {
	return s.doneChan
}

// State returns the current session state
func (s *Session) State() protocol.State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// HeadBlockNum returns the head block number from the last validated peer handshake
func (s *Session) HeadBlockNum() uint32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.headBlockNum
}

// LibBlockNum returns the last irreversible block number from the last validated peer handshake
func (s *Session) LibBlockNum() uint32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.libBlockNum
}

// PeerHandshake returns the last validated peer handshake, or nil
func (s *Session) PeerHandshake() *protocol.MsgHandshake {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.peerHandshake
}

// PeerTime returns the transmit time of the last time message from the peer
func (s *Session) PeerTime() time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.peerXmt == 0 {
		return time.Time{}
	}
	return time.Unix(0, int64(s.peerXmt)) // #nosec G115
}

// HandshakeSent returns true once our handshake has been written to the peer
func (s *Session) HandshakeSent() bool {
	s.sendMutex.Lock()
	defer s.sendMutex.Unlock()
	return s.handshakeSent
}

func (s *Session) Metrics() *Metrics {
	return s.metrics
}

func (s *Session) ChainId() string {
	return s.config.ChainId.String()
}

func (s *Session) isClosed() bool {
	select {
	case <-s.doneChan:
		return true
	default:
		return false
	}
}

func (s *Session) callbackContext() CallbackContext {
	return CallbackContext{
		Session: s,
	}
}

func (s *Session) reportError(err error) {
	if s.config.ErrorFunc != nil {
		s.config.ErrorFunc(s.callbackContext(), err)
	}
}

func (s *Session) setState(newState protocol.State) {
	if oldState, changed := s.swapState(newState); changed {
		s.notifyStateChange(oldState, newState)
	}
}

// swapState records the new state and returns the previous one. Closed is never left
func (s *Session) swapState(newState protocol.State) (protocol.State, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	oldState := s.state
	if oldState == newState || oldState == StateClosed {
		return oldState, false
	}
	s.state = newState
	return oldState, true
}

func (s *Session) notifyStateChange(oldState, newState protocol.State) {
	s.logger.Debug(
		"session state changed",
		"from", oldState.String(),
		"to", newState.String(),
	)
	if s.config.StateChangeFunc != nil {
		s.config.StateChangeFunc(s.callbackContext(), oldState, newState)
	}
}

func (s *Session) handleMessage(msg protocol.Message) error {
	var err error
	switch m := msg.(type) {
	case *protocol.MsgHandshake:
		err = s.handleHandshake(m)
	case *protocol.MsgTime:
		err = s.handleTime(m)
	case *protocol.MsgChainSize:
		if s.config.ChainSizeFunc != nil {
			err = s.config.ChainSizeFunc(s.callbackContext(), m)
		}
	case *protocol.MsgGoAway:
		err = s.handleGoAway(m)
	case *protocol.MsgNotice:
		err = s.handleNotice(m)
	case *protocol.MsgUnknown:
		s.logger.Debug(
			"received message of unknown type",
			"type", m.Type(),
			"length", len(m.Payload),
		)
		if s.config.UnknownMessageFunc != nil {
			err = s.config.UnknownMessageFunc(s.callbackContext(), m)
		}
	default:
		err = fmt.Errorf("unexpected message type %T", msg)
	}
	if err != nil {
		return err
	}
	s.mutex.Lock()
	nextState, ok := s.stateMap.NextState(s.state, msg)
	s.mutex.Unlock()
	if ok {
		s.setState(nextState)
	}
	return nil
}

func (s *Session) handleHandshake(msg *protocol.MsgHandshake) error {
	if msg.ChainId != s.config.ChainId {
		s.logger.Warn(
			"peer chain ID does not match, closing session",
			"peer_chain_id", msg.ChainId.String(),
			"chain_id", s.config.ChainId.String(),
		)
		return fmt.Errorf(
			"%w: peer announced %s, expected %s",
			ErrChainIdMismatch,
			msg.ChainId,
			s.config.ChainId,
		)
	}
	s.mutex.Lock()
	s.headBlockNum = msg.HeadBlockNum
	s.libBlockNum = msg.LibBlockNum
	s.peerHandshake = msg
	s.mutex.Unlock()
	s.logger.Info(
		"received handshake",
		"head", msg.HeadBlockNum,
		"lib", msg.LibBlockNum,
		"agent", msg.Agent,
		"p2p_address", msg.P2PAddress,
		"network_version", GetProtocolVersion(msg.NetworkVersion).String(),
		"generation", msg.Generation,
	)
	if s.config.VerifySignatures {
		if err := msg.Verify(); err != nil {
			if errors.Is(err, protocol.ErrAnonymousHandshake) {
				s.logger.Debug("peer handshake is not signed")
			} else {
				s.logger.Warn(
					"peer handshake failed verification",
					"key", msg.Key.String(),
					"error", err,
				)
				s.reportError(err)
			}
		}
	}
	if s.config.HandshakeFunc != nil {
		return s.config.HandshakeFunc(s.callbackContext(), msg)
	}
	return nil
}

func (s *Session) handleTime(msg *protocol.MsgTime) error {
	s.mutex.Lock()
	s.peerXmt = msg.Xmt
	s.mutex.Unlock()
	s.logger.Debug(
		"received time",
		"xmt", time.Unix(0, int64(msg.Xmt)).UTC(), // #nosec G115
	)
	if s.config.TimeFunc != nil {
		if err := s.config.TimeFunc(s.callbackContext(), msg); err != nil {
			return err
		}
	}
	// Write failures are reported but do not close the session
	if _, err := s.sendHandshakeOnce(); err != nil && !errors.Is(err, ErrSessionClosed) {
		s.reportError(err)
	}
	return nil
}

func (s *Session) handleGoAway(msg *protocol.MsgGoAway) error {
	s.logger.Warn(
		"peer sent go away",
		"payload", fmt.Sprintf("%x", msg.Payload),
	)
	if s.config.GoAwayFunc != nil {
		if err := s.config.GoAwayFunc(s.callbackContext(), msg); err != nil {
			return err
		}
	}
	if s.config.CloseOnGoAway {
		return fmt.Errorf("%w: %x", ErrPeerGoAway, msg.Payload)
	}
	return nil
}

func (s *Session) handleNotice(msg *protocol.MsgNotice) error {
	s.logger.Debug(
		"received notice",
		"known_trx_mode", msg.KnownTrx.Mode.String(),
		"known_trx", len(msg.KnownTrx.Ids),
		"known_blocks_mode", msg.KnownBlocks.Mode.String(),
		"known_blocks", len(msg.KnownBlocks.Ids),
	)
	if s.config.NoticeFunc != nil {
		return s.config.NoticeFunc(s.callbackContext(), msg)
	}
	return nil
}

// buildHandshake returns an unsigned handshake with a fresh node ID and token, unless a
// signing key is configured
func (s *Session) buildHandshake() (*protocol.MsgHandshake, error) {
	msg := protocol.NewMsgHandshake()
	msg.NetworkVersion = s.config.NetworkVersion
	msg.ChainId = s.config.ChainId
	if _, err := rand.Read(msg.NodeId[:]); err != nil {
		return nil, fmt.Errorf("generate node ID: %w", err)
	}
	msg.Time = uint64(time.Now().UnixNano()) // #nosec G115
	if _, err := rand.Read(msg.Token[:]); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	msg.P2PAddress = s.config.P2PAddress
	msg.Os = s.config.Os
	msg.Agent = s.config.Agent
	msg.Generation = 1
	if s.config.SigningKey != nil {
		if err := msg.Sign(s.config.SigningKey); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// sendHandshakeOnce sends our handshake unless it was already sent. handshakeSent becomes true
// even when the write fails
func (s *Session) sendHandshakeOnce() (bool, error) {
	s.sendMutex.Lock()
	if s.handshakeSent {
		s.sendMutex.Unlock()
		return false, nil
	}
	if s.isClosed() {
		s.sendMutex.Unlock()
		return false, ErrSessionClosed
	}
	s.handshakeSent = true
	msg, err := s.buildHandshake()
	if err == nil {
		err = s.writeMessageLocked(msg)
	}
	s.sendMutex.Unlock()
	if err != nil {
		return true, fmt.Errorf("send handshake: %w", err)
	}
	s.logger.Info(
		"sent handshake",
		"chain_id", msg.ChainId.String(),
		"network_version", msg.NetworkVersion,
	)
	s.mutex.Lock()
	advance := s.state == StateConnected
	s.mutex.Unlock()
	if advance {
		s.setState(StateHandshakeExchanged)
	}
	return true, nil
}

func (s *Session) sendHeartbeat() error {
	msg := protocol.NewMsgTime(0, 0, uint64(time.Now().UnixNano()), 0) // #nosec G115
	s.sendMutex.Lock()
	err := s.writeMessageLocked(msg)
	s.sendMutex.Unlock()
	if err != nil {
		return err
	}
	s.metrics.RecordHeartbeat()
	return nil
}

// writeMessageLocked encodes and writes one frame. The caller must hold sendMutex
func (s *Session) writeMessageLocked(msg protocol.Message) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	data, err := protocol.EncodeFrame(msg)
	if err != nil {
		return err
	}
	if _, err := s.config.Sink.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", protocol.MessageTypeName(msg.Type()), err)
	}
	s.metrics.RecordSend(len(data))
	s.logger.Debug(
		"sent message",
		"type", protocol.MessageTypeName(msg.Type()),
		"length", len(data),
	)
	return nil
}
