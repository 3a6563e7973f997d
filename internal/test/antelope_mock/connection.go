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
	"errors"
	"fmt"
	"net"
	"reflect"
	"sync"
	"time"

	"github.com/blinklabs-io/antelope-p2p/framer"
	"github.com/blinklabs-io/antelope-p2p/protocol"
)

// Connection mocks a connection to an Antelope peer that follows a scripted conversation
type Connection struct {
	mockConn  net.Conn
	conn      net.Conn
	decoder   *framer.Decoder
	errorChan chan error
	doneChan  chan struct{}
	waitGroup sync.WaitGroup
	onceClose sync.Once
	// Client messages that arrived with a previous read
	pending []protocol.Message
	// Message types that input entries skip over
	ignoreTypes map[uint8]bool
}

// NewConnection returns a new Connection with the provided conversation entries. Input entries
// skip client messages of the ignored types
func NewConnection(conversation []ConversationEntry, ignoreTypes ...uint8) *Connection {
	c := &Connection{
		decoder:     framer.NewDecoder(0),
		errorChan:   make(chan error, 10),
		doneChan:    make(chan struct{}),
		ignoreTypes: map[uint8]bool{},
	}
	for _, msgType := range ignoreTypes {
		c.ignoreTypes[msgType] = true
	}
	c.conn, c.mockConn = net.Pipe()
	c.waitGroup.Add(1)
	go func() {
		defer c.waitGroup.Done()
		c.asyncLoop(conversation)
	}()
	return c
}

// ErrorChan returns the channel for conversation errors. It is closed when the conversation ends
func (c *Connection) ErrorChan() <-chan error {
	return c.errorChan
}

// Read provides a proxy to the client-side connection's Read function. This is needed to satisfy the net.Conn interface
func (c *Connection) Read(b []byte) (n int, err error) {
	return c.conn.Read(b)
}

// Write provides a proxy to the client-side connection's Write function. This is needed to satisfy the net.Conn interface
func (c *Connection) Write(b []byte) (n int, err error) {
	return c.conn.Write(b)
}

// Close closes both sides of the connection and waits for the conversation to stop. This is needed to satisfy the net.Conn interface
func (c *Connection) Close() error {
	var err error
	c.onceClose.Do(func() {
		close(c.doneChan)
		err = errors.Join(c.conn.Close(), c.mockConn.Close())
	})
	return err
}

// Wait blocks until the conversation goroutine has finished
func (c *Connection) Wait() {
	c.waitGroup.Wait()
}

// LocalAddr provides a proxy to the client-side connection's LocalAddr function. This is needed to satisfy the net.Conn interface
func (c *Connection) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr provides a proxy to the client-side connection's RemoteAddr function. This is needed to satisfy the net.Conn interface
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// SetDeadline provides a proxy to the client-side connection's SetDeadline function. This is needed to satisfy the net.Conn interface
func (c *Connection) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

// SetReadDeadline provides a proxy to the client-side connection's SetReadDeadline function. This is needed to satisfy the net.Conn interface
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// SetWriteDeadline provides a proxy to the client-side connection's SetWriteDeadline function. This is needed to satisfy the net.Conn interface
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}

func (c *Connection) isClosed() bool {
	select {
	case <-c.doneChan:
		return true
	default:
		return false
	}
}

func (c *Connection) asyncLoop(conversation []ConversationEntry) {
	defer close(c.errorChan)
	for _, entry := range conversation {
		var err error
		switch entry.Type {
		case EntryTypeInput:
			err = c.processInputEntry(entry)
		case EntryTypeOutput:
			err = c.processOutputEntry(entry)
			if err != nil {
				err = fmt.Errorf("output error: %w", err)
			}
		case EntryTypeClose:
			err = c.Close()
		default:
			err = fmt.Errorf(
				"unknown conversation entry type: %d: %#v",
				entry.Type,
				entry,
			)
		}
		if err != nil {
			// Errors caused by the client closing the connection are expected
			if !c.isClosed() {
				c.errorChan <- err
			}
			return
		}
	}
}

// readMessage returns the next client message that is not of an ignored type
func (c *Connection) readMessage() (protocol.Message, error) {
	buf := make([]byte, 4096)
	for {
		for len(c.pending) > 0 {
			msg := c.pending[0]
			c.pending = c.pending[1:]
			if !c.ignoreTypes[msg.Type()] {
				return msg, nil
			}
		}
		frame, err := c.decoder.Next()
		if err != nil {
			return nil, err
		}
		if frame != nil {
			msg, err := protocol.DecodeFrame(frame)
			if err != nil {
				return nil, err
			}
			c.pending = append(c.pending, msg)
			continue
		}
		n, err := c.mockConn.Read(buf)
		if err != nil {
			return nil, err
		}
		c.decoder.Feed(buf[:n])
	}
}

func (c *Connection) processInputEntry(entry ConversationEntry) error {
	msg, err := c.readMessage()
	if err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	switch {
	case entry.InputMessage != nil:
		if !reflect.DeepEqual(msg, entry.InputMessage) {
			return fmt.Errorf(
				"parsed message does not match expected value: got %#v, expected %#v",
				msg,
				entry.InputMessage,
			)
		}
	case entry.InputMatchFunc != nil:
		return entry.InputMatchFunc(msg)
	case msg.Type() != entry.InputMessageType:
		return fmt.Errorf(
			"input message is not of expected type: expected %s, got %s",
			protocol.MessageTypeName(entry.InputMessageType),
			protocol.MessageTypeName(msg.Type()),
		)
	}
	return nil
}

func (c *Connection) processOutputEntry(entry ConversationEntry) error {
	var data []byte
	for _, msg := range entry.OutputMessages {
		frame, err := protocol.EncodeFrame(msg)
		if err != nil {
			return err
		}
		data = append(data, frame...)
	}
	if _, err := c.mockConn.Write(data); err != nil {
		return err
	}
	return nil
}
