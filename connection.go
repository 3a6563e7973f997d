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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/blinklabs-io/antelope-p2p/serial"
)

const DefaultReadBufferSize = 4096

// The Connection type is a wrapper around a net.Conn object that drives a Session over that connection
type Connection struct {
	conn           net.Conn
	session        *Session
	sessionConfig  SessionConfig
	readBufferSize int
	logger         *slog.Logger
	errorChan      chan error
	doneChan       chan struct{}
	waitGroup      sync.WaitGroup
	onceClose      sync.Once
	readStarted    bool
	// Set while the read loop is delivering received bytes to the session
	dispatching atomic.Bool
}

// NewConnection returns a new Connection object with the specified options. If a connection is provided, the
// session will be started
func NewConnection(options ...ConnectionOptionFunc) (*Connection, error) {
	c := &Connection{
		sessionConfig:  NewSessionConfig(),
		readBufferSize: DefaultReadBufferSize,
		doneChan:       make(chan struct{}),
	}
	// Apply provided options functions
	for _, option := range options {
		option(c)
	}
	if c.errorChan == nil {
		c.errorChan = make(chan error, 10)
	}
	if c.readBufferSize <= 0 {
		c.readBufferSize = DefaultReadBufferSize
	}
	c.logger = c.sessionConfig.Logger
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.conn != nil {
		if err := c.setupConnection(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Session returns the session for the connection. It is nil until a connection is established
func (c *Connection) Session() *Session {
	return c.session
}

// ErrorChan returns the channel for asynchronous errors
func (c *Connection) ErrorChan() chan error {
	return c.errorChan
}

// Dial will establish a connection using the specified protocol and address. These parameters are
// passed to the [net.Dial] func. The session will be started when a connection is established.
// An error will be returned if the connection fails or a connection was already established
func (c *Connection) Dial(proto string, address string) error {
	if c.conn != nil {
		return errors.New("a connection was already established")
	}
	conn, err := net.Dial(proto, address)
	if err != nil {
		return err
	}
	c.conn = conn
	return c.setupConnection()
}

// Close will shutdown the session and the underlying connection. It waits for the read loop to exit,
// unless it is called from a session callback running on the read loop. The error channel is closed
// once the read loop has exited
func (c *Connection) Close() error {
	var err error
	c.onceClose.Do(func() {
		// Close doneChan to signify that we're shutting down
		close(c.doneChan)
		if c.session != nil {
			err = c.session.Close()
		} else if c.conn != nil {
			err = c.conn.Close()
		}
		if !c.readStarted {
			close(c.errorChan)
		}
	})
	if !c.dispatching.Load() {
		c.waitGroup.Wait()
	}
	return err
}

// setupConnection creates the session on top of the connection and starts reading
func (c *Connection) setupConnection() error {
	config := c.sessionConfig
	config.Sink = c.conn
	config.Logger = c.logger.With("peer", c.conn.RemoteAddr().String())
	session, err := newSession(config)
	if err != nil {
		_ = c.conn.Close()
		return err
	}
	c.session = session
	c.logger = config.Logger
	if err := c.session.Start(); err != nil {
		return err
	}
	c.readStarted = true
	c.waitGroup.Add(1)
	go c.readLoop()
	return nil
}

func (c *Connection) isClosed() bool {
	select {
	case <-c.doneChan:
		return true
	default:
		return false
	}
}

func (c *Connection) sendError(err error) {
	select {
	case c.errorChan <- err:
	case <-c.doneChan:
	}
}

func (c *Connection) readLoop() {
	defer func() {
		// The read loop is the only sender on the error channel
		close(c.errorChan)
		c.waitGroup.Done()
	}()
	buf := make([]byte, c.readBufferSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			c.dispatching.Store(true)
			recvErr := c.session.Receive(buf[:n])
			c.dispatching.Store(false)
			if recvErr != nil {
				if !c.isClosed() {
					c.sendError(fmt.Errorf("session error: %w", recvErr))
				}
				return
			}
		}
		if err != nil {
			if c.isClosed() {
				return
			}
			c.dispatching.Store(true)
			eosErr := c.session.EndOfStream()
			c.dispatching.Store(false)
			switch {
			case errors.Is(eosErr, serial.ErrBufferUnderrun):
				c.sendError(eosErr)
			case errors.Is(err, io.EOF),
				errors.Is(err, io.ErrUnexpectedEOF),
				errors.Is(err, io.ErrClosedPipe),
				errors.Is(err, net.ErrClosed):
				// Return a bare io.EOF error if the peer closed the connection
				c.sendError(io.EOF)
			default:
				c.sendError(fmt.Errorf("read error: %w", err))
			}
			return
		}
	}
}
