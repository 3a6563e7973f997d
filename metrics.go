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
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks message counters for a session.
// Uses atomic counters for thread-safe operation.
type Metrics struct {
	// Counters (atomic)
	framesReceived atomic.Uint64
	bytesReceived  atomic.Uint64
	framesSent     atomic.Uint64
	bytesSent      atomic.Uint64
	decodeErrors   atomic.Uint64
	heartbeatsSent atomic.Uint64

	// Timing
	mu              sync.RWMutex
	lastMessageTime time.Time
	startTime       time.Time
}

// MetricsSnapshot is a point-in-time copy of Metrics
type MetricsSnapshot struct {
	FramesReceived  uint64
	BytesReceived   uint64
	FramesSent      uint64
	BytesSent       uint64
	DecodeErrors    uint64
	HeartbeatsSent  uint64
	LastMessageTime time.Time
	StartTime       time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

// RecordReceive records a chunk of bytes read from the peer
func (m *Metrics) RecordReceive(length int) {
	m.bytesReceived.Add(uint64(length)) // #nosec G115
}

// RecordFrame records a complete frame from the peer and the result of decoding it
func (m *Metrics) RecordFrame(err error) {
	m.framesReceived.Add(1)
	if err != nil {
		m.decodeErrors.Add(1)
		return
	}
	m.mu.Lock()
	m.lastMessageTime = time.Now()
	m.mu.Unlock()
}

// RecordSend records a frame written to the peer
func (m *Metrics) RecordSend(length int) {
	m.framesSent.Add(1)
	m.bytesSent.Add(uint64(length)) // #nosec G115
}

// RecordHeartbeat records a time message sent by the heartbeat
func (m *Metrics) RecordHeartbeat() {
	m.heartbeatsSent.Add(1)
}

// Snapshot returns a copy of the current metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		FramesReceived:  m.framesReceived.Load(),
		BytesReceived:   m.bytesReceived.Load(),
		FramesSent:      m.framesSent.Load(),
		BytesSent:       m.bytesSent.Load(),
		DecodeErrors:    m.decodeErrors.Load(),
		HeartbeatsSent:  m.heartbeatsSent.Load(),
		LastMessageTime: m.lastMessageTime,
		StartTime:       m.startTime,
	}
}

// Reset resets all metrics.
func (m *Metrics) Reset() {
	m.framesReceived.Store(0)
	m.bytesReceived.Store(0)
	m.framesSent.Store(0)
	m.bytesSent.Store(0)
	m.decodeErrors.Store(0)
	m.heartbeatsSent.Store(0)

	m.mu.Lock()
	m.lastMessageTime = time.Time{}
	m.startTime = time.Now()
	m.mu.Unlock()
}
