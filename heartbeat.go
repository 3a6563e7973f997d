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
	"time"
)

// heartbeat sends a time message every interval until stopped
type heartbeat struct {
	mutex     sync.Mutex
	timer     *time.Timer
	interval  time.Duration
	started   bool
	stopped   bool
	waitGroup sync.WaitGroup
	sendFunc  func() error
	errorFunc func(error)
}

func newHeartbeat(
	interval time.Duration,
	sendFunc func() error,
	errorFunc func(error),
) *heartbeat {
	return &heartbeat{
		interval:  interval,
		sendFunc:  sendFunc,
		errorFunc: errorFunc,
	}
}

// start arms the timer. It does nothing if the heartbeat is disabled, already started or stopped
func (h *heartbeat) start() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.interval <= 0 || h.started || h.stopped {
		return
	}
	h.started = true
	h.timer = time.AfterFunc(h.interval, h.fire)
}

func (h *heartbeat) fire() {
	h.mutex.Lock()
	if h.stopped {
		h.mutex.Unlock()
		return
	}
	h.waitGroup.Add(1)
	h.mutex.Unlock()
	err := h.sendFunc()
	// Mark the beat done before reporting so that an error handler may stop the heartbeat
	h.waitGroup.Done()
	if err != nil && h.errorFunc != nil {
		h.errorFunc(err)
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.stopped {
		return
	}
	h.timer = time.AfterFunc(h.interval, h.fire)
}

// stop cancels the timer and waits for a beat in progress to finish sending. No beat is sent
// after stop returns
func (h *heartbeat) stop() {
	h.mutex.Lock()
	h.stopped = true
	if h.timer != nil {
		h.timer.Stop()
	}
	h.mutex.Unlock()
	h.waitGroup.Wait()
}
