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

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeerMonitorFlagDefaults(t *testing.T) {
	f := newPeerMonitorFlags()
	require.NoError(t, f.Flagset.Parse([]string{}))
	// GoAway is logged without disconnecting unless asked to
	assert.False(t, f.closeOnGoAway)
	assert.Equal(t, 10*time.Second, f.statsInterval)
	assert.Equal(t, "wax", f.Network)
}

func TestPeerMonitorFlagCloseOnGoAway(t *testing.T) {
	f := newPeerMonitorFlags()
	require.NoError(t, f.Flagset.Parse([]string{"-close-on-go-away", "-stats-interval", "0"}))
	assert.True(t, f.closeOnGoAway)
	assert.Equal(t, time.Duration(0), f.statsInterval)
}
