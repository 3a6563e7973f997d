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

import "errors"

var (
	// ErrChainIdMismatch is returned when a peer's handshake announces a different chain. The
	// session is closed
	ErrChainIdMismatch = errors.New("peer chain ID does not match")
	ErrSessionClosed   = errors.New("session is closed")
	ErrInvalidChainId  = errors.New("invalid chain ID")
	ErrPeerGoAway      = errors.New("peer sent go away")
)
