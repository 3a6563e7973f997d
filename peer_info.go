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
	"fmt"
	"time"

	"github.com/blinklabs-io/antelope-p2p/protocol"
	"github.com/blinklabs-io/antelope-p2p/protocol/common"
	"github.com/fxamacker/cbor/v2"
	"github.com/jinzhu/copier"
)

// PeerInfo summarizes what a peer announced in its handshake
type PeerInfo struct {
	Generation     uint16             `cbor:"generation"`
	NetworkVersion uint16             `cbor:"network_version"`
	ProtocolName   string             `cbor:"protocol_name" copier:"-"`
	HeadBlockNum   uint32             `cbor:"head"`
	HeadBlockId    common.Checksum256 `cbor:"head_id"`
	LibBlockNum    uint32             `cbor:"lib"`
	LibBlockId     common.Checksum256 `cbor:"lib_id"`
	Time           uint64             `cbor:"time"`
	Agent          string             `cbor:"agent"`
	P2PAddress     string             `cbor:"p2p_address"`
	Os             string             `cbor:"os"`
	NodeId         common.Checksum256 `cbor:"node_id"`
	ChainId        common.Checksum256 `cbor:"chain_id"`
	Key            string             `cbor:"key" copier:"-"`
}

// NewPeerInfo returns the summary of a peer handshake
func NewPeerInfo(msg *protocol.MsgHandshake) (PeerInfo, error) {
	var ret PeerInfo
	if err := copier.Copy(&ret, msg); err != nil {
		return PeerInfo{}, fmt.Errorf("copy handshake fields: %w", err)
	}
	ret.ProtocolName = GetProtocolVersion(msg.NetworkVersion).Name
	if !msg.Key.IsZero() {
		ret.Key = msg.Key.String()
	}
	return ret, nil
}

// Timestamp returns the handshake time
func (p PeerInfo) Timestamp() time.Time {
	return time.Unix(0, int64(p.Time)) // #nosec G115
}

// Cbor returns the CBOR encoding of the summary
func (p PeerInfo) Cbor() ([]byte, error) {
	return cbor.Marshal(p)
}

// NewPeerInfoFromCbor decodes a summary produced by Cbor
func NewPeerInfoFromCbor(data []byte) (PeerInfo, error) {
	var ret PeerInfo
	if err := cbor.Unmarshal(data, &ret); err != nil {
		return PeerInfo{}, fmt.Errorf("decode peer info: %w", err)
	}
	return ret, nil
}
