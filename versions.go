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

import "fmt"

// Net protocol versions are counted up from a fixed base value
const protocolVersionBase uint16 = 0x04b5

const (
	ProtocolVersionBase                = protocolVersionBase
	ProtocolVersionExplicitSync        = protocolVersionBase + 1
	ProtocolVersionBlockIdNotify       = protocolVersionBase + 2
	ProtocolVersionPrunedTypes         = protocolVersionBase + 3
	ProtocolVersionHeartbeatInterval   = protocolVersionBase + 4
	ProtocolVersionDupGoawayResolution = protocolVersionBase + 5
	ProtocolVersionDupNodeIdGoaway     = protocolVersionBase + 6
	ProtocolVersionLeapInitial         = protocolVersionBase + 7
)

// DefaultProtocolVersion is announced in outbound handshakes
const DefaultProtocolVersion = ProtocolVersionLeapInitial

type ProtocolVersion struct {
	Version uint16
	Name    string
}

func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%s (%d)", v.Name, v.Version)
}

var protocolVersions = []ProtocolVersion{
	{ProtocolVersionBase, "base"},
	{ProtocolVersionExplicitSync, "explicit_sync"},
	{ProtocolVersionBlockIdNotify, "block_id_notify"},
	{ProtocolVersionPrunedTypes, "pruned_types"},
	{ProtocolVersionHeartbeatInterval, "heartbeat_interval"},
	{ProtocolVersionDupGoawayResolution, "dup_goaway_resolution"},
	{ProtocolVersionDupNodeIdGoaway, "dup_node_id_goaway"},
	{ProtocolVersionLeapInitial, "leap_initial"},
}

// GetProtocolVersions returns the list of known protocol versions
func GetProtocolVersions() []uint16 {
	versions := make([]uint16, 0, len(protocolVersions))
	for _, v := range protocolVersions {
		versions = append(versions, v.Version)
	}
	return versions
}

// GetProtocolVersion returns the named protocol version. Versions newer than the ones known here
// are reported as "unknown"
func GetProtocolVersion(version uint16) ProtocolVersion {
	for _, v := range protocolVersions {
		if v.Version == version {
			return v
		}
	}
	return ProtocolVersion{Version: version, Name: "unknown"}
}
