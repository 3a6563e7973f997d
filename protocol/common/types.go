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

// Package common contains the identifier and key types shared by the Antelope p2p messages
package common

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const Checksum256Size = 32

// Checksum256 is a 32-byte identifier (chain ID, node ID, block ID, transaction ID)
type Checksum256 [Checksum256Size]byte

// NewChecksum256FromHex parses a 64 character hex string
func NewChecksum256FromHex(hexData string) (Checksum256, error) {
	var ret Checksum256
	if err := ret.UnmarshalText([]byte(hexData)); err != nil {
		return Checksum256{}, err
	}
	return ret, nil
}

// NewChecksum256Hash returns the SHA-256 hash of data
func NewChecksum256Hash(data []byte) Checksum256 {
	return Checksum256(sha256.Sum256(data))
}

func (c Checksum256) String() string {
	return hex.EncodeToString(c[:])
}

func (c Checksum256) IsZero() bool {
	return c == Checksum256{}
}

func (c Checksum256) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Checksum256) UnmarshalText(data []byte) error {
	if hex.DecodedLen(len(data)) != Checksum256Size {
		return fmt.Errorf(
			"invalid checksum256 length: expected %d hex characters, got %d",
			Checksum256Size*2,
			len(data),
		)
	}
	if _, err := hex.Decode(c[:], data); err != nil {
		return fmt.Errorf("invalid checksum256 hex: %w", err)
	}
	return nil
}

// BlockNum returns the block number embedded in the first 4 bytes (big-endian) of a block ID
func (c Checksum256) BlockNum() uint32 {
	return uint32(c[0])<<24 | uint32(c[1])<<16 | uint32(c[2])<<8 | uint32(c[3])
}

// IdListMode describes how complete an id list in a notice message is
type IdListMode uint32

const (
	IdListModeNone           IdListMode = 0
	IdListModeCatchUp        IdListMode = 1
	IdListModeLastIrrCatchUp IdListMode = 2
	IdListModeNormal         IdListMode = 3
)

func (m IdListMode) String() string {
	switch m {
	case IdListModeNone:
		return "none"
	case IdListModeCatchUp:
		return "catch_up"
	case IdListModeLastIrrCatchUp:
		return "last_irr_catch_up"
	case IdListModeNormal:
		return "normal"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(m))
	}
}
