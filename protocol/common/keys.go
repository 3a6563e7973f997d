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

package common

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

// Key types, in the order of the key variant on the wire
const (
	KeyTypeK1 uint8 = 0
	KeyTypeR1 uint8 = 1
	KeyTypeWA uint8 = 2
)

const (
	PublicKeyDataSize = 33
	SignatureDataSize = 65

	// LegacyPublicKeyPrefix is the prefix of pre-Leap K1 public key strings
	LegacyPublicKeyPrefix = "EOS"

	checksumSize = 4
)

var (
	ErrUnsupportedKeyType = errors.New("unsupported key type")
	ErrInvalidKeyString   = errors.New("invalid key string")
)

func keyTypeSuffix(keyType uint8) string {
	switch keyType {
	case KeyTypeK1:
		return "K1"
	case KeyTypeR1:
		return "R1"
	case KeyTypeWA:
		return "WA"
	default:
		return ""
	}
}

// keyChecksum returns the first 4 bytes of RIPEMD-160 over data followed by suffix
func keyChecksum(data []byte, suffix string) []byte {
	h := ripemd160.New()
	h.Write(data)
	h.Write([]byte(suffix))
	return h.Sum(nil)[:checksumSize]
}

func encodeWithChecksum(data []byte, suffix string) string {
	buf := make([]byte, 0, len(data)+checksumSize)
	buf = append(buf, data...)
	buf = append(buf, keyChecksum(data, suffix)...)
	return base58.Encode(buf)
}

func decodeWithChecksum(encoded string, suffix string, size int) ([]byte, error) {
	buf := base58.Decode(encoded)
	if len(buf) != size+checksumSize {
		return nil, fmt.Errorf(
			"%w: decoded length %d, expected %d",
			ErrInvalidKeyString,
			len(buf),
			size+checksumSize,
		)
	}
	data := buf[:size]
	if !bytes.Equal(buf[size:], keyChecksum(data, suffix)) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidKeyString)
	}
	return data, nil
}

// PublicKey is a key variant as it appears in a handshake: the key type followed by
// 33 bytes of compressed key data
type PublicKey struct {
	Type uint8
	Data [PublicKeyDataSize]byte
}

// NewPublicKeyFromString parses PUB_K1_, PUB_R1_ and legacy EOS prefixed key strings
func NewPublicKeyFromString(keyStr string) (PublicKey, error) {
	for _, keyType := range []uint8{KeyTypeK1, KeyTypeR1} {
		prefix := "PUB_" + keyTypeSuffix(keyType) + "_"
		if !strings.HasPrefix(keyStr, prefix) {
			continue
		}
		data, err := decodeWithChecksum(
			strings.TrimPrefix(keyStr, prefix),
			keyTypeSuffix(keyType),
			PublicKeyDataSize,
		)
		if err != nil {
			return PublicKey{}, err
		}
		ret := PublicKey{Type: keyType}
		copy(ret.Data[:], data)
		return ret, nil
	}
	if strings.HasPrefix(keyStr, LegacyPublicKeyPrefix) {
		data, err := decodeWithChecksum(
			strings.TrimPrefix(keyStr, LegacyPublicKeyPrefix),
			"",
			PublicKeyDataSize,
		)
		if err != nil {
			return PublicKey{}, err
		}
		ret := PublicKey{Type: KeyTypeK1}
		copy(ret.Data[:], data)
		return ret, nil
	}
	return PublicKey{}, fmt.Errorf("%w: unrecognized prefix", ErrInvalidKeyString)
}

// IsZero returns true for the all-zero key sent by peers that do not authenticate
func (k PublicKey) IsZero() bool {
	return k.Data == [PublicKeyDataSize]byte{}
}

func (k PublicKey) String() string {
	suffix := keyTypeSuffix(k.Type)
	if suffix == "" {
		return fmt.Sprintf("PUB_UNKNOWN_%d", k.Type)
	}
	return "PUB_" + suffix + "_" + encodeWithChecksum(k.Data[:], suffix)
}

// LegacyString returns the pre-Leap form of a K1 key, such as EOS6MRy...
func (k PublicKey) LegacyString(prefix string) string {
	return prefix + encodeWithChecksum(k.Data[:], "")
}

// Validate checks that a K1 key is a point on the secp256k1 curve
func (k PublicKey) Validate() error {
	if k.Type != KeyTypeK1 {
		return fmt.Errorf("%w: %d", ErrUnsupportedKeyType, k.Type)
	}
	if _, err := btcec.ParsePubKey(k.Data[:]); err != nil {
		return fmt.Errorf("invalid K1 public key: %w", err)
	}
	return nil
}

// Signature is a signature variant: the key type followed by 65 bytes of compact signature
// (recovery header, r, s)
type Signature struct {
	Type uint8
	Data [SignatureDataSize]byte
}

func (s Signature) IsZero() bool {
	return s.Data == [SignatureDataSize]byte{}
}

func (s Signature) String() string {
	suffix := keyTypeSuffix(s.Type)
	if suffix == "" {
		return fmt.Sprintf("SIG_UNKNOWN_%d", s.Type)
	}
	return "SIG_" + suffix + "_" + encodeWithChecksum(s.Data[:], suffix)
}

// RecoverPublicKey returns the K1 key that produced this signature over digest
func (s Signature) RecoverPublicKey(digest Checksum256) (PublicKey, error) {
	if s.Type != KeyTypeK1 {
		return PublicKey{}, fmt.Errorf("%w: %d", ErrUnsupportedKeyType, s.Type)
	}
	pubKey, _, err := ecdsa.RecoverCompact(s.Data[:], digest[:])
	if err != nil {
		return PublicKey{}, fmt.Errorf("recover public key: %w", err)
	}
	ret := PublicKey{Type: KeyTypeK1}
	copy(ret.Data[:], pubKey.SerializeCompressed())
	return ret, nil
}
