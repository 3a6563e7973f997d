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

package protocol

import (
	"fmt"

	"github.com/blinklabs-io/antelope-p2p/protocol/common"
	"github.com/blinklabs-io/antelope-p2p/serial"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// MsgHandshake identifies a node and its chain state to a peer
type MsgHandshake struct {
	MessageBase
	NetworkVersion uint16
	ChainId        common.Checksum256
	NodeId         common.Checksum256
	Key            common.PublicKey
	Time           uint64 // nanoseconds since the Unix epoch
	Token          common.Checksum256
	Signature      common.Signature
	P2PAddress     string
	LibBlockNum    uint32
	LibBlockId     common.Checksum256
	HeadBlockNum   uint32
	HeadBlockId    common.Checksum256
	Os             string
	Agent          string
	Generation     uint16
}

func NewMsgHandshake() *MsgHandshake {
	return &MsgHandshake{
		MessageBase: MessageBase{
			MessageType: MessageTypeHandshake,
		},
	}
}

func (m *MsgHandshake) encode(w *serial.Writer) {
	w.WriteUint16(m.NetworkVersion)
	w.WriteBytes(m.ChainId[:])
	w.WriteBytes(m.NodeId[:])
	w.WriteUint8(m.Key.Type)
	w.WriteBytes(m.Key.Data[:])
	w.WriteUint64(m.Time)
	w.WriteBytes(m.Token[:])
	w.WriteUint8(m.Signature.Type)
	w.WriteBytes(m.Signature.Data[:])
	w.WriteString(m.P2PAddress)
	w.WriteUint32(m.LibBlockNum)
	w.WriteBytes(m.LibBlockId[:])
	w.WriteUint32(m.HeadBlockNum)
	w.WriteBytes(m.HeadBlockId[:])
	w.WriteString(m.Os)
	w.WriteString(m.Agent)
	w.WriteUint16(m.Generation)
}

// decode reads the known fields in order. Any bytes after the generation are ignored
func (m *MsgHandshake) decode(r *serial.Reader) error {
	var err error
	m.MessageType = MessageTypeHandshake
	if m.NetworkVersion, err = r.ReadUint16(); err != nil {
		return fmt.Errorf("network_version: %w", err)
	}
	if err = r.ReadInto(m.ChainId[:]); err != nil {
		return fmt.Errorf("chain_id: %w", err)
	}
	if err = r.ReadInto(m.NodeId[:]); err != nil {
		return fmt.Errorf("node_id: %w", err)
	}
	if m.Key.Type, err = r.ReadUint8(); err != nil {
		return fmt.Errorf("key: %w", err)
	}
	if err = r.ReadInto(m.Key.Data[:]); err != nil {
		return fmt.Errorf("key: %w", err)
	}
	if m.Time, err = r.ReadUint64(); err != nil {
		return fmt.Errorf("time: %w", err)
	}
	if err = r.ReadInto(m.Token[:]); err != nil {
		return fmt.Errorf("token: %w", err)
	}
	if m.Signature.Type, err = r.ReadUint8(); err != nil {
		return fmt.Errorf("sig: %w", err)
	}
	if err = r.ReadInto(m.Signature.Data[:]); err != nil {
		return fmt.Errorf("sig: %w", err)
	}
	if m.P2PAddress, err = r.ReadString(); err != nil {
		return fmt.Errorf("p2p_address: %w", err)
	}
	if m.LibBlockNum, err = r.ReadUint32(); err != nil {
		return fmt.Errorf("last_irreversible_block_num: %w", err)
	}
	if err = r.ReadInto(m.LibBlockId[:]); err != nil {
		return fmt.Errorf("last_irreversible_block_id: %w", err)
	}
	if m.HeadBlockNum, err = r.ReadUint32(); err != nil {
		return fmt.Errorf("head_num: %w", err)
	}
	if err = r.ReadInto(m.HeadBlockId[:]); err != nil {
		return fmt.Errorf("head_id: %w", err)
	}
	if m.Os, err = r.ReadString(); err != nil {
		return fmt.Errorf("os: %w", err)
	}
	if m.Agent, err = r.ReadString(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if m.Generation, err = r.ReadUint16(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	return nil
}

// HandshakeToken returns the SHA-256 hash of the 8-byte little-endian handshake time
func HandshakeToken(handshakeTime uint64) common.Checksum256 {
	w := serial.NewFixedWriter(make([]byte, 8))
	w.WriteUint64(handshakeTime)
	return common.NewChecksum256Hash(w.Bytes())
}

// Sign sets the key, token and signature fields for the current handshake time
func (m *MsgHandshake) Sign(privKey *btcec.PrivateKey) error {
	if privKey == nil {
		return ErrMissingSigningKey
	}
	m.Token = HandshakeToken(m.Time)
	compactSig := ecdsa.SignCompact(privKey, m.Token[:], true)
	m.Key = common.PublicKey{Type: common.KeyTypeK1}
	copy(m.Key.Data[:], privKey.PubKey().SerializeCompressed())
	m.Signature = common.Signature{Type: common.KeyTypeK1}
	copy(m.Signature.Data[:], compactSig)
	return nil
}

// Verify checks that the token matches the handshake time and that the signature over the
// token was produced by the announced key. Handshakes with an all-zero key and signature
// return ErrAnonymousHandshake
func (m *MsgHandshake) Verify() error {
	if m.Key.IsZero() && m.Signature.IsZero() {
		return ErrAnonymousHandshake
	}
	if m.Token != HandshakeToken(m.Time) {
		return ErrHandshakeTokenMismatch
	}
	if m.Key.Type != common.KeyTypeK1 {
		return fmt.Errorf("%w: %d", common.ErrUnsupportedKeyType, m.Key.Type)
	}
	recovered, err := m.Signature.RecoverPublicKey(m.Token)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHandshakeSignatureMismatch, err)
	}
	if recovered != m.Key {
		return ErrHandshakeSignatureMismatch
	}
	return nil
}
