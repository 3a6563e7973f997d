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
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	antelope "github.com/blinklabs-io/antelope-p2p"
	"github.com/blinklabs-io/antelope-p2p/cmd/common"
	"github.com/blinklabs-io/antelope-p2p/protocol"
	"github.com/pterm/pterm"
)

type peerInfoFlags struct {
	*common.GlobalFlags
	output  string
	timeout time.Duration
}

func main() {
	// Parse commandline
	f := peerInfoFlags{
		GlobalFlags: common.NewGlobalFlags(),
	}
	f.Flagset.StringVar(&f.output, "output", "text", "output format (text or cbor)")
	f.Flagset.DurationVar(&f.timeout, "timeout", 30*time.Second, "time to wait for the peer handshake")
	f.Parse()
	if f.output != "text" && f.output != "cbor" {
		fmt.Printf("Invalid output format specified: %s\n", f.output)
		os.Exit(1)
	}
	logger := common.NewLogger(f.GlobalFlags)
	// Create connection
	conn := common.CreateClientConnection(f.GlobalFlags)
	handshakeChan := make(chan *protocol.MsgHandshake, 1)
	sessionOpts := append(
		common.SessionOptions(f.GlobalFlags, logger),
		antelope.WithHandshakeFunc(
			func(_ antelope.CallbackContext, msg *protocol.MsgHandshake) error {
				select {
				case handshakeChan <- msg:
				default:
				}
				return nil
			},
		),
	)
	c, err := antelope.NewConnection(
		antelope.WithConnection(conn),
		antelope.WithSessionConfig(antelope.NewSessionConfig(sessionOpts...)),
	)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	if err := c.Session().SendHandshake(); err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}

	var msg *protocol.MsgHandshake
	select {
	case msg = <-handshakeChan:
	case err := <-c.ErrorChan():
		fmt.Printf("ERROR(async): %s\n", err)
		os.Exit(1)
	case <-time.After(f.timeout):
		fmt.Printf("ERROR: no handshake received within %s\n", f.timeout)
		os.Exit(1)
	}
	_ = c.Close()

	info, err := antelope.NewPeerInfo(msg)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	if f.output == "cbor" {
		data, err := info.Cbor()
		if err != nil {
			fmt.Printf("ERROR: %s\n", err)
			os.Exit(1)
		}
		fmt.Println(hex.EncodeToString(data))
		return
	}
	if err := renderPeerInfo(info); err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
}

func renderPeerInfo(info antelope.PeerInfo) error {
	key := info.Key
	if key == "" {
		key = "(anonymous)"
	}
	network := antelope.NetworkByChainId(info.ChainId).Name
	return pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Field", "Value"},
		{"Network", network},
		{"Chain ID", info.ChainId.String()},
		{"Protocol", fmt.Sprintf("%s (%d)", info.ProtocolName, info.NetworkVersion)},
		{"Agent", info.Agent},
		{"P2P address", info.P2PAddress},
		{"OS", info.Os},
		{"Node ID", info.NodeId.String()},
		{"Key", key},
		{"Head block", strconv.FormatUint(uint64(info.HeadBlockNum), 10)},
		{"Head block ID", info.HeadBlockId.String()},
		{"LIB", strconv.FormatUint(uint64(info.LibBlockNum), 10)},
		{"LIB ID", info.LibBlockId.String()},
		{"Time", info.Timestamp().UTC().Format(time.RFC3339Nano)},
		{"Generation", strconv.FormatUint(uint64(info.Generation), 10)},
	}).Render()
}
