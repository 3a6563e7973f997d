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
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	antelope "github.com/blinklabs-io/antelope-p2p"
	"github.com/pterm/pterm"
)

// NewLogger returns a slog logger that writes through pterm
func NewLogger(f *GlobalFlags) *slog.Logger {
	logger := pterm.DefaultLogger.WithTime(true).WithWriter(os.Stderr)
	if f.Debug {
		logger = logger.WithLevel(pterm.LogLevelDebug)
	}
	return slog.New(pterm.NewSlogHandler(logger))
}

// PeerAddress returns the address to dial, falling back to the public peer of the selected network
func PeerAddress(f *GlobalFlags) string {
	if f.Address != "" {
		return f.Address
	}
	network := antelope.NetworkByName(f.Network)
	if network.PublicPeerAddress == "" {
		return ""
	}
	return net.JoinHostPort(
		network.PublicPeerAddress,
		strconv.FormatUint(uint64(network.PublicPeerPort), 10),
	)
}

func CreateClientConnection(f *GlobalFlags) net.Conn {
	var err error
	var conn net.Conn
	dialAddress := PeerAddress(f)
	if dialAddress == "" {
		fmt.Printf("You must specify -address for this network\n\n")
		f.Flagset.PrintDefaults()
		os.Exit(1)
	}
	if f.UseTls {
		conn, err = tls.Dial("tcp", dialAddress, nil)
	} else {
		conn, err = net.Dial("tcp", dialAddress)
	}
	if err != nil {
		fmt.Printf("Connection failed: %s\n", err)
		os.Exit(1)
	}
	return conn
}

// SessionOptions returns the session options selected on the command line
func SessionOptions(f *GlobalFlags, logger *slog.Logger) []antelope.SessionOptionFunc {
	return []antelope.SessionOptionFunc{
		antelope.WithChainId(f.ChainId),
		antelope.WithNetworkVersion(uint16(f.NetworkVersion)), // #nosec G115
		antelope.WithP2PAddress(f.P2PAddress),
		antelope.WithAgent(f.Agent),
		antelope.WithHeartbeatInterval(f.HeartbeatInterval),
		antelope.WithVerifySignatures(f.VerifySignatures),
		antelope.WithLogger(logger),
	}
}
