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
	"flag"
	"fmt"
	"os"
	"time"

	antelope "github.com/blinklabs-io/antelope-p2p"
	"github.com/blinklabs-io/antelope-p2p/protocol/common"
)

type GlobalFlags struct {
	Flagset           *flag.FlagSet
	Address           string
	UseTls            bool
	Network           string
	ChainIdHex        string
	ChainId           common.Checksum256
	NetworkVersion    uint
	P2PAddress        string
	Agent             string
	HeartbeatInterval time.Duration
	VerifySignatures  bool
	Debug             bool
}

func NewGlobalFlags() *GlobalFlags {
	f := &GlobalFlags{
		Flagset: flag.NewFlagSet(os.Args[0], flag.ExitOnError),
	}
	f.Flagset.StringVar(
		&f.Address,
		"address",
		"",
		"TCP address of the peer in address:port format (defaults to the network's public peer)",
	)
	f.Flagset.BoolVar(&f.UseTls, "tls", false, "enable TLS")
	f.Flagset.StringVar(
		&f.Network,
		"network",
		"wax",
		"specifies the chain that the peer is participating in",
	)
	f.Flagset.StringVar(
		&f.ChainIdHex,
		"chain-id",
		"",
		"specifies the chain ID in hex. this overrides the -network option",
	)
	f.Flagset.UintVar(
		&f.NetworkVersion,
		"network-version",
		uint(antelope.DefaultProtocolVersion),
		"net protocol version to announce",
	)
	f.Flagset.StringVar(
		&f.P2PAddress,
		"p2p-address",
		antelope.DefaultP2PAddress,
		"p2p address to announce in the handshake",
	)
	f.Flagset.StringVar(
		&f.Agent,
		"agent",
		antelope.DefaultAgent,
		"agent name to announce in the handshake",
	)
	f.Flagset.DurationVar(
		&f.HeartbeatInterval,
		"heartbeat",
		antelope.DefaultHeartbeatInterval,
		"interval between time messages sent to the peer (0 disables)",
	)
	f.Flagset.BoolVar(
		&f.VerifySignatures,
		"verify",
		false,
		"verify the signature on the peer handshake",
	)
	f.Flagset.BoolVar(&f.Debug, "debug", false, "enable debug logging")
	return f
}

func (f *GlobalFlags) Parse() {
	if err := f.Flagset.Parse(os.Args[1:]); err != nil {
		fmt.Printf("failed to parse command args: %s\n", err)
		os.Exit(1)
	}
	if f.ChainIdHex != "" {
		chainId, err := common.NewChecksum256FromHex(f.ChainIdHex)
		if err != nil {
			fmt.Printf("Invalid chain ID specified: %s\n", err)
			os.Exit(1)
		}
		f.ChainId = chainId
		// Pick up the public peer of a known chain
		f.Network = antelope.NetworkByChainId(chainId).Name
	} else {
		network := antelope.NetworkByName(f.Network)
		if network == antelope.NetworkInvalid {
			fmt.Printf("Invalid network specified: %s\n", f.Network)
			os.Exit(1)
		}
		f.ChainId = network.ChainId
	}
	if f.NetworkVersion > 0xffff {
		fmt.Printf("Invalid network version specified: %d\n", f.NetworkVersion)
		os.Exit(1)
	}
}
