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

import "github.com/blinklabs-io/antelope-p2p/protocol/common"

// Network definitions
var (
	NetworkEos = Network{
		Name:    "eos",
		ChainId: mustChecksum256("aca376f206b8fc25a6ed44dbdc66547c36c6c33e3a119ffbeaef943642f0e906"),
	}
	NetworkWax = Network{
		Name:              "wax",
		ChainId:           mustChecksum256("1064487b3cd1a897ce03ae5b6a865651747e2e152090f99c1d19d44e01aea5a4"),
		PublicPeerAddress: "waxp2p.sentnl.io",
		PublicPeerPort:    9876,
	}
	NetworkTelos = Network{
		Name:    "telos",
		ChainId: mustChecksum256("4667b205c6838ef70ff7988f6e8257e8be0e1284a2f59699054a018f743b1d11"),
	}
	NetworkJungle4 = Network{
		Name:    "jungle4",
		ChainId: mustChecksum256("73e4385a2708e6d7048834fbc1079f2fabb17b3c125b146af438971e90716c4d"),
	}
	NetworkProton = Network{
		Name:    "proton",
		ChainId: mustChecksum256("384da888112027f0321850a169f737c33e53b388aad48b5adace4bab97f437e0"),
	}

	NetworkInvalid = Network{
		Name: "invalid",
	} // NetworkInvalid is used as a return value for lookup functions when a network isn't found
)

// List of valid networks for use in lookup functions
var networks = []Network{
	NetworkEos,
	NetworkWax,
	NetworkTelos,
	NetworkJungle4,
	NetworkProton,
}

// NetworkByName returns a predefined network by name
func NetworkByName(name string) Network {
	for _, network := range networks {
		if network.Name == name {
			return network
		}
	}
	return NetworkInvalid
}

// NetworkByChainId returns a predefined network by chain ID
func NetworkByChainId(chainId common.Checksum256) Network {
	for _, network := range networks {
		if network.ChainId == chainId {
			return network
		}
	}
	return NetworkInvalid
}

// Network represents an Antelope chain
type Network struct {
	Name              string
	ChainId           common.Checksum256
	PublicPeerAddress string
	PublicPeerPort    uint
}

func (n Network) String() string {
	return n.Name
}

func mustChecksum256(hexData string) common.Checksum256 {
	ret, err := common.NewChecksum256FromHex(hexData)
	if err != nil {
		panic(err)
	}
	return ret
}
