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

// Package registry provides the static per-network catalog of known DEX
// pool profiles
package registry

import "github.com/blinklabs-io/poolview/internal/config"

// Profile describes a DEX pool script monitored on a particular network
type Profile struct {
	Name string
	// Protocol is the normalized protocol identifier (e.g. "minswap-v1")
	Protocol string
	// PoolAddress is the bech32 pool script address
	PoolAddress string
	// ScriptHash is the hex payment script hash the pool address must
	// resolve to
	ScriptHash string
	// PoolNftPolicy is the policy ID of the NFT identifying individual pools
	PoolNftPolicy string
}

// GetProfiles returns the profiles selected by the current config
func GetProfiles() []Profile {
	var ret []Profile
	cfg := config.GetConfig()
	if networkProfiles, ok := Profiles[cfg.Network]; ok {
		for k, profile := range networkProfiles {
			for _, tmpProfile := range cfg.Profiles {
				if k == tmpProfile {
					ret = append(ret, profile)
					break
				}
			}
		}
	}
	return ret
}

// GetAvailableProfiles returns the profile names known for the current network
func GetAvailableProfiles() []string {
	var ret []string
	cfg := config.GetConfig()
	if networkProfiles, ok := Profiles[cfg.Network]; ok {
		for k := range networkProfiles {
			ret = append(ret, k)
		}
	}
	return ret
}

var Profiles = map[string]map[string]Profile{
	"preprod": map[string]Profile{
		"minswap": Profile{
			Name:          "Minswap",
			Protocol:      "minswap-v1",
			PoolAddress:   "addr_test1zrsnz7c4974vzdpxu65ruphl3zjdvtxw8strf2c2tmqnxzvrajt8r8wqtygrfduwgukk73m5gcnplmztc5tl5ngy0upqs8q93k",
			ScriptHash:    "e1317b152faac13426e6a83e06ff88a4d62cce3c1634ab0a5ec13309",
			PoolNftPolicy: "0be55d262b29f564998ff81efe21bdc0022621c12f15af08d0f2ddb1",
		},
	},
	"mainnet": map[string]Profile{
		"minswap": Profile{
			Name:          "Minswap",
			Protocol:      "minswap-v1",
			PoolAddress:   "addr1z8snz7c4974vzdpxu65ruphl3zjdvtxw8strf2c2tmqnxz2j2c79gy9l76sdg0xwhd7r0c0kna0tycz4y5s6mlenh8pq0xmsha",
			ScriptHash:    "e1317b152faac13426e6a83e06ff88a4d62cce3c1634ab0a5ec13309",
			PoolNftPolicy: "0be55d262b29f564998ff81efe21bdc0022621c12f15af08d0f2ddb1",
		},
		"sundaeswap": Profile{
			Name:          "SundaeSwap",
			Protocol:      "sundaeswap-v1",
			PoolAddress:   "addr1w9qzpelu9hn45pefc0xr4ac4kdxeswq7pndul2vuj59u8tqaxdznu",
			ScriptHash:    "4020e7fc2de75a0729c3cc3af715b34d98381e0cdbcfa99c950bc3ac",
			PoolNftPolicy: "0029cb7c88c7567b63d1a512c0ed626aa169688ec980730c0473b913",
		},
		"wingriders": Profile{
			Name:          "WingRiders",
			Protocol:      "wingriders-v1",
			PoolAddress:   "addr1wxr2a8htmzuhj39y2gq7ftkpxv98y2g67tg8zezthgq4jkg0a4ul4",
			ScriptHash:    "86ae9eebd8b97944a45201e4aec1330a72291af2d071644bba015959",
			PoolNftPolicy: "026a18d04a0c642759bb3d83b12e3344894e5c1c7b2aeb1a2113a570",
		},
	},
}
