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

package pool

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Salvionied/apollo/serialization/Address"
	"github.com/blinklabs-io/poolview/internal/common"
	"golang.org/x/crypto/blake2b"
)

var (
	// ErrNotFound is returned by providers when the requested resource
	// does not exist upstream
	ErrNotFound = errors.New("not found")

	// ErrMissingDatumHash is returned when a pool output carries no datum
	ErrMissingDatumHash = errors.New("pool output has no datum hash")

	// ErrScriptHashMismatch is returned when a pool address does not
	// resolve to the expected payment script hash
	ErrScriptHashMismatch = errors.New(
		"pool address does not match expected script hash",
	)

	// ErrDatumHashMismatch is returned when resolved datum bytes do not
	// hash to the declared datum hash
	ErrDatumHashMismatch = errors.New("datum bytes do not match datum hash")
)

// StateParams carries the per-profile context needed to build and validate
// a pool state from a raw UTxO
type StateParams struct {
	Network  string
	Protocol string
	// ScriptHash is the hex payment script hash the pool address must
	// resolve to
	ScriptHash string
	// PoolNftPolicy identifies the policy of the NFT naming the pool
	PoolNftPolicy string
	Timestamp     time.Time
}

// NewPoolState builds a PoolState snapshot from a normalized UTxO. All
// invariants are checked here, once, at construction time
func NewPoolState(utxo Utxo, params StateParams) (*PoolState, error) {
	// A pool output must carry a datum hash
	if utxo.DatumHash == "" {
		return nil, ErrMissingDatumHash
	}
	// The pool address must resolve to the expected payment script hash
	addr, err := Address.DecodeAddress(utxo.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to decode pool address: %w", err)
	}
	paymentHash := hex.EncodeToString(addr.PaymentPart)
	if paymentHash != params.ScriptHash {
		return nil, fmt.Errorf(
			"%w: address resolves to %s, expected %s",
			ErrScriptHashMismatch,
			paymentHash,
			params.ScriptHash,
		)
	}
	// When the backend resolves the datum bytes, check them against the
	// declared hash
	if len(utxo.DatumCbor) > 0 {
		datumHash := blake2b.Sum256(utxo.DatumCbor)
		if hex.EncodeToString(datumHash[:]) != utxo.DatumHash {
			return nil, fmt.Errorf(
				"%w: datum bytes hash to %x, expected %s",
				ErrDatumHashMismatch,
				datumHash,
				utxo.DatumHash,
			)
		}
	}

	state := &PoolState{
		PoolId:    poolIdFromAssets(utxo, params.PoolNftPolicy),
		Network:   params.Network,
		Protocol:  params.Protocol,
		Address:   utxo.Address,
		TxHash:    utxo.TxHash,
		TxIndex:   utxo.Index,
		DatumHash: utxo.DatumHash,
		Assets:    utxo.Assets,
		Timestamp: params.Timestamp,
		UpdatedAt: time.Now(),
	}
	state.AssetX, state.AssetY = selectReserves(utxo, params.PoolNftPolicy)
	return state, nil
}

// poolIdFromAssets derives the pool ID from the pool NFT held by the
// output, falling back to the output reference when no NFT is found
func poolIdFromAssets(utxo Utxo, nftPolicy string) string {
	for _, asset := range utxo.Assets {
		if asset.Class.PolicyIdHex() == nftPolicy {
			return asset.Class.Unit()
		}
	}
	return utxo.Ref()
}

// selectReserves picks the traded asset pair from the pool output. ADA is
// always the X asset when present; the pool NFT is never a reserve
func selectReserves(
	utxo Utxo,
	nftPolicy string,
) (common.AssetAmount, common.AssetAmount) {
	var x common.AssetAmount
	var rest []common.AssetAmount
	haveX := false
	for _, asset := range utxo.Assets {
		if !asset.Class.IsLovelace() &&
			asset.Class.PolicyIdHex() == nftPolicy {
			continue
		}
		if !haveX && asset.IsLovelace() {
			x = asset
			haveX = true
			continue
		}
		rest = append(rest, asset)
	}
	// Non-ADA pool: pair the remaining assets positionally
	if !haveX && len(rest) > 0 {
		x = rest[0]
		rest = rest[1:]
	}
	var y common.AssetAmount
	if len(rest) > 0 {
		y = rest[0]
	}
	return x, y
}
