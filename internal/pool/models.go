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
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/blinklabs-io/poolview/internal/common"
)

// Utxo is a normalized unspent transaction output as reported by an
// indexer backend
type Utxo struct {
	Address string               `json:"address"`
	TxHash  string               `json:"txHash"`
	Index   uint32               `json:"index"`
	Assets  []common.AssetAmount `json:"assets"`
	// DatumHash is the hash of the datum attached to the output, if any
	DatumHash string `json:"datumHash,omitempty"`
	// DatumCbor is the raw inline datum bytes, when the backend resolves them
	DatumCbor []byte `json:"datumCbor,omitempty"`
}

// Ref returns the output reference in txHash#index form
func (u Utxo) Ref() string {
	return fmt.Sprintf("%s#%d", u.TxHash, u.Index)
}

// AmountOf returns the quantity of the given asset unit held by the output
func (u Utxo) AmountOf(unit string) uint64 {
	for _, asset := range u.Assets {
		if asset.Class.Unit() == unit {
			return asset.Amount
		}
	}
	return 0
}

// PoolState represents a snapshot of a liquidity pool UTxO. It is built
// once from an indexer response and never mutated
type PoolState struct {
	PoolId    string             `json:"poolId"`
	Network   string             `json:"network"`
	Protocol  string             `json:"protocol"`
	Address   string             `json:"address"`
	TxHash    string             `json:"txHash"`
	TxIndex   uint32             `json:"txIndex"`
	DatumHash string             `json:"datumHash"`
	AssetX    common.AssetAmount `json:"assetX"`
	AssetY    common.AssetAmount `json:"assetY"`
	// Assets carries every asset on the pool output, as returned upstream
	Assets    []common.AssetAmount `json:"assets"`
	Timestamp time.Time            `json:"timestamp"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// PriceXY returns the raw (reserve-ratio) price of X in terms of Y
func (p *PoolState) PriceXY() float64 {
	if p.AssetX.Amount == 0 {
		return 0
	}
	return float64(p.AssetY.Amount) / float64(p.AssetX.Amount)
}

// PriceYX returns the raw (reserve-ratio) price of Y in terms of X
func (p *PoolState) PriceYX() float64 {
	if p.AssetY.Amount == 0 {
		return 0
	}
	return float64(p.AssetX.Amount) / float64(p.AssetY.Amount)
}

// Ref returns the pool output reference in txHash#index form
func (p *PoolState) Ref() string {
	return fmt.Sprintf("%s#%d", p.TxHash, p.TxIndex)
}

// Key returns a unique identifier for this pool state
func (p *PoolState) Key() string {
	return fmt.Sprintf("%s:%s:%s", p.Network, p.Protocol, p.PoolId)
}

// String returns a human-readable representation
func (p PoolState) String() string {
	poolIdDisplay := p.PoolId
	if len(poolIdDisplay) > 16 {
		poolIdDisplay = poolIdDisplay[:16] + "..."
	}
	return fmt.Sprintf(
		"Pool[%s] %s/%s: %d/%d (price: %.6f)",
		poolIdDisplay,
		p.AssetX.Class.Fingerprint(),
		p.AssetY.Class.Fingerprint(),
		p.AssetX.Amount,
		p.AssetY.Amount,
		p.PriceXY(),
	)
}

// MarshalJSON implements json.Marshaler with computed fields
func (p PoolState) MarshalJSON() ([]byte, error) {
	type Alias PoolState
	return json.Marshal(&struct {
		Alias
		PriceXY float64 `json:"priceXY"`
		PriceYX float64 `json:"priceYX"`
	}{
		Alias:   Alias(p),
		PriceXY: p.PriceXY(),
		PriceYX: p.PriceYX(),
	})
}

// HistoryEntry is a single entry in a pool's transaction history
type HistoryEntry struct {
	TxHash    string    `json:"txHash"`
	Timestamp time.Time `json:"timestamp"`
	// BlockHeight and BlockIndex are populated when the backend reports them
	BlockHeight uint64 `json:"blockHeight,omitempty"`
	BlockIndex  uint32 `json:"blockIndex,omitempty"`
}

// Block describes the indexer's view of the most recent block
type Block struct {
	Hash   string    `json:"hash"`
	Height uint64    `json:"height"`
	Slot   uint64    `json:"slot"`
	Time   time.Time `json:"time"`
}

// PriceUpdate is sent to subscribers when a pool state changes
type PriceUpdate struct {
	PoolId       string    `json:"poolId"`
	Protocol     string    `json:"protocol"`
	AssetX       string    `json:"assetX"`
	AssetY       string    `json:"assetY"`
	PriceXY      float64   `json:"priceXY"`
	PriceYX      float64   `json:"priceYX"`
	PrevPriceXY  float64   `json:"prevPriceXY"`
	PriceChangeX float64   `json:"priceChangeX"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewPriceUpdate creates a PriceUpdate from a pool state and the previous
// observed price
func NewPriceUpdate(state *PoolState, prevPrice float64) *PriceUpdate {
	update := &PriceUpdate{
		PoolId:      state.PoolId,
		Protocol:    state.Protocol,
		AssetX:      state.AssetX.Class.Fingerprint(),
		AssetY:      state.AssetY.Class.Fingerprint(),
		PriceXY:     state.PriceXY(),
		PriceYX:     state.PriceYX(),
		PrevPriceXY: prevPrice,
		Timestamp:   state.Timestamp,
	}
	if prevPrice != 0 {
		update.PriceChangeX = (update.PriceXY - prevPrice) / prevPrice * 100
	}
	return update
}

// ParsePoolStateKey extracts network, protocol, and poolId from a storage key
func ParsePoolStateKey(
	key string,
) (network, protocol, poolId string, err error) {
	if !strings.HasPrefix(key, poolStateKeyPrefix) {
		return "", "", "", fmt.Errorf("invalid pool state key prefix")
	}
	parts := strings.SplitN(
		strings.TrimPrefix(key, poolStateKeyPrefix),
		":",
		3,
	)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("invalid pool state key format")
	}
	return parts[0], parts[1], parts[2], nil
}
