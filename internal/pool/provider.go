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

import "context"

// Provider is the interface indexer backends must implement. Pages are
// 1-based; how a backend reaches a given page (cursor chain, page param)
// is its own concern
type Provider interface {
	// Name returns the backend name
	Name() string

	// PoolUtxos returns the UTxOs at a pool script address, optionally
	// filtered to outputs holding the given asset unit
	PoolUtxos(
		ctx context.Context,
		address string,
		asset string,
		page int,
	) ([]Utxo, error)

	// PoolUtxosInTx returns the outputs a transaction produced at a pool
	// script address, optionally filtered by asset unit
	PoolUtxosInTx(
		ctx context.Context,
		txHash string,
		address string,
		asset string,
	) ([]Utxo, error)

	// AssetTransactions returns the transaction history for an asset unit
	AssetTransactions(
		ctx context.Context,
		asset string,
		page int,
	) ([]HistoryEntry, error)

	// AssetDecimals returns the registered decimal places for an asset unit.
	// ErrNotFound is returned when the asset has no registered metadata
	AssetDecimals(ctx context.Context, asset string) (uint32, error)

	// LatestBlock returns the most recent block known to the backend
	LatestBlock(ctx context.Context) (*Block, error)
}
