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

package maestro

// Maestro wraps response payloads in a "data" envelope. Paginated
// responses additionally carry a "next_cursor" token

type addressUtxosResponse struct {
	Data       []addressUtxo `json:"data"`
	NextCursor string        `json:"next_cursor"`
}

type addressUtxo struct {
	TxHash  string      `json:"tx_hash"`
	Index   uint32      `json:"index"`
	Address string      `json:"address"`
	Assets  []utxoAsset `json:"assets"`
	Datum   *utxoDatum  `json:"datum"`
}

type utxoAsset struct {
	Unit   string `json:"unit"`
	Amount uint64 `json:"amount"`
}

type utxoDatum struct {
	Type  string `json:"type"`
	Hash  string `json:"hash"`
	Bytes string `json:"bytes"`
}

type transactionResponse struct {
	Data transactionDetail `json:"data"`
}

type transactionDetail struct {
	TxHash  string        `json:"tx_hash"`
	Outputs []addressUtxo `json:"outputs"`
}

type assetTxsResponse struct {
	Data       []assetTx `json:"data"`
	NextCursor string    `json:"next_cursor"`
}

type assetTx struct {
	TxHash string `json:"tx_hash"`
	Slot   uint64 `json:"slot"`
	// Timestamp is seconds since the Unix epoch
	Timestamp int64 `json:"timestamp"`
}

type assetInfoResponse struct {
	Data assetInfo `json:"data"`
}

type assetInfo struct {
	Asset                 string                 `json:"asset"`
	TokenRegistryMetadata *tokenRegistryMetadata `json:"token_registry_metadata"`
}

type tokenRegistryMetadata struct {
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	Decimals uint32 `json:"decimals"`
}

type blockResponse struct {
	Data blockInfo `json:"data"`
}

type blockInfo struct {
	Hash         string `json:"hash"`
	Height       uint64 `json:"height"`
	AbsoluteSlot uint64 `json:"absolute_slot"`
	// Timestamp is seconds since the Unix epoch
	Timestamp int64 `json:"timestamp"`
}
