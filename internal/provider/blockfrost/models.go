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

package blockfrost

// Blockfrost returns bare JSON arrays for list endpoints and uses a
// 1-based "page" query parameter for pagination. Quantities are decimal
// strings

type addressUtxo struct {
	Address     string       `json:"address"`
	TxHash      string       `json:"tx_hash"`
	OutputIndex uint32       `json:"output_index"`
	Amount      []utxoAmount `json:"amount"`
	Block       string       `json:"block"`
	DataHash    string       `json:"data_hash"`
	InlineDatum string       `json:"inline_datum"`
}

type utxoAmount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

type txUtxosResponse struct {
	Hash    string     `json:"hash"`
	Outputs []txOutput `json:"outputs"`
}

type txOutput struct {
	Address     string       `json:"address"`
	OutputIndex uint32       `json:"output_index"`
	Amount      []utxoAmount `json:"amount"`
	DataHash    string       `json:"data_hash"`
	InlineDatum string       `json:"inline_datum"`
}

type assetTx struct {
	TxHash      string `json:"tx_hash"`
	TxIndex     uint32 `json:"tx_index"`
	BlockHeight uint64 `json:"block_height"`
	// BlockTime is seconds since the Unix epoch
	BlockTime int64 `json:"block_time"`
}

type assetDetail struct {
	Asset    string         `json:"asset"`
	PolicyId string         `json:"policy_id"`
	Metadata *assetMetadata `json:"metadata"`
}

type assetMetadata struct {
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	Decimals uint32 `json:"decimals"`
}

type blockDetail struct {
	Hash   string `json:"hash"`
	Height uint64 `json:"height"`
	Slot   uint64 `json:"slot"`
	// Time is seconds since the Unix epoch
	Time int64 `json:"time"`
}
