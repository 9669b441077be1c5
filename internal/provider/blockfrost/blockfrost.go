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

// Package blockfrost implements the pool.Provider interface against the
// Blockfrost indexer API
package blockfrost

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/blinklabs-io/poolview/internal/common"
	"github.com/blinklabs-io/poolview/internal/config"
	"github.com/blinklabs-io/poolview/internal/pool"
)

const defaultPageSize = 100

// Client is a thin HTTP client for the Blockfrost API. Blockfrost uses
// numeric page parameters, so any page can be requested directly
type Client struct {
	baseUrl    string
	projectId  string
	pageSize   int
	httpClient *http.Client
}

// New creates a Blockfrost API client for the given network
func New(cfg config.BlockfrostConfig, network string) *Client {
	baseUrl := cfg.BaseUrl
	if baseUrl == "" {
		baseUrl = fmt.Sprintf(
			"https://cardano-%s.blockfrost.io/api/v0",
			network,
		)
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		baseUrl:   baseUrl,
		projectId: cfg.ProjectId,
		pageSize:  pageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the backend name
func (c *Client) Name() string {
	return "blockfrost"
}

// PoolUtxos returns the UTxOs at a pool script address for the requested
// page, optionally filtered by asset unit
func (c *Client) PoolUtxos(
	ctx context.Context,
	address string,
	asset string,
	page int,
) ([]pool.Utxo, error) {
	if page < 1 {
		page = 1
	}
	path := "/addresses/" + address + "/utxos"
	if asset != "" {
		path += "/" + asset
	}
	query := url.Values{}
	query.Set("count", strconv.Itoa(c.pageSize))
	query.Set("page", strconv.Itoa(page))
	var utxos []addressUtxo
	if err := c.get(ctx, path, query, &utxos); err != nil {
		return nil, err
	}
	ret := make([]pool.Utxo, 0, len(utxos))
	for _, utxo := range utxos {
		converted, err := convertUtxo(
			utxo.Address,
			utxo.TxHash,
			utxo.OutputIndex,
			utxo.Amount,
			utxo.DataHash,
			utxo.InlineDatum,
		)
		if err != nil {
			return nil, err
		}
		ret = append(ret, converted)
	}
	return ret, nil
}

// PoolUtxosInTx returns the outputs a transaction produced at a pool
// script address, optionally filtered by asset unit
func (c *Client) PoolUtxosInTx(
	ctx context.Context,
	txHash string,
	address string,
	asset string,
) ([]pool.Utxo, error) {
	var resp txUtxosResponse
	if err := c.get(
		ctx,
		"/txs/"+txHash+"/utxos",
		nil,
		&resp,
	); err != nil {
		return nil, err
	}
	var ret []pool.Utxo
	for _, output := range resp.Outputs {
		if output.Address != address {
			continue
		}
		converted, err := convertUtxo(
			output.Address,
			txHash,
			output.OutputIndex,
			output.Amount,
			output.DataHash,
			output.InlineDatum,
		)
		if err != nil {
			return nil, err
		}
		if asset != "" && converted.AmountOf(asset) == 0 {
			continue
		}
		ret = append(ret, converted)
	}
	return ret, nil
}

// AssetTransactions returns the transaction history page for an asset unit
func (c *Client) AssetTransactions(
	ctx context.Context,
	asset string,
	page int,
) ([]pool.HistoryEntry, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("count", strconv.Itoa(c.pageSize))
	query.Set("page", strconv.Itoa(page))
	query.Set("order", "desc")
	var txs []assetTx
	if err := c.get(
		ctx,
		"/assets/"+asset+"/transactions",
		query,
		&txs,
	); err != nil {
		return nil, err
	}
	entries := make([]pool.HistoryEntry, 0, len(txs))
	for _, tx := range txs {
		entries = append(entries, pool.HistoryEntry{
			TxHash:      tx.TxHash,
			Timestamp:   time.Unix(tx.BlockTime, 0),
			BlockHeight: tx.BlockHeight,
			BlockIndex:  tx.TxIndex,
		})
	}
	return entries, nil
}

// AssetDecimals returns the registered metadata decimals for an asset unit
func (c *Client) AssetDecimals(
	ctx context.Context,
	asset string,
) (uint32, error) {
	var detail assetDetail
	if err := c.get(ctx, "/assets/"+asset, nil, &detail); err != nil {
		return 0, err
	}
	if detail.Metadata == nil {
		return 0, fmt.Errorf(
			"%w: no registry metadata for asset %s",
			pool.ErrNotFound,
			asset,
		)
	}
	return detail.Metadata.Decimals, nil
}

// LatestBlock returns the most recent block known to Blockfrost
func (c *Client) LatestBlock(ctx context.Context) (*pool.Block, error) {
	var block blockDetail
	if err := c.get(ctx, "/blocks/latest", nil, &block); err != nil {
		return nil, err
	}
	return &pool.Block{
		Hash:   block.Hash,
		Height: block.Height,
		Slot:   block.Slot,
		Time:   time.Unix(block.Time, 0),
	}, nil
}

// get performs an authenticated GET request and decodes the JSON response
func (c *Client) get(
	ctx context.Context,
	path string,
	query url.Values,
	out any,
) error {
	reqUrl := c.baseUrl + path
	if len(query) > 0 {
		reqUrl += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("project_id", c.projectId)
	req.Header.Add("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %s: %w", reqUrl, err)
	}
	defer resp.Body.Close()
	// We have to read the entire response body to allow connection reuse
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", pool.ErrNotFound, reqUrl)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(
			"unexpected response: %s: %d: %s",
			reqUrl,
			resp.StatusCode,
			respBody,
		)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// convertUtxo maps a Blockfrost output onto the normalized form
func convertUtxo(
	address string,
	txHash string,
	index uint32,
	amounts []utxoAmount,
	dataHash string,
	inlineDatum string,
) (pool.Utxo, error) {
	converted := pool.Utxo{
		Address:   address,
		TxHash:    txHash,
		Index:     index,
		DatumHash: dataHash,
	}
	for _, amount := range amounts {
		assetClass, err := common.NewAssetClassFromUnit(amount.Unit)
		if err != nil {
			return pool.Utxo{}, fmt.Errorf(
				"invalid asset unit in response: %w",
				err,
			)
		}
		quantity, err := strconv.ParseUint(amount.Quantity, 10, 64)
		if err != nil {
			return pool.Utxo{}, fmt.Errorf(
				"invalid asset quantity in response: %w",
				err,
			)
		}
		converted.Assets = append(converted.Assets, common.AssetAmount{
			Class:  assetClass,
			Amount: quantity,
		})
	}
	if inlineDatum != "" {
		datumCbor, err := hex.DecodeString(inlineDatum)
		if err != nil {
			return pool.Utxo{}, fmt.Errorf("invalid inline datum: %w", err)
		}
		converted.DatumCbor = datumCbor
	}
	return converted, nil
}
