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

// Package maestro implements the pool.Provider interface against the
// Maestro indexer API
package maestro

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
	"github.com/blinklabs-io/poolview/internal/provider"
)

const defaultPageSize = 100

// Client is a thin HTTP client for the Maestro API. Maestro paginates with
// opaque cursors, so reaching page N means walking N chained responses
type Client struct {
	baseUrl    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
}

// New creates a Maestro API client for the given network
func New(cfg config.MaestroConfig, network string) *Client {
	baseUrl := cfg.BaseUrl
	if baseUrl == "" {
		baseUrl = fmt.Sprintf("https://%s.gomaestro-api.org/v1", network)
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		baseUrl:  baseUrl,
		apiKey:   cfg.ApiKey,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the backend name
func (c *Client) Name() string {
	return "maestro"
}

// PoolUtxos returns the UTxOs at a pool script address for the requested
// page, optionally filtered by asset unit
func (c *Client) PoolUtxos(
	ctx context.Context,
	address string,
	asset string,
	page int,
) ([]pool.Utxo, error) {
	fetch := func(
		ctx context.Context,
		cursor string,
	) (addressUtxosResponse, string, error) {
		query := url.Values{}
		query.Set("count", strconv.Itoa(c.pageSize))
		if asset != "" {
			query.Set("asset", asset)
		}
		if cursor != "" {
			query.Set("cursor", cursor)
		}
		var resp addressUtxosResponse
		err := c.get(
			ctx,
			"/addresses/"+address+"/utxos",
			query,
			&resp,
		)
		if err != nil {
			return addressUtxosResponse{}, "", err
		}
		return resp, resp.NextCursor, nil
	}
	resp, err := provider.FetchPage(ctx, page, fetch)
	if err != nil {
		return nil, err
	}
	return convertUtxos(resp.Data)
}

// PoolUtxosInTx returns the outputs a transaction produced at a pool
// script address, optionally filtered by asset unit
func (c *Client) PoolUtxosInTx(
	ctx context.Context,
	txHash string,
	address string,
	asset string,
) ([]pool.Utxo, error) {
	var resp transactionResponse
	if err := c.get(
		ctx,
		"/transactions/"+txHash,
		nil,
		&resp,
	); err != nil {
		return nil, err
	}
	var matched []addressUtxo
	for _, output := range resp.Data.Outputs {
		if output.Address != address {
			continue
		}
		// Outputs in the transaction view don't repeat the tx hash
		output.TxHash = txHash
		matched = append(matched, output)
	}
	utxos, err := convertUtxos(matched)
	if err != nil {
		return nil, err
	}
	if asset != "" {
		filtered := make([]pool.Utxo, 0, len(utxos))
		for _, utxo := range utxos {
			if utxo.AmountOf(asset) > 0 {
				filtered = append(filtered, utxo)
			}
		}
		utxos = filtered
	}
	return utxos, nil
}

// AssetTransactions returns the transaction history page for an asset unit
func (c *Client) AssetTransactions(
	ctx context.Context,
	asset string,
	page int,
) ([]pool.HistoryEntry, error) {
	fetch := func(
		ctx context.Context,
		cursor string,
	) (assetTxsResponse, string, error) {
		query := url.Values{}
		query.Set("count", strconv.Itoa(c.pageSize))
		if cursor != "" {
			query.Set("cursor", cursor)
		}
		var resp assetTxsResponse
		err := c.get(
			ctx,
			"/assets/"+asset+"/txs",
			query,
			&resp,
		)
		if err != nil {
			return assetTxsResponse{}, "", err
		}
		return resp, resp.NextCursor, nil
	}
	resp, err := provider.FetchPage(ctx, page, fetch)
	if err != nil {
		return nil, err
	}
	entries := make([]pool.HistoryEntry, 0, len(resp.Data))
	for _, tx := range resp.Data {
		entries = append(entries, pool.HistoryEntry{
			TxHash:    tx.TxHash,
			Timestamp: time.Unix(tx.Timestamp, 0),
		})
	}
	return entries, nil
}

// AssetDecimals returns the token registry decimals for an asset unit
func (c *Client) AssetDecimals(
	ctx context.Context,
	asset string,
) (uint32, error) {
	var resp assetInfoResponse
	if err := c.get(
		ctx,
		"/assets/"+asset,
		nil,
		&resp,
	); err != nil {
		return 0, err
	}
	if resp.Data.TokenRegistryMetadata == nil {
		return 0, fmt.Errorf(
			"%w: no registry metadata for asset %s",
			pool.ErrNotFound,
			asset,
		)
	}
	return resp.Data.TokenRegistryMetadata.Decimals, nil
}

// LatestBlock returns the most recent block known to Maestro
func (c *Client) LatestBlock(ctx context.Context) (*pool.Block, error) {
	var resp blockResponse
	if err := c.get(ctx, "/blocks/latest", nil, &resp); err != nil {
		return nil, err
	}
	return &pool.Block{
		Hash:   resp.Data.Hash,
		Height: resp.Data.Height,
		Slot:   resp.Data.AbsoluteSlot,
		Time:   time.Unix(resp.Data.Timestamp, 0),
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
	req.Header.Add("api-key", c.apiKey)
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

// convertUtxos maps Maestro UTxOs onto the normalized form
func convertUtxos(utxos []addressUtxo) ([]pool.Utxo, error) {
	ret := make([]pool.Utxo, 0, len(utxos))
	for _, utxo := range utxos {
		converted := pool.Utxo{
			Address: utxo.Address,
			TxHash:  utxo.TxHash,
			Index:   utxo.Index,
		}
		for _, asset := range utxo.Assets {
			assetClass, err := common.NewAssetClassFromUnit(asset.Unit)
			if err != nil {
				return nil, fmt.Errorf(
					"invalid asset unit in response: %w",
					err,
				)
			}
			converted.Assets = append(converted.Assets, common.AssetAmount{
				Class:  assetClass,
				Amount: asset.Amount,
			})
		}
		if utxo.Datum != nil {
			converted.DatumHash = utxo.Datum.Hash
			if utxo.Datum.Bytes != "" {
				datumCbor, err := hex.DecodeString(utxo.Datum.Bytes)
				if err != nil {
					return nil, fmt.Errorf("invalid datum bytes: %w", err)
				}
				converted.DatumCbor = datumCbor
			}
		}
		ret = append(ret, converted)
	}
	return ret, nil
}
