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

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blinklabs-io/poolview/internal/pool"
)

type stubProvider struct {
	history []pool.HistoryEntry
	block   *pool.Block
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) PoolUtxos(
	ctx context.Context,
	address string,
	asset string,
	page int,
) ([]pool.Utxo, error) {
	return nil, nil
}

func (s *stubProvider) PoolUtxosInTx(
	ctx context.Context,
	txHash string,
	address string,
	asset string,
) ([]pool.Utxo, error) {
	return nil, nil
}

func (s *stubProvider) AssetTransactions(
	ctx context.Context,
	asset string,
	page int,
) ([]pool.HistoryEntry, error) {
	return s.history, nil
}

func (s *stubProvider) AssetDecimals(
	ctx context.Context,
	asset string,
) (uint32, error) {
	return 6, nil
}

func (s *stubProvider) LatestBlock(ctx context.Context) (*pool.Block, error) {
	return s.block, nil
}

func testApi(provider pool.Provider) *Api {
	return New(pool.NewService(provider, nil))
}

func TestHandleListPoolsEmpty(t *testing.T) {
	api := testApi(&stubProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pools", nil)
	w := httptest.NewRecorder()
	api.HandleListPools(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("expected 0 pools, got %d", resp.Count)
	}
}

func TestHandleListPoolsMethodNotAllowed(t *testing.T) {
	api := testApi(&stubProvider{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pools", nil)
	w := httptest.NewRecorder()
	api.HandleListPools(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("unexpected status: %d", w.Code)
	}
}

func TestHandlePoolNotFound(t *testing.T) {
	api := testApi(&stubProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pools/nope", nil)
	w := httptest.NewRecorder()
	api.HandlePool(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("unexpected status: %d", w.Code)
	}
}

func TestHandlePoolHistory(t *testing.T) {
	provider := &stubProvider{
		history: []pool.HistoryEntry{
			{
				TxHash:      "txhash1",
				Timestamp:   time.Unix(1700000000, 0),
				BlockHeight: 9000000,
			},
		},
	}
	api := testApi(provider)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/pools/pool1/history?page=2",
		nil,
	)
	w := httptest.NewRecorder()
	api.HandlePool(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		History []pool.HistoryEntry `json:"history"`
		Page    int                 `json:"page"`
		Count   int                 `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Page != 2 || resp.Count != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.History[0].TxHash != "txhash1" {
		t.Errorf("unexpected history entry: %+v", resp.History[0])
	}
}

func TestHandlePoolHistoryInvalidPage(t *testing.T) {
	api := testApi(&stubProvider{})

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/pools/pool1/history?page=zero",
		nil,
	)
	w := httptest.NewRecorder()
	api.HandlePool(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("unexpected status: %d", w.Code)
	}
}

func TestHandleTip(t *testing.T) {
	provider := &stubProvider{
		block: &pool.Block{
			Hash:   "blockhash",
			Height: 9000000,
			Slot:   112233445,
			Time:   time.Unix(1700000000, 0),
		},
	}
	api := testApi(provider)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tip", nil)
	w := httptest.NewRecorder()
	api.HandleTip(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	var block pool.Block
	if err := json.NewDecoder(w.Body).Decode(&block); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block.Hash != "blockhash" || block.Height != 9000000 {
		t.Errorf("unexpected block: %+v", block)
	}
}

func TestCheckWebSocketOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/prices", nil)
	req.Host = "example.com"

	// No Origin header is allowed (non-browser clients)
	if !checkWebSocketOrigin(req) {
		t.Error("expected request without origin to be allowed")
	}

	// Same-origin is allowed
	req.Header.Set("Origin", "https://example.com")
	if !checkWebSocketOrigin(req) {
		t.Error("expected same-origin request to be allowed")
	}

	// Localhost is allowed for development
	req.Header.Set("Origin", "http://localhost:3000")
	if !checkWebSocketOrigin(req) {
		t.Error("expected localhost origin to be allowed")
	}

	// Cross-origin is rejected, including prefix tricks
	req.Header.Set("Origin", "https://example.com.evil.test")
	if checkWebSocketOrigin(req) {
		t.Error("expected cross-origin request to be rejected")
	}
}
