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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blinklabs-io/poolview/internal/registry"
)

// fakeProvider is a canned-response Provider for testing the service layer
type fakeProvider struct {
	utxos        []Utxo
	utxosErr     error
	history      []HistoryEntry
	historyErr   error
	decimals     map[string]uint32
	decimalsErr  error
	block        *Block
	decimalCalls int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) PoolUtxos(
	ctx context.Context,
	address string,
	asset string,
	page int,
) ([]Utxo, error) {
	return f.utxos, f.utxosErr
}

func (f *fakeProvider) PoolUtxosInTx(
	ctx context.Context,
	txHash string,
	address string,
	asset string,
) ([]Utxo, error) {
	return f.utxos, f.utxosErr
}

func (f *fakeProvider) AssetTransactions(
	ctx context.Context,
	asset string,
	page int,
) ([]HistoryEntry, error) {
	return f.history, f.historyErr
}

func (f *fakeProvider) AssetDecimals(
	ctx context.Context,
	asset string,
) (uint32, error) {
	f.decimalCalls++
	if f.decimalsErr != nil {
		return 0, f.decimalsErr
	}
	return f.decimals[asset], nil
}

func (f *fakeProvider) LatestBlock(ctx context.Context) (*Block, error) {
	return f.block, nil
}

func testProfile() registry.Profile {
	return registry.Profile{
		Name:          "Minswap",
		Protocol:      "minswap-v1",
		PoolAddress:   testPoolAddress,
		ScriptHash:    testScriptHash,
		PoolNftPolicy: testPoolNftPolicy,
	}
}

func TestServicePoolStates(t *testing.T) {
	valid := testUtxo(t)
	invalid := testUtxo(t)
	invalid.DatumHash = ""
	provider := &fakeProvider{utxos: []Utxo{valid, invalid}}
	service := NewService(provider, []registry.Profile{testProfile()})

	states, err := service.PoolStates(context.Background(), "Minswap", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The invalid output is skipped, not an error
	if len(states) != 1 {
		t.Fatalf("expected 1 pool state, got %d", len(states))
	}
	if service.PoolCount() != 1 {
		t.Errorf("expected 1 cached pool, got %d", service.PoolCount())
	}

	// The state is retrievable from the cache by pool ID
	cached, ok := service.GetPoolState(states[0].PoolId)
	if !ok {
		t.Fatal("expected pool state in cache")
	}
	if cached.Ref() != valid.Ref() {
		t.Errorf("unexpected cached ref: %s", cached.Ref())
	}
}

func TestServicePoolStatesUnknownProfile(t *testing.T) {
	service := NewService(&fakeProvider{}, []registry.Profile{testProfile()})
	_, err := service.PoolStates(context.Background(), "nope", 1)
	if err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestServicePoolStatesProviderError(t *testing.T) {
	providerErr := errors.New("upstream unavailable")
	provider := &fakeProvider{utxosErr: providerErr}
	service := NewService(provider, []registry.Profile{testProfile()})
	_, err := service.PoolStates(context.Background(), "Minswap", 1)
	if !errors.Is(err, providerErr) {
		t.Errorf("expected provider error passed through, got %v", err)
	}
}

func TestServiceAssetDecimals(t *testing.T) {
	unit := testTokenPolicy + "4d494e"
	provider := &fakeProvider{decimals: map[string]uint32{unit: 6}}
	service := NewService(provider, nil)

	// Lovelace is always 6 without a provider call
	decimals, err := service.AssetDecimals(context.Background(), "lovelace")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decimals != 6 {
		t.Errorf("expected 6 decimals for lovelace, got %d", decimals)
	}
	if provider.decimalCalls != 0 {
		t.Errorf("expected no provider calls for lovelace")
	}

	// Known assets come from the provider
	decimals, err = service.AssetDecimals(context.Background(), unit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decimals != 6 {
		t.Errorf("expected 6 decimals, got %d", decimals)
	}
}

func TestServiceAssetDecimalsSwallowsMetadataFailure(t *testing.T) {
	unit := testTokenPolicy + "4d494e"
	provider := &fakeProvider{decimalsErr: ErrNotFound}
	service := NewService(provider, nil)

	// A metadata failure for a well-formed unit reports zero decimals
	decimals, err := service.AssetDecimals(context.Background(), unit)
	if err != nil {
		t.Fatalf("expected metadata failure to be swallowed, got %v", err)
	}
	if decimals != 0 {
		t.Errorf("expected 0 decimals, got %d", decimals)
	}

	// A malformed unit propagates the failure
	_, err = service.AssetDecimals(context.Background(), "zznothex")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected error for malformed unit, got %v", err)
	}
}

func TestServicePoolPrice(t *testing.T) {
	utxo := testUtxo(t)
	tokenUnit := testTokenPolicy + "4d494e"
	provider := &fakeProvider{
		utxos:    []Utxo{utxo},
		decimals: map[string]uint32{tokenUnit: 6},
	}
	service := NewService(provider, []registry.Profile{testProfile()})

	states, err := service.PoolStates(context.Background(), "Minswap", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	price, err := service.PoolPrice(context.Background(), states[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1000 ADA vs 500 tokens, both 6 decimals
	if price.PriceXY != 0.5 {
		t.Errorf("expected priceXY 0.5, got %f", price.PriceXY)
	}
	if price.PriceYX != 2.0 {
		t.Errorf("expected priceYX 2.0, got %f", price.PriceYX)
	}
	if price.DecimalsX != 6 || price.DecimalsY != 6 {
		t.Errorf(
			"unexpected decimals: %d/%d",
			price.DecimalsX,
			price.DecimalsY,
		)
	}
}

func TestServiceHistory(t *testing.T) {
	entries := []HistoryEntry{
		{
			TxHash:      testTxHash,
			Timestamp:   time.Unix(1700000000, 0),
			BlockHeight: 9000000,
			BlockIndex:  3,
		},
	}
	provider := &fakeProvider{history: entries}
	service := NewService(provider, nil)

	got, err := service.History(context.Background(), "poolid", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].TxHash != testTxHash {
		t.Errorf("unexpected history: %+v", got)
	}
}

func TestServiceSubscribe(t *testing.T) {
	utxo := testUtxo(t)
	provider := &fakeProvider{utxos: []Utxo{utxo}}
	service := NewService(provider, []registry.Profile{testProfile()})

	updates := service.Subscribe()

	_, err := service.PoolStates(context.Background(), "Minswap", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case update := <-updates:
		if update.Protocol != "minswap-v1" {
			t.Errorf("unexpected update protocol: %s", update.Protocol)
		}
		if update.PriceXY != 0.5 {
			t.Errorf("unexpected update price: %f", update.PriceXY)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for price update")
	}

	service.Unsubscribe(updates)
	if _, ok := <-updates; ok {
		t.Error("expected subscription channel closed after unsubscribe")
	}
}

func TestServiceStopIdempotent(t *testing.T) {
	service := NewService(&fakeProvider{}, nil)
	service.Stop()
	service.Stop()
}

func TestFindAmountOf(t *testing.T) {
	utxo := testUtxo(t)
	unit := testTokenPolicy + "4d494e"
	if utxo.AmountOf(unit) != 500_000000 {
		t.Errorf("unexpected amount: %d", utxo.AmountOf(unit))
	}
	if utxo.AmountOf("ffffffff") != 0 {
		t.Errorf("expected zero amount for unknown unit")
	}
}
