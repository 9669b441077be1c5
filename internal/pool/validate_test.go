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
	"testing"
	"time"

	"github.com/blinklabs-io/poolview/internal/common"
	"golang.org/x/crypto/blake2b"
)

const (
	testPoolAddress   = "addr1z8snz7c4974vzdpxu65ruphl3zjdvtxw8strf2c2tmqnxz2j2c79gy9l76sdg0xwhd7r0c0kna0tycz4y5s6mlenh8pq0xmsha"
	testScriptHash    = "e1317b152faac13426e6a83e06ff88a4d62cce3c1634ab0a5ec13309"
	testPoolNftPolicy = "0be55d262b29f564998ff81efe21bdc0022621c12f15af08d0f2ddb1"
	testTokenPolicy   = "29d222ce763455e3d7a09a665ce554f00ac89d2e99a1a83d267170c6"
	testTxHash        = "3fb9329d1d0b2a1c5a1e2a3f4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e"
)

func testParams() StateParams {
	return StateParams{
		Network:       "mainnet",
		Protocol:      "minswap-v1",
		ScriptHash:    testScriptHash,
		PoolNftPolicy: testPoolNftPolicy,
		Timestamp:     time.Now(),
	}
}

func testUtxo(t *testing.T) Utxo {
	t.Helper()
	nft, err := common.NewAssetClass(testPoolNftPolicy, "abcd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, err := common.NewAssetClass(testTokenPolicy, "4d494e")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return Utxo{
		Address: testPoolAddress,
		TxHash:  testTxHash,
		Index:   2,
		Assets: []common.AssetAmount{
			{Class: common.AssetClass{}, Amount: 1000_000000},
			{Class: nft, Amount: 1},
			{Class: token, Amount: 500_000000},
		},
		DatumHash: "d84b8e4b9dc7c3fd2c3ea5f59900c0e9b61a486f46e7a0c6e6f5b8f1c3d2a190",
	}
}

func TestNewPoolState(t *testing.T) {
	utxo := testUtxo(t)
	state, err := NewPoolState(utxo, testParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Address != testPoolAddress {
		t.Errorf("unexpected address: %s", state.Address)
	}
	if state.TxHash != testTxHash || state.TxIndex != 2 {
		t.Errorf("unexpected output ref: %s", state.Ref())
	}
	if state.DatumHash != utxo.DatumHash {
		t.Errorf("unexpected datum hash: %s", state.DatumHash)
	}
	// Pool ID comes from the pool NFT unit
	expectedPoolId := testPoolNftPolicy + "abcd"
	if state.PoolId != expectedPoolId {
		t.Errorf("expected pool ID %s, got %s", expectedPoolId, state.PoolId)
	}
	// ADA is the X reserve, the token is the Y reserve, the NFT is excluded
	if !state.AssetX.IsLovelace() {
		t.Errorf("expected lovelace X reserve, got %s", state.AssetX.Class)
	}
	if state.AssetX.Amount != 1000_000000 {
		t.Errorf("unexpected X reserve: %d", state.AssetX.Amount)
	}
	if state.AssetY.Class.PolicyIdHex() != testTokenPolicy {
		t.Errorf("unexpected Y reserve class: %s", state.AssetY.Class)
	}
	if state.AssetY.Amount != 500_000000 {
		t.Errorf("unexpected Y reserve: %d", state.AssetY.Amount)
	}
}

func TestNewPoolStateMissingDatumHash(t *testing.T) {
	utxo := testUtxo(t)
	utxo.DatumHash = ""
	_, err := NewPoolState(utxo, testParams())
	if !errors.Is(err, ErrMissingDatumHash) {
		t.Errorf("expected ErrMissingDatumHash, got %v", err)
	}
}

func TestNewPoolStateScriptHashMismatch(t *testing.T) {
	utxo := testUtxo(t)
	params := testParams()
	params.ScriptHash = "4020e7fc2de75a0729c3cc3af715b34d98381e0cdbcfa99c950bc3ac"
	_, err := NewPoolState(utxo, params)
	if !errors.Is(err, ErrScriptHashMismatch) {
		t.Errorf("expected ErrScriptHashMismatch, got %v", err)
	}
}

func TestNewPoolStateBadAddress(t *testing.T) {
	utxo := testUtxo(t)
	utxo.Address = "not-an-address"
	_, err := NewPoolState(utxo, testParams())
	if err == nil {
		t.Error("expected error for undecodable address")
	}
}

func TestNewPoolStateDatumVerification(t *testing.T) {
	datum := []byte{0xd8, 0x79, 0x9f, 0x01, 0x02, 0xff}
	datumHash := blake2b.Sum256(datum)

	// Matching datum bytes are accepted
	utxo := testUtxo(t)
	utxo.DatumCbor = datum
	utxo.DatumHash = hex.EncodeToString(datumHash[:])
	if _, err := NewPoolState(utxo, testParams()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mismatched datum bytes are rejected
	utxo.DatumCbor = append(datum, 0x00)
	_, err := NewPoolState(utxo, testParams())
	if !errors.Is(err, ErrDatumHashMismatch) {
		t.Errorf("expected ErrDatumHashMismatch, got %v", err)
	}
}

func TestNewPoolStateNoNftFallsBackToRef(t *testing.T) {
	utxo := testUtxo(t)
	// Drop the pool NFT from the output
	utxo.Assets = []common.AssetAmount{
		utxo.Assets[0],
		utxo.Assets[2],
	}
	state, err := NewPoolState(utxo, testParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.PoolId != utxo.Ref() {
		t.Errorf(
			"expected pool ID to fall back to %s, got %s",
			utxo.Ref(),
			state.PoolId,
		)
	}
}

func TestSelectReservesNonAdaPool(t *testing.T) {
	tokenA, err := common.NewAssetClass(testTokenPolicy, "4d494e")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tokenB, err := common.NewAssetClass(
		"533bb94a8850ee3ccbe483106489399112b74c905342cb1792a797a0",
		"494e4459",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	utxo := Utxo{
		Assets: []common.AssetAmount{
			{Class: tokenA, Amount: 100},
			{Class: tokenB, Amount: 200},
		},
	}
	x, y := selectReserves(utxo, testPoolNftPolicy)
	if x.Class.PolicyIdHex() != testTokenPolicy || x.Amount != 100 {
		t.Errorf("unexpected X reserve: %s %d", x.Class, x.Amount)
	}
	if y.Amount != 200 {
		t.Errorf("unexpected Y reserve: %s %d", y.Class, y.Amount)
	}
}
