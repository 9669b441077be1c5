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
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/poolview/internal/common"
	"github.com/blinklabs-io/poolview/internal/config"
	"github.com/blinklabs-io/poolview/internal/logging"
	"github.com/blinklabs-io/poolview/internal/registry"
)

const lovelaceDecimals = 6

// Service normalizes indexer responses into pool states and serves them
// to callers
type Service struct {
	provider      Provider
	profiles      []registry.Profile
	pools         map[string]*PoolState
	poolsMu       sync.RWMutex
	subscribers   []chan *PriceUpdate
	subscribersMu sync.RWMutex
	storage       *Storage
	refreshTicker *time.Ticker
	stopChan      chan struct{}
	stopped       bool
}

// NewService creates a new Service instance
func NewService(provider Provider, profiles []registry.Profile) *Service {
	return &Service{
		provider: provider,
		profiles: profiles,
		pools:    make(map[string]*PoolState),
		stopChan: make(chan struct{}),
	}
}

// Start loads persisted snapshots and begins the background refresh loop
// (when configured)
func (s *Service) Start() error {
	logger := logging.GetLogger()
	cfg := config.GetConfig()

	var err error
	s.storage, err = NewStorage()
	if err != nil {
		return err
	}

	if err := s.loadPersistedStates(); err != nil {
		logger.Warn("failed to load persisted pool states", "error", err)
	}

	if cfg.Refresh.Interval > 0 {
		s.refreshTicker = time.NewTicker(
			time.Duration(cfg.Refresh.Interval) * time.Second,
		)
		go s.refreshLoop()
	}

	logger.Info(
		"pool service started",
		"provider", s.provider.Name(),
		"profiles", len(s.profiles),
		"refreshInterval", cfg.Refresh.Interval,
	)

	return nil
}

// Stop stops the service (idempotent - safe to call multiple times)
func (s *Service) Stop() {
	s.poolsMu.Lock()
	if s.stopped {
		s.poolsMu.Unlock()
		return
	}
	s.stopped = true
	s.poolsMu.Unlock()

	if s.refreshTicker != nil {
		s.refreshTicker.Stop()
	}
	close(s.stopChan)

	// Close all subscriber channels
	s.subscribersMu.Lock()
	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
	s.subscribersMu.Unlock()

	if s.storage != nil {
		_ = s.storage.Close()
	}
}

// PoolStates fetches the current pool UTxOs for a profile from the backend
// and returns them as validated snapshots. Outputs at the pool address that
// do not satisfy the pool invariants are skipped
func (s *Service) PoolStates(
	ctx context.Context,
	profileName string,
	page int,
) ([]*PoolState, error) {
	profile, err := s.findProfile(profileName)
	if err != nil {
		return nil, err
	}
	utxos, err := s.provider.PoolUtxos(ctx, profile.PoolAddress, "", page)
	if err != nil {
		return nil, err
	}
	return s.statesFromUtxos(utxos, profile), nil
}

// PoolStatesInTx returns the pool snapshots a single transaction produced
// for a profile
func (s *Service) PoolStatesInTx(
	ctx context.Context,
	profileName string,
	txHash string,
) ([]*PoolState, error) {
	profile, err := s.findProfile(profileName)
	if err != nil {
		return nil, err
	}
	utxos, err := s.provider.PoolUtxosInTx(
		ctx,
		txHash,
		profile.PoolAddress,
		"",
	)
	if err != nil {
		return nil, err
	}
	return s.statesFromUtxos(utxos, profile), nil
}

// History returns the transaction history page for a pool, identified by
// its pool NFT unit
func (s *Service) History(
	ctx context.Context,
	poolId string,
	page int,
) ([]HistoryEntry, error) {
	return s.provider.AssetTransactions(ctx, poolId, page)
}

// AssetDecimals returns the decimal places for an asset unit. Metadata
// lookup failures are swallowed and reported as zero decimals when the
// unit is a well-formed asset identifier; anything else is an error the
// caller must handle
func (s *Service) AssetDecimals(
	ctx context.Context,
	unit string,
) (uint32, error) {
	if unit == common.LovelaceUnit || unit == "" {
		return lovelaceDecimals, nil
	}
	decimals, err := s.provider.AssetDecimals(ctx, unit)
	if err != nil {
		if common.IsWellFormedUnit(unit) {
			// Assets without registered metadata trade with zero decimals
			return 0, nil
		}
		return 0, err
	}
	return decimals, nil
}

// PoolPrice computes the decimal-adjusted directional prices for a pool
// snapshot
func (s *Service) PoolPrice(
	ctx context.Context,
	state *PoolState,
) (*Price, error) {
	decimalsX, err := s.AssetDecimals(ctx, state.AssetX.Class.Unit())
	if err != nil {
		return nil, err
	}
	decimalsY, err := s.AssetDecimals(ctx, state.AssetY.Class.Unit())
	if err != nil {
		return nil, err
	}
	priceXY, priceYX := RelativePrices(
		state.AssetX.Amount,
		decimalsX,
		state.AssetY.Amount,
		decimalsY,
	)
	return &Price{
		PoolId:    state.PoolId,
		PriceXY:   priceXY,
		PriceYX:   priceYX,
		DecimalsX: decimalsX,
		DecimalsY: decimalsY,
	}, nil
}

// LatestBlock returns the backend's current chain tip
func (s *Service) LatestBlock(ctx context.Context) (*Block, error) {
	return s.provider.LatestBlock(ctx)
}

// statesFromUtxos converts raw UTxOs into validated snapshots, updating the
// in-memory view and persisting as it goes
func (s *Service) statesFromUtxos(
	utxos []Utxo,
	profile registry.Profile,
) []*PoolState {
	logger := logging.GetLogger()
	cfg := config.GetConfig()

	states := make([]*PoolState, 0, len(utxos))
	for _, utxo := range utxos {
		state, err := NewPoolState(utxo, StateParams{
			Network:       cfg.Network,
			Protocol:      profile.Protocol,
			ScriptHash:    profile.ScriptHash,
			PoolNftPolicy: profile.PoolNftPolicy,
			Timestamp:     time.Now(),
		})
		if err != nil {
			// Not every output at a pool address is a pool
			logger.Debug(
				"skipping non-pool output",
				"ref", utxo.Ref(),
				"error", err,
			)
			continue
		}
		states = append(states, state)
		s.updatePool(state)
	}
	return states
}

// updatePool updates the in-memory view, persists the snapshot, and
// notifies subscribers
func (s *Service) updatePool(state *PoolState) {
	logger := logging.GetLogger()

	var prevPrice float64
	s.poolsMu.RLock()
	if prev, ok := s.pools[state.PoolId]; ok {
		prevPrice = prev.PriceXY()
	}
	s.poolsMu.RUnlock()

	s.poolsMu.Lock()
	s.pools[state.PoolId] = state
	s.poolsMu.Unlock()

	if s.storage != nil {
		if err := s.storage.SavePoolState(state); err != nil {
			logger.Error(
				"failed to persist pool state",
				"error", err,
				"poolId", state.PoolId,
			)
		}
	}

	s.notifySubscribers(NewPriceUpdate(state, prevPrice))
}

// refreshLoop periodically re-fetches pool states for all profiles
func (s *Service) refreshLoop() {
	logger := logging.GetLogger()
	for {
		select {
		case <-s.refreshTicker.C:
			for _, profile := range s.profiles {
				ctx, cancel := context.WithTimeout(
					context.Background(),
					30*time.Second,
				)
				if _, err := s.PoolStates(ctx, profile.Name, 1); err != nil {
					logger.Warn(
						"pool refresh failed",
						"profile", profile.Name,
						"error", err,
					)
				}
				cancel()
			}
		case <-s.stopChan:
			return
		}
	}
}

// findProfile looks up a configured profile by name
func (s *Service) findProfile(name string) (registry.Profile, error) {
	for _, profile := range s.profiles {
		if profile.Name == name {
			return profile, nil
		}
	}
	return registry.Profile{}, fmt.Errorf("unknown profile: %s", name)
}

// loadPersistedStates loads pool states from storage
func (s *Service) loadPersistedStates() error {
	if s.storage == nil {
		return nil
	}

	states, err := s.storage.LoadAllPoolStates()
	if err != nil {
		return err
	}

	s.poolsMu.Lock()
	for _, state := range states {
		s.pools[state.PoolId] = state
	}
	s.poolsMu.Unlock()

	logger := logging.GetLogger()
	logger.Info("loaded persisted pool states", "count", len(states))

	return nil
}

// notifySubscribers sends a price update to all subscribers
func (s *Service) notifySubscribers(update *PriceUpdate) {
	s.subscribersMu.RLock()
	defer s.subscribersMu.RUnlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- update:
		default:
			// Channel full, skip
		}
	}
}

// Subscribe returns a channel that receives price updates
func (s *Service) Subscribe() <-chan *PriceUpdate {
	ch := make(chan *PriceUpdate, 100)

	s.subscribersMu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.subscribersMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription channel
func (s *Service) Unsubscribe(ch <-chan *PriceUpdate) {
	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			break
		}
	}
}

// GetPoolState returns the current cached state of a pool
func (s *Service) GetPoolState(poolId string) (*PoolState, bool) {
	s.poolsMu.RLock()
	defer s.poolsMu.RUnlock()

	state, ok := s.pools[poolId]
	return state, ok
}

// GetAllPools returns all cached pool states
func (s *Service) GetAllPools() []*PoolState {
	s.poolsMu.RLock()
	defer s.poolsMu.RUnlock()

	pools := make([]*PoolState, 0, len(s.pools))
	for _, state := range s.pools {
		pools = append(pools, state)
	}
	return pools
}

// PoolCount returns the number of cached pools
func (s *Service) PoolCount() int {
	s.poolsMu.RLock()
	defer s.poolsMu.RUnlock()
	return len(s.pools)
}
