package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/blinklabs-io/poolview/internal/config"
	"github.com/blinklabs-io/poolview/internal/pool"
	"github.com/blinklabs-io/poolview/internal/provider/blockfrost"
	"github.com/blinklabs-io/poolview/internal/provider/maestro"
	"github.com/blinklabs-io/poolview/internal/registry"
)

var cmdlineFlags struct {
	configFile string
	profile    string
	txHash     string
	page       int
	history    bool
}

func main() {
	flag.StringVar(&cmdlineFlags.configFile, "config", "", "path to config file to load")
	flag.StringVar(&cmdlineFlags.profile, "profile", "", "pool profile to snapshot")
	flag.StringVar(&cmdlineFlags.txHash, "tx", "", "fetch pool state as of a specific transaction")
	flag.IntVar(&cmdlineFlags.page, "page", 1, "result page to fetch")
	flag.BoolVar(&cmdlineFlags.history, "history", false, "fetch pool transaction history instead of state")
	flag.Parse()

	if cmdlineFlags.profile == "" {
		fmt.Printf("ERROR: you must specify a pool profile\n")
		os.Exit(1)
	}

	cfg, err := config.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("ERROR: failed to load config: %s\n", err)
		os.Exit(1)
	}

	var profile registry.Profile
	var found bool
	for _, p := range registry.GetProfiles() {
		if p.Name == cmdlineFlags.profile {
			profile = p
			found = true
			break
		}
	}
	if !found {
		fmt.Printf(
			"ERROR: unknown profile %q for network %s, available: %s\n",
			cmdlineFlags.profile,
			cfg.Network,
			strings.Join(registry.GetAvailableProfiles(), ", "),
		)
		os.Exit(1)
	}

	var provider pool.Provider
	switch cfg.Provider.Backend {
	case "maestro":
		provider = maestro.New(cfg.Provider.Maestro, cfg.Network)
	case "blockfrost":
		provider = blockfrost.New(cfg.Provider.Blockfrost, cfg.Network)
	default:
		fmt.Printf("ERROR: unknown provider backend: %s\n", cfg.Provider.Backend)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	service := pool.NewService(provider, []registry.Profile{profile})

	var result any
	switch {
	case cmdlineFlags.history:
		// Resolve the pool ID (the pool NFT unit) from the current state
		// before walking its transaction history
		var states []*pool.PoolState
		states, err = service.PoolStates(ctx, profile.Name, 1)
		if err != nil {
			break
		}
		if len(states) == 0 {
			fmt.Printf("ERROR: no pool found for profile %s\n", profile.Name)
			os.Exit(1)
		}
		result, err = service.History(
			ctx,
			states[0].PoolId,
			cmdlineFlags.page,
		)
	case cmdlineFlags.txHash != "":
		result, err = service.PoolStatesInTx(
			ctx,
			profile.Name,
			cmdlineFlags.txHash,
		)
	default:
		result, err = service.PoolStates(
			ctx,
			profile.Name,
			cmdlineFlags.page,
		)
	}
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Printf("ERROR: failed to encode result: %s\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
