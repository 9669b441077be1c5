package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/poolview/internal/api"
	"github.com/blinklabs-io/poolview/internal/config"
	"github.com/blinklabs-io/poolview/internal/logging"
	"github.com/blinklabs-io/poolview/internal/pool"
	"github.com/blinklabs-io/poolview/internal/provider/blockfrost"
	"github.com/blinklabs-io/poolview/internal/provider/maestro"
	"github.com/blinklabs-io/poolview/internal/registry"
	"github.com/blinklabs-io/poolview/internal/version"

	_ "go.uber.org/automaxprocs"
)

const (
	programName = "poolview"
)

var cmdlineFlags struct {
	configFile string
	version    bool
}

func main() {
	flag.StringVar(&cmdlineFlags.configFile, "config", "", "path to config file to load")
	flag.BoolVar(&cmdlineFlags.version, "version", false, "show version")
	flag.Parse()

	if cmdlineFlags.version {
		fmt.Printf("%s %s\n", programName, version.GetVersionString())
		os.Exit(0)
	}

	// Load config
	cfg, err := config.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %s\n", err)
		os.Exit(1)
	}

	// Configure logging
	logging.Configure()
	logger := logging.GetLogger()

	// Start debug listener
	if cfg.Debug.ListenPort > 0 {
		logger.Info(
			"starting debug listener",
			"address", cfg.Debug.ListenAddress,
			"port", cfg.Debug.ListenPort,
		)
		go func() {
			err := http.ListenAndServe(
				fmt.Sprintf(
					"%s:%d",
					cfg.Debug.ListenAddress,
					cfg.Debug.ListenPort,
				),
				nil,
			)
			if err != nil {
				logger.Error("failed to start debug listener", "error", err)
				os.Exit(1)
			}
		}()
	}

	// Resolve configured pool profiles
	profiles := registry.GetProfiles()
	if len(profiles) == 0 {
		logger.Error(
			"no pool profiles configured",
			"network", cfg.Network,
			"available", registry.GetAvailableProfiles(),
		)
		os.Exit(1)
	}

	// Build the configured provider backend
	var provider pool.Provider
	switch cfg.Provider.Backend {
	case "maestro":
		provider = maestro.New(cfg.Provider.Maestro, cfg.Network)
	case "blockfrost":
		provider = blockfrost.New(cfg.Provider.Blockfrost, cfg.Network)
	default:
		logger.Error("unknown provider backend", "backend", cfg.Provider.Backend)
		os.Exit(1)
	}
	logger.Info(
		"using provider backend",
		"backend", provider.Name(),
		"network", cfg.Network,
	)

	service := pool.NewService(provider, profiles)
	if err := service.Start(); err != nil {
		logger.Error("failed to start pool service", "error", err)
		os.Exit(1)
	}

	// Fetch an initial snapshot for each profile
	for _, profile := range profiles {
		ctx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		states, err := service.PoolStates(ctx, profile.Name, 1)
		cancel()
		if err != nil {
			logger.Warn(
				"failed to fetch initial pool state",
				"profile", profile.Name,
				"error", err,
			)
			continue
		}
		logger.Info(
			"fetched initial pool state",
			"profile", profile.Name,
			"pools", len(states),
		)
	}

	// Start API server
	apiServer := api.New(service)
	go func() {
		addr := fmt.Sprintf(
			"%s:%d",
			cfg.Api.ListenAddress,
			cfg.Api.ListenPort,
		)
		if err := apiServer.StartServer(addr); err != nil {
			logger.Error("failed to start API server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalChan
	logger.Info("shutting down", "signal", sig.String())
	service.Stop()
}
