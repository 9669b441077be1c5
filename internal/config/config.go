package config

import (
	"fmt"
	"os"

	ouroboros "github.com/blinklabs-io/gouroboros"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Logging      LoggingConfig  `yaml:"logging"`
	Debug        DebugConfig    `yaml:"debug"`
	Api          ApiConfig      `yaml:"api"`
	Storage      StorageConfig  `yaml:"storage"`
	Provider     ProviderConfig `yaml:"provider"`
	Network      string         `yaml:"network"  envconfig:"NETWORK"`
	Profiles     []string       `yaml:"profiles" envconfig:"PROFILES"`
	Refresh      RefreshConfig  `yaml:"refresh"`
	NetworkMagic uint32
}

type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LOGGING_LEVEL"`
}

type DebugConfig struct {
	ListenAddress string `yaml:"address" envconfig:"DEBUG_ADDRESS"`
	ListenPort    uint   `yaml:"port" envconfig:"DEBUG_PORT"`
}

type ApiConfig struct {
	ListenAddress string `yaml:"address" envconfig:"API_ADDRESS"`
	ListenPort    uint   `yaml:"port" envconfig:"API_PORT"`
}

type StorageConfig struct {
	Directory string `yaml:"dir" envconfig:"STORAGE_DIR"`
}

type ProviderConfig struct {
	// Backend selects which indexer API to use: "maestro" or "blockfrost"
	Backend    string           `yaml:"backend" envconfig:"PROVIDER_BACKEND"`
	Maestro    MaestroConfig    `yaml:"maestro"`
	Blockfrost BlockfrostConfig `yaml:"blockfrost"`
}

type MaestroConfig struct {
	ApiKey  string `yaml:"apiKey" envconfig:"MAESTRO_API_KEY"`
	BaseUrl string `yaml:"baseUrl" envconfig:"MAESTRO_BASE_URL"`
	// PageSize is the number of results requested per upstream page
	PageSize int `yaml:"pageSize" envconfig:"MAESTRO_PAGE_SIZE"`
}

type BlockfrostConfig struct {
	ProjectId string `yaml:"projectId" envconfig:"BLOCKFROST_PROJECT_ID"`
	BaseUrl   string `yaml:"baseUrl" envconfig:"BLOCKFROST_BASE_URL"`
	PageSize  int    `yaml:"pageSize" envconfig:"BLOCKFROST_PAGE_SIZE"`
}

type RefreshConfig struct {
	// Interval is the pool state refresh interval in seconds. Zero disables
	// the background refresh loop
	Interval uint `yaml:"interval" envconfig:"REFRESH_INTERVAL"`
}

// Singleton config instance with default values
var globalConfig = &Config{
	Network: "mainnet",
	Logging: LoggingConfig{
		Level: "info",
	},
	Debug: DebugConfig{
		ListenAddress: "localhost",
		ListenPort:    0,
	},
	Api: ApiConfig{
		ListenAddress: "localhost",
		ListenPort:    8090,
	},
	Storage: StorageConfig{
		Directory: "./.poolview",
	},
	Provider: ProviderConfig{
		Backend: "maestro",
		Maestro: MaestroConfig{
			PageSize: 100,
		},
		Blockfrost: BlockfrostConfig{
			PageSize: 100,
		},
	},
}

func Load(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %s", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %s", err)
		}
	}
	// Load config values from environment variables
	// We use "dummy" as the app name here to (mostly) prevent picking up env
	// vars that we hadn't explicitly specified in annotations above
	err := envconfig.Process("dummy", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %s", err)
	}
	// Validate provider selection
	switch globalConfig.Provider.Backend {
	case "maestro", "blockfrost":
		// Valid
	default:
		return nil, fmt.Errorf(
			"unknown provider backend: %s",
			globalConfig.Provider.Backend,
		)
	}
	// Populate network magic from network name
	network := ouroboros.NetworkByName(globalConfig.Network)
	if network == ouroboros.NetworkInvalid {
		return nil, fmt.Errorf("unknown network name: %s", globalConfig.Network)
	}
	globalConfig.NetworkMagic = network.NetworkMagic
	return globalConfig, nil
}

// Return global config instance
func GetConfig() *Config {
	return globalConfig
}
