package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type EngineConfig struct {
	LogLevel   string `mapstructure:"logLevel" json:"logLevel" default:"info"`
	LogFile    string `mapstructure:"logFile" json:"logFile" default:"out.log"`
	ApiPort    uint16 `mapstructure:"apiPort" json:"apiPort" default:"8080"`
	HealthPort uint16 `mapstructure:"healthPort" json:"healthPort" default:"9001"`
	StorePath  string `mapstructure:"storePath" json:"storePath" default:"./lvldbdata"`

	// seconds between order history refreshes
	OrderRefreshInterval uint64 `mapstructure:"orderRefreshInterval" json:"orderRefreshInterval" default:"15"`

	AnalyticsURL              string `mapstructure:"analyticsUrl" json:"analyticsUrl"`
	OpenTelemetryCollectorURL string `mapstructure:"openTelemetryCollectorURL" json:"openTelemetryCollectorURL"`

	PriceAPIURL string `mapstructure:"priceApiUrl" json:"priceApiUrl"`
	PriceAPIKey string `mapstructure:"priceApiKey" json:"priceApiKey"`
}

type Config struct {
	EngineConfig EngineConfig             `mapstructure:"engine" json:"engine"`
	ChainConfigs []map[string]interface{} `mapstructure:"chains" json:"chains"`
}

func (c *Config) Validate() error {
	if len(c.ChainConfigs) == 0 {
		return fmt.Errorf("chains cannot be empty")
	}
	for _, chain := range c.ChainConfigs {
		if chain["type"] == "" || chain["type"] == nil {
			return fmt.Errorf("chain 'type' must be provided for every configured chain")
		}
	}
	return nil
}

// GetConfigFromFile reads the configuration from a JSON file.
func GetConfigFromFile(path string) (*Config, error) {
	config := &Config{}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := defaults.Set(&config.EngineConfig); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// GetConfigFromENV reads the configuration from TWAP_ prefixed environment
// variables. Chain configs are expected as a JSON array in TWAP_CHAINS.
func GetConfigFromENV() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	config := &Config{}
	if err := mapstructure.Decode(v.AllSettings()["engine"], &config.EngineConfig); err != nil {
		return nil, err
	}

	rawChains := v.GetString("chains")
	if rawChains != "" {
		if err := json.Unmarshal([]byte(rawChains), &config.ChainConfigs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal TWAP_CHAINS: %w", err)
		}
	}

	if err := defaults.Set(&config.EngineConfig); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
