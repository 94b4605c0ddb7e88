package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/gnolang/tm2-go-client/pkg/log"
)

const (
	configDirPathEnv     = "TM2CLIENT_CONFIG_DIR_PATH"
	defaultConfigDirPath = "."

	transportHTTP = "http"
	transportWS   = "ws"
)

// Config is read from the environment, optionally seeded from a .env file.
// Command line flags override it.
type Config struct {
	RPCURL         string        `env:"TM2_RPC_URL" env-default:"http://127.0.0.1:26657"`
	Transport      string        `env:"TM2_TRANSPORT" env-default:"http"` // http or ws
	RequestTimeout time.Duration `env:"TM2_REQUEST_TIMEOUT" env-default:"15s"`
	WaitTimeout    time.Duration `env:"TM2_WAIT_TIMEOUT" env-default:"15s"`
	Denom          string        `env:"TM2_DENOM" env-default:"ugnot"`
	MetricsAddr    string        `env:"TM2_METRICS_ADDR"`

	Mnemonic      string `env:"TM2_MNEMONIC"`
	AccountIndex  uint32 `env:"TM2_ACCOUNT_INDEX" env-default:"0"`
	AddressPrefix string `env:"TM2_ADDRESS_PREFIX" env-default:"g"`

	Log log.Config
}

// LoadConfig builds configuration from environment variables
func LoadConfig(lg log.Logger) (*Config, error) {
	lg = lg.WithName("config")

	configDirPath := os.Getenv(configDirPathEnv)
	if configDirPath == "" {
		configDirPath = defaultConfigDirPath
	}

	configDotEnvPath := filepath.Join(configDirPath, ".env")
	if err := godotenv.Load(configDotEnvPath); err != nil {
		lg.Debug(".env file not loaded", "path", configDotEnvPath, "error", err)
	} else {
		lg.Debug("loaded .env file", "path", configDotEnvPath)
	}

	var conf Config
	if err := cleanenv.ReadEnv(&conf); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func (c *Config) Validate() error {
	switch c.Transport {
	case transportHTTP, transportWS:
	default:
		return fmt.Errorf("invalid transport %q: expected %s or %s", c.Transport, transportHTTP, transportWS)
	}
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("wait timeout must be positive, got %s", c.WaitTimeout)
	}
	return nil
}
