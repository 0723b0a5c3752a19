package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Hive    HiveConfig    `mapstructure:"hive"`
	Logging LoggingConfig `mapstructure:"logging"`
	Audit   AuditConfig   `mapstructure:"audit"`
}

// HiveConfig configures the Hive Intelligence API client. The API key is
// read once at startup and injected into the client at construction; it
// is never re-read per call.
type HiveConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // seconds, 0 disables the bound
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuditConfig configures the optional invocation audit store.
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ErrMissingAPIKey is returned by Validate when no credential is configured.
var ErrMissingAPIKey = errors.New("HIVE_API_KEY environment variable is required")

func Load(cfgFile string) *Config {
	// Load .env file if exists (ignore error if not found)
	godotenv.Load()
	godotenv.Load(".env.local")

	v := viper.New()

	setDefaults(v)

	// Configure environment variable handling
	// Replace . with _ for nested config keys
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("HIVE_MCP")
	v.AutomaticEnv()

	// The credential and endpoint keep their documented names
	v.BindEnv("hive.api_key", "HIVE_API_KEY")
	v.BindEnv("hive.base_url", "HIVE_BASE_URL")
	v.BindEnv("hive.timeout", "HIVE_TIMEOUT")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is ok, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic("Error reading config file: " + err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic("Error unmarshaling config: " + err.Error())
	}

	return &cfg
}

// Validate reports fatal startup conditions. A missing credential must
// prevent the process from servicing any request.
func (c *Config) Validate() error {
	if c.Hive.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Hive API defaults
	v.SetDefault("hive.base_url", "https://api.hiveintelligence.xyz/v1")
	v.SetDefault("hive.timeout", 0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Audit defaults
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.path", "./data/invocations.db")
}
