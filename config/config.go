package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	ProviderExtension = "extension"
	ProviderLocal     = "local"

	EnvPrefix = "NSIGNER"
	envRef    = "env:"
)

type LogConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level" toml:"level"`
	Format string `mapstructure:"format" json:"format" yaml:"format" toml:"format"`
}

type Config struct {
	// Provider selects the signer: "extension" reaches a provider over
	// JSON-RPC, "local" keeps a key in process for development.
	Provider string `mapstructure:"provider" json:"provider" yaml:"provider" toml:"provider"`
	Endpoint string `mapstructure:"endpoint,omitempty" json:"endpoint,omitempty" yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`
	// SecretKey is hex, or "env:NAME" to read it from the environment.
	SecretKey      string        `mapstructure:"secret_key,omitempty" json:"-" yaml:"secret_key,omitempty" toml:"secret_key,omitempty"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	Listen         string        `mapstructure:"listen,omitempty" json:"listen,omitempty" yaml:"listen,omitempty" toml:"listen,omitempty"`
	Log            LogConfig     `mapstructure:"log" json:"log" yaml:"log" toml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderExtension,
		Endpoint:       "http://127.0.0.1:7447",
		RequestTimeout: 5 * time.Minute,
		Listen:         "127.0.0.1:7447",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (if set) and NSIGNER_* environment variables on top of the
// defaults.
func Load(path string) (*Config, error) {
	def := DefaultConfig()
	v := viper.New()
	v.SetDefault("provider", def.Provider)
	v.SetDefault("endpoint", def.Endpoint)
	v.SetDefault("secret_key", "")
	v.SetDefault("request_timeout", def.RequestTimeout)
	v.SetDefault("listen", def.Listen)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderExtension:
		if c.Endpoint == "" {
			return fmt.Errorf("provider %q requires an endpoint", c.Provider)
		}
	case ProviderLocal:
		if c.SecretKey == "" {
			return fmt.Errorf("provider %q requires secret_key", c.Provider)
		}
	default:
		return fmt.Errorf("unknown provider %q, expected %q or %q", c.Provider, ProviderExtension, ProviderLocal)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}

// GetSecretKey resolves an "env:NAME" reference.
func (c *Config) GetSecretKey() (string, error) {
	if !strings.HasPrefix(c.SecretKey, envRef) {
		return c.SecretKey, nil
	}
	name := strings.TrimPrefix(c.SecretKey, envRef)
	val, ok := os.LookupEnv(name)
	if !ok || val == "" {
		return "", fmt.Errorf("secret key environment variable %s is not set", name)
	}
	return val, nil
}
