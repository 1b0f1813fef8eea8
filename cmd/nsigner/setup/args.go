package setup

import (
	"context"
	"time"

	"github.com/openweb3-io/nsigner/config"
	"github.com/spf13/cobra"
)

type ContextKey string

const (
	ContextConfig ContextKey = "config"
)

func WrapConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ContextConfig, cfg)
}

func UnwrapConfig(ctx context.Context) *config.Config {
	return ctx.Value(ContextConfig).(*config.Config)
}

func CreateContext(parent context.Context, cfg *config.Config) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return WrapConfig(parent, cfg)
}

type Args struct {
	ConfigPath string
	Provider   string
	Endpoint   string
	SecretKey  string
	LogLevel   string
	LogFormat  string
	Timeout    time.Duration

	changed map[string]bool
}

func AddArgs(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Path to a config file. Optional.")
	cmd.PersistentFlags().String("provider", "", "Signer provider: extension or local.")
	cmd.PersistentFlags().String("endpoint", "", "JSON-RPC endpoint of the extension provider.")
	cmd.PersistentFlags().String("secret-key", "", "Hex secret key or env:NAME, local provider only.")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error.")
	cmd.PersistentFlags().String("log-format", "", "Log format: text or json.")
	cmd.PersistentFlags().Duration("timeout", 0, "Per request timeout, 0 keeps the configured value.")
}

func ArgsFromCmd(cmd *cobra.Command) (*Args, error) {
	flags := cmd.Flags()
	args := &Args{changed: map[string]bool{}}
	args.ConfigPath, _ = flags.GetString("config")
	args.Provider, _ = flags.GetString("provider")
	args.Endpoint, _ = flags.GetString("endpoint")
	args.SecretKey, _ = flags.GetString("secret-key")
	args.LogLevel, _ = flags.GetString("log-level")
	args.LogFormat, _ = flags.GetString("log-format")
	args.Timeout, _ = flags.GetDuration("timeout")
	for _, name := range []string{"provider", "endpoint", "secret-key", "log-level", "log-format", "timeout"} {
		args.changed[name] = flags.Changed(name)
	}
	return args, nil
}

// LoadConfig loads the config file and environment, then applies flags that
// were set explicitly.
func LoadConfig(args *Args) (*config.Config, error) {
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return nil, err
	}
	if args.changed["provider"] {
		cfg.Provider = args.Provider
	}
	if args.changed["endpoint"] {
		cfg.Endpoint = args.Endpoint
	}
	if args.changed["secret-key"] {
		cfg.SecretKey = args.SecretKey
	}
	if args.changed["log-level"] {
		cfg.Log.Level = args.LogLevel
	}
	if args.changed["log-format"] {
		cfg.Log.Format = args.LogFormat
	}
	if args.changed["timeout"] {
		cfg.RequestTimeout = args.Timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
