package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	cmtconfig "github.com/cometbft/cometbft/config"
	"github.com/spf13/viper"
)

const (
	DefaultHomeName   = ".counterflag"
	DefaultConfigName = "config.toml"
	EnvPrefix         = "COUNTERFLAG"

	// MaxHistoryLimit is the largest page account_history_api accepts.
	MaxHistoryLimit = 1000
)

type AgentConfig struct {
	Name string `mapstructure:"name"`
}

type ChainConfig struct {
	RPC          string        `mapstructure:"rpc"`
	Timeout      time.Duration `mapstructure:"timeout"`
	HistoryLimit uint32        `mapstructure:"history_limit"`
}

type VoteConfig struct {
	RegenPerDay     float64       `mapstructure:"regen_per_day"`
	HistoryFallback string        `mapstructure:"history_fallback"`
	MinWeight       float64       `mapstructure:"min_weight"`
	Command         string        `mapstructure:"command"`
	Args            []string      `mapstructure:"args"`
	Timeout         time.Duration `mapstructure:"timeout"`
	DryRun          bool          `mapstructure:"dry_run"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type ServiceConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

type Config struct {
	RootDir string `mapstructure:"-"`

	Agent   AgentConfig   `mapstructure:"agent"`
	Chain   ChainConfig   `mapstructure:"chain"`
	Vote    VoteConfig    `mapstructure:"vote"`
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
	Service ServiceConfig `mapstructure:"service"`
}

func DefaultHome() string {
	return os.ExpandEnv("$HOME/" + DefaultHomeName)
}

func DefaultConfig(home string) *Config {
	if len(home) == 0 {
		home = DefaultHome()
	}
	return &Config{
		RootDir: home,
		Chain: ChainConfig{
			RPC:          "https://api.steemit.com",
			Timeout:      15 * time.Second,
			HistoryLimit: MaxHistoryLimit,
		},
		Vote: VoteConfig{
			RegenPerDay:     20,
			HistoryFallback: "full",
			MinWeight:       0.01,
			Command:         "steempy",
			Args:            []string{"upvote", "--account", "{{.Voter}}", "--weight", "{{.Weight}}", "{{.URL}}"},
			Timeout:         60 * time.Second,
		},
		Log: LogConfig{
			Level: cmtconfig.DefaultLogLevel,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    filepath.Join(home, "data", "runs.db"),
		},
		Service: ServiceConfig{
			ListenAddr: "127.0.0.1:8088",
		},
	}
}

func (cfg *Config) ConfigFile() string {
	return filepath.Join(cfg.RootDir, "config", DefaultConfigName)
}

func (cfg *Config) ValidateBasic() error {
	if strings.TrimSpace(cfg.Agent.Name) == "" {
		return errors.New("agent.name is required")
	}
	if strings.TrimSpace(cfg.Chain.RPC) == "" {
		return errors.New("chain.rpc is required")
	}
	if cfg.Chain.Timeout <= 0 {
		return fmt.Errorf("chain.timeout must be positive, got %v", cfg.Chain.Timeout)
	}
	if cfg.Chain.HistoryLimit == 0 || cfg.Chain.HistoryLimit > MaxHistoryLimit {
		return fmt.Errorf("chain.history_limit must be within [1,%d], got %d", MaxHistoryLimit, cfg.Chain.HistoryLimit)
	}
	if cfg.Vote.RegenPerDay <= 0 {
		return fmt.Errorf("vote.regen_per_day must be positive, got %v", cfg.Vote.RegenPerDay)
	}
	if cfg.Vote.MinWeight < 0 || cfg.Vote.MinWeight > 100 {
		return fmt.Errorf("vote.min_weight must be within [0,100], got %v", cfg.Vote.MinWeight)
	}
	if !cfg.Vote.DryRun && strings.TrimSpace(cfg.Vote.Command) == "" {
		return errors.New("vote.command is required unless vote.dry_run is set")
	}
	if cfg.Store.Enabled && strings.TrimSpace(cfg.Store.Path) == "" {
		return errors.New("store.path is required when the store is enabled")
	}
	return nil
}

// Load reads <home>/config/config.toml over the defaults. A missing file is
// not an error. COUNTERFLAG_<SECTION>_<KEY> environment variables override
// both.
func Load(home string) (*Config, error) {
	cfg := DefaultConfig(home)
	v := viper.New()
	setDefaults(v, cfg)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(cfg.ConfigFile())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("agent.name", cfg.Agent.Name)
	v.SetDefault("chain.rpc", cfg.Chain.RPC)
	v.SetDefault("chain.timeout", cfg.Chain.Timeout)
	v.SetDefault("chain.history_limit", cfg.Chain.HistoryLimit)
	v.SetDefault("vote.regen_per_day", cfg.Vote.RegenPerDay)
	v.SetDefault("vote.history_fallback", cfg.Vote.HistoryFallback)
	v.SetDefault("vote.min_weight", cfg.Vote.MinWeight)
	v.SetDefault("vote.command", cfg.Vote.Command)
	v.SetDefault("vote.args", cfg.Vote.Args)
	v.SetDefault("vote.timeout", cfg.Vote.Timeout)
	v.SetDefault("vote.dry_run", cfg.Vote.DryRun)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("store.enabled", cfg.Store.Enabled)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("service.listen_addr", cfg.Service.ListenAddr)
}

// EnsureRoot creates the config and data directories under the home dir.
func EnsureRoot(cfg *Config) error {
	for _, dir := range []string{filepath.Join(cfg.RootDir, "config"), filepath.Join(cfg.RootDir, "data")} {
		if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
			return fmt.Errorf("could not create directory %q: %w", dir, err)
		}
	}
	return nil
}
