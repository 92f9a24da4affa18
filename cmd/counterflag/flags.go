package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/calehh/counterflag/config"
	cmtconfig "github.com/cometbft/cometbft/config"
	cmtflags "github.com/cometbft/cometbft/libs/cli/flags"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/spf13/cobra"
)

var (
	homeDir  string
	dryRun   bool
	logLevel string
)

func homeFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&homeDir, "homedir", "d", "", "home directory (default $COUNTERFLAG_HOME or $HOME/.counterflag)")
	cmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "compute the counter-vote but do not broadcast it")
	cmd.PersistentFlags().StringVar(&logLevel, "log_level", "", "log level, overrides log.level in config.toml")
}

func resolveHome() string {
	if homeDir != "" {
		return homeDir
	}
	if env := os.Getenv(config.EnvPrefix + "_HOME"); env != "" {
		return env
	}
	return config.DefaultHome()
}

// loadConfig reads the config and applies the command line overrides.
func loadConfig() *config.Config {
	cfg, err := config.Load(resolveHome())
	if err != nil {
		log.Fatalf("Reading config: %v", err)
	}
	if dryRun {
		cfg.Vote.DryRun = true
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.ValidateBasic(); err != nil {
		log.Fatalf("Invalid configuration data: %v (run \"counterflag init\" first)", err)
	}
	return cfg
}

func newLogger(cfg *config.Config) cmtlog.Logger {
	var w io.Writer = os.Stderr
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		w = f
	}
	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(w))
	logger, err := cmtflags.ParseLogLevel(cfg.Log.Level, logger, cmtconfig.DefaultLogLevel)
	if err != nil {
		log.Fatalf("failed to parse log level: %v", err)
	}
	return logger
}

func printJSON(dat []byte) {
	fmt.Println(string(dat))
}
