package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/calehh/counterflag/config"
	"github.com/spf13/cobra"
)

type printInfo struct {
	Home       string `json:"home"`
	ConfigFile string `json:"config_file"`
	Agent      string `json:"agent"`
	RPC        string `json:"rpc"`
}

func displayInfo(info printInfo) error {
	out, err := json.MarshalIndent(info, "", " ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(os.Stderr, "%s\n", out)

	return err
}

type initArguments struct {
	Name      string
	RPC       string
	Overwrite bool
}

var initArgs initArguments

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  `Creates the home directory and writes config/config.toml from the built-in defaults.`,
	Args:  cobra.ExactArgs(0),
	RunE:  initRun,
}

func init() {
	initCmd.Flags().StringVarP(&initArgs.Name, "name", "n", "", "account that casts the counter-votes")
	initCmd.Flags().StringVar(&initArgs.RPC, "rpc", "", "Steem JSON-RPC endpoint")
	initCmd.Flags().BoolVarP(&initArgs.Overwrite, "overwrite", "o", false, "overwrite an existing config.toml")
}

func initRun(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig(resolveHome())
	cfg.Agent.Name = initArgs.Name
	if initArgs.RPC != "" {
		cfg.Chain.RPC = initArgs.RPC
	}
	if dryRun {
		cfg.Vote.DryRun = true
	}

	if _, err := os.Stat(cfg.ConfigFile()); err == nil && !initArgs.Overwrite {
		return fmt.Errorf("%s already exists, use --overwrite to replace it", cfg.ConfigFile())
	}
	if err := config.EnsureRoot(cfg); err != nil {
		return err
	}
	config.WriteConfigFile(cfg.ConfigFile(), cfg)
	if cfg.Agent.Name == "" {
		fmt.Fprintln(os.Stderr, "agent.name is empty, set it in the config file before running")
	}
	return displayInfo(printInfo{
		Home:       cfg.RootDir,
		ConfigFile: cfg.ConfigFile(),
		Agent:      cfg.Agent.Name,
		RPC:        cfg.Chain.RPC,
	})
}
