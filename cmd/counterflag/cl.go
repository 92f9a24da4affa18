package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/calehh/counterflag/app"
	"github.com/calehh/counterflag/types"
	"github.com/spf13/cobra"
)

var clCmd = &cobra.Command{
	Use:   "counterflag <post-url>",
	Short: "Counter the flags on a Steem post",
	Long: `Sums the value of every flag on a post and casts an upvote
sized to cancel it, bounded by the agent's voting power and stake.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

func init() {
	homeFlags(clCmd)
}

// postURLArg reports the post URL to evaluate. A missing or malformed URL
// prints a hint and yields false; the caller exits 0 without touching the
// chain.
func postURLArg(cmd *cobra.Command, args []string) (string, bool) {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		fmt.Fprintln(out, "Please input a Steemit URL")
		_ = cmd.Usage()
		return "", false
	}
	if _, err := types.ParsePostURL(args[0]); err != nil {
		fmt.Fprintln(out, "Please input a Steemit URL")
		return "", false
	}
	return args[0], true
}

func run(cmd *cobra.Command, args []string) {
	url, ok := postURLArg(cmd, args)
	if !ok {
		return
	}

	cfg := loadConfig()
	logger := newLogger(cfg)
	a, err := app.NewCounterApp(cfg, logger)
	if err != nil {
		logger.Error("new app fail", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	out, err := a.Run(ctx, url)
	stop()
	a.Stop()

	switch {
	case err == nil:
		logger.Debug("run done", "outcome", out.Kind)
	case errors.Is(err, types.ErrInvalidInput):
		fmt.Println("Please input a Steemit URL")
	case errors.Is(err, types.ErrPostNotFound):
		fmt.Println("That is not a valid Steemit URL")
	default:
		logger.Error("run fail", "url", url, "err", err)
		os.Exit(1)
	}
}
