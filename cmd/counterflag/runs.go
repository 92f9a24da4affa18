package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/calehh/counterflag/agent"
	"github.com/spf13/cobra"
)

type runsArguments struct {
	Page     int
	PageSize int
	Outcome  string
	Author   string
}

var runsArgs runsArguments

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs, newest first",
	Args:  cobra.ExactArgs(0),
	Run:   runsRun,
}

func init() {
	runsCmd.Flags().IntVarP(&runsArgs.Page, "page", "p", 0, "page number, starting at 0")
	runsCmd.Flags().IntVarP(&runsArgs.PageSize, "size", "s", agent.DefaultPageSize, "runs per page")
	runsCmd.Flags().StringVar(&runsArgs.Outcome, "outcome", "", "only runs with this outcome")
	runsCmd.Flags().StringVar(&runsArgs.Author, "author", "", "only runs on posts by this author")
}

func runsRun(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	logger := newLogger(cfg)
	if !cfg.Store.Enabled {
		fmt.Println("run store is disabled in config")
		return
	}
	store, err := agent.OpenRunStore(cfg.Store.Path, logger)
	if err != nil {
		fmt.Printf("open run store err:%v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	runs, total, err := store.GetRuns(agent.RunFilter{Author: runsArgs.Author, Outcome: runsArgs.Outcome}, runsArgs.Page, runsArgs.PageSize)
	if err != nil {
		fmt.Printf("query runs err:%v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tPOST\tOUTCOME\tFLAGS\tWEIGHT\tVALUE\tREASON")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t@%s/%s\t%s\t%.4f\t%.4f\t%.4f\t%s\n",
			r.Id, time.Unix(r.CreateTimestamp, 0).UTC().Format(time.RFC3339), r.Author, r.Permlink,
			r.Outcome, r.FlagTotal, r.Weight, r.CounterValue, r.Reason)
	}
	w.Flush()
	fmt.Printf("%d of %d runs\n", len(runs), total)
}
