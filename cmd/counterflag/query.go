package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/calehh/counterflag/app"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/spf13/cobra"
)

type queryArguments struct {
	Weight float64
	Value  float64
}

var queryArgs queryArguments

var queryCmd = &cobra.Command{
	Use:   "query <path> [post-url]",
	Short: "Inspect the agent and posts without voting",
	Long: `Paths:
  /account               stake, recorded and modeled voting power
  /value --weight W      value of an agent vote at W percent
  /weight --value V      weight the agent needs for a vote worth V
  /flags <post-url>      flags on a post and the resulting decision`,
	Args: cobra.RangeArgs(1, 2),
	Run:  queryRun,
}

func init() {
	queryCmd.Flags().Float64VarP(&queryArgs.Weight, "weight", "w", 100, "vote weight in percent for /value")
	queryCmd.Flags().Float64VarP(&queryArgs.Value, "value", "v", 0, "vote value for /weight")
}

func queryData(path string, args []string) (string, error) {
	switch strings.TrimSuffix(path, "/") {
	case "/value":
		return strconv.FormatFloat(queryArgs.Weight, 'f', -1, 64), nil
	case "/weight":
		return strconv.FormatFloat(queryArgs.Value, 'f', -1, 64), nil
	case "/flags":
		if len(args) < 2 {
			return "", errors.New("/flags needs a post url")
		}
		return args[1], nil
	}
	return "", nil
}

func queryRun(cmd *cobra.Command, args []string) {
	path := args[0]
	data, err := queryData(path, args)
	if err != nil {
		fmt.Println(err)
		return
	}

	cfg := loadConfig()
	logger := newLogger(cfg)
	cfg.Store.Enabled = false
	a, err := app.NewCounterApp(cfg, logger)
	if err != nil {
		fmt.Printf("new app err:%v\n", err)
		os.Exit(1)
	}
	defer a.Stop()

	res, err := a.Query(context.Background(), &abcitypes.RequestQuery{Path: path, Data: []byte(data)})
	if err != nil {
		fmt.Printf("request err:%v\n", err)
		os.Exit(1)
	}
	if res.Code != app.CodeOK {
		fmt.Printf("query failed code:%d %s\n", res.Code, res.Log)
		os.Exit(1)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, res.Value, "", "  "); err != nil {
		printJSON(res.Value)
		return
	}
	printJSON(buf.Bytes())
}
