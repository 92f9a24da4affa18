package app

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/calehh/counterflag/agent"
	"github.com/calehh/counterflag/config"
	"github.com/calehh/counterflag/state"
	"github.com/calehh/counterflag/tx"
	"github.com/calehh/counterflag/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) *CounterApp {
	r := agent.NewMockReader()
	r.Global = &state.GlobalChainState{
		RewardPoolBalance:  1000,
		RecentClaims:       1e9,
		TotalVestingFund:   500,
		TotalVestingShares: 1000,
		PriceBase:          2,
		PriceQuote:         1,
	}
	r.Accounts["agent"] = &state.Account{
		Name:          "agent",
		VestingShares: 2000,
		VotingPower:   100,
		LastVoteTime:  testNow.Add(-24 * time.Hour),
	}
	r.History["agent"] = []types.HistoryEvent{
		{Seq: 1, Type: types.EventVoteType, Voter: "agent", Timestamp: testNow.Add(-24 * time.Hour)},
	}
	r.AddPost(&state.Post{Author: "alice", Permlink: "p", ActiveVotes: []state.Vote{
		{Voter: "x", Percent: -10000, Rshares: -1_000_000},
		{Voter: "y", Percent: 10000, Rshares: 3_000_000},
	}})

	cfg := config.DefaultConfig(t.TempDir())
	cfg.Agent.Name = "agent"
	cfg.Vote.DryRun = true
	app, err := NewCounterAppWith(cfg, r, tx.NewDryRunSubmitter(cmtlog.NewNopLogger()), nil, cmtlog.NewNopLogger())
	require.NoError(t, err)
	app.Counter().Now = func() time.Time { return testNow }
	return app
}

func query(t *testing.T, app *CounterApp, path, data string, out interface{}) *abcitypes.ResponseQuery {
	res, err := app.Query(context.Background(), &abcitypes.RequestQuery{Path: path, Data: []byte(data)})
	require.NoError(t, err)
	if res.Code == CodeOK && out != nil {
		require.NoError(t, json.Unmarshal(res.Value, out))
	}
	return res
}

func TestQueryAccount(t *testing.T) {
	app := newTestApp(t)

	var info AccountInfo
	res := query(t, app, "/account", "", &info)
	assert.Equal(t, CodeOK, res.Code)
	assert.Equal(t, "agent", info.Name)
	assert.InDelta(t, 1000.0, info.Stake, 1e-9)
	assert.InDelta(t, 100.0, info.VotingPower, 1e-9)
	assert.InDelta(t, 80.392, info.FullVoteValue, 1e-9)
	assert.Equal(t, "2024-03-09T12:00:00", info.LastVoteTime)
}

func TestQueryValueAndWeight(t *testing.T) {
	app := newTestApp(t)

	var value ValueInfo
	res := query(t, app, "/value/", "100", &value)
	require.Equal(t, CodeOK, res.Code, res.Log)
	assert.InDelta(t, 80.392, value.Value, 1e-9)

	var weight WeightInfo
	res = query(t, app, "/weight", "2", &weight)
	require.Equal(t, CodeOK, res.Code, res.Log)
	assert.InDelta(t, 2.01, weight.Weight, 1e-9)
	assert.Equal(t, weight.Weight, weight.Capped)

	res = query(t, app, "/weight", "1000", &weight)
	require.Equal(t, CodeOK, res.Code, res.Log)
	assert.Greater(t, weight.Weight, 100.0)
	assert.Equal(t, 100.0, weight.Capped)

	res = query(t, app, "/value", "lots", nil)
	assert.Equal(t, CodeFail, res.Code)
}

func TestQueryFlags(t *testing.T) {
	app := newTestApp(t)

	var flags FlagsInfo
	res := query(t, app, "/flags", "https://steemit.com/@alice/p", &flags)
	require.Equal(t, CodeOK, res.Code, res.Log)
	assert.Equal(t, "@alice/p", flags.Post)
	assert.Equal(t, "counter_needed", flags.Decision)
	assert.InDelta(t, -2.0, flags.Total, 1e-9)
	assert.Len(t, flags.Flags, 1)

	res = query(t, app, "/flags", "@alice/none", nil)
	assert.Equal(t, CodeFail, res.Code)
	assert.Contains(t, res.Log, types.ErrPostNotFound.Error())

	res = query(t, app, "/nothing", "", nil)
	assert.Equal(t, CodeNotFound, res.Code)
}

func TestAppRunDryRun(t *testing.T) {
	app := newTestApp(t)
	app.Counter().Out = io.Discard

	out, err := app.Run(context.Background(), "@alice/p")
	require.NoError(t, err)
	assert.Equal(t, agent.OutcomeVoted, out.Kind)
	assert.Equal(t, "dry run", out.Reason)
	app.Stop()
}

func TestNewCounterAppBadFallback(t *testing.T) {
	cfg := config.DefaultConfig(t.TempDir())
	cfg.Agent.Name = "agent"
	cfg.Vote.HistoryFallback = "guess"
	_, err := NewCounterAppWith(cfg, agent.NewMockReader(), tx.NewDryRunSubmitter(cmtlog.NewNopLogger()), nil, cmtlog.NewNopLogger())
	assert.Error(t, err)
}
