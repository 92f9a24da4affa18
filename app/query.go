package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/calehh/counterflag/agent"
	"github.com/calehh/counterflag/economy"
	"github.com/calehh/counterflag/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

const (
	CodeOK       uint32 = 0
	CodeFail     uint32 = 1
	CodeNotFound uint32 = 404
)

// Query routes req to the querier registered for its path. Query data is
// plain text: a weight, a value or a post URL depending on the path.
func (app *CounterApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &abcitypes.ResponseQuery{}
		res.Code = CodeNotFound
		res.Log = "unknown query path " + req.Path
		return
	}
	res, err = q.Query(ctx, req)
	return
}

type Querier interface {
	Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)
}

func failed(res *abcitypes.ResponseQuery, err error) (*abcitypes.ResponseQuery, error) {
	res.Code = CodeFail
	res.Log = err.Error()
	return res, nil
}

func succeeded(res *abcitypes.ResponseQuery, v interface{}) (*abcitypes.ResponseQuery, error) {
	dat, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	res.Value = dat
	return res, nil
}

func parsePercent(data []byte) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
}

// agentPosition is the agent's stake and voting power in one snapshot.
type agentPosition struct {
	market *economy.Market
	stake  float64
	power  float64
}

func loadPosition(ctx context.Context, reader agent.Reader, counter *agent.Counter) (*agentPosition, *AccountInfo, error) {
	st, err := reader.GetGlobalState(ctx)
	if err != nil {
		return nil, nil, err
	}
	market, err := economy.NewMarket(st)
	if err != nil {
		return nil, nil, err
	}
	acct, vp, stake, err := counter.Stake(ctx, st)
	if err != nil {
		return nil, nil, err
	}
	info := &AccountInfo{
		Name:                acct.Name,
		EffectiveVests:      acct.EffectiveVests(),
		Stake:               stake,
		RecordedVotingPower: acct.VotingPower,
		VotingPower:         vp,
	}
	if !acct.LastVoteTime.IsZero() {
		info.LastVoteTime = acct.LastVoteTime.Format(types.TimeLayout)
	}
	full, err := market.VoteValue(stake, vp, economy.MaxPercent)
	if err == nil {
		info.FullVoteValue = full
	}
	return &agentPosition{market: market, stake: stake, power: vp}, info, nil
}

type AccountInfo struct {
	Name                string  `json:"name"`
	EffectiveVests      float64 `json:"effective_vests"`
	Stake               float64 `json:"stake"`
	RecordedVotingPower float64 `json:"recorded_voting_power"`
	VotingPower         float64 `json:"voting_power"`
	LastVoteTime        string  `json:"last_vote_time,omitempty"`
	FullVoteValue       float64 `json:"full_vote_value"`
}

type AccountQuerier struct {
	reader  agent.Reader
	counter *agent.Counter
	logger  cmtlog.Logger
}

func NewAccountQuerier(reader agent.Reader, counter *agent.Counter, logger cmtlog.Logger) (q *AccountQuerier) {
	q = &AccountQuerier{
		reader:  reader,
		counter: counter,
		logger:  logger,
	}
	return
}

func (q *AccountQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	_, info, err := loadPosition(ctx, q.reader, q.counter)
	if err != nil {
		q.logger.Error("query account fail", "err", err)
		return failed(res, err)
	}
	return succeeded(res, info)
}

type ValueInfo struct {
	Weight      float64 `json:"weight"`
	Value       float64 `json:"value"`
	Stake       float64 `json:"stake"`
	VotingPower float64 `json:"voting_power"`
}

// ValueQuerier prices an agent vote cast with the weight in req.Data.
type ValueQuerier struct {
	reader  agent.Reader
	counter *agent.Counter
	logger  cmtlog.Logger
}

func NewValueQuerier(reader agent.Reader, counter *agent.Counter, logger cmtlog.Logger) (q *ValueQuerier) {
	q = &ValueQuerier{
		reader:  reader,
		counter: counter,
		logger:  logger,
	}
	return
}

func (q *ValueQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	weight, err := parsePercent(req.Data)
	if err != nil {
		return failed(res, err)
	}
	pos, _, err := loadPosition(ctx, q.reader, q.counter)
	if err != nil {
		return failed(res, err)
	}
	weight = economy.ClampPercent(weight)
	value, err := pos.market.VoteValue(pos.stake, pos.power, weight)
	if err != nil {
		return failed(res, err)
	}
	return succeeded(res, ValueInfo{Weight: weight, Value: value, Stake: pos.stake, VotingPower: pos.power})
}

type WeightInfo struct {
	Value       float64 `json:"value"`
	Weight      float64 `json:"weight"`
	Capped      float64 `json:"capped_weight"`
	Stake       float64 `json:"stake"`
	VotingPower float64 `json:"voting_power"`
}

// WeightQuerier finds the weight the agent needs for the value in req.Data.
type WeightQuerier struct {
	reader  agent.Reader
	counter *agent.Counter
	logger  cmtlog.Logger
}

func NewWeightQuerier(reader agent.Reader, counter *agent.Counter, logger cmtlog.Logger) (q *WeightQuerier) {
	q = &WeightQuerier{
		reader:  reader,
		counter: counter,
		logger:  logger,
	}
	return
}

func (q *WeightQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	value, err := parsePercent(req.Data)
	if err != nil {
		return failed(res, err)
	}
	pos, _, err := loadPosition(ctx, q.reader, q.counter)
	if err != nil {
		return failed(res, err)
	}
	weight, err := pos.market.VoteWeight(pos.stake, value, pos.power)
	if err != nil {
		return failed(res, err)
	}
	return succeeded(res, WeightInfo{
		Value:       value,
		Weight:      weight,
		Capped:      economy.ClampPercent(weight),
		Stake:       pos.stake,
		VotingPower: pos.power,
	})
}

type FlagsInfo struct {
	Post     string         `json:"post"`
	Decision string         `json:"decision"`
	Total    float64        `json:"total"`
	Flags    []agent.Flag   `json:"flags"`
	Time     string         `json:"time"`
	State    *GlobalSummary `json:"state"`
}

type GlobalSummary struct {
	RewardPerRshare float64 `json:"reward_per_rshare"`
	StakePerVest    float64 `json:"stake_per_vest"`
	Price           float64 `json:"price"`
}

// FlagsQuerier aggregates the flags on the post in req.Data without voting.
type FlagsQuerier struct {
	reader  agent.Reader
	counter *agent.Counter
	logger  cmtlog.Logger
}

func NewFlagsQuerier(reader agent.Reader, counter *agent.Counter, logger cmtlog.Logger) (q *FlagsQuerier) {
	q = &FlagsQuerier{
		reader:  reader,
		counter: counter,
		logger:  logger,
	}
	return
}

func (q *FlagsQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	ref, err := types.ParsePostURL(string(req.Data))
	if err != nil {
		return failed(res, err)
	}
	post, err := q.reader.GetPost(ctx, ref)
	if err != nil {
		return failed(res, err)
	}
	st, err := q.reader.GetGlobalState(ctx)
	if err != nil {
		return failed(res, err)
	}
	market, err := economy.NewMarket(st)
	if err != nil {
		return failed(res, err)
	}
	d, err := agent.AggregateFlags(post, q.counter.Name(), economy.NewConverter(st))
	if err != nil {
		return failed(res, err)
	}
	flags := d.Flags
	if flags == nil {
		flags = []agent.Flag{}
	}
	return succeeded(res, FlagsInfo{
		Post:     ref.String(),
		Decision: d.Kind.String(),
		Total:    d.Total,
		Flags:    flags,
		Time:     q.counter.Now().UTC().Format(time.RFC3339),
		State: &GlobalSummary{
			RewardPerRshare: market.RewardPerRshare,
			StakePerVest:    market.StakePerVest,
			Price:           market.Price,
		},
	})
}
