package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/calehh/counterflag/economy"
	"github.com/calehh/counterflag/state"
	"github.com/calehh/counterflag/tx"
	"github.com/calehh/counterflag/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

const DefaultHistoryLimit = 1000

type OutcomeKind string

const (
	OutcomeAlreadyVoted OutcomeKind = "already_voted"
	OutcomeNoAction     OutcomeKind = "no_action"
	OutcomeBelowMinimum OutcomeKind = "below_minimum"
	OutcomeVoted        OutcomeKind = "voted"
	OutcomeVoteFailed   OutcomeKind = "vote_failed"
	OutcomeError        OutcomeKind = "error"
)

// Outcome summarizes one run. Values are in the reporting currency,
// weights and powers in percent.
type Outcome struct {
	Kind         OutcomeKind `json:"kind"`
	URL          string      `json:"url"`
	Author       string      `json:"author,omitempty"`
	Permlink     string      `json:"permlink,omitempty"`
	Flags        []Flag      `json:"flags,omitempty"`
	FlagTotal    float64     `json:"flag_total"`
	VotingPower  float64     `json:"voting_power,omitempty"`
	Stake        float64     `json:"stake,omitempty"`
	Weight       float64     `json:"weight,omitempty"`
	Capped       bool        `json:"capped,omitempty"`
	CounterValue float64     `json:"counter_value,omitempty"`
	Reason       string      `json:"reason,omitempty"`
}

type CounterConfig struct {
	Name            string
	RegenPerDay     float64
	HistoryFallback economy.HistoryFallback
	HistoryLimit    uint32
	MinWeight       float64
}

// Counter evaluates posts and casts offsetting upvotes.
type Counter struct {
	cfg       CounterConfig
	power     economy.PowerModel
	reader    Reader
	submitter tx.Submitter
	store     *RunStore
	logger    cmtlog.Logger

	// Out receives the human readable progress lines.
	Out io.Writer
	Now func() time.Time
}

func NewCounter(cfg CounterConfig, reader Reader, submitter tx.Submitter, store *RunStore, logger cmtlog.Logger) (*Counter, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, errors.New("agent name is required")
	}
	if cfg.HistoryFallback == "" {
		cfg.HistoryFallback = economy.FallbackFull
	}
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	return &Counter{
		cfg:       cfg,
		power:     economy.NewPowerModel(cfg.RegenPerDay),
		reader:    reader,
		submitter: submitter,
		store:     store,
		logger:    logger.With("module", "counter"),
		Out:       os.Stdout,
		Now:       time.Now,
	}, nil
}

func (c *Counter) Name() string {
	return c.cfg.Name
}

func (c *Counter) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format+"\n", args...)
}

// Run evaluates the post at rawURL once. Errors returned before the vote
// step mean nothing was submitted. A failed submission is not an error; it
// is reported through the outcome.
func (c *Counter) Run(ctx context.Context, rawURL string) (out *Outcome, err error) {
	start := c.Now()
	out = &Outcome{URL: strings.TrimSpace(rawURL)}
	defer func() {
		if err != nil {
			out.Kind = OutcomeError
			out.Reason = err.Error()
		}
		elapsed := c.Now().Sub(start)
		runsTotal.WithLabelValues(string(out.Kind)).Inc()
		runDuration.Observe(elapsed.Seconds())
		c.record(out, start, elapsed)
	}()

	ref, err := types.ParsePostURL(rawURL)
	if err != nil {
		return out, err
	}
	out.Author, out.Permlink = ref.Author, ref.Permlink

	post, err := c.reader.GetPost(ctx, ref)
	if err != nil {
		return out, err
	}
	st, err := c.reader.GetGlobalState(ctx)
	if err != nil {
		return out, err
	}

	decision, err := AggregateFlags(post, c.cfg.Name, economy.NewConverter(st))
	if err != nil {
		return out, err
	}
	out.Flags = decision.Flags
	out.FlagTotal = decision.Total
	lastFlagTotal.Set(decision.Total)

	switch decision.Kind {
	case AlreadyVoted:
		out.Kind = OutcomeAlreadyVoted
		c.printf("Already voted on this post.")
		return out, nil
	case NoActionNeeded:
		out.Kind = OutcomeNoAction
		c.printf("No flags to counter.")
		return out, nil
	}
	for _, f := range decision.Flags {
		c.printf("%s downvoted the post with: $ %.4f", f.Voter, f.Value)
	}
	c.printf("Total downvoted value: $ %.4f", decision.Total)

	_, vp, stake, err := c.Stake(ctx, st)
	if err != nil {
		return out, err
	}
	out.VotingPower, out.Stake = vp, stake
	votingPowerGauge.Set(vp)

	market, err := economy.NewMarket(st)
	if err != nil {
		return out, err
	}
	w, err := market.VoteWeight(stake, math.Abs(decision.Total), vp)
	if err != nil {
		return out, err
	}
	weight := economy.ClampPercent(round(w))
	out.Capped = w > economy.MaxPercent
	out.Weight = weight
	if out.Capped {
		c.logger.Info("weight capped", "wanted", w, "weight", weight)
	}
	if weight <= 0 || weight < c.cfg.MinWeight {
		out.Kind = OutcomeBelowMinimum
		c.printf("Required weight %.4f%% is below the minimum of %.4f%%, not voting.", weight, c.cfg.MinWeight)
		return out, nil
	}

	value, err := market.VoteValue(stake, vp, weight)
	if err != nil {
		return out, err
	}
	out.CounterValue = round(value)
	c.printf("Voting with %.4f%% to try to counter the vote.", weight)
	c.printf("Counter vote value comes to: $ %.4f", out.CounterValue)

	// Once broadcasting starts it runs to completion under the submitter's
	// own timeout, even if the caller goes away.
	res := c.submitter.SubmitVote(context.WithoutCancel(ctx), tx.VoteOp{
		Voter:    c.cfg.Name,
		Author:   ref.Author,
		Permlink: ref.Permlink,
		URL:      out.URL,
		Weight:   weight,
	})
	if !res.OK {
		out.Kind = OutcomeVoteFailed
		out.Reason = res.Reason
		c.logger.Error("vote fail", "post", ref.String(), "err", res.Err())
		c.printf("Failed to vote: %s", res.Reason)
		return out, nil
	}
	out.Kind = OutcomeVoted
	out.Reason = res.Reason
	lastVoteWeight.Set(weight)
	c.printf("Successfully voted!")
	return out, nil
}

// VotingPower models the agent's current voting power from the power the
// chain recorded at its last vote. The last vote time comes from the
// account history; when the window holds no vote the fallback decides.
func (c *Counter) VotingPower(ctx context.Context, acct *state.Account) (float64, error) {
	events, err := c.reader.GetAccountHistory(ctx, c.cfg.Name, c.cfg.HistoryLimit)
	if err != nil {
		return 0, err
	}
	last, err := economy.LastVoteTime(events, c.cfg.Name)
	if err != nil {
		if !errors.Is(err, types.ErrHistoryUnavailable) {
			return 0, err
		}
		vp, err := c.cfg.HistoryFallback.Resolve(acct.VotingPower, err)
		if err != nil {
			return 0, err
		}
		c.logger.Info("no vote in history window", "fallback", string(c.cfg.HistoryFallback), "votingPower", vp)
		return vp, nil
	}
	return c.power.Current(acct.VotingPower, last, c.Now()), nil
}

// Stake returns the agent account, its modeled voting power and effective
// stake against st.
func (c *Counter) Stake(ctx context.Context, st *state.GlobalChainState) (*state.Account, float64, float64, error) {
	acct, err := c.reader.GetAccount(ctx, c.cfg.Name)
	if err != nil {
		return nil, 0, 0, err
	}
	vp, err := c.VotingPower(ctx, acct)
	if err != nil {
		return nil, 0, 0, err
	}
	stake, err := economy.EffectiveStake(acct, st)
	if err != nil {
		return nil, 0, 0, err
	}
	return acct, vp, stake, nil
}

func (c *Counter) record(out *Outcome, start time.Time, elapsed time.Duration) {
	if c.store == nil {
		return
	}
	rec := &RunRecord{
		URL:             out.URL,
		Author:          out.Author,
		Permlink:        out.Permlink,
		Outcome:         string(out.Kind),
		FlagCount:       len(out.Flags),
		FlagTotal:       out.FlagTotal,
		VotingPower:     out.VotingPower,
		Stake:           out.Stake,
		Weight:          out.Weight,
		CounterValue:    out.CounterValue,
		Reason:          out.Reason,
		CreateTimestamp: start.Unix(),
		DurationMs:      elapsed.Milliseconds(),
	}
	if err := c.store.Append(rec); err != nil {
		c.logger.Error("record run fail", "url", out.URL, "err", err)
	}
}
