package agent

import (
	"math"

	"github.com/calehh/counterflag/state"
	"github.com/shopspring/decimal"
)

const reportDecimals = 4

type DecisionKind int

const (
	NoActionNeeded DecisionKind = iota
	AlreadyVoted
	CounterNeeded
)

func (k DecisionKind) String() string {
	switch k {
	case AlreadyVoted:
		return "already_voted"
	case CounterNeeded:
		return "counter_needed"
	default:
		return "no_action"
	}
}

// Flag is one downvote priced in the reporting currency.
type Flag struct {
	Voter   string  `json:"voter"`
	Rshares int64   `json:"rshares"`
	Value   float64 `json:"value"`
}

type Decision struct {
	Kind  DecisionKind `json:"kind"`
	Total float64      `json:"total"`
	Flags []Flag       `json:"flags"`
}

type Pricer interface {
	RsharesValue(rshares float64) (float64, error)
}

func round(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(reportDecimals).Float64()
	return f
}

// AggregateFlags sums the value of every flag on post. A vote by agentName
// anywhere in the list ends the scan with AlreadyVoted. Each flag is rounded
// before it is added and always counts against the post, whatever the sign
// of its rshares.
func AggregateFlags(post *state.Post, agentName string, pricer Pricer) (Decision, error) {
	var (
		total = decimal.Zero
		flags []Flag
	)
	for _, vote := range post.ActiveVotes {
		if vote.Voter == agentName {
			return Decision{Kind: AlreadyVoted}, nil
		}
		if !vote.IsFlag() {
			continue
		}
		value, err := pricer.RsharesValue(float64(vote.Rshares))
		if err != nil {
			return Decision{}, err
		}
		value = round(-math.Abs(value))
		flags = append(flags, Flag{Voter: vote.Voter, Rshares: int64(vote.Rshares), Value: value})
		total = total.Add(decimal.NewFromFloat(value))
	}
	sum, _ := total.Float64()
	if sum < 0 {
		return Decision{Kind: CounterNeeded, Total: sum, Flags: flags}, nil
	}
	return Decision{Kind: NoActionNeeded, Total: sum, Flags: flags}, nil
}
