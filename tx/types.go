package tx

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/calehh/counterflag/types"
)

const MaxWeight = 100.0

var ErrInvalidVote = errors.New("invalid vote")

// VoteOp is an upvote the agent wants on chain. Weight is a percentage.
type VoteOp struct {
	Voter    string  `json:"voter"`
	Author   string  `json:"author"`
	Permlink string  `json:"permlink"`
	URL      string  `json:"url"`
	Weight   float64 `json:"weight"`
}

// BasisPoints is the weight as the chain stores it, 10000 being 100%.
func (op VoteOp) BasisPoints() int64 {
	return int64(math.Round(op.Weight * 100))
}

func (op VoteOp) ValidateBasic() error {
	if strings.TrimSpace(op.Voter) == "" || strings.TrimSpace(op.Author) == "" || strings.TrimSpace(op.Permlink) == "" {
		return fmt.Errorf("%w: voter, author and permlink are required", ErrInvalidVote)
	}
	if math.IsNaN(op.Weight) || op.Weight <= 0 || op.Weight > MaxWeight {
		return fmt.Errorf("%w: weight %v out of (0,%v]", ErrInvalidVote, op.Weight, MaxWeight)
	}
	return nil
}

// Result reports whether a submission went through. Reason carries the
// failure message and is empty on success unless the submitter adds a note.
type Result struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return fmt.Errorf("%w: %s", types.ErrVoteSubmission, r.Reason)
}

type Submitter interface {
	SubmitVote(ctx context.Context, op VoteOp) Result
}
