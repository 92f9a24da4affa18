package tx

import (
	"context"
	"testing"
	"time"

	"github.com/calehh/counterflag/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOp() VoteOp {
	return VoteOp{
		Voter:    "agent",
		Author:   "alice",
		Permlink: "p",
		URL:      "https://steemit.com/@alice/p",
		Weight:   37.5,
	}
}

func TestVoteOp(t *testing.T) {
	assert := assert.New(t)

	op := testOp()
	assert.NoError(op.ValidateBasic())
	assert.Equal(int64(3750), op.BasisPoints())

	op.Weight = 0.006
	assert.Equal(int64(1), op.BasisPoints())

	op.Weight = 0
	assert.ErrorIs(op.ValidateBasic(), ErrInvalidVote)
	op.Weight = 100.5
	assert.ErrorIs(op.ValidateBasic(), ErrInvalidVote)

	op = testOp()
	op.Voter = " "
	assert.ErrorIs(op.ValidateBasic(), ErrInvalidVote)
}

func TestResultErr(t *testing.T) {
	assert.NoError(t, Result{OK: true}.Err())
	err := Result{Reason: "exit status 1"}.Err()
	assert.ErrorIs(t, err, types.ErrVoteSubmission)
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestCommandSubmitterRender(t *testing.T) {
	s, err := NewCommandSubmitter("steempy", []string{"upvote", "--account", "{{.Voter}}", "--weight", "{{.Weight}}", "{{.URL}}", "{{.BasisPoints}}"}, 0, cmtlog.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, DefaultSubmitTimeout, s.timeout)

	args, err := s.render(testOp())
	require.NoError(t, err)
	assert.Equal(t, []string{"upvote", "--account", "agent", "--weight", "37.50", "https://steemit.com/@alice/p", "3750"}, args)

	_, err = NewCommandSubmitter("steempy", []string{"{{.Voter"}, 0, cmtlog.NewNopLogger())
	assert.Error(t, err)

	bad, err := NewCommandSubmitter("steempy", []string{"{{.Key}}"}, 0, cmtlog.NewNopLogger())
	require.NoError(t, err)
	res := bad.SubmitVote(context.Background(), testOp())
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "render vote command")

	_, err = NewCommandSubmitter("", nil, 0, cmtlog.NewNopLogger())
	assert.Error(t, err)
}

func TestCommandSubmitterRun(t *testing.T) {
	ok, err := NewCommandSubmitter("sh", []string{"-c", `test "$0" = alice`, "{{.Author}}"}, time.Second, cmtlog.NewNopLogger())
	require.NoError(t, err)
	res := ok.SubmitVote(context.Background(), testOp())
	assert.True(t, res.OK, res.Reason)

	fail, err := NewCommandSubmitter("sh", []string{"-c", "echo no key for $0 >&2; exit 3", "{{.Voter}}"}, time.Second, cmtlog.NewNopLogger())
	require.NoError(t, err)
	res = fail.SubmitVote(context.Background(), testOp())
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "exit status 3")
	assert.Contains(t, res.Reason, "no key for agent")

	invalid := testOp()
	invalid.Weight = -1
	res = ok.SubmitVote(context.Background(), invalid)
	assert.False(t, res.OK)
}

func TestCommandSubmitterTimeout(t *testing.T) {
	slow, err := NewCommandSubmitter("sh", []string{"-c", "exec sleep 5"}, 50*time.Millisecond, cmtlog.NewNopLogger())
	require.NoError(t, err)

	start := time.Now()
	res := slow.SubmitVote(context.Background(), testOp())
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "timed out")
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestDryRunSubmitter(t *testing.T) {
	s := NewDryRunSubmitter(cmtlog.NewNopLogger())
	res := s.SubmitVote(context.Background(), testOp())
	assert.True(t, res.OK)
	assert.NoError(t, res.Err())

	op := testOp()
	op.Author = ""
	assert.False(t, s.SubmitVote(context.Background(), op).OK)
}
