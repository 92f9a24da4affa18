package tx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"text/template"
	"time"

	cmtlog "github.com/cometbft/cometbft/libs/log"
)

const DefaultSubmitTimeout = 60 * time.Second

var (
	_ Submitter = &CommandSubmitter{}
	_ Submitter = &DryRunSubmitter{}
)

// opView is what argument templates see.
type opView struct {
	Voter       string
	Author      string
	Permlink    string
	URL         string
	Weight      string
	BasisPoints int64
}

func newOpView(op VoteOp) opView {
	return opView{
		Voter:       op.Voter,
		Author:      op.Author,
		Permlink:    op.Permlink,
		URL:         op.URL,
		Weight:      fmt.Sprintf("%.2f", op.Weight),
		BasisPoints: op.BasisPoints(),
	}
}

// CommandSubmitter hands the vote to an external wallet command. Signing
// keys never pass through this process.
type CommandSubmitter struct {
	command string
	args    []*template.Template
	timeout time.Duration
	logger  cmtlog.Logger
}

func NewCommandSubmitter(command string, args []string, timeout time.Duration, logger cmtlog.Logger) (*CommandSubmitter, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("empty vote command")
	}
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	s := &CommandSubmitter{
		command: command,
		timeout: timeout,
		logger:  logger.With("module", "submitter"),
	}
	for i, arg := range args {
		tmpl, err := template.New(fmt.Sprintf("arg%d", i)).Option("missingkey=error").Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("parse vote argument %q: %w", arg, err)
		}
		s.args = append(s.args, tmpl)
	}
	return s, nil
}

func (s *CommandSubmitter) render(op VoteOp) ([]string, error) {
	view := newOpView(op)
	out := make([]string, 0, len(s.args))
	for _, tmpl := range s.args {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, view); err != nil {
			return nil, err
		}
		out = append(out, buf.String())
	}
	return out, nil
}

func (s *CommandSubmitter) SubmitVote(ctx context.Context, op VoteOp) Result {
	if err := op.ValidateBasic(); err != nil {
		return Result{Reason: err.Error()}
	}
	args, err := s.render(op)
	if err != nil {
		return Result{Reason: fmt.Sprintf("render vote command: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, s.command, args...)
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.logger.Info("submitting vote", "voter", op.Voter, "post", "@"+op.Author+"/"+op.Permlink, "weight", op.BasisPoints())
	if err := cmd.Run(); err != nil {
		reason := err.Error()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = fmt.Sprintf("timed out after %v", s.timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			reason += ": " + msg
		}
		s.logger.Error("vote command fail", "command", s.command, "reason", reason)
		return Result{Reason: reason}
	}
	s.logger.Debug("vote command done", "stdout", strings.TrimSpace(stdout.String()))
	return Result{OK: true}
}

// DryRunSubmitter logs the vote and reports success without broadcasting.
type DryRunSubmitter struct {
	logger cmtlog.Logger
}

func NewDryRunSubmitter(logger cmtlog.Logger) *DryRunSubmitter {
	return &DryRunSubmitter{logger: logger.With("module", "submitter")}
}

func (s *DryRunSubmitter) SubmitVote(_ context.Context, op VoteOp) Result {
	if err := op.ValidateBasic(); err != nil {
		return Result{Reason: err.Error()}
	}
	s.logger.Info("dry run, vote not broadcast", "voter", op.Voter, "url", op.URL, "weight", op.BasisPoints())
	return Result{OK: true, Reason: "dry run"}
}
