// Package chain reads posts, accounts and global properties from a Steem
// node over appbase JSON-RPC.
package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/calehh/counterflag/state"
	"github.com/calehh/counterflag/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	jsonrpcclient "github.com/cometbft/cometbft/rpc/jsonrpc/client"
)

const (
	DefaultTimeout = 15 * time.Second

	PostRewardFund = "post"
)

type Client struct {
	rpc     *jsonrpcclient.Client
	remote  string
	timeout time.Duration
	logger  cmtlog.Logger
}

func NewClient(remote string, timeout time.Duration, logger cmtlog.Logger) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rpc, err := jsonrpcclient.NewWithHTTPClient(remote, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("create rpc client for %s: %w", remote, err)
	}
	return &Client{
		rpc:     rpc,
		remote:  remote,
		timeout: timeout,
		logger:  logger.With("module", "chain"),
	}, nil
}

func (c *Client) call(ctx context.Context, method string, params map[string]interface{}, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if params == nil {
		params = map[string]interface{}{}
	}
	start := time.Now()
	var raw json.RawMessage
	if _, err := c.rpc.Call(ctx, method, params, &raw); err != nil {
		c.logger.Error("rpc call fail", "method", method, "remote", c.remote, "err", err)
		return fmt.Errorf("%w: %s: %v", types.ErrNetworkFailure, method, err)
	}
	c.logger.Debug("rpc call", "method", method, "elapsed", time.Since(start))
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", types.ErrDataUnavailable, method, err)
	}
	return nil
}

type commentSt struct {
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
}

type voteSt struct {
	Voter       string      `json:"voter"`
	Rshares     state.Int64 `json:"rshares"`
	VotePercent state.Int64 `json:"vote_percent"`
}

func (c *Client) GetPost(ctx context.Context, ref types.PostRef) (*state.Post, error) {
	var comments struct {
		Comments []commentSt `json:"comments"`
	}
	err := c.call(ctx, "database_api.find_comments", map[string]interface{}{
		"comments": [][]string{{ref.Author, ref.Permlink}},
	}, &comments)
	if err != nil {
		return nil, err
	}
	if len(comments.Comments) == 0 || comments.Comments[0].Author == "" {
		return nil, fmt.Errorf("%w: %s", types.ErrPostNotFound, ref)
	}

	var votes struct {
		Votes []voteSt `json:"votes"`
	}
	err = c.call(ctx, "database_api.find_votes", map[string]interface{}{
		"author":   ref.Author,
		"permlink": ref.Permlink,
	}, &votes)
	if err != nil {
		return nil, err
	}
	post := &state.Post{
		Author:      comments.Comments[0].Author,
		Permlink:    comments.Comments[0].Permlink,
		ActiveVotes: make([]state.Vote, 0, len(votes.Votes)),
	}
	for _, v := range votes.Votes {
		post.ActiveVotes = append(post.ActiveVotes, state.Vote{
			Voter:   v.Voter,
			Percent: v.VotePercent,
			Rshares: v.Rshares,
		})
	}
	return post, nil
}

func (c *Client) GetAccount(ctx context.Context, name string) (*state.Account, error) {
	var res struct {
		Accounts []*state.Account `json:"accounts"`
	}
	err := c.call(ctx, "database_api.find_accounts", map[string]interface{}{
		"accounts": []string{name},
	}, &res)
	if err != nil {
		return nil, err
	}
	for _, acct := range res.Accounts {
		if acct != nil && strings.EqualFold(acct.Name, name) {
			return acct, nil
		}
	}
	return nil, fmt.Errorf("%w: account %s not found", types.ErrDataUnavailable, name)
}

// GetAccountHistory returns up to limit of the most recent operations of
// name, oldest first.
func (c *Client) GetAccountHistory(ctx context.Context, name string, limit uint32) ([]types.HistoryEvent, error) {
	var res struct {
		History []types.HistoryEvent `json:"history"`
	}
	err := c.call(ctx, "account_history_api.get_account_history", map[string]interface{}{
		"account": name,
		"start":   int32(-1),
		"limit":   limit,
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.History, nil
}

func (c *Client) GetRewardFund(ctx context.Context) (*state.RewardFund, error) {
	var res struct {
		Funds []state.RewardFund `json:"funds"`
	}
	if err := c.call(ctx, "database_api.get_reward_funds", nil, &res); err != nil {
		return nil, err
	}
	for i := range res.Funds {
		if res.Funds[i].Name == PostRewardFund {
			return &res.Funds[i], nil
		}
	}
	return nil, fmt.Errorf("%w: reward fund %q missing", types.ErrDataUnavailable, PostRewardFund)
}

func (c *Client) GetDynamicGlobalProperties(ctx context.Context) (*state.DynamicGlobalProperties, error) {
	props := &state.DynamicGlobalProperties{}
	if err := c.call(ctx, "database_api.get_dynamic_global_properties", nil, props); err != nil {
		return nil, err
	}
	return props, nil
}

func (c *Client) GetMedianPrice(ctx context.Context) (*state.Price, error) {
	var res struct {
		CurrentMedianHistory *state.Price `json:"current_median_history"`
	}
	if err := c.call(ctx, "database_api.get_feed_history", nil, &res); err != nil {
		return nil, err
	}
	if res.CurrentMedianHistory == nil {
		return nil, fmt.Errorf("%w: no median price", types.ErrDataUnavailable)
	}
	return res.CurrentMedianHistory, nil
}

// GetGlobalState fetches the reward fund, global properties and median
// price and combines them into one snapshot.
func (c *Client) GetGlobalState(ctx context.Context) (*state.GlobalChainState, error) {
	fund, err := c.GetRewardFund(ctx)
	if err != nil {
		return nil, err
	}
	props, err := c.GetDynamicGlobalProperties(ctx)
	if err != nil {
		return nil, err
	}
	price, err := c.GetMedianPrice(ctx)
	if err != nil {
		return nil, err
	}
	return state.NewGlobalChainState(fund, props, price)
}
