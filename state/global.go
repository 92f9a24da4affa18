package state

import (
	"errors"
	"fmt"

	"github.com/calehh/counterflag/types"
)

type RewardFund struct {
	Name          string `json:"name"`
	RewardBalance Asset  `json:"reward_balance"`
	RecentClaims  Float  `json:"recent_claims"`
}

type DynamicGlobalProperties struct {
	HeadBlockNumber    Int64  `json:"head_block_number"`
	Time               string `json:"time"`
	TotalVestingFund   Asset  `json:"total_vesting_fund_steem"`
	TotalVestingShares Asset  `json:"total_vesting_shares"`
}

// Price is a median feed price: Base (SBD) per Quote (STEEM).
type Price struct {
	Base  Asset `json:"base"`
	Quote Asset `json:"quote"`
}

func (p Price) Ratio() (float64, error) {
	if p.Quote.Amount == 0 {
		return 0, fmt.Errorf("%w: price quote is zero", types.ErrDataUnavailable)
	}
	return p.Base.Amount / p.Quote.Amount, nil
}

// GlobalChainState is the economic snapshot one run works against. It is
// read fresh for every run and never mutated.
type GlobalChainState struct {
	RewardPoolBalance  float64 `json:"reward_pool_balance"`
	RecentClaims       float64 `json:"recent_claims"`
	TotalVestingFund   float64 `json:"total_vesting_fund"`
	TotalVestingShares float64 `json:"total_vesting_shares"`
	PriceBase          float64 `json:"price_base"`
	PriceQuote         float64 `json:"price_quote"`
}

func NewGlobalChainState(fund *RewardFund, props *DynamicGlobalProperties, price *Price) (*GlobalChainState, error) {
	if fund == nil || props == nil || price == nil {
		return nil, fmt.Errorf("%w: incomplete chain state", types.ErrDataUnavailable)
	}
	return &GlobalChainState{
		RewardPoolBalance:  fund.RewardBalance.Amount,
		RecentClaims:       float64(fund.RecentClaims),
		TotalVestingFund:   props.TotalVestingFund.Amount,
		TotalVestingShares: props.TotalVestingShares.Amount,
		PriceBase:          price.Base.Amount,
		PriceQuote:         price.Quote.Amount,
	}, nil
}

// RewardPerRshare is reward_pool_balance / recent_claims.
func (st *GlobalChainState) RewardPerRshare() (float64, error) {
	if st.RecentClaims == 0 {
		return 0, fmt.Errorf("%w: recent_claims is zero", types.ErrDataUnavailable)
	}
	return st.RewardPoolBalance / st.RecentClaims, nil
}

// StakePerVest is total_vesting_fund / total_vesting_shares.
func (st *GlobalChainState) StakePerVest() (float64, error) {
	if st.TotalVestingShares == 0 {
		return 0, fmt.Errorf("%w: total_vesting_shares is zero", types.ErrDataUnavailable)
	}
	return st.TotalVestingFund / st.TotalVestingShares, nil
}

func (st *GlobalChainState) PriceRatio() (float64, error) {
	return Price{Base: Asset{Amount: st.PriceBase}, Quote: Asset{Amount: st.PriceQuote}}.Ratio()
}

// Validate reports every unusable denominator in the snapshot.
func (st *GlobalChainState) Validate() error {
	_, err1 := st.RewardPerRshare()
	_, err2 := st.StakePerVest()
	_, err3 := st.PriceRatio()
	return errors.Join(err1, err2, err3)
}
