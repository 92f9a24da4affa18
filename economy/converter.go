// Package economy prices votes. It converts rshares to currency, derives an
// account's effective stake, models voting power regeneration and solves the
// relation between stake, voting power, vote weight and vote value in both
// directions. Every function works against one state.GlobalChainState
// snapshot and never touches the network.
package economy

import (
	"github.com/calehh/counterflag/state"
)

// RsharesToCurrency prices rshares in the reporting currency:
// rshares * reward_pool_balance / recent_claims, converted from the native
// token with the median feed price.
func RsharesToCurrency(rshares float64, st *state.GlobalChainState) (float64, error) {
	rew, err := st.RewardPerRshare()
	if err != nil {
		return 0, err
	}
	price, err := st.PriceRatio()
	if err != nil {
		return 0, err
	}
	return rshares * rew * price, nil
}

// Converter binds RsharesToCurrency to one snapshot.
type Converter struct {
	State *state.GlobalChainState
}

func NewConverter(st *state.GlobalChainState) *Converter {
	return &Converter{State: st}
}

func (c *Converter) RsharesValue(rshares float64) (float64, error) {
	return RsharesToCurrency(rshares, c.State)
}
