package economy

import (
	"fmt"

	"github.com/calehh/counterflag/state"
	"github.com/calehh/counterflag/types"
)

// VestsToStake converts vesting shares to the staked token denomination.
func VestsToStake(vests float64, st *state.GlobalChainState) (float64, error) {
	ratio, err := st.StakePerVest()
	if err != nil {
		return 0, err
	}
	return vests * ratio, nil
}

// EffectiveStake is the account's influence-bearing stake after delegations
// in and out.
func EffectiveStake(acct *state.Account, st *state.GlobalChainState) (float64, error) {
	raw := acct.EffectiveVests()
	if raw < 0 {
		return 0, fmt.Errorf("%w: account %s has negative effective vests %f", types.ErrDataUnavailable, acct.Name, raw)
	}
	stake, err := VestsToStake(raw, st)
	if err != nil {
		return 0, err
	}
	if stake < 0 {
		return 0, fmt.Errorf("%w: negative stake for account %s", types.ErrDataUnavailable, acct.Name)
	}
	return stake, nil
}
