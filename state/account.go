package state

import (
	"encoding/json"
	"time"

	"github.com/calehh/counterflag/types"
)

// vestsPrecision is the number of decimals of the VESTS asset; manabar
// values are expressed in these raw units.
const vestsPrecision = 6

type Account struct {
	Name                   string    `json:"name"`
	VestingShares          float64   `json:"vesting_shares"`
	DelegatedVestingShares float64   `json:"delegated_vesting_shares"`
	ReceivedVestingShares  float64   `json:"received_vesting_shares"`
	VotingPower            float64   `json:"voting_power"`
	LastVoteTime           time.Time `json:"last_vote_time"`
}

type manabarSt struct {
	CurrentMana    Float `json:"current_mana"`
	LastUpdateTime Int64 `json:"last_update_time"`
}

type accountSt struct {
	Name                   string     `json:"name"`
	VestingShares          Asset      `json:"vesting_shares"`
	DelegatedVestingShares Asset      `json:"delegated_vesting_shares"`
	ReceivedVestingShares  Asset      `json:"received_vesting_shares"`
	VotingPower            *Int64     `json:"voting_power"`
	VotingManabar          *manabarSt `json:"voting_manabar"`
	LastVoteTime           string     `json:"last_vote_time"`
}

// UnmarshalJSON decodes a database_api account object. Voting power is
// taken from voting_power (basis points) when the node reports it and
// derived from the voting manabar otherwise.
func (a *Account) UnmarshalJSON(dat []byte) (err error) {
	var o accountSt
	err = json.Unmarshal(dat, &o)
	if err != nil {
		return
	}
	a.Name = o.Name
	a.VestingShares = o.VestingShares.Amount
	a.DelegatedVestingShares = o.DelegatedVestingShares.Amount
	a.ReceivedVestingShares = o.ReceivedVestingShares.Amount
	a.VotingPower = 0
	switch {
	case o.VotingPower != nil && *o.VotingPower > 0:
		a.VotingPower = float64(*o.VotingPower) / 100
	case o.VotingManabar != nil:
		effective := Asset{Amount: a.EffectiveVests()}
		if maxMana := effective.rawUnits(vestsPrecision); maxMana > 0 {
			a.VotingPower = float64(o.VotingManabar.CurrentMana) / maxMana * 100
		}
	}
	if a.VotingPower > 100 {
		a.VotingPower = 100
	}
	a.LastVoteTime = time.Time{}
	if o.LastVoteTime != "" {
		if t, perr := time.ParseInLocation(types.TimeLayout, o.LastVoteTime, time.UTC); perr == nil {
			a.LastVoteTime = t
		}
	}
	return
}

// EffectiveVests is own vests minus delegated out plus delegated in.
func (a *Account) EffectiveVests() float64 {
	return a.VestingShares - a.DelegatedVestingShares + a.ReceivedVestingShares
}

func (a *Account) Clone() *Account {
	n := *a
	return &n
}
