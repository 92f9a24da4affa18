package economy

import (
	"fmt"
	"math"

	"github.com/calehh/counterflag/state"
	"github.com/calehh/counterflag/types"
)

// Market holds the three market ratios of one snapshot the solver needs.
type Market struct {
	StakePerVest    float64
	RewardPerRshare float64
	Price           float64
}

func NewMarket(st *state.GlobalChainState) (*Market, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	spv, _ := st.StakePerVest()
	rew, _ := st.RewardPerRshare()
	price, _ := st.PriceRatio()
	if spv == 0 || rew == 0 || price == 0 {
		return nil, fmt.Errorf("%w: degenerate market spv=%g rew=%g price=%g", types.ErrDataUnavailable, spv, rew, price)
	}
	return &Market{
		StakePerVest:    spv,
		RewardPerRshare: rew,
		Price:           price,
	}, nil
}

func (m *Market) checkInput(stake, votingPower float64) error {
	if votingPower <= 0 || math.IsNaN(votingPower) {
		return fmt.Errorf("%w: voting power %g", types.ErrUndefinedInput, votingPower)
	}
	if stake <= 0 || math.IsNaN(stake) || math.IsInf(stake, 0) {
		return fmt.Errorf("%w: stake %g", types.ErrUndefinedInput, stake)
	}
	return nil
}

// unit is the value of one VOTING unit for the given stake.
func (m *Market) unit(stake float64) float64 {
	power := stake / m.StakePerVest
	return power * 100 * m.RewardPerRshare * m.Price
}

// VoteValue is the currency value of a vote with the given weight (percent)
// cast by an account with the given stake and voting power (percent).
func (m *Market) VoteValue(stake, votingPower, weight float64) (float64, error) {
	if err := m.checkInput(stake, votingPower); err != nil {
		return 0, err
	}
	vp := ClampPercent(votingPower)
	w := ClampPercent(weight)
	voting := (100*vp*(100*w)/10000 + 49) / 50
	return voting * m.unit(stake), nil
}

// VoteWeight inverts VoteValue: the weight (percent) that yields value. The
// result is not clamped; callers cap it to what they can cast.
func (m *Market) VoteWeight(stake, value, votingPower float64) (float64, error) {
	if err := m.checkInput(stake, votingPower); err != nil {
		return 0, err
	}
	voting := value / m.unit(stake)
	return ((voting*50 - 49) * 10000) / (100 * 100 * ClampPercent(votingPower)), nil
}
