package state

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NAI identifiers of the assets the agent reads.
const (
	NAISteem = "@@000000021"
	NAISbd   = "@@000000013"
	NAIVests = "@@000000037"
)

var naiSymbols = map[string]string{
	NAISteem: "STEEM",
	NAISbd:   "SBD",
	NAIVests: "VESTS",
}

// Asset is a chain amount already converted to a float in whole units.
type Asset struct {
	Amount float64 `json:"amount"`
	Symbol string  `json:"symbol"`
}

func (a Asset) String() string {
	return fmt.Sprintf("%s %s", decimal.NewFromFloat(a.Amount).String(), a.Symbol)
}

type naiSt struct {
	Amount    string `json:"amount"`
	Precision int32  `json:"precision"`
	NAI       string `json:"nai"`
}

// UnmarshalJSON accepts the NAI object form
// {"amount":"1234","precision":3,"nai":"@@000000021"} and the legacy string
// form "1.234 STEEM".
func (a *Asset) UnmarshalJSON(dat []byte) (err error) {
	var legacy string
	if err = json.Unmarshal(dat, &legacy); err == nil {
		*a, err = ParseAsset(legacy)
		return
	}
	var o naiSt
	if err = json.Unmarshal(dat, &o); err != nil {
		return fmt.Errorf("asset: %w", err)
	}
	raw, err := decimal.NewFromString(o.Amount)
	if err != nil {
		return fmt.Errorf("asset amount %q: %w", o.Amount, err)
	}
	a.Amount = raw.Shift(-o.Precision).InexactFloat64()
	a.Symbol = naiSymbols[o.NAI]
	if a.Symbol == "" {
		a.Symbol = o.NAI
	}
	return nil
}

// ParseAsset parses the legacy "<amount> <SYMBOL>" form.
func ParseAsset(s string) (Asset, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Asset{}, fmt.Errorf("asset %q: expected \"<amount> <symbol>\"", s)
	}
	d, err := decimal.NewFromString(fields[0])
	if err != nil {
		return Asset{}, fmt.Errorf("asset %q: %w", s, err)
	}
	return Asset{Amount: d.InexactFloat64(), Symbol: fields[1]}, nil
}

// rawUnits returns the amount as integer satoshis for the given precision.
func (a Asset) rawUnits(precision int32) float64 {
	return decimal.NewFromFloat(a.Amount).Shift(precision).InexactFloat64()
}
