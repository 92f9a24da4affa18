package state

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Int64 decodes from a JSON number or a quoted decimal string. Nodes quote
// 64-bit values such as rshares inconsistently.
type Int64 int64

func (n *Int64) UnmarshalJSON(dat []byte) error {
	s := string(bytes.Trim(dat, `"`))
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("int64 %q: %w", s, err)
	}
	*n = Int64(i)
	return nil
}

// Float decodes from a JSON number or a quoted decimal string, including
// 128-bit values such as recent_claims that overflow int64.
type Float float64

func (f *Float) UnmarshalJSON(dat []byte) error {
	s := string(bytes.Trim(dat, `"`))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("decimal %q: %w", s, err)
	}
	*f = Float(d.InexactFloat64())
	return nil
}
