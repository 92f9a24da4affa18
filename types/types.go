package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	EventVoteType = "vote"

	// TimeLayout is the chain's timestamp format, always UTC.
	TimeLayout = "2006-01-02T15:04:05"
)

// HistoryEvent is one account-history entry. Only vote operations carry
// voter, author, permlink and weight.
type HistoryEvent struct {
	Seq       int64     `json:"seq"`
	Type      string    `json:"type"`
	Voter     string    `json:"voter,omitempty"`
	Author    string    `json:"author,omitempty"`
	Permlink  string    `json:"permlink,omitempty"`
	Weight    int64     `json:"weight,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *HistoryEvent) IsVote() bool {
	return e.Type == EventVoteType
}

type historyOpSt struct {
	Timestamp string          `json:"timestamp"`
	Op        json.RawMessage `json:"op"`
}

type voteOpSt struct {
	Voter    string          `json:"voter"`
	Author   string          `json:"author"`
	Permlink string          `json:"permlink"`
	Weight   json.RawMessage `json:"weight"`
}

// UnmarshalJSON decodes a [seq, {timestamp, op}] history pair. Both the
// appbase {"type":"vote_operation","value":{...}} and the legacy
// ["vote",{...}] operation encodings are accepted.
func (e *HistoryEvent) UnmarshalJSON(dat []byte) (err error) {
	var pair []json.RawMessage
	if err = json.Unmarshal(dat, &pair); err != nil {
		return
	}
	if len(pair) != 2 {
		return fmt.Errorf("history entry: expected [seq, op], got %d elements", len(pair))
	}
	var seq json.Number
	if err = json.Unmarshal(pair[0], &seq); err != nil {
		return
	}
	var o historyOpSt
	if err = json.Unmarshal(pair[1], &o); err != nil {
		return
	}
	ts, err := time.ParseInLocation(TimeLayout, o.Timestamp, time.UTC)
	if err != nil {
		return fmt.Errorf("history entry timestamp: %w", err)
	}
	opType, value, err := decodeOp(o.Op)
	if err != nil {
		return
	}
	e.Seq, _ = seq.Int64()
	e.Timestamp = ts
	e.Type = strings.TrimSuffix(opType, "_operation")
	if e.Type != EventVoteType {
		return nil
	}
	var v voteOpSt
	if err = json.Unmarshal(value, &v); err != nil {
		return
	}
	e.Voter = v.Voter
	e.Author = v.Author
	e.Permlink = v.Permlink
	if len(v.Weight) > 0 {
		var w json.Number
		if err = json.Unmarshal(v.Weight, &w); err != nil {
			return
		}
		e.Weight, err = w.Int64()
	}
	return
}

func decodeOp(dat json.RawMessage) (opType string, value json.RawMessage, err error) {
	if len(dat) == 0 {
		return "", nil, errors.New("history entry: missing op")
	}
	if dat[0] == '[' {
		var legacy []json.RawMessage
		if err = json.Unmarshal(dat, &legacy); err != nil {
			return
		}
		if len(legacy) != 2 {
			return "", nil, errors.New("history entry: malformed legacy op")
		}
		if err = json.Unmarshal(legacy[0], &opType); err != nil {
			return
		}
		return opType, legacy[1], nil
	}
	var appbase struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err = json.Unmarshal(dat, &appbase); err != nil {
		return
	}
	return appbase.Type, appbase.Value, nil
}
