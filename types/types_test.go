package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePostURL(t *testing.T) {
	assert := assert.New(t)

	cases := map[string]PostRef{
		"https://steemit.com/steem/@Alice/my-first-post":  {Author: "alice", Permlink: "my-first-post"},
		"https://steemit.com/@bob/re-post-20240301":       {Author: "bob", Permlink: "re-post-20240301"},
		"@carol/hello-world":                              {Author: "carol", Permlink: "hello-world"},
		"  https://steemit.com/tag/@dave/permlink/  ":     {Author: "dave", Permlink: "permlink"},
		"https://steemit.com/tag/@dave/permlink?ref=x#c1": {Author: "dave", Permlink: "permlink"},
		"steemit.com/tag/@dave/permlink?ref=x":            {Author: "dave", Permlink: "permlink"},
		"@dave/permlink#@erin/re-dave-permlink":           {Author: "dave", Permlink: "permlink"},
	}
	for raw, want := range cases {
		got, err := ParsePostURL(raw)
		if assert.NoError(err, raw) {
			assert.Equal(want, got, raw)
		}
	}

	// a comment anchor names a reply; with or without a scheme the link is the post
	anchored := "steemit.com/tag/@alice/p#@bob/re-alice-p"
	bare, err := ParsePostURL(anchored)
	assert.NoError(err)
	full, err := ParsePostURL("https://" + anchored)
	assert.NoError(err)
	assert.Equal(PostRef{Author: "alice", Permlink: "p"}, bare)
	assert.Equal(full, bare)
	assert.Equal("@carol/hello-world", PostRef{Author: "carol", Permlink: "hello-world"}.String())

	bad := []string{
		"",
		"   ",
		"https://steemit.com/trending",
		"https://steemit.com/@alice",
		"https://steemit.com/@alice/post/extra",
		"https:///@alice/post",
		"@/post",
	}
	for _, raw := range bad {
		_, err := ParsePostURL(raw)
		assert.ErrorIs(err, ErrInvalidInput, raw)
	}
}

func TestHistoryEventAppbase(t *testing.T) {
	assert := assert.New(t)

	var ev HistoryEvent
	err := json.Unmarshal([]byte(`[1204, {
		"trx_id": "abc",
		"block": 1,
		"timestamp": "2024-03-01T10:00:03",
		"op": {"type": "vote_operation", "value": {"voter": "agent", "author": "alice", "permlink": "p", "weight": 5000}}
	}]`), &ev)
	assert.NoError(err)
	assert.Equal(int64(1204), ev.Seq)
	assert.True(ev.IsVote())
	assert.Equal("agent", ev.Voter)
	assert.Equal("alice", ev.Author)
	assert.Equal(int64(5000), ev.Weight)
	assert.Equal(time.Date(2024, 3, 1, 10, 0, 3, 0, time.UTC), ev.Timestamp)
}

func TestHistoryEventLegacy(t *testing.T) {
	assert := assert.New(t)

	var events []HistoryEvent
	err := json.Unmarshal([]byte(`[
		[7, {"timestamp": "2024-03-01T09:00:00", "op": ["vote", {"voter": "agent", "author": "bob", "permlink": "q", "weight": "-10000"}]}],
		[8, {"timestamp": "2024-03-01T09:30:00", "op": ["comment", {"author": "agent", "permlink": "r"}]}]
	]`), &events)
	assert.NoError(err)
	assert.Len(events, 2)
	assert.True(events[0].IsVote())
	assert.Equal(int64(-10000), events[0].Weight)
	assert.Equal("comment", events[1].Type)
	assert.False(events[1].IsVote())
	assert.Empty(events[1].Voter)

	var ev HistoryEvent
	assert.Error(json.Unmarshal([]byte(`[1]`), &ev))
	assert.Error(json.Unmarshal([]byte(`[1, {"timestamp": "yesterday", "op": ["vote", {}]}]`), &ev))
}
