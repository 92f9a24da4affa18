package state

// Vote is one entry of a post's active votes. A negative Percent is a flag.
type Vote struct {
	Voter   string `json:"voter"`
	Percent Int64  `json:"percent"`
	Rshares Int64  `json:"rshares"`
}

func (v Vote) IsFlag() bool {
	return v.Percent < 0
}

// Post is a read-only snapshot of a post and its votes at fetch time.
type Post struct {
	Author      string `json:"author"`
	Permlink    string `json:"permlink"`
	ActiveVotes []Vote `json:"active_votes"`
}
