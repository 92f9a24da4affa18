package agent

// sqlite models

// RunRecord is one evaluation of a post. Rows are only ever inserted.
type RunRecord struct {
	Id              uint64  `gorm:"primary_key" json:"id"`
	URL             string  `json:"url"`
	Author          string  `gorm:"index" json:"author"`
	Permlink        string  `json:"permlink"`
	Outcome         string  `gorm:"index" json:"outcome"`
	FlagCount       int     `json:"flag_count"`
	FlagTotal       float64 `json:"flag_total"`
	VotingPower     float64 `json:"voting_power"`
	Stake           float64 `json:"stake"`
	Weight          float64 `json:"weight"`
	CounterValue    float64 `json:"counter_value"`
	Reason          string  `json:"reason"`
	CreateTimestamp int64   `json:"create_timestamp"`
	DurationMs      int64   `json:"duration_ms"`
}
