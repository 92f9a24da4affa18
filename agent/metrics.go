package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "counterflag"

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "runs_total",
		Help:      "Post evaluations by outcome.",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Time spent evaluating one post.",
		Buckets:   prometheus.DefBuckets,
	})

	lastFlagTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_flag_total",
		Help:      "Net flag value found on the last evaluated post.",
	})

	lastVoteWeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_vote_weight_percent",
		Help:      "Weight of the last counter-vote sent.",
	})

	votingPowerGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "voting_power_percent",
		Help:      "Modeled voting power of the agent at its last run.",
	})
)
