package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MissionsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_missions_completed_total",
			Help: "Missions completed, by mission type",
		},
		[]string{"type"},
	)
	MissionsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quest_missions_skipped_total",
			Help: "Missions skipped",
		},
	)
	Rerolls = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quest_rerolls_total",
			Help: "Global mission rerolls",
		},
	)
	LevelUps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quest_level_ups_total",
			Help: "User level-ups awarded on mission completion",
		},
	)
	ChainUnlocks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quest_chain_unlocks_total",
			Help: "Chain missions unlocked by completing a prerequisite",
		},
	)
)

func init() {
	prometheus.MustRegister(MissionsCompleted)
	prometheus.MustRegister(MissionsSkipped)
	prometheus.MustRegister(Rerolls)
	prometheus.MustRegister(LevelUps)
	prometheus.MustRegister(ChainUnlocks)
}
