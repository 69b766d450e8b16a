package domain

import "time"

// ChallengeKind - who a challenge is authored for
type ChallengeKind string

const (
	ChallengeGlobal   ChallengeKind = "global"
	ChallengePersonal ChallengeKind = "personal"
)

// Requirements gate when a challenge becomes visible to a user.
type Requirements struct {
	MinLevel                int    `json:"min_level"`
	PrerequisiteChallengeID *int64 `json:"prerequisite_challenge_id,omitempty"`
}

type Rules struct {
	MaxPerDay    int `json:"max_per_day"`
	MinUserLevel int `json:"min_user_level"`
}

// ChallengeStats are approximate assignment counters shared across all users.
// They are statistics, not invariants that gate behavior.
type ChallengeStats struct {
	TimesAssigned  int     `json:"times_assigned"`
	TimesCompleted int     `json:"times_completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// Challenge - a reusable task definition with points, difficulty and an
// optional prerequisite link for chain unlocks.
type Challenge struct {
	ID           int64          `db:"id" json:"id"`
	Kind         ChallengeKind  `db:"kind" json:"kind"`
	OwnerID      *int64         `db:"owner_id" json:"owner_id,omitempty"` // personal challenges only
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	Category     string         `db:"category" json:"category"`
	Difficulty   int            `db:"difficulty" json:"difficulty"` // 1..5
	Points       int            `db:"points" json:"points"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	Tags         []string       `db:"tags" json:"tags,omitempty"`
	Requirements Requirements   `json:"requirements"`
	Rules        Rules          `json:"rules"`
	Stats        ChallengeStats `json:"stats"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// RecomputeCompletionRate keeps completion_rate derived from the two counters.
func (c *Challenge) RecomputeCompletionRate() {
	if c.Stats.TimesAssigned > 0 {
		c.Stats.CompletionRate = float64(c.Stats.TimesCompleted) / float64(c.Stats.TimesAssigned) * 100
	} else {
		c.Stats.CompletionRate = 0
	}
}

// ChallengeFilter is a conjunction of catalog selection criteria. Zero values
// mean "not filtered on".
type ChallengeFilter struct {
	Kind            ChallengeKind
	ActiveOnly      bool
	MaxMinUserLevel int     // rules.min_user_level <= MaxMinUserLevel
	NoPrerequisite  bool    // requirements.prerequisite_challenge_id IS NULL
	PrerequisiteID  *int64  // requirements.prerequisite_challenge_id = X
	ExcludeIDs      []int64 // id NOT IN (...)
	Category        string
}
