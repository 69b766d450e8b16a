package domain

import (
	"sort"
	"time"
)

// MissionStatus - состояние миссии
type MissionStatus string

const (
	MissionPending   MissionStatus = "pending"
	MissionCompleted MissionStatus = "completed"
	MissionSkipped   MissionStatus = "skipped"
)

// Slot layout of a DailyQuest:
//
//	1-3  auto-assigned global missions
//	4-5  manually assigned personal challenges
//	6+   chain-unlocked missions
const (
	FirstGlobalSlot   = 1
	LastGlobalSlot    = 3
	FirstPersonalSlot = 4
	LastPersonalSlot  = 5
	FirstChainSlot    = 6

	MaxRerollsPerDay = 3
)

// Mission is one slot's assignment of a challenge for one day. It is embedded
// in the DailyQuest aggregate and persisted as part of its missions document.
type Mission struct {
	Slot          int           `json:"slot"`
	ChallengeID   int64         `json:"challenge_id"`
	Type          ChallengeKind `json:"type"` // challenge kind at assignment time
	Status        MissionStatus `json:"status"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	PointsAwarded int           `json:"points_awarded"`
}

// DailyQuest - the per-(user, day) aggregate owned by the quest engine.
// All mission mutation goes through the methods below so the aggregate can
// enforce slot uniqueness and the no-duplicate-challenge rule; Revision backs
// the optimistic save in the store.
type DailyQuest struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	Day                Day       `json:"day"`
	Missions           []Mission `json:"missions"`
	RerollCount        int       `json:"reroll_count"`
	PendingChainPoints int       `json:"pending_chain_points"` // informational only
	Revision           int       `json:"revision"`
	CreatedAt          time.Time `json:"created_at"`
}

// MissionAt returns a pointer to the mission in the given slot, or nil.
func (q *DailyQuest) MissionAt(slot int) *Mission {
	for i := range q.Missions {
		if q.Missions[i].Slot == slot {
			return &q.Missions[i]
		}
	}
	return nil
}

// HasChallenge reports whether any mission already references the challenge.
func (q *DailyQuest) HasChallenge(challengeID int64) bool {
	for i := range q.Missions {
		if q.Missions[i].ChallengeID == challengeID {
			return true
		}
	}
	return false
}

// AssignedChallengeIDs returns every challenge id present today, used to
// exclude duplicates when sampling replacements.
func (q *DailyQuest) AssignedChallengeIDs() []int64 {
	ids := make([]int64, 0, len(q.Missions))
	for i := range q.Missions {
		ids = append(ids, q.Missions[i].ChallengeID)
	}
	return ids
}

// AddMission inserts a mission, enforcing slot uniqueness and the
// no-duplicate-challenge invariant. Missions stay ordered by slot.
func (q *DailyQuest) AddMission(m Mission) error {
	if q.MissionAt(m.Slot) != nil {
		return ErrSlotOccupied
	}
	if q.HasChallenge(m.ChallengeID) {
		return ErrDuplicateChallenge
	}
	q.Missions = append(q.Missions, m)
	sort.Slice(q.Missions, func(i, j int) bool { return q.Missions[i].Slot < q.Missions[j].Slot })
	return nil
}

// RemoveMission deletes the mission in the slot. Completed missions are
// immutable and cannot be removed.
func (q *DailyQuest) RemoveMission(slot int) error {
	for i := range q.Missions {
		if q.Missions[i].Slot != slot {
			continue
		}
		if q.Missions[i].Status == MissionCompleted {
			return ErrMissionCompleted
		}
		q.Missions = append(q.Missions[:i], q.Missions[i+1:]...)
		return nil
	}
	return ErrMissionNotFound
}

// ReplaceChallenge swaps the challenge in a slot and resets the mission to a
// fresh pending state (the reroll effect). The replacement must not duplicate
// a challenge already present today.
func (q *DailyQuest) ReplaceChallenge(slot int, challengeID int64) error {
	m := q.MissionAt(slot)
	if m == nil {
		return ErrMissionNotFound
	}
	if m.Status == MissionCompleted {
		return ErrMissionCompleted
	}
	if q.HasChallenge(challengeID) {
		return ErrDuplicateChallenge
	}
	m.ChallengeID = challengeID
	m.Status = MissionPending
	m.CompletedAt = nil
	m.PointsAwarded = 0
	return nil
}

// NextChainSlot returns the lowest free slot number >= FirstChainSlot.
func (q *DailyQuest) NextChainSlot() int {
	slot := FirstChainSlot
	for q.MissionAt(slot) != nil {
		slot++
	}
	return slot
}

// CompletedCount counts completed missions (streak continuation check).
func (q *DailyQuest) CompletedCount() int {
	n := 0
	for i := range q.Missions {
		if q.Missions[i].Status == MissionCompleted {
			n++
		}
	}
	return n
}
