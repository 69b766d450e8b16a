package domain

import (
	"testing"
	"time"
)

func pendingMission(slot int, challengeID int64) Mission {
	return Mission{Slot: slot, ChallengeID: challengeID, Type: ChallengeGlobal, Status: MissionPending}
}

func TestAddMissionSlotUniqueness(t *testing.T) {
	q := &DailyQuest{}
	if err := q.AddMission(pendingMission(1, 10)); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := q.AddMission(pendingMission(1, 11)); err != ErrSlotOccupied {
		t.Fatalf("expected ErrSlotOccupied, got %v", err)
	}
	// occupied slot must keep the original challenge
	if got := q.MissionAt(1).ChallengeID; got != 10 {
		t.Fatalf("slot 1 challenge changed: %d", got)
	}
}

func TestAddMissionDuplicateChallenge(t *testing.T) {
	q := &DailyQuest{}
	if err := q.AddMission(pendingMission(1, 10)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := q.AddMission(pendingMission(2, 10)); err != ErrDuplicateChallenge {
		t.Fatalf("expected ErrDuplicateChallenge, got %v", err)
	}
}

func TestAddMissionKeepsSlotOrder(t *testing.T) {
	q := &DailyQuest{}
	for _, m := range []Mission{pendingMission(4, 40), pendingMission(1, 10), pendingMission(6, 60)} {
		if err := q.AddMission(m); err != nil {
			t.Fatalf("add slot %d: %v", m.Slot, err)
		}
	}
	want := []int{1, 4, 6}
	for i, m := range q.Missions {
		if m.Slot != want[i] {
			t.Fatalf("missions out of order: got slot %d at index %d", m.Slot, i)
		}
	}
}

func TestRemoveMission(t *testing.T) {
	q := &DailyQuest{}
	_ = q.AddMission(pendingMission(4, 40))

	if err := q.RemoveMission(5); err != ErrMissionNotFound {
		t.Fatalf("expected ErrMissionNotFound, got %v", err)
	}
	if err := q.RemoveMission(4); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if q.MissionAt(4) != nil {
		t.Fatal("mission still present after remove")
	}
}

func TestRemoveCompletedMissionRefused(t *testing.T) {
	now := time.Now()
	q := &DailyQuest{}
	_ = q.AddMission(Mission{Slot: 4, ChallengeID: 40, Status: MissionCompleted, CompletedAt: &now, PointsAwarded: 100})

	if err := q.RemoveMission(4); err != ErrMissionCompleted {
		t.Fatalf("expected ErrMissionCompleted, got %v", err)
	}
	if q.MissionAt(4) == nil {
		t.Fatal("completed mission was removed")
	}
}

func TestReplaceChallengeResetsMission(t *testing.T) {
	q := &DailyQuest{}
	_ = q.AddMission(pendingMission(2, 20))
	m := q.MissionAt(2)
	m.Status = MissionSkipped

	if err := q.ReplaceChallenge(2, 21); err != nil {
		t.Fatalf("replace: %v", err)
	}
	m = q.MissionAt(2)
	if m.ChallengeID != 21 || m.Status != MissionPending || m.CompletedAt != nil || m.PointsAwarded != 0 {
		t.Fatalf("mission not reset: %+v", m)
	}
}

func TestReplaceChallengeGuards(t *testing.T) {
	now := time.Now()
	q := &DailyQuest{}
	_ = q.AddMission(pendingMission(1, 10))
	_ = q.AddMission(Mission{Slot: 2, ChallengeID: 20, Status: MissionCompleted, CompletedAt: &now})

	if err := q.ReplaceChallenge(3, 30); err != ErrMissionNotFound {
		t.Fatalf("empty slot: expected ErrMissionNotFound, got %v", err)
	}
	if err := q.ReplaceChallenge(2, 30); err != ErrMissionCompleted {
		t.Fatalf("completed: expected ErrMissionCompleted, got %v", err)
	}
	if err := q.ReplaceChallenge(1, 20); err != ErrDuplicateChallenge {
		t.Fatalf("duplicate: expected ErrDuplicateChallenge, got %v", err)
	}
}

func TestNextChainSlot(t *testing.T) {
	q := &DailyQuest{}
	if got := q.NextChainSlot(); got != FirstChainSlot {
		t.Fatalf("empty quest: got %d", got)
	}
	_ = q.AddMission(pendingMission(6, 60))
	_ = q.AddMission(pendingMission(7, 70))
	if got := q.NextChainSlot(); got != 8 {
		t.Fatalf("got %d, want 8", got)
	}
}

func TestCompletedCount(t *testing.T) {
	now := time.Now()
	q := &DailyQuest{}
	_ = q.AddMission(pendingMission(1, 10))
	_ = q.AddMission(Mission{Slot: 2, ChallengeID: 20, Status: MissionCompleted, CompletedAt: &now})
	_ = q.AddMission(Mission{Slot: 3, ChallengeID: 30, Status: MissionSkipped})

	if got := q.CompletedCount(); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

func TestDayPrevAndString(t *testing.T) {
	d := Day{Year: 2026, Month: 3, Day: 1}
	if got := d.Prev(); got != (Day{Year: 2026, Month: 2, Day: 28}) {
		t.Fatalf("Prev: got %+v", got)
	}
	if got := d.String(); got != "2026-03-01" {
		t.Fatalf("String: got %q", got)
	}
}
