package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"questline/internal/domain"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func global(id int64, difficulty, points, minUserLevel int) *domain.Challenge {
	return &domain.Challenge{
		ID: id, Kind: domain.ChallengeGlobal, Title: "global", IsActive: true,
		Difficulty: difficulty, Points: points,
		Rules: domain.Rules{MinUserLevel: minUserLevel},
	}
}

func personal(id int64, minUserLevel int) *domain.Challenge {
	return &domain.Challenge{
		ID: id, Kind: domain.ChallengePersonal, Title: "personal", IsActive: true,
		Difficulty: 2, Points: 60,
		Rules: domain.Rules{MinUserLevel: minUserLevel},
	}
}

func chained(id, prereq int64, points int) *domain.Challenge {
	ch := global(id, 3, points, 0)
	ch.Requirements.PrerequisiteChallengeID = &prereq
	return ch
}

func testUser(id int64, level, points int) *domain.User {
	return &domain.User{
		ID: id, Username: "tester", Role: domain.RoleUser, Level: level, IsActive: true,
		Stats: domain.UserStats{TotalPoints: points},
	}
}

func newTestService(catalog *memCatalog, users *memUsers) (*QuestService, *memQuests) {
	quests := newMemQuests(users)
	s := NewQuestService(catalog, quests, users, time.UTC)
	s.now = func() time.Time { return testNow }
	return s, quests
}

func TestInitializeDailyQuest(t *testing.T) {
	catalog := newMemCatalog(
		global(1, 3, 100, 0),
		global(2, 1, 50, 0),
		global(3, 2, 80, 0),
		global(4, 2, 80, 5),      // above user level, must not be picked
		chained(5, 1, 120),       // has prerequisite, must not be picked
		personal(10, 0),          // wrong kind
	)
	users := newMemUsers(testUser(7, 1, 0))
	s, _ := newTestService(catalog, users)

	ctx := context.Background()
	quest, err := s.InitializeDailyQuest(ctx, 7)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if len(quest.Missions) != 3 {
		t.Fatalf("expected 3 missions, got %d", len(quest.Missions))
	}
	for i, m := range quest.Missions {
		if m.Slot != i+1 {
			t.Fatalf("mission %d in slot %d", i, m.Slot)
		}
		if m.Status != domain.MissionPending {
			t.Fatalf("mission %d status %s", i, m.Status)
		}
		if m.ChallengeID == 4 || m.ChallengeID == 5 || m.ChallengeID == 10 {
			t.Fatalf("ineligible challenge %d assigned", m.ChallengeID)
		}
	}
	if catalog.assigned[1] != 1 || catalog.assigned[2] != 1 || catalog.assigned[3] != 1 {
		t.Fatalf("assignment counters not bumped: %v", catalog.assigned)
	}
}

func TestInitializeDailyQuestIdempotent(t *testing.T) {
	catalog := newMemCatalog(global(1, 1, 50, 0), global(2, 1, 50, 0), global(3, 1, 50, 0))
	users := newMemUsers(testUser(7, 1, 0))
	s, _ := newTestService(catalog, users)

	ctx := context.Background()
	first, err := s.InitializeDailyQuest(ctx, 7)
	if err != nil {
		t.Fatalf("first initialize: %v", err)
	}
	second, err := s.InitializeDailyQuest(ctx, 7)
	if err != nil {
		t.Fatalf("second initialize: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("different quests: %d vs %d", first.ID, second.ID)
	}
	if len(second.Missions) != 3 {
		t.Fatalf("missions changed: %d", len(second.Missions))
	}
	for i := range first.Missions {
		if first.Missions[i].ChallengeID != second.Missions[i].ChallengeID {
			t.Fatal("second initialize re-rolled missions")
		}
	}
	for id, n := range catalog.assigned {
		if n != 1 {
			t.Fatalf("challenge %d assigned %d times", id, n)
		}
	}
}

func TestInitializeWithShortCatalog(t *testing.T) {
	// only one eligible global: fewer missions, no placeholders
	catalog := newMemCatalog(global(1, 1, 50, 0))
	users := newMemUsers(testUser(7, 1, 0))
	s, _ := newTestService(catalog, users)

	quest, err := s.InitializeDailyQuest(context.Background(), 7)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if len(quest.Missions) != 1 {
		t.Fatalf("expected 1 mission, got %d", len(quest.Missions))
	}
}

func TestAssignPersonalChallenge(t *testing.T) {
	catalog := newMemCatalog(global(1, 1, 50, 0), personal(10, 0))
	users := newMemUsers(testUser(7, 1, 0))
	s, _ := newTestService(catalog, users)
	ctx := context.Background()

	if _, err := s.AssignPersonalChallenge(ctx, 7, 10, 4); !errors.Is(err, domain.ErrQuestNotInitialized) {
		t.Fatalf("before init: expected ErrQuestNotInitialized, got %v", err)
	}

	if _, err := s.InitializeDailyQuest(ctx, 7); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	quest, err := s.AssignPersonalChallenge(ctx, 7, 10, 4)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	m := quest.MissionAt(4)
	if m == nil || m.ChallengeID != 10 || m.Type != domain.ChallengePersonal {
		t.Fatalf("bad mission: %+v", m)
	}
}

func TestAssignPersonalChallengeGuards(t *testing.T) {
	inactive := personal(11, 0)
	inactive.IsActive = false

	catalog := newMemCatalog(global(1, 1, 50, 0), personal(10, 0), inactive, personal(12, 5))
	users := newMemUsers(testUser(7, 1, 0))
	s, _ := newTestService(catalog, users)
	ctx := context.Background()

	if _, err := s.InitializeDailyQuest(ctx, 7); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	cases := []struct {
		name        string
		challengeID int64
		slot        int
		want        error
	}{
		{"slot below range", 10, 3, domain.ErrInvalidSlot},
		{"slot above range", 10, 6, domain.ErrInvalidSlot},
		{"unknown challenge", 999, 4, domain.ErrChallengeNotFound},
		{"inactive", 11, 4, domain.ErrChallengeInactive},
		{"global kind", 1, 4, domain.ErrWrongChallengeKind},
		{"level gate", 12, 4, domain.ErrInsufficientLevel},
	}
	for _, tc := range cases {
		if _, err := s.AssignPersonalChallenge(ctx, 7, tc.challengeID, tc.slot); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if _, err := s.AssignPersonalChallenge(ctx, 7, 10, 4); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := s.AssignPersonalChallenge(ctx, 7, 12, 4); !errors.Is(err, domain.ErrInsufficientLevel) {
		t.Fatalf("guard order: level gate should fire before slot check, got %v", err)
	}
	if _, err := s.AssignPersonalChallenge(ctx, 7, 10, 5); !errors.Is(err, domain.ErrDuplicateChallenge) {
		t.Fatalf("duplicate: got %v", err)
	}
}

func TestUnassignPersonalChallenge(t *testing.T) {
	catalog := newMemCatalog(global(1, 1, 50, 0), personal(10, 0))
	users := newMemUsers(testUser(7, 1, 0))
	s, _ := newTestService(catalog, users)
	ctx := context.Background()

	if _, err := s.InitializeDailyQuest(ctx, 7); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := s.AssignPersonalChallenge(ctx, 7, 10, 4); err != nil {
		t.Fatalf("assign: %v", err)
	}

	quest, err := s.UnassignPersonalChallenge(ctx, 7, 4)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if quest.MissionAt(4) != nil {
		t.Fatal("slot 4 still occupied")
	}

	if _, err := s.UnassignPersonalChallenge(ctx, 7, 1); !errors.Is(err, domain.ErrInvalidSlot) {
		t.Fatalf("global slot: expected ErrInvalidSlot, got %v", err)
	}
}

func TestRerollGlobalMission(t *testing.T) {
	catalog := newMemCatalog(
		global(1, 1, 50, 0), global(2, 1, 50, 0), global(3, 1, 50, 0),
		global(4, 2, 80, 0), global(5, 2, 80, 0), global(6, 2, 80, 0), global(7, 2, 80, 0),
	)
	users := newMemUsers(testUser(7, 1, 0))
	s, _ := newTestService(catalog, users)
	ctx := context.Background()

	quest, err := s.InitializeDailyQuest(ctx, 7)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	original := quest.MissionAt(1).ChallengeID

	res, err := s.RerollGlobalMission(ctx, 7, 1)
	if err != nil {
		t.Fatalf("reroll: %v", err)
	}
	if res.NewMission.ChallengeID == original {
		t.Fatal("reroll kept the same challenge")
	}
	if res.NewMission.Status != domain.MissionPending {
		t.Fatalf("new mission status %s", res.NewMission.Status)
	}
	if res.RerollsRemaining != domain.MaxRerollsPerDay-1 {
		t.Fatalf("rerolls remaining %d", res.RerollsRemaining)
	}
	if res.Quest.HasChallenge(original) {
		t.Fatal("old challenge still assigned")
	}

	// budget is shared across slots
	if _, err := s.RerollGlobalMission(ctx, 7, 2); err != nil {
		t.Fatalf("second reroll: %v", err)
	}
	if _, err := s.RerollGlobalMission(ctx, 7, 3); err != nil {
		t.Fatalf("third reroll: %v", err)
	}
	if _, err := s.RerollGlobalMission(ctx, 7, 1); !errors.Is(err, domain.ErrRerollLimitReached) {
		t.Fatalf("fourth reroll: expected ErrRerollLimitReached, got %v", err)
	}
}

func TestRerollGuards(t *testing.T) {
	catalog := newMemCatalog(global(1, 1, 50, 0), global(2, 1, 50, 0), global(3, 1, 50, 0))
	users := newMemUsers(testUser(7, 1, 0))
	s, _ := newTestService(catalog, users)
	ctx := context.Background()

	if _, err := s.InitializeDailyQuest(ctx, 7); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if _, err := s.RerollGlobalMission(ctx, 7, 4); !errors.Is(err, domain.ErrInvalidSlot) {
		t.Fatalf("personal slot: expected ErrInvalidSlot, got %v", err)
	}

	// catalog exhausted: every global is already assigned today
	if _, err := s.RerollGlobalMission(ctx, 7, 1); !errors.Is(err, domain.ErrNoEligibleChallenge) {
		t.Fatalf("expected ErrNoEligibleChallenge, got %v", err)
	}

	if _, err := s.CompleteMission(ctx, 7, 2); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := s.RerollGlobalMission(ctx, 7, 2); !errors.Is(err, domain.ErrMissionCompleted) {
		t.Fatalf("completed mission: expected ErrMissionCompleted, got %v", err)
	}
}

func TestCompleteMissionPoints(t *testing.T) {
	catalog := newMemCatalog(global(1, 3, 100, 0))
	users := newMemUsers(testUser(7, 1, 0))
	s, _ := newTestService(catalog, users)
	ctx := context.Background()

	if _, err := s.InitializeDailyQuest(ctx, 7); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	res, err := s.CompleteMission(ctx, 7, 1)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	// difficulty 3 carries a 50% bonus
	if res.Points.Base != 100 || res.Points.Bonus != 50 || res.Points.Total != 150 {
		t.Fatalf("points: %+v", res.Points)
	}
	if res.UserStats.TotalPoints != 150 || res.UserStats.TotalCompleted != 1 {
		t.Fatalf("user stats: %+v", res.UserStats)
	}
	if res.UserStats.CurrentStreak != 1 {
		t.Fatalf("streak: %d", res.UserStats.CurrentStreak)
	}

	m := res.Quest.MissionAt(1)
	if m.Status != domain.MissionCompleted || m.PointsAwarded != 150 || m.CompletedAt == nil {
		t.Fatalf("mission not marked: %+v", m)
	}

	// 150 points crosses the 132 threshold for level 2
	if !res.LeveledUp || res.LevelInfo.CurrentLevel != 2 {
		t.Fatalf("expected level up to 2, got %+v", res.LevelInfo)
	}
	if catalog.completed[1] != 1 {
		t.Fatalf("completion counter: %v", catalog.completed)
	}

	// completion is terminal
	if _, err := s.CompleteMission(ctx, 7, 1); !errors.Is(err, domain.ErrMissionCompleted) {
		t.Fatalf("second complete: expected ErrMissionCompleted, got %v", err)
	}
}

func TestCompleteMissionChainUnlock(t *testing.T) {
	catalog := newMemCatalog(
		global(1, 1, 100, 0),
		chained(20, 1, 120),
	)
	users := newMemUsers(testUser(7, 1, 0))
	s, _ := newTestService(catalog, users)
	ctx := context.Background()

	if _, err := s.InitializeDailyQuest(ctx, 7); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	res, err := s.CompleteMission(ctx, 7, 1)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.UnlockedChallenge == nil || res.UnlockedChallenge.ID != 20 {
		t.Fatalf("expected unlock of challenge 20, got %+v", res.UnlockedChallenge)
	}

	m := res.Quest.MissionAt(domain.FirstChainSlot)
	if m == nil || m.ChallengeID != 20 || m.Status != domain.MissionPending {
		t.Fatalf("chain mission: %+v", m)
	}
	if res.Quest.PendingChainPoints != 120 {
		t.Fatalf("pending chain points: %d", res.Quest.PendingChainPoints)
	}
	if catalog.assigned[20] != 1 {
		t.Fatalf("unlock not counted as assignment: %v", catalog.assigned)
	}
}

func TestChainUnlockLevelGate(t *testing.T) {
	locked := chained(20, 1, 120)
	locked.Rules.MinUserLevel = 50

	catalog := newMemCatalog(global(1, 1, 100, 0), locked)
	users := newMemUsers(testUser(7, 1, 0))
	s, _ := newTestService(catalog, users)
	ctx := context.Background()

	if _, err := s.InitializeDailyQuest(ctx, 7); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	res, err := s.CompleteMission(ctx, 7, 1)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.UnlockedChallenge != nil {
		t.Fatalf("level-gated challenge unlocked: %+v", res.UnlockedChallenge)
	}
	if res.Quest.MissionAt(domain.FirstChainSlot) != nil {
		t.Fatal("chain slot occupied despite level gate")
	}
}

func TestSkipMission(t *testing.T) {
	catalog := newMemCatalog(global(1, 1, 50, 0))
	users := newMemUsers(testUser(7, 1, 0))
	s, _ := newTestService(catalog, users)
	ctx := context.Background()

	if _, err := s.InitializeDailyQuest(ctx, 7); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	quest, err := s.SkipMission(ctx, 7, 1)
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if quest.MissionAt(1).Status != domain.MissionSkipped {
		t.Fatalf("status: %s", quest.MissionAt(1).Status)
	}

	// no points for skipping
	u, _ := users.GetByID(ctx, 7)
	if u.Stats.TotalPoints != 0 {
		t.Fatalf("points awarded on skip: %d", u.Stats.TotalPoints)
	}

	if _, err := s.SkipMission(ctx, 7, 2); !errors.Is(err, domain.ErrMissionNotFound) {
		t.Fatalf("empty slot: expected ErrMissionNotFound, got %v", err)
	}
}

func TestStreakContinuesAfterYesterdayCompletion(t *testing.T) {
	catalog := newMemCatalog(global(1, 1, 50, 0))
	users := newMemUsers(testUser(7, 1, 0))
	s, quests := newTestService(catalog, users)
	ctx := context.Background()

	// yesterday's quest with one completed mission, streak already at 4
	yesterday := s.Today().Prev()
	done := testNow.AddDate(0, 0, -1)
	quests.quests[questKey{7, yesterday}] = &domain.DailyQuest{
		ID: 99, UserID: 7, Day: yesterday,
		Missions: []domain.Mission{{Slot: 1, ChallengeID: 2, Status: domain.MissionCompleted, CompletedAt: &done}},
	}
	users.users[7].Stats.CurrentStreak = 4

	if _, err := s.InitializeDailyQuest(ctx, 7); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	res, err := s.CompleteMission(ctx, 7, 1)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.UserStats.CurrentStreak != 5 {
		t.Fatalf("streak: got %d, want 5", res.UserStats.CurrentStreak)
	}
}

func TestStreakResetsAfterGap(t *testing.T) {
	catalog := newMemCatalog(global(1, 1, 50, 0))
	users := newMemUsers(testUser(7, 1, 0))
	s, _ := newTestService(catalog, users)
	ctx := context.Background()

	// streak from some past run, but nothing completed yesterday
	users.users[7].Stats.CurrentStreak = 9

	if _, err := s.InitializeDailyQuest(ctx, 7); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	res, err := s.CompleteMission(ctx, 7, 1)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.UserStats.CurrentStreak != 1 {
		t.Fatalf("streak: got %d, want 1", res.UserStats.CurrentStreak)
	}
}

func TestCompleteMissionConflictSurfaces(t *testing.T) {
	catalog := newMemCatalog(global(1, 1, 50, 0))
	users := newMemUsers(testUser(7, 1, 0))
	s, quests := newTestService(catalog, users)
	ctx := context.Background()

	if _, err := s.InitializeDailyQuest(ctx, 7); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	quests.failNextSave = true
	if _, err := s.CompleteMission(ctx, 7, 1); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// the loser's write must not have landed
	u, _ := users.GetByID(ctx, 7)
	if u.Stats.TotalPoints != 0 || u.Stats.TotalCompleted != 0 {
		t.Fatalf("stats leaked on conflict: %+v", u.Stats)
	}
}

func TestHistory(t *testing.T) {
	catalog := newMemCatalog(global(1, 3, 100, 0), global(2, 1, 50, 0), global(3, 1, 50, 0))
	users := newMemUsers(testUser(7, 1, 0))
	s, _ := newTestService(catalog, users)
	ctx := context.Background()

	if _, err := s.InitializeDailyQuest(ctx, 7); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := s.CompleteMission(ctx, 7, 1); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := s.SkipMission(ctx, 7, 2); err != nil {
		t.Fatalf("skip: %v", err)
	}

	history, stats, err := s.History(ctx, 7, 30)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length: %d", len(history))
	}
	if stats.TotalCompleted != 1 || stats.TotalSkipped != 1 || stats.TotalPoints != 150 {
		t.Fatalf("stats: %+v", stats)
	}
	if stats.AveragePerDay != 1 {
		t.Fatalf("average: %v", stats.AveragePerDay)
	}
}

func TestUpdateUserLevelIfNeeded(t *testing.T) {
	users := newMemUsers(testUser(7, 1, 250))
	s, _ := newTestService(newMemCatalog(), users)
	ctx := context.Background()

	u, _ := users.GetByID(ctx, 7)
	bumped, err := s.UpdateUserLevelIfNeeded(ctx, u)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	// 250 points is past the 233 threshold for level 3
	if !bumped || u.Level != 3 {
		t.Fatalf("level: bumped=%v level=%d", bumped, u.Level)
	}

	bumped, err = s.UpdateUserLevelIfNeeded(ctx, u)
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if bumped {
		t.Fatal("second call bumped again")
	}
}
