package service

import (
	"context"
	"errors"
	"time"

	"questline/internal/domain"
	"questline/internal/levels"
	"questline/internal/logger"
	"questline/internal/metrics"
	"questline/internal/repository"
)

// QuestService owns the daily quest engine: slot provisioning, the mission
// state machine, chain unlocks and the point/level/streak updates that follow
// a completion.
type QuestService struct {
	catalog repository.ChallengeCatalog
	quests  repository.DailyQuestStore
	users   repository.UserStore
	loc     *time.Location
	now     func() time.Time
}

func NewQuestService(catalog repository.ChallengeCatalog, quests repository.DailyQuestStore, users repository.UserStore, loc *time.Location) *QuestService {
	if loc == nil {
		loc = time.UTC
	}
	return &QuestService{
		catalog: catalog,
		quests:  quests,
		users:   users,
		loc:     loc,
		now:     time.Now,
	}
}

// Today returns the current day key in the service's reference timezone.
func (s *QuestService) Today() domain.Day {
	return domain.DayOf(s.now(), s.loc)
}

// globalFilter is the eligibility filter for auto-assigned and rerolled
// global missions: active global challenges the user's level can take, with
// no prerequisite (chained challenges enter only through unlocks).
func globalFilter(userLevel int, exclude []int64) domain.ChallengeFilter {
	return domain.ChallengeFilter{
		Kind:            domain.ChallengeGlobal,
		ActiveOnly:      true,
		MaxMinUserLevel: userLevel,
		NoPrerequisite:  true,
		ExcludeIDs:      exclude,
	}
}

// InitializeDailyQuest returns today's quest, creating and provisioning it on
// first access. Idempotent per calendar day: an existing quest is returned
// unchanged, never re-rolled.
func (s *QuestService) InitializeDailyQuest(ctx context.Context, userID int64) (*domain.DailyQuest, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	quest, err := s.quests.FindByUserAndDay(ctx, userID, today)
	if err == nil {
		return quest, nil
	}
	if !errors.Is(err, domain.ErrQuestNotFound) {
		return nil, err
	}

	// up to 3 distinct globals; fewer slots if the catalog runs short,
	// never placeholders
	picked, err := s.catalog.SampleRandom(ctx, globalFilter(user.Level, nil), domain.LastGlobalSlot)
	if err != nil {
		return nil, err
	}

	quest = &domain.DailyQuest{UserID: userID, Day: today}
	for i, ch := range picked {
		_ = quest.AddMission(domain.Mission{
			Slot:        domain.FirstGlobalSlot + i,
			ChallengeID: ch.ID,
			Type:        domain.ChallengeGlobal,
			Status:      domain.MissionPending,
		})
	}

	if err := s.quests.Create(ctx, quest); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// lost the creation race; the winner's quest is the day's quest
			return s.quests.FindByUserAndDay(ctx, userID, today)
		}
		return nil, err
	}

	for _, ch := range picked {
		s.bumpAssigned(ctx, ch.ID)
	}
	return quest, nil
}

// AssignPersonalChallenge places a personal challenge into slot 4 or 5.
// Preconditions are checked in a fixed order so callers always see the same
// failure for the same state.
func (s *QuestService) AssignPersonalChallenge(ctx context.Context, userID, challengeID int64, slot int) (*domain.DailyQuest, error) {
	if slot < domain.FirstPersonalSlot || slot > domain.LastPersonalSlot {
		return nil, domain.ErrInvalidSlot
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	challenge, err := s.catalog.GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.IsActive {
		return nil, domain.ErrChallengeInactive
	}
	if challenge.Kind != domain.ChallengePersonal {
		return nil, domain.ErrWrongChallengeKind
	}
	if user.Level < challenge.Rules.MinUserLevel {
		return nil, domain.ErrInsufficientLevel
	}

	quest, err := s.quests.FindByUserAndDay(ctx, userID, s.Today())
	if err != nil {
		if errors.Is(err, domain.ErrQuestNotFound) {
			return nil, domain.ErrQuestNotInitialized
		}
		return nil, err
	}

	if err := quest.AddMission(domain.Mission{
		Slot:        slot,
		ChallengeID: challenge.ID,
		Type:        domain.ChallengePersonal,
		Status:      domain.MissionPending,
	}); err != nil {
		return nil, err
	}

	if err := s.quests.Save(ctx, quest); err != nil {
		return nil, err
	}

	s.bumpAssigned(ctx, challenge.ID)
	return quest, nil
}

// UnassignPersonalChallenge frees slot 4 or 5. Completed missions stay.
func (s *QuestService) UnassignPersonalChallenge(ctx context.Context, userID int64, slot int) (*domain.DailyQuest, error) {
	if slot < domain.FirstPersonalSlot || slot > domain.LastPersonalSlot {
		return nil, domain.ErrInvalidSlot
	}

	quest, err := s.quests.FindByUserAndDay(ctx, userID, s.Today())
	if err != nil {
		return nil, err
	}

	if err := quest.RemoveMission(slot); err != nil {
		return nil, err
	}

	if err := s.quests.Save(ctx, quest); err != nil {
		return nil, err
	}
	return quest, nil
}

// RerollResult reports a successful reroll.
type RerollResult struct {
	Quest            *domain.DailyQuest `json:"daily_quest"`
	NewMission       *domain.Mission    `json:"new_mission"`
	RerollsRemaining int                `json:"rerolls_remaining"`
}

// RerollGlobalMission replaces the challenge in one of the global slots,
// rate-limited to MaxRerollsPerDay across all slots.
func (s *QuestService) RerollGlobalMission(ctx context.Context, userID int64, slot int) (*RerollResult, error) {
	if slot < domain.FirstGlobalSlot || slot > domain.LastGlobalSlot {
		return nil, domain.ErrInvalidSlot
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	quest, err := s.quests.FindByUserAndDay(ctx, userID, s.Today())
	if err != nil {
		return nil, err
	}

	if quest.RerollCount >= domain.MaxRerollsPerDay {
		return nil, domain.ErrRerollLimitReached
	}

	mission := quest.MissionAt(slot)
	if mission == nil {
		return nil, domain.ErrMissionNotFound
	}
	if mission.Status == domain.MissionCompleted {
		return nil, domain.ErrMissionCompleted
	}

	// replacement must not duplicate anything already assigned today
	replacements, err := s.catalog.SampleRandom(ctx, globalFilter(user.Level, quest.AssignedChallengeIDs()), 1)
	if err != nil {
		return nil, err
	}
	if len(replacements) == 0 {
		return nil, domain.ErrNoEligibleChallenge
	}
	replacement := replacements[0]

	if err := quest.ReplaceChallenge(slot, replacement.ID); err != nil {
		return nil, err
	}
	quest.RerollCount++

	if err := s.quests.Save(ctx, quest); err != nil {
		return nil, err
	}

	s.bumpAssigned(ctx, replacement.ID)
	metrics.Rerolls.Inc()

	return &RerollResult{
		Quest:            quest,
		NewMission:       quest.MissionAt(slot),
		RerollsRemaining: domain.MaxRerollsPerDay - quest.RerollCount,
	}, nil
}

// PointsBreakdown itemizes a completion reward.
type PointsBreakdown struct {
	Base  int `json:"base"`
	Bonus int `json:"bonus"`
	Total int `json:"total"`
}

// CompletionResult is everything a client needs after completing a mission.
type CompletionResult struct {
	Points            PointsBreakdown      `json:"points"`
	Quest             *domain.DailyQuest   `json:"daily_quest"`
	UserStats         domain.UserStats     `json:"user_stats"`
	LevelInfo         levels.UserLevelInfo `json:"level_info"`
	LeveledUp         bool                 `json:"leveled_up"`
	UnlockedChallenge *domain.Challenge    `json:"unlocked_challenge,omitempty"`
}

// CompleteMission marks the mission completed, awards points, updates the
// user's stats, streak and level, and unlocks a chained challenge if the
// completed one is a prerequisite. The mission and user writes commit in a
// single transaction; completion is terminal.
func (s *QuestService) CompleteMission(ctx context.Context, userID int64, slot int) (*CompletionResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	quest, err := s.quests.FindByUserAndDay(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	mission := quest.MissionAt(slot)
	if mission == nil {
		return nil, domain.ErrMissionNotFound
	}
	if mission.Status == domain.MissionCompleted {
		return nil, domain.ErrMissionCompleted
	}

	challenge, err := s.catalog.GetByID(ctx, mission.ChallengeID)
	if err != nil {
		return nil, err
	}

	base := challenge.Points
	bonus := levels.BonusPoints(base, challenge.Difficulty)
	total := base + bonus

	now := s.now()
	mission.Status = domain.MissionCompleted
	mission.CompletedAt = &now
	mission.PointsAwarded = total

	user.Stats.TotalPoints += total
	user.Stats.WeeklyPoints += total
	user.Stats.TotalCompleted++
	user.LastActive = now
	s.advanceStreak(ctx, user, today)

	info := levels.CalculateUserLevelInfo(user.Level, user.Stats.TotalPoints)
	leveledUp := info.IsLevelUp
	if leveledUp {
		user.Level = info.CurrentLevel
	}

	unlocked := s.findChainUnlock(ctx, quest, challenge, user.Level)
	if unlocked != nil {
		if err := quest.AddMission(domain.Mission{
			Slot:        quest.NextChainSlot(),
			ChallengeID: unlocked.ID,
			Type:        unlocked.Kind,
			Status:      domain.MissionPending,
		}); err != nil {
			unlocked = nil
		} else {
			quest.PendingChainPoints += unlocked.Points
		}
	}

	// one commit: awarding points without marking the mission (or vice
	// versa) must be impossible
	if err := s.quests.SaveWithUser(ctx, quest, user); err != nil {
		return nil, err
	}

	s.bumpCompleted(ctx, challenge.ID)
	if unlocked != nil {
		s.bumpAssigned(ctx, unlocked.ID)
		metrics.ChainUnlocks.Inc()
	}
	metrics.MissionsCompleted.WithLabelValues(string(mission.Type)).Inc()
	if leveledUp {
		metrics.LevelUps.Inc()
		logger.Info("user leveled up", "user_id", user.ID, "level", user.Level)
	}

	return &CompletionResult{
		Points:            PointsBreakdown{Base: base, Bonus: bonus, Total: total},
		Quest:             quest,
		UserStats:         user.Stats,
		LevelInfo:         info,
		LeveledUp:         leveledUp,
		UnlockedChallenge: unlocked,
	}, nil
}

// SkipMission marks a pending mission skipped. No points, terminal.
func (s *QuestService) SkipMission(ctx context.Context, userID int64, slot int) (*domain.DailyQuest, error) {
	quest, err := s.quests.FindByUserAndDay(ctx, userID, s.Today())
	if err != nil {
		return nil, err
	}

	mission := quest.MissionAt(slot)
	if mission == nil {
		return nil, domain.ErrMissionNotFound
	}
	if mission.Status == domain.MissionCompleted {
		return nil, domain.ErrMissionCompleted
	}

	mission.Status = domain.MissionSkipped
	if err := s.quests.Save(ctx, quest); err != nil {
		return nil, err
	}

	metrics.MissionsSkipped.Inc()
	return quest, nil
}

// GetToday returns today's quest without provisioning one.
func (s *QuestService) GetToday(ctx context.Context, userID int64) (*domain.DailyQuest, error) {
	return s.quests.FindByUserAndDay(ctx, userID, s.Today())
}

// HistoryStats aggregates a reporting period.
type HistoryStats struct {
	Days           int     `json:"days"`
	TotalCompleted int     `json:"total_completed"`
	TotalPoints    int     `json:"total_points"`
	TotalSkipped   int     `json:"total_skipped"`
	AveragePerDay  float64 `json:"average_per_day"`
}

// History returns the user's quests for the last N days, newest first, with
// aggregate period statistics.
func (s *QuestService) History(ctx context.Context, userID int64, days int) ([]*domain.DailyQuest, HistoryStats, error) {
	if days <= 0 {
		days = 30
	}
	from := domain.DayOf(s.now().AddDate(0, 0, -days), s.loc)

	quests, err := s.quests.FindSince(ctx, userID, from)
	if err != nil {
		return nil, HistoryStats{}, err
	}

	stats := HistoryStats{Days: len(quests)}
	for _, q := range quests {
		for _, m := range q.Missions {
			switch m.Status {
			case domain.MissionCompleted:
				stats.TotalCompleted++
				stats.TotalPoints += m.PointsAwarded
			case domain.MissionSkipped:
				stats.TotalSkipped++
			}
		}
	}
	if len(quests) > 0 {
		stats.AveragePerDay = float64(stats.TotalCompleted) / float64(len(quests))
	}
	return quests, stats, nil
}

// UpdateUserLevelIfNeeded persists a level bump when accumulated points have
// outgrown the stored level. Safe to call redundantly: once the bump is
// saved, further calls are no-ops.
func (s *QuestService) UpdateUserLevelIfNeeded(ctx context.Context, user *domain.User) (bool, error) {
	info := levels.CalculateUserLevelInfo(user.Level, user.Stats.TotalPoints)
	if !info.IsLevelUp {
		return false, nil
	}
	user.Level = info.CurrentLevel
	if err := s.users.Save(ctx, user); err != nil {
		return false, err
	}
	metrics.LevelUps.Inc()
	return true, nil
}

// advanceStreak applies the streak rule: continue a warm streak (yesterday
// had a completion) or start from zero with an automatic increment; anything
// else resets to 1.
func (s *QuestService) advanceStreak(ctx context.Context, user *domain.User, today domain.Day) {
	warm := false
	yesterday, err := s.quests.FindByUserAndDay(ctx, user.ID, today.Prev())
	if err == nil {
		warm = yesterday.CompletedCount() > 0
	}
	if warm || user.Stats.CurrentStreak == 0 {
		user.Stats.CurrentStreak++
	} else {
		user.Stats.CurrentStreak = 1
	}
}

// findChainUnlock looks for one active global challenge chained to the
// completed one that the user's (post-update) level allows and that is not
// already assigned today. Returns nil when there is nothing to unlock.
func (s *QuestService) findChainUnlock(ctx context.Context, quest *domain.DailyQuest, completed *domain.Challenge, userLevel int) *domain.Challenge {
	next, err := s.catalog.FindOneMatching(ctx, domain.ChallengeFilter{
		Kind:            domain.ChallengeGlobal,
		ActiveOnly:      true,
		MaxMinUserLevel: userLevel,
		PrerequisiteID:  &completed.ID,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrChallengeNotFound) {
			logger.Warn("chain unlock lookup failed", "challenge_id", completed.ID, "error", err)
		}
		return nil
	}
	if quest.HasChallenge(next.ID) {
		return nil
	}
	return next
}

// Counter bumps are statistics, not invariants: failures are logged, never
// surfaced to the caller.
func (s *QuestService) bumpAssigned(ctx context.Context, challengeID int64) {
	if err := s.catalog.IncrementAssigned(ctx, challengeID); err != nil {
		logger.Warn("failed to increment times_assigned", "challenge_id", challengeID, "error", err)
	}
}

func (s *QuestService) bumpCompleted(ctx context.Context, challengeID int64) {
	if err := s.catalog.IncrementCompleted(ctx, challengeID); err != nil {
		logger.Warn("failed to increment times_completed", "challenge_id", challengeID, "error", err)
	}
}
