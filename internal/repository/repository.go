package repository

import (
	"context"

	"questline/internal/domain"
)

// ChallengeCatalog is the catalog contract the quest engine consumes.
// Counter increments are best-effort statistics and may be approximate.
type ChallengeCatalog interface {
	GetByID(ctx context.Context, id int64) (*domain.Challenge, error)
	SampleRandom(ctx context.Context, filter domain.ChallengeFilter, count int) ([]*domain.Challenge, error)
	FindOneMatching(ctx context.Context, filter domain.ChallengeFilter) (*domain.Challenge, error)
	IncrementAssigned(ctx context.Context, id int64) error
	IncrementCompleted(ctx context.Context, id int64) error
}

// UserStore persists users. Save writes level and stats together in a single
// statement: a level bump must never land without its stats update.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Save(ctx context.Context, u *domain.User) error
}

// DailyQuestStore persists the per-(user, day) aggregate. Save is guarded by
// the aggregate's revision and returns domain.ErrConflict when a concurrent
// writer got there first. SaveWithUser commits the quest and the user in one
// transaction, which completeMission requires.
type DailyQuestStore interface {
	FindByUserAndDay(ctx context.Context, userID int64, day domain.Day) (*domain.DailyQuest, error)
	Create(ctx context.Context, q *domain.DailyQuest) error
	Save(ctx context.Context, q *domain.DailyQuest) error
	SaveWithUser(ctx context.Context, q *domain.DailyQuest, u *domain.User) error
	FindSince(ctx context.Context, userID int64, from domain.Day) ([]*domain.DailyQuest, error)
}
