package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"questline/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DailyQuestRepository stores the aggregate as one row per (user, day) with
// the missions document in a jsonb column. Saves are guarded by the revision
// column so two concurrent lifecycle calls cannot both win a read-modify-write.
type DailyQuestRepository struct {
	db *pgxpool.Pool
}

func NewDailyQuestRepository(db *pgxpool.Pool) *DailyQuestRepository {
	return &DailyQuestRepository{db: db}
}

func (r *DailyQuestRepository) FindByUserAndDay(ctx context.Context, userID int64, day domain.Day) (*domain.DailyQuest, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, day, missions, reroll_count, pending_chain_points, revision, created_at
		 FROM daily_quests
		 WHERE user_id = $1 AND day = $2`,
		userID, day.Time())
	return scanDailyQuest(row)
}

func (r *DailyQuestRepository) Create(ctx context.Context, q *domain.DailyQuest) error {
	missions, err := json.Marshal(q.Missions)
	if err != nil {
		return fmt.Errorf("marshal missions: %w", err)
	}
	err = r.db.QueryRow(ctx,
		`INSERT INTO daily_quests (user_id, day, missions, reroll_count, pending_chain_points)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, revision, created_at`,
		q.UserID, q.Day.Time(), missions, q.RerollCount, q.PendingChainPoints,
	).Scan(&q.ID, &q.Revision, &q.CreatedAt)
	if err != nil {
		var pgErr interface{ SQLState() string }
		if errors.As(err, &pgErr) && pgErr.SQLState() == "23505" {
			// another request initialized the same day first
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

// Save persists the aggregate if nobody else has written it since it was
// read. On a revision mismatch the caller gets domain.ErrConflict and decides
// whether to re-read and retry.
func (r *DailyQuestRepository) Save(ctx context.Context, q *domain.DailyQuest) error {
	missions, err := json.Marshal(q.Missions)
	if err != nil {
		return fmt.Errorf("marshal missions: %w", err)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE daily_quests
		 SET missions = $1, reroll_count = $2, pending_chain_points = $3, revision = revision + 1
		 WHERE id = $4 AND revision = $5`,
		missions, q.RerollCount, q.PendingChainPoints, q.ID, q.Revision,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	q.Revision++
	return nil
}

// SaveWithUser commits the quest and the user in a single transaction.
// Completing a mission must never award points without marking the mission
// completed, or the other way around.
func (r *DailyQuestRepository) SaveWithUser(ctx context.Context, q *domain.DailyQuest, u *domain.User) error {
	missions, err := json.Marshal(q.Missions)
	if err != nil {
		return fmt.Errorf("marshal missions: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE daily_quests
		 SET missions = $1, reroll_count = $2, pending_chain_points = $3, revision = revision + 1
		 WHERE id = $4 AND revision = $5`,
		missions, q.RerollCount, q.PendingChainPoints, q.ID, q.Revision,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}

	tag, err = tx.Exec(ctx,
		`UPDATE users
		 SET level = $1, total_points = $2, weekly_points = $3, total_completed = $4,
			 current_streak = $5, last_active = $6
		 WHERE id = $7`,
		u.Level, u.Stats.TotalPoints, u.Stats.WeeklyPoints, u.Stats.TotalCompleted,
		u.Stats.CurrentStreak, u.LastActive, u.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	q.Revision++
	return nil
}

// FindSince returns the user's quests from the given day onward, newest first.
func (r *DailyQuestRepository) FindSince(ctx context.Context, userID int64, from domain.Day) ([]*domain.DailyQuest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, day, missions, reroll_count, pending_chain_points, revision, created_at
		 FROM daily_quests
		 WHERE user_id = $1 AND day >= $2
		 ORDER BY day DESC`,
		userID, from.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.DailyQuest
	for rows.Next() {
		q, err := scanDailyQuest(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, q)
	}
	return res, rows.Err()
}

func scanDailyQuest(row pgx.Row) (*domain.DailyQuest, error) {
	var q domain.DailyQuest
	var day time.Time
	var missions []byte
	err := row.Scan(&q.ID, &q.UserID, &day, &missions, &q.RerollCount,
		&q.PendingChainPoints, &q.Revision, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuestNotFound
		}
		return nil, err
	}
	q.Day = domain.DayOf(day, time.UTC)
	if len(missions) > 0 {
		if err := json.Unmarshal(missions, &q.Missions); err != nil {
			return nil, fmt.Errorf("unmarshal missions: %w", err)
		}
	}
	return &q, nil
}
