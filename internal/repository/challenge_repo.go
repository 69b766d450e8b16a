package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"questline/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const challengeColumns = `id, kind, owner_id, title, description, category, difficulty, points,
	is_active, tags, min_level, prerequisite_id, max_per_day, min_user_level,
	times_assigned, times_completed, completion_rate, created_at, updated_at`

type ChallengeRepository struct {
	db *pgxpool.Pool
}

func NewChallengeRepository(db *pgxpool.Pool) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

func (r *ChallengeRepository) GetByID(ctx context.Context, id int64) (*domain.Challenge, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, id)
	return scanChallenge(row)
}

// List returns challenges matching the filter, newest first.
func (r *ChallengeRepository) List(ctx context.Context, filter domain.ChallengeFilter, limit int) ([]*domain.Challenge, error) {
	where, args := buildChallengeFilter(filter)
	q := `SELECT ` + challengeColumns + ` FROM challenges` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChallenges(rows)
}

// SampleRandom returns up to count distinct challenges matching the filter,
// picked uniformly without replacement.
func (r *ChallengeRepository) SampleRandom(ctx context.Context, filter domain.ChallengeFilter, count int) ([]*domain.Challenge, error) {
	where, args := buildChallengeFilter(filter)
	q := `SELECT ` + challengeColumns + ` FROM challenges` + where +
		` ORDER BY random() LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, count)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChallenges(rows)
}

// FindOneMatching returns one challenge matching the filter, or
// domain.ErrChallengeNotFound.
func (r *ChallengeRepository) FindOneMatching(ctx context.Context, filter domain.ChallengeFilter) (*domain.Challenge, error) {
	where, args := buildChallengeFilter(filter)
	row := r.db.QueryRow(ctx, `SELECT `+challengeColumns+` FROM challenges`+where+` LIMIT 1`, args...)
	return scanChallenge(row)
}

func (r *ChallengeRepository) Create(ctx context.Context, c *domain.Challenge) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO challenges (kind, owner_id, title, description, category, difficulty, points,
			is_active, tags, min_level, prerequisite_id, max_per_day, min_user_level)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		 RETURNING id, created_at, updated_at`,
		c.Kind, c.OwnerID, c.Title, c.Description, c.Category, c.Difficulty, c.Points,
		c.IsActive, c.Tags, c.Requirements.MinLevel, c.Requirements.PrerequisiteChallengeID,
		c.Rules.MaxPerDay, c.Rules.MinUserLevel,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ChallengeRepository) Update(ctx context.Context, c *domain.Challenge) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE challenges
		 SET title = $1, description = $2, category = $3, difficulty = $4, points = $5,
			 tags = $6, min_level = $7, prerequisite_id = $8, max_per_day = $9,
			 min_user_level = $10, updated_at = now()
		 WHERE id = $11`,
		c.Title, c.Description, c.Category, c.Difficulty, c.Points,
		c.Tags, c.Requirements.MinLevel, c.Requirements.PrerequisiteChallengeID,
		c.Rules.MaxPerDay, c.Rules.MinUserLevel, c.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChallengeNotFound
	}
	return nil
}

// SetActive soft-deletes (false) or reactivates (true) a challenge.
// Challenges are never hard-deleted: history references them.
func (r *ChallengeRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE challenges SET is_active = $1, updated_at = now() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChallengeNotFound
	}
	return nil
}

func (r *ChallengeRepository) IncrementAssigned(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE challenges SET times_assigned = times_assigned + 1 WHERE id = $1`, id)
	return err
}

// IncrementCompleted bumps the completion counter and re-derives the
// completion rate in the same statement.
func (r *ChallengeRepository) IncrementCompleted(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE challenges
		 SET times_completed = times_completed + 1,
			 completion_rate = CASE WHEN times_assigned > 0
				THEN (times_completed + 1)::float / times_assigned * 100
				ELSE 0 END
		 WHERE id = $1`, id)
	return err
}

// CatalogStats is the aggregate view for the challenge stats endpoint.
type CatalogStats struct {
	Total          int64   `json:"total"`
	Active         int64   `json:"active"`
	Global         int64   `json:"global"`
	Personal       int64   `json:"personal"`
	TimesAssigned  int64   `json:"times_assigned"`
	TimesCompleted int64   `json:"times_completed"`
	CompletionRate float64 `json:"completion_rate"`
}

func (r *ChallengeRepository) Stats(ctx context.Context) (*CatalogStats, error) {
	var s CatalogStats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
			   COUNT(*) FILTER (WHERE is_active),
			   COUNT(*) FILTER (WHERE kind = 'global'),
			   COUNT(*) FILTER (WHERE kind = 'personal'),
			   COALESCE(SUM(times_assigned), 0),
			   COALESCE(SUM(times_completed), 0)
		FROM challenges`,
	).Scan(&s.Total, &s.Active, &s.Global, &s.Personal, &s.TimesAssigned, &s.TimesCompleted)
	if err != nil {
		return nil, err
	}
	if s.TimesAssigned > 0 {
		s.CompletionRate = float64(s.TimesCompleted) / float64(s.TimesAssigned) * 100
	}
	return &s, nil
}

// buildChallengeFilter renders the filter conjunction as a WHERE clause.
func buildChallengeFilter(f domain.ChallengeFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, vals ...any) {
		for _, v := range vals {
			args = append(args, v)
			cond = strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1)
		}
		conds = append(conds, cond)
	}

	if f.Kind != "" {
		add("kind = ?", f.Kind)
	}
	if f.ActiveOnly {
		conds = append(conds, "is_active = true")
	}
	if f.MaxMinUserLevel > 0 {
		add("min_user_level <= ?", f.MaxMinUserLevel)
	}
	if f.NoPrerequisite {
		conds = append(conds, "prerequisite_id IS NULL")
	}
	if f.PrerequisiteID != nil {
		add("prerequisite_id = ?", *f.PrerequisiteID)
	}
	if len(f.ExcludeIDs) > 0 {
		add("NOT (id = ANY(?))", f.ExcludeIDs)
	}
	if f.Category != "" {
		add("category = ?", f.Category)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanChallenge(row pgx.Row) (*domain.Challenge, error) {
	var c domain.Challenge
	err := row.Scan(
		&c.ID, &c.Kind, &c.OwnerID, &c.Title, &c.Description, &c.Category,
		&c.Difficulty, &c.Points, &c.IsActive, &c.Tags,
		&c.Requirements.MinLevel, &c.Requirements.PrerequisiteChallengeID,
		&c.Rules.MaxPerDay, &c.Rules.MinUserLevel,
		&c.Stats.TimesAssigned, &c.Stats.TimesCompleted, &c.Stats.CompletionRate,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("scan challenge: %w", err)
	}
	return &c, nil
}

func scanChallenges(rows pgx.Rows) ([]*domain.Challenge, error) {
	var res []*domain.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
