package repository

import (
	"context"
	"errors"

	"questline/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEmailTaken = errors.New("email already registered")

const userColumns = `id, username, email, password_hash, role, level, is_active,
	display_name, COALESCE(avatar_url, ''), is_public, zone,
	total_points, weekly_points, total_completed, current_streak,
	last_active, created_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)
	return scanUser(row)
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, role, display_name, avatar_url, is_public, zone)
		 VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)
		 RETURNING id, level, last_active, created_at`,
		u.Username, u.Email, u.PasswordHash, u.Role,
		u.Profile.DisplayName, u.Profile.AvatarURL, u.Profile.IsPublic, u.Profile.Zone,
	).Scan(&u.ID, &u.Level, &u.LastActive, &u.CreatedAt)
	if err != nil {
		var pgErr interface{ SQLState() string }
		if errors.As(err, &pgErr) && pgErr.SQLState() == "23505" {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// Save persists the quest-engine mutable fields. Level and stats land in one
// statement so a level bump can never be split from its stats update.
func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	tag, err := r.db.Exec(ctx,
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
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u *domain.User) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET display_name = $1, avatar_url = $2, is_public = $3, zone = $4 WHERE id = $5`,
		u.Profile.DisplayName, u.Profile.AvatarURL, u.Profile.IsPublic, u.Profile.Zone, u.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SearchPublic finds public profiles whose username or display name matches
// the query (case-insensitive substring).
func (r *UserRepository) SearchPublic(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE is_public = true AND is_active = true
		   AND (username ILIKE '%' || $1 || '%' OR display_name ILIKE '%' || $1 || '%')
		 ORDER BY total_points DESC
		 LIMIT $2`,
		query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// RankedUser is one leaderboard row.
type RankedUser struct {
	Rank int          `json:"rank"`
	User *domain.User `json:"user"`
}

// GlobalTop returns the top users by total points.
func (r *UserRepository) GlobalTop(ctx context.Context, limit int) ([]RankedUser, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE is_active = true
		 ORDER BY total_points DESC, id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users, err := scanUsers(rows)
	if err != nil {
		return nil, err
	}
	res := make([]RankedUser, 0, len(users))
	for i, u := range users {
		res = append(res, RankedUser{Rank: i + 1, User: u})
	}
	return res, nil
}

// GlobalRank returns the user's position by total points among active users.
func (r *UserRepository) GlobalRank(ctx context.Context, userID int64) (int, error) {
	var rank int
	err := r.db.QueryRow(ctx, `
		WITH ranked AS (
			SELECT id, RANK() OVER (ORDER BY total_points DESC) AS rank
			FROM users WHERE is_active = true
		)
		SELECT rank FROM ranked WHERE id = $1`, userID).Scan(&rank)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}
	return rank, nil
}

// ZoneTop returns the top users by total points within a zone.
func (r *UserRepository) ZoneTop(ctx context.Context, zone string, limit int) ([]RankedUser, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE is_active = true AND zone = $1
		 ORDER BY total_points DESC, id
		 LIMIT $2`, zone, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users, err := scanUsers(rows)
	if err != nil {
		return nil, err
	}
	res := make([]RankedUser, 0, len(users))
	for i, u := range users {
		res = append(res, RankedUser{Rank: i + 1, User: u})
	}
	return res, nil
}

// ZoneRank returns the user's position within their zone.
func (r *UserRepository) ZoneRank(ctx context.Context, userID int64, zone string) (int, error) {
	var rank int
	err := r.db.QueryRow(ctx, `
		WITH ranked AS (
			SELECT id, RANK() OVER (ORDER BY total_points DESC) AS rank
			FROM users WHERE is_active = true AND zone = $1
		)
		SELECT rank FROM ranked WHERE id = $2`, zone, userID).Scan(&rank)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}
	return rank, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Level, &u.IsActive,
		&u.Profile.DisplayName, &u.Profile.AvatarURL, &u.Profile.IsPublic, &u.Profile.Zone,
		&u.Stats.TotalPoints, &u.Stats.WeeklyPoints, &u.Stats.TotalCompleted, &u.Stats.CurrentStreak,
		&u.LastActive, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func scanUsers(rows pgx.Rows) ([]*domain.User, error) {
	var res []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}
