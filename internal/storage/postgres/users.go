package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/pkg/e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewUserRepo(pool *pgxpool.Pool, logger *slog.Logger) *UserRepo {
	return &UserRepo{pool: pool, logger: logger}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	const op = "postgres.User.Create"

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `
INSERT INTO users (id, name, email, password_hash, is_admin, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsAdmin,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

const userColumns = `
id, name, email, password_hash, is_admin, reset_token_hash, reset_token_expires, created_at, updated_at
`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u         domain.User
		tokenHash *string
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.IsAdmin,
		&tokenHash,
		&u.ResetTokenExpires,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tokenHash != nil {
		u.ResetTokenHash = *tokenHash
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "postgres.User.GetByID"

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "postgres.User.GetByEmail"

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return u, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) error {
	const op = "postgres.User.UpdateProfile"

	const query = `
UPDATE users SET name = $2, email = $3, updated_at = $4 WHERE id = $1
`

	tag, err := r.pool.Exec(ctx, query, id, name, email, time.Now().UTC())
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const op = "postgres.User.UpdatePassword"

	const query = `
UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1
`

	tag, err := r.pool.Exec(ctx, query, id, passwordHash, time.Now().UTC())
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error {
	const op = "postgres.User.SetResetToken"

	const query = `
UPDATE users SET reset_token_hash = $2, reset_token_expires = $3, updated_at = $4 WHERE id = $1
`

	tag, err := r.pool.Exec(ctx, query, id, tokenHash, expires, time.Now().UTC())
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	const op = "postgres.User.GetByResetToken"

	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token_hash = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, tokenHash))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return u, nil
}

func (r *UserRepo) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.User.ClearResetToken"

	const query = `
UPDATE users SET reset_token_hash = NULL, reset_token_expires = NULL, updated_at = $2 WHERE id = $1
`

	_, err := r.pool.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (r *UserRepo) ListAll(ctx context.Context) ([]*domain.User, error) {
	const op = "postgres.User.ListAll"

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0, 16)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	return users, nil
}

// ListWithFavorites loads every user that has at least one favorite location
// together with those locations, in one pass over a join.
func (r *UserRepo) ListWithFavorites(ctx context.Context) ([]*domain.User, error) {
	const op = "postgres.User.ListWithFavorites"

	const query = `
SELECT u.id, u.name, u.email, u.is_admin,
       f.id, f.name, ST_X(f.point::geometry), ST_Y(f.point::geometry), f.created_at
FROM users u
JOIN favorite_locations f ON f.user_id = u.id
ORDER BY u.id, f.created_at ASC
`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var (
		users []*domain.User
		cur   *domain.User
	)
	for rows.Next() {
		var (
			u   domain.User
			loc domain.FavoriteLocation
		)
		err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.IsAdmin,
			&loc.ID, &loc.Name, &loc.Point.Lon, &loc.Point.Lat, &loc.CreatedAt,
		)
		if err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		loc.UserID = u.ID

		if cur == nil || cur.ID != u.ID {
			cur = &u
			users = append(users, cur)
		}
		cur.FavoriteLocations = append(cur.FavoriteLocations, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	return users, nil
}

func (r *UserRepo) AddFavorite(ctx context.Context, loc *domain.FavoriteLocation) error {
	const op = "postgres.User.AddFavorite"

	if !loc.Point.Valid() {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}

	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO favorite_locations (id, user_id, name, point, created_at)
VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326), $6)
`

	_, err := r.pool.Exec(ctx, query,
		loc.ID,
		loc.UserID,
		loc.Name,
		loc.Point.Lon,
		loc.Point.Lat,
		loc.CreatedAt,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (r *UserRepo) DeleteFavorite(ctx context.Context, userID, locID uuid.UUID) error {
	const op = "postgres.User.DeleteFavorite"

	const query = `
DELETE FROM favorite_locations WHERE id = $1 AND user_id = $2
`

	tag, err := r.pool.Exec(ctx, query, locID, userID)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.FavoriteLocation, error) {
	const op = "postgres.User.ListFavorites"

	const query = `
SELECT id, user_id, name, ST_X(point::geometry), ST_Y(point::geometry), created_at
FROM favorite_locations
WHERE user_id = $1
ORDER BY created_at ASC
`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	locs := make([]domain.FavoriteLocation, 0, 8)
	for rows.Next() {
		var loc domain.FavoriteLocation
		err := rows.Scan(&loc.ID, &loc.UserID, &loc.Name, &loc.Point.Lon, &loc.Point.Lat, &loc.CreatedAt)
		if err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		locs = append(locs, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	return locs, nil
}
