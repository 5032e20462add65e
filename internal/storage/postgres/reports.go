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

type ReportRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReportRepo(pool *pgxpool.Pool, logger *slog.Logger) *ReportRepo {
	return &ReportRepo{pool: pool, logger: logger}
}

func (r *ReportRepo) Create(ctx context.Context, report *domain.Report) error {
	const op = "postgres.Report.Create"

	if !report.Point.Valid() {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	if report.Status == "" {
		report.Status = domain.ReportSubmitted
	}

	const query = `
INSERT INTO reports (id, user_id, description, status, point, created_at)
VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326), $7)
`

	_, err := r.pool.Exec(ctx, query,
		report.ID,
		report.UserID,
		report.Description,
		report.Status,
		report.Point.Lon,
		report.Point.Lat,
		report.CreatedAt,
	)
	if err != nil {
		r.logger.Error("db exec failed",
			slog.String("op", op),
			slog.Any("error", err),
			slog.String("user_id", report.UserID.String()),
		)
		return e.WrapError(ctx, op, err)
	}

	return nil
}

const reportColumns = `
r.id, r.user_id, u.name, r.description, r.status,
ST_X(r.point::geometry), ST_Y(r.point::geometry), r.created_at
`

func scanReport(row pgx.Row) (*domain.Report, error) {
	var rep domain.Report
	err := row.Scan(
		&rep.ID,
		&rep.UserID,
		&rep.AuthorName,
		&rep.Description,
		&rep.Status,
		&rep.Point.Lon,
		&rep.Point.Lat,
		&rep.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *ReportRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	const op = "postgres.Report.Get"

	query := `
SELECT ` + reportColumns + `
FROM reports r
JOIN users u ON u.id = r.user_id
WHERE r.id = $1
`

	rep, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return rep, nil
}

func (r *ReportRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Report, error) {
	const op = "postgres.Report.ListByUser"

	query := `
SELECT ` + reportColumns + `
FROM reports r
JOIN users u ON u.id = r.user_id
WHERE r.user_id = $1
ORDER BY r.created_at DESC
`

	return r.queryReports(ctx, op, query, userID)
}

func (r *ReportRepo) ListAll(ctx context.Context) ([]*domain.Report, error) {
	const op = "postgres.Report.ListAll"

	query := `
SELECT ` + reportColumns + `
FROM reports r
JOIN users u ON u.id = r.user_id
ORDER BY r.created_at DESC
`

	return r.queryReports(ctx, op, query)
}

// ListRecent answers the feed query: reports newer than cutoff, newest
// first, joined with the author's name only.
func (r *ReportRepo) ListRecent(ctx context.Context, cutoff time.Time) ([]*domain.Report, error) {
	const op = "postgres.Report.ListRecent"

	query := `
SELECT ` + reportColumns + `
FROM reports r
JOIN users u ON u.id = r.user_id
WHERE r.created_at > $1
ORDER BY r.created_at DESC
`

	return r.queryReports(ctx, op, query, cutoff)
}

func (r *ReportRepo) ListPublic(ctx context.Context) ([]*domain.Report, error) {
	const op = "postgres.Report.ListPublic"

	query := `
SELECT ` + reportColumns + `
FROM reports r
JOIN users u ON u.id = r.user_id
WHERE r.status IN ('Submitted', 'In Review')
ORDER BY r.created_at DESC
`

	return r.queryReports(ctx, op, query)
}

func (r *ReportRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) (*domain.Report, error) {
	const op = "postgres.Report.UpdateStatus"

	if !status.Valid() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	const query = `
UPDATE reports SET status = $2 WHERE id = $1
`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return r.Get(ctx, id)
}

func (r *ReportRepo) queryReports(ctx context.Context, op, query string, args ...any) ([]*domain.Report, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	reports := make([]*domain.Report, 0, 16)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		reports = append(reports, rep)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return reports, nil
}
