package postgres

import (
	"context"
	"time"

	"github.com/Elyson25/clean-air-now/internal/domain"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error
	GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error)
	ClearResetToken(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]*domain.User, error)

	// ListWithFavorites returns only users owning at least one favorite
	// location, with the favorites loaded. The alert scheduler is the sole
	// consumer.
	ListWithFavorites(ctx context.Context) ([]*domain.User, error)

	AddFavorite(ctx context.Context, loc *domain.FavoriteLocation) error
	DeleteFavorite(ctx context.Context, userID, locID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.FavoriteLocation, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Report, error)
	ListAll(ctx context.Context) ([]*domain.Report, error)
	ListRecent(ctx context.Context, cutoff time.Time) ([]*domain.Report, error)
	ListPublic(ctx context.Context) ([]*domain.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) (*domain.Report, error)
}

type ObservationRepository interface {
	Insert(ctx context.Context, obs *domain.AirQualityObservation) error
	FindNearby(ctx context.Context, center domain.GeoPoint, radiusM float64, since time.Time) ([]domain.AQISample, error)
}

func (p *Postgres) Users() UserRepository               { return p.UserRepo }
func (p *Postgres) Reports() ReportRepository           { return p.ReportRepo }
func (p *Postgres) Observations() ObservationRepository { return p.ObservationRepo }
