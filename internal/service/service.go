package service

import (
	"context"
	"time"

	"github.com/Elyson25/clean-air-now/internal/aqi"
	"github.com/Elyson25/clean-air-now/internal/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go

type AuthService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req domain.LoginRequest) (*AuthResult, error)
	Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req domain.UpdateProfileRequest) (*AuthResult, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, req domain.UpdatePasswordRequest) error
	ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, token string, req domain.ResetPasswordRequest) (*AuthResult, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

type ReportService interface {
	Create(ctx context.Context, author domain.AuthUser, req domain.CreateReportRequest) (*domain.Report, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	Mine(ctx context.Context, userID uuid.UUID) ([]*domain.Report, error)
	All(ctx context.Context) ([]*domain.Report, error)
	Recent(ctx context.Context, cutoff time.Time) ([]*domain.Report, error)
	Public(ctx context.Context) ([]*domain.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) (*domain.Report, error)
}

type HistoryService interface {
	History(ctx context.Context, point domain.GeoPoint) ([]domain.AQISample, error)
}

type AirQualityService interface {
	Lookup(ctx context.Context, point domain.GeoPoint) (*aqi.Reading, error)
}

type FavoriteService interface {
	Add(ctx context.Context, userID uuid.UUID, req domain.AddLocationRequest) ([]domain.FavoriteLocation, error)
	Delete(ctx context.Context, userID, locID uuid.UUID) ([]domain.FavoriteLocation, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.FavoriteLocation, error)
}

// AuthResult is what login-shaped operations hand back to the client.
type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

type Service struct {
	Auth       AuthService
	Reports    ReportService
	History    HistoryService
	AirQuality AirQualityService
	Favorites  FavoriteService
}

func NewService(
	auth AuthService,
	reports ReportService,
	history HistoryService,
	airQuality AirQualityService,
	favorites FavoriteService,
) *Service {
	return &Service{
		Auth:       auth,
		Reports:    reports,
		History:    history,
		AirQuality: airQuality,
		Favorites:  favorites,
	}
}
