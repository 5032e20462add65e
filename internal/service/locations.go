package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/pkg/e"
	"github.com/Elyson25/clean-air-now/pkg/validator"

	"github.com/google/uuid"
)

type FavoriteStore interface {
	AddFavorite(ctx context.Context, loc *domain.FavoriteLocation) error
	DeleteFavorite(ctx context.Context, userID, locID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.FavoriteLocation, error)
}

type favoriteService struct {
	store  FavoriteStore
	logger *slog.Logger
}

func NewFavoriteService(store FavoriteStore, logger *slog.Logger) FavoriteService {
	return &favoriteService{store: store, logger: logger}
}

// Add stores a new favorite and returns the user's full updated list.
func (s *favoriteService) Add(ctx context.Context, userID uuid.UUID, req domain.AddLocationRequest) ([]domain.FavoriteLocation, error) {
	const op = "service.Favorite.Add"

	if err := validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, e.ErrInvalidInput, firstFailure(err))
	}

	loc := &domain.FavoriteLocation{
		UserID: userID,
		Name:   strings.TrimSpace(req.Name),
		Point:  domain.GeoPoint{Lon: *req.Longitude, Lat: *req.Latitude},
	}

	if err := s.store.AddFavorite(ctx, loc); err != nil {
		return nil, err
	}

	s.logger.Info("favorite added",
		slog.String("user_id", userID.String()),
		slog.String("name", loc.Name),
	)

	return s.store.ListFavorites(ctx, userID)
}

func (s *favoriteService) Delete(ctx context.Context, userID, locID uuid.UUID) ([]domain.FavoriteLocation, error) {
	if err := s.store.DeleteFavorite(ctx, userID, locID); err != nil {
		return nil, err
	}
	return s.store.ListFavorites(ctx, userID)
}

func (s *favoriteService) List(ctx context.Context, userID uuid.UUID) ([]domain.FavoriteLocation, error) {
	return s.store.ListFavorites(ctx, userID)
}
