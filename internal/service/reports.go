package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/pkg/e"
	"github.com/Elyson25/clean-air-now/pkg/validator"

	"github.com/google/uuid"
)

type ReportStore interface {
	Create(ctx context.Context, report *domain.Report) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Report, error)
	ListAll(ctx context.Context) ([]*domain.Report, error)
	ListRecent(ctx context.Context, cutoff time.Time) ([]*domain.Report, error)
	ListPublic(ctx context.Context) ([]*domain.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) (*domain.Report, error)
}

// EventPublisher fans a new report out to live viewers. Delivery is
// at-most-once and supplementary to the durable store.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.ReportEvent) error
}

type reportService struct {
	repo   ReportStore
	events EventPublisher
	logger *slog.Logger
}

func NewReportService(repo ReportStore, events EventPublisher, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

func (s *reportService) Create(ctx context.Context, author domain.AuthUser, req domain.CreateReportRequest) (*domain.Report, error) {
	const op = "service.Report.Create"

	if err := validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, e.ErrInvalidInput, firstFailure(err))
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%s: %w: field Description failed on required", op, e.ErrInvalidInput)
	}

	report := &domain.Report{
		UserID:      author.ID,
		AuthorName:  author.Name,
		Description: description,
		Status:      domain.ReportSubmitted,
		Point:       domain.GeoPoint{Lon: *req.Longitude, Lat: *req.Latitude},
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("report created",
		slog.String("report_id", report.ID.String()),
		slog.String("user_id", author.ID.String()),
	)

	// Best effort: live viewers who miss the event catch up via Recent.
	if err := s.events.Publish(ctx, report.Event()); err != nil {
		s.logger.Error("report broadcast failed",
			slog.String("report_id", report.ID.String()),
			slog.Any("error", err),
		)
	}

	return report, nil
}

func (s *reportService) Get(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	return s.repo.Get(ctx, id)
}

func (s *reportService) Mine(ctx context.Context, userID uuid.UUID) ([]*domain.Report, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *reportService) All(ctx context.Context) ([]*domain.Report, error) {
	return s.repo.ListAll(ctx)
}

func (s *reportService) Recent(ctx context.Context, cutoff time.Time) ([]*domain.Report, error) {
	return s.repo.ListRecent(ctx, cutoff)
}

func (s *reportService) Public(ctx context.Context) ([]*domain.Report, error) {
	return s.repo.ListPublic(ctx)
}

func (s *reportService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) (*domain.Report, error) {
	const op = "service.Report.UpdateStatus"

	if !status.Valid() {
		return nil, fmt.Errorf("%s: %w: unknown status %q", op, e.ErrInvalidInput, status)
	}

	return s.repo.UpdateStatus(ctx, id, status)
}
