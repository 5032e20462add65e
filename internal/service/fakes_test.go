package service_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Elyson25/clean-air-now/internal/aqi"
	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/pkg/e"

	"github.com/google/uuid"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeUserStore keeps users in memory and satisfies service.UserStore.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uuid.UUID]*domain.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return fmt.Errorf("postgres.User.Create: %w", e.ErrUniqueViolation)
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("postgres.User.GetByID: %w", e.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("postgres.User.GetByEmail: %w", e.ErrNotFound)
}

func (f *fakeUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("postgres.User.UpdateProfile: %w", e.ErrNotFound)
	}
	u.Name = name
	u.Email = email
	return nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("postgres.User.UpdatePassword: %w", e.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserStore) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("postgres.User.SetResetToken: %w", e.ErrNotFound)
	}
	u.ResetTokenHash = tokenHash
	exp := expires
	u.ResetTokenExpires = &exp
	return nil
}

func (f *fakeUserStore) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ResetTokenHash != "" && u.ResetTokenHash == tokenHash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("postgres.User.GetByResetToken: %w", e.ErrNotFound)
}

func (f *fakeUserStore) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.ResetTokenHash = ""
		u.ResetTokenExpires = nil
	}
	return nil
}

func (f *fakeUserStore) ListAll(ctx context.Context) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.User, 0, len(f.users))
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer records messages and satisfies mailer.Mailer.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeMailer) messages() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMail, len(f.sent))
	copy(out, f.sent)
	return out
}

// fakeReportStore satisfies service.ReportStore.
type fakeReportStore struct {
	mu      sync.Mutex
	reports []*domain.Report

	createErr error
}

func (f *fakeReportStore) Create(ctx context.Context, report *domain.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	cp := *report
	f.reports = append(f.reports, &cp)
	return nil
}

func (f *fakeReportStore) Get(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reports {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("postgres.Report.Get: %w", e.ErrNotFound)
}

func (f *fakeReportStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Report
	for _, r := range f.reports {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReportStore) ListAll(ctx context.Context) ([]*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Report, 0, len(f.reports))
	for _, r := range f.reports {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeReportStore) ListRecent(ctx context.Context, cutoff time.Time) ([]*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Report
	for _, r := range f.reports {
		if r.CreatedAt.After(cutoff) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReportStore) ListPublic(ctx context.Context) ([]*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Report
	for _, r := range f.reports {
		if r.Status == domain.ReportSubmitted || r.Status == domain.ReportInReview {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReportStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) (*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reports {
		if r.ID == id {
			r.Status = status
			cp := *r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("postgres.Report.UpdateStatus: %w", e.ErrNotFound)
}

// fakePublisher satisfies service.EventPublisher.
type fakePublisher struct {
	mu     sync.Mutex
	events []domain.ReportEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, ev domain.ReportEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) published() []domain.ReportEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ReportEvent, len(f.events))
	copy(out, f.events)
	return out
}

// fakeObservationStore satisfies service.ObservationStore.
type fakeObservationStore struct {
	mu       sync.Mutex
	inserted []domain.AirQualityObservation
	samples  []domain.AQISample

	insertErr error

	lastCenter domain.GeoPoint
	lastRadius float64
	lastSince  time.Time
}

func (f *fakeObservationStore) Insert(ctx context.Context, obs *domain.AirQualityObservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *obs)
	return nil
}

func (f *fakeObservationStore) FindNearby(ctx context.Context, center domain.GeoPoint, radiusM float64, since time.Time) ([]domain.AQISample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCenter = center
	f.lastRadius = radiusM
	f.lastSince = since
	return f.samples, nil
}

// fakeProvider satisfies aqi.Provider.
type fakeProvider struct {
	mu       sync.Mutex
	readings map[domain.GeoPoint]*aqi.Reading
	errs     map[domain.GeoPoint]error
	calls    int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		readings: map[domain.GeoPoint]*aqi.Reading{},
		errs:     map[domain.GeoPoint]error{},
	}
}

func (f *fakeProvider) Current(ctx context.Context, point domain.GeoPoint) (*aqi.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[point]; ok {
		return nil, err
	}
	return f.readings[point], nil
}
