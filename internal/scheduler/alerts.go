package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Elyson25/clean-air-now/internal/aqi"
	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/internal/mailer"

	"github.com/go-co-op/gocron"
	"github.com/jonboulle/clockwork"
)

// UserSource yields users with at least one favorite location, favorites
// loaded. The scheduler reads them and never writes back.
type UserSource interface {
	ListWithFavorites(ctx context.Context) ([]*domain.User, error)
}

// Alerter is the hourly alert job. Every run re-evaluates each favorite
// location independently; there is no suppression of repeat alerts across
// runs, so a location that stays polluted alerts again each hour.
//
// The run never fails as a whole: each per-location and per-user error is
// logged and skipped so one bad lookup cannot silence alerts for everyone
// else, and the next tick always starts from Idle.
type Alerter struct {
	users     UserSource
	provider  aqi.Provider
	mail      mailer.Mailer
	logger    *slog.Logger
	threshold int
	cronSpec  string
	clock     clockwork.Clock

	cron    *gocron.Scheduler
	running atomic.Bool

	// runTimeout bounds one full run; well under the hourly cadence.
	runTimeout time.Duration
}

func NewAlerter(users UserSource, provider aqi.Provider, mail mailer.Mailer, threshold int, cronSpec string, clock clockwork.Clock, logger *slog.Logger) *Alerter {
	return &Alerter{
		users:      users,
		provider:   provider,
		mail:       mail,
		logger:     logger,
		threshold:  threshold,
		cronSpec:   cronSpec,
		clock:      clock,
		runTimeout: 10 * time.Minute,
	}
}

// Start schedules the recurring job. The default spec fires at the top of
// every hour.
func (a *Alerter) Start() error {
	a.cron = gocron.NewScheduler(time.UTC)

	_, err := a.cron.Cron(a.cronSpec).Do(a.tick)
	if err != nil {
		return fmt.Errorf("scheduler: schedule alert job: %w", err)
	}

	a.cron.StartAsync()
	a.logger.Info("alert scheduler started", slog.String("cron", a.cronSpec), slog.Int("threshold", a.threshold))
	return nil
}

func (a *Alerter) Stop() {
	if a.cron != nil {
		a.cron.Stop()
	}
	a.logger.Info("alert scheduler stopped")
}

// Running reports whether an alert pass is currently in flight.
func (a *Alerter) Running() bool {
	return a.running.Load()
}

func (a *Alerter) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), a.runTimeout)
	defer cancel()

	if err := a.RunOnce(ctx); err != nil {
		a.logger.Error("alert run failed", slog.Any("error", err))
	}
}

// RunOnce executes one full alert pass. Calls overlapping an in-flight run
// are skipped with a warning; a run in progress means the previous tick is
// still working and a second concurrent pass would double-send.
func (a *Alerter) RunOnce(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		a.logger.Warn("alert run already in progress, skipping tick")
		return nil
	}
	defer a.running.Store(false)

	started := a.clock.Now()
	a.logger.Info("alert run started")

	users, err := a.users.ListWithFavorites(ctx)
	if err != nil {
		// Nothing to iterate; the next tick gets a fresh chance.
		return fmt.Errorf("scheduler: load users: %w", err)
	}

	if len(users) == 0 {
		a.logger.Info("no users with favorite locations, skipping alert check")
		return nil
	}

	var wg sync.WaitGroup
	for _, user := range users {
		user := user
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.checkUser(ctx, user)
		}()
	}
	wg.Wait()

	a.logger.Info("alert run finished",
		slog.Int("users", len(users)),
		slog.Duration("elapsed", a.clock.Since(started)),
	)
	return nil
}

func (a *Alerter) checkUser(ctx context.Context, user *domain.User) {
	for _, loc := range user.FavoriteLocations {
		reading, err := a.provider.Current(ctx, loc.Point)
		if err != nil {
			a.logger.Error("aqi check failed",
				slog.String("user_id", user.ID.String()),
				slog.String("location", loc.Name),
				slog.Any("error", err),
			)
			continue
		}
		if reading == nil {
			// Provider has no data for this point right now.
			continue
		}

		if reading.AQI >= a.threshold {
			a.notify(ctx, user, loc, reading.AQI)
		}
	}
}

func (a *Alerter) notify(ctx context.Context, user *domain.User, loc domain.FavoriteLocation, aqiValue int) {
	a.logger.Info("aqi threshold crossed, sending alert",
		slog.String("user_id", user.ID.String()),
		slog.String("location", loc.Name),
		slog.Int("aqi", aqiValue),
	)

	subject := fmt.Sprintf("Air Quality Alert for %s", loc.Name)
	body := alertBody(loc.Name, aqiValue)

	if err := a.mail.Send(ctx, user.Email, subject, body); err != nil {
		// Mail transport errors must never abort the run.
		a.logger.Error("alert email failed",
			slog.String("user_id", user.ID.String()),
			slog.String("location", loc.Name),
			slog.Any("error", err),
		)
	}
}

func alertBody(locationName string, aqiValue int) string {
	return fmt.Sprintf(`This is an alert from Clean Air Now.
The current Air Quality Index (AQI) at your saved location %q is %d, which is considered Poor or worse.
It is recommended to reduce strenuous activities outdoors.
- 1 = Good
- 2 = Fair
- 3 = Moderate
- 4 = Poor
- 5 = Very Poor`, locationName, aqiValue)
}
