package redis

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Elyson25/clean-air-now/internal/domain"

	"github.com/redis/go-redis/v9"
)

// ReportEvents is the live-update channel for new incident reports. Publishing
// is fire-and-forget with at-most-once delivery: subscribers that are not
// connected at publish time never see the event and catch up through the
// recency query instead.
type ReportEvents struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewReportEvents(client *redis.Client, channel string, logger *slog.Logger) *ReportEvents {
	return &ReportEvents{client: client, channel: channel, logger: logger}
}

func (q *ReportEvents) Publish(ctx context.Context, ev domain.ReportEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return q.client.Publish(ctx, q.channel, b).Err()
}

// Subscribe delivers decoded events until ctx is canceled. The returned
// channel is closed on cancellation; undecodable payloads are logged and
// dropped.
func (q *ReportEvents) Subscribe(ctx context.Context) <-chan domain.ReportEvent {
	sub := q.client.Subscribe(ctx, q.channel)
	out := make(chan domain.ReportEvent, 64)

	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev domain.ReportEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					q.logger.Warn("dropping undecodable report event", slog.Any("error", err))
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
