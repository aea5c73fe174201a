package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kenshokan/dojang-api/internal/observability"
)

// Event types emitted by the certification engine. Delivery to end users is
// owned by a downstream collaborator; a failed publish never rolls back the
// state change that produced it.
const (
	EventAttemptFinalized  = "attempt.finalized"
	EventResultComputed    = "result.computed"
	EventCertificateIssued = "certificate.issued"
)

// ExamEvent is the logical event envelope published to the brokers.
type ExamEvent struct {
	Type      string                 `json:"type"`
	ExamID    uint                   `json:"exam_id"`
	StudentID uint                   `json:"student_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Source    string                 `json:"source"`
	SentAt    time.Time              `json:"sent_at"`
}

// EventPublisher fans logical exam events out to interested collaborators.
type EventPublisher interface {
	Publish(ctx context.Context, event ExamEvent)
}

type brokerEventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	nodeID       string
}

// NewEventPublisher constructs a publisher that mirrors events to the redis
// channel and NATS subject derived from channelBase. Either client may be nil.
func NewEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) EventPublisher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &brokerEventPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "event_publisher").Logger(),
		nodeID:       uuid.NewString(),
	}
}

func (p *brokerEventPublisher) Publish(ctx context.Context, event ExamEvent) {
	event.Source = p.nodeID
	if event.SentAt.IsZero() {
		event.SentAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("type", event.Type).Msg("failed to marshal exam event")
		return
	}

	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish exam event to redis")
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish exam event to nats")
		}
	}

	observability.ExamEventsPublished().WithLabelValues(event.Type).Inc()
}
