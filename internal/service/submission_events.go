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
)

// SubmissionGradedEvent is broadcast after a submission has been committed.
type SubmissionGradedEvent struct {
	Source       string    `json:"source"`
	SubmissionID uuid.UUID `json:"submission_id"`
	QuizID       uuid.UUID `json:"quiz_id"`
	QuizSlug     string    `json:"quiz_slug"`
	Score        int       `json:"score"`
	TotalPoints  int       `json:"total_points"`
	Answered     int       `json:"answered"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// SubmissionEventPublisher announces graded submissions to other services.
type SubmissionEventPublisher interface {
	PublishGraded(ctx context.Context, event SubmissionGradedEvent) error
}

type brokerEventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	nodeID       string
	logger       zerolog.Logger
}

// NewSubmissionEventPublisher publishes events on a redis channel and/or a NATS subject.
// Either transport may be nil.
func NewSubmissionEventPublisher(redisClient *redis.Client, channel string, natsConn *nats.Conn, subject string, logger zerolog.Logger) SubmissionEventPublisher {
	return &brokerEventPublisher{
		redis:        redisClient,
		redisChannel: strings.TrimSpace(channel),
		nats:         natsConn,
		natsSubject:  strings.TrimSpace(subject),
		nodeID:       uuid.NewString(),
		logger:       logger.With().Str("component", "submission_events").Logger(),
	}
}

func (p *brokerEventPublisher) PublishGraded(ctx context.Context, event SubmissionGradedEvent) error {
	if event.Source == "" {
		event.Source = p.nodeID
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			return err
		}
	}

	p.logger.Debug().Str("submission_id", event.SubmissionID.String()).Msg("submission graded event published")
	return nil
}
