package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quiz-api/internal/dto"
	"github.com/noah-isme/quiz-api/internal/observability"
)

// QuizCache stores the answer-free public view of quizzes keyed by slug.
type QuizCache interface {
	Get(ctx context.Context, slug string) (dto.PublicQuizResponse, bool)
	Set(ctx context.Context, slug string, quiz dto.PublicQuizResponse)
	Invalidate(ctx context.Context, slugs ...string)
}

type redisQuizCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisQuizCache returns a redis-backed QuizCache. A nil client yields a cache that never hits.
func NewRedisQuizCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) QuizCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisQuizCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "quiz_cache").Logger(),
	}
}

func quizCacheKey(slug string) string {
	return fmt.Sprintf("quiz:public:%s", slug)
}

func (c *redisQuizCache) Get(ctx context.Context, slug string) (dto.PublicQuizResponse, bool) {
	if c.client == nil {
		return dto.PublicQuizResponse{}, false
	}

	cached, err := c.client.Get(ctx, quizCacheKey(slug)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("slug", slug).Msg("failed to read quiz cache")
		}
		observability.QuizCache().WithLabelValues("miss").Inc()
		return dto.PublicQuizResponse{}, false
	}

	var response dto.PublicQuizResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		c.logger.Warn().Err(err).Str("slug", slug).Msg("discarding corrupt quiz cache entry")
		observability.QuizCache().WithLabelValues("miss").Inc()
		return dto.PublicQuizResponse{}, false
	}

	observability.QuizCache().WithLabelValues("hit").Inc()
	return response, true
}

func (c *redisQuizCache) Set(ctx context.Context, slug string, quiz dto.PublicQuizResponse) {
	if c.client == nil {
		return
	}

	payload, err := json.Marshal(quiz)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, quizCacheKey(slug), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("slug", slug).Msg("failed to store quiz cache")
	}
}

func (c *redisQuizCache) Invalidate(ctx context.Context, slugs ...string) {
	if c.client == nil || len(slugs) == 0 {
		return
	}

	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if slug != "" {
			keys = append(keys, quizCacheKey(slug))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate quiz cache")
	}
}
