package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quiz-api/internal/dto"
)

func TestSubmissionEventPublisherRedisChannel(t *testing.T) {
	_, client := setupMiniredis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "quiz.submissions")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	publisher := NewSubmissionEventPublisher(client, "quiz.submissions", nil, "", zerolog.Nop())
	event := SubmissionGradedEvent{
		SubmissionID: uuid.New(),
		QuizID:       uuid.New(),
		QuizSlug:     "geo",
		Score:        2,
		TotalPoints:  3,
		Answered:     2,
		SubmittedAt:  time.Now().UTC(),
	}
	require.NoError(t, publisher.PublishGraded(ctx, event))

	select {
	case msg := <-sub.Channel():
		var received SubmissionGradedEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &received))
		require.Equal(t, event.SubmissionID, received.SubmissionID)
		require.Equal(t, "geo", received.QuizSlug)
		require.NotEmpty(t, received.Source)
	case <-ctx.Done():
		t.Fatal("submission graded event was not delivered")
	}
}

func TestSubmissionEventPublisherWithoutTransports(t *testing.T) {
	publisher := NewSubmissionEventPublisher(nil, "", nil, "", zerolog.Nop())
	require.NoError(t, publisher.PublishGraded(context.Background(), SubmissionGradedEvent{SubmissionID: uuid.New()}))
}

func TestRedisQuizCacheRoundTripAndExpiry(t *testing.T) {
	server, client := setupMiniredis(t)
	cache := NewRedisQuizCache(client, time.Minute, zerolog.Nop())

	_, ok := cache.Get(context.Background(), "geo")
	require.False(t, ok)

	cache.Set(context.Background(), "geo", dto.PublicQuizResponse{Title: "Geo", Slug: "geo", QuestionCount: 2})
	cached, ok := cache.Get(context.Background(), "geo")
	require.True(t, ok)
	require.Equal(t, "Geo", cached.Title)
	require.Equal(t, 2, cached.QuestionCount)

	server.FastForward(2 * time.Minute)
	_, ok = cache.Get(context.Background(), "geo")
	require.False(t, ok)
}

func TestRedisQuizCacheDiscardsCorruptEntries(t *testing.T) {
	server, client := setupMiniredis(t)
	cache := NewRedisQuizCache(client, time.Minute, zerolog.Nop())

	require.NoError(t, server.Set("quiz:public:geo", "{not json"))
	_, ok := cache.Get(context.Background(), "geo")
	require.False(t, ok)
}

func TestRedisQuizCacheWithoutClient(t *testing.T) {
	cache := NewRedisQuizCache(nil, 0, zerolog.Nop())
	cache.Set(context.Background(), "geo", dto.PublicQuizResponse{Slug: "geo"})
	cache.Invalidate(context.Background(), "geo")

	_, ok := cache.Get(context.Background(), "geo")
	require.False(t, ok)
}
