package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prepnexus/prepnexus-api/internal/assessment"
)

// ErrAttemptNotFound means the attempt ID is unknown or the attempt expired.
var ErrAttemptNotFound = errors.New("attempt not found or expired")

// StoredAttempt is a generated question set awaiting submission. Correct
// answers stay server-side here; the client only ever sees the projection.
type StoredAttempt struct {
	ID        string
	Username  string
	Track     assessment.Track
	Questions []assessment.Question
	ExpiresAt time.Time
}

// AttemptStore keeps pending attempts between generation and submission.
type AttemptStore interface {
	Save(ctx context.Context, attempt StoredAttempt) error
	Get(ctx context.Context, id string) (StoredAttempt, error)
	Delete(ctx context.Context, id string) error
}

// Question JSON tags hide correct answers from API responses, so the store
// uses its own encoding that round-trips every field.
type storedQuestion struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options,omitempty"`
	CorrectIndex int      `json:"correct_index"`
	CorrectText  string   `json:"correct_text"`
	Topic        string   `json:"topic"`
	Explanation  string   `json:"explanation"`
	Difficulty   string   `json:"difficulty"`
}

type storedAttemptPayload struct {
	Username  string           `json:"username"`
	Track     string           `json:"track"`
	Questions []storedQuestion `json:"questions"`
	ExpiresAt time.Time        `json:"expires_at"`
}

type redisAttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAttemptStore constructs an attempt store with the given TTL.
func NewRedisAttemptStore(client *redis.Client, ttl time.Duration) AttemptStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &redisAttemptStore{client: client, ttl: ttl}
}

func attemptKey(id string) string {
	return "attempt:" + id
}

func (s *redisAttemptStore) Save(ctx context.Context, attempt StoredAttempt) error {
	payload := storedAttemptPayload{
		Username:  attempt.Username,
		Track:     string(attempt.Track),
		ExpiresAt: attempt.ExpiresAt,
	}
	for _, q := range attempt.Questions {
		payload.Questions = append(payload.Questions, storedQuestion{
			ID:           q.ID,
			Type:         string(q.Type),
			Prompt:       q.Prompt,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			CorrectText:  q.CorrectText,
			Topic:        q.Topic,
			Explanation:  q.Explanation,
			Difficulty:   string(q.Difficulty),
		})
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}

	if err := s.client.Set(ctx, attemptKey(attempt.ID), encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("store attempt: %w", err)
	}

	return nil
}

func (s *redisAttemptStore) Get(ctx context.Context, id string) (StoredAttempt, error) {
	encoded, err := s.client.Get(ctx, attemptKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return StoredAttempt{}, ErrAttemptNotFound
	}
	if err != nil {
		return StoredAttempt{}, fmt.Errorf("load attempt: %w", err)
	}

	var payload storedAttemptPayload
	if err := json.Unmarshal([]byte(encoded), &payload); err != nil {
		return StoredAttempt{}, fmt.Errorf("decode attempt: %w", err)
	}

	attempt := StoredAttempt{
		ID:        id,
		Username:  payload.Username,
		Track:     assessment.Track(payload.Track),
		ExpiresAt: payload.ExpiresAt,
	}
	for _, q := range payload.Questions {
		attempt.Questions = append(attempt.Questions, assessment.Question{
			ID:           q.ID,
			Type:         assessment.QuestionType(q.Type),
			Prompt:       q.Prompt,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			CorrectText:  q.CorrectText,
			Topic:        q.Topic,
			Explanation:  q.Explanation,
			Difficulty:   assessment.Difficulty(q.Difficulty),
		})
	}

	return attempt, nil
}

func (s *redisAttemptStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, attemptKey(id)).Err()
}
