package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/prepnexus/prepnexus-api/internal/assessment"
)

func testAttemptStore(t *testing.T) (AttemptStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisAttemptStore(client, time.Minute), mr
}

func TestAttemptStoreRoundTripsCorrectAnswers(t *testing.T) {
	store, _ := testAttemptStore(t)

	attempt := StoredAttempt{
		ID:       "att-1",
		Username: "alice",
		Track:    assessment.TrackDatabases,
		Questions: []assessment.Question{
			{
				ID: "q-1", Type: assessment.QuestionMCQ,
				Prompt:  "Which join keeps unmatched left rows?",
				Options: []string{"INNER", "LEFT", "RIGHT", "CROSS"}, CorrectIndex: 1,
				Topic: "SQL Joins", Difficulty: assessment.DifficultyEasy,
				Explanation: "LEFT JOIN preserves the left side.",
			},
			{
				ID: "q-2", Type: assessment.QuestionShortAnswer,
				Prompt: "Name the property guaranteeing all-or-nothing transactions.", CorrectText: "Atomicity",
				Topic: "Transactions", Difficulty: assessment.DifficultyMedium,
				Explanation: "The A in ACID.",
			},
		},
		ExpiresAt: time.Now().Add(time.Minute).UTC(),
	}
	require.NoError(t, store.Save(context.Background(), attempt))

	loaded, err := store.Get(context.Background(), "att-1")
	require.NoError(t, err)
	require.Equal(t, "alice", loaded.Username)
	require.Equal(t, assessment.TrackDatabases, loaded.Track)
	require.Len(t, loaded.Questions, 2)

	// API JSON tags hide the answer key; the store must keep it
	require.Equal(t, 1, loaded.Questions[0].CorrectIndex)
	require.Equal(t, "Atomicity", loaded.Questions[1].CorrectText)
}

func TestAttemptStoreMissingKey(t *testing.T) {
	store, _ := testAttemptStore(t)

	_, err := store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestAttemptStoreExpires(t *testing.T) {
	store, mr := testAttemptStore(t)

	require.NoError(t, store.Save(context.Background(), StoredAttempt{ID: "att-2", Username: "alice"}))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(context.Background(), "att-2")
	require.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestAttemptStoreDelete(t *testing.T) {
	store, _ := testAttemptStore(t)

	require.NoError(t, store.Save(context.Background(), StoredAttempt{ID: "att-3", Username: "alice"}))
	require.NoError(t, store.Delete(context.Background(), "att-3"))

	_, err := store.Get(context.Background(), "att-3")
	require.ErrorIs(t, err, ErrAttemptNotFound)
}
