package chatlog_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tutorkit/pkg/chatlog"
	"github.com/dmitrymomot/tutorkit/pkg/logger"
	"github.com/dmitrymomot/tutorkit/pkg/pg"
	"github.com/dmitrymomot/tutorkit/pkg/prompt"
)

func TestNewPostgresStore(t *testing.T) {
	t.Parallel()

	_, err := chatlog.NewPostgresStore(nil)
	assert.True(t, errors.Is(err, chatlog.ErrStoreNotSet))

	var pool *pgxpool.Pool
	_, err = chatlog.NewPostgresStore(pool)
	assert.True(t, errors.Is(err, chatlog.ErrStoreNotSet))
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TUTORKIT_TEST_PG_URL")
	if url == "" {
		t.Skip("TUTORKIT_TEST_PG_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := pg.Config{ConnectionString: url, RetryAttempts: 1, MigrationsTable: "chatlog_test_migrations"}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, pg.Migrate(ctx, pool, chatlog.Migrations, chatlog.MigrationsDir, cfg, logger.Discard()))
	_, err = pool.Exec(ctx, "TRUNCATE chat_records")
	require.NoError(t, err)

	s, err := chatlog.NewPostgresStore(pool)
	require.NoError(t, err)

	require.NoError(t, s.Append(ctx, chatlog.Record{ChatID: "A", LoggedTimestamp: 100,
		Messages: []prompt.Message{prompt.UserMessage("m1")}}))
	require.NoError(t, s.Append(ctx, chatlog.Record{ChatID: "A", LoggedTimestamp: 200,
		Messages:   []prompt.Message{prompt.UserMessage("m1"), prompt.AssistantMessage("m2")},
		Completion: []byte(`{"id":"cmpl"}`)}))

	records, err := s.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Nil(t, records[0].Completion)
	assert.JSONEq(t, `{"id":"cmpl"}`, string(records[1].Completion))

	deleted, err := s.Cleanup(ctx, time.Unix(150, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}
