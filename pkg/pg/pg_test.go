package pg_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tutorkit/pkg/logger"
	"github.com/dmitrymomot/tutorkit/pkg/pg"
)

func TestConnect_InvalidConfig(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := pg.Connect(ctx, pg.Config{})
	assert.True(t, errors.Is(err, pg.ErrEmptyConnectionString))

	_, err = pg.Connect(ctx, pg.Config{ConnectionString: "postgres://%zz"})
	assert.True(t, errors.Is(err, pg.ErrFailedToParseDBConfig))
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestPing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := pg.Ping(ctx, fakePinger{})
	require.NoError(t, err)

	boom := errors.New("connection refused")
	rtt, err := pg.Ping(ctx, fakePinger{err: boom})
	assert.Zero(t, rtt)
	assert.True(t, errors.Is(err, pg.ErrHealthcheckFailed))
	assert.True(t, errors.Is(err, boom))
}

func TestMigrate(t *testing.T) {
	url := os.Getenv("TUTORKIT_TEST_PG_URL")
	if url == "" {
		t.Skip("TUTORKIT_TEST_PG_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := pg.Config{
		ConnectionString: url,
		RetryAttempts:    1,
		MigrationsTable:  "pg_test_migrations",
	}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pg.Ping(ctx, pool)
	require.NoError(t, err)

	fsys := fstest.MapFS{
		"migrations/00001_probe.sql": &fstest.MapFile{Data: []byte(
			"-- +goose Up\nCREATE TABLE IF NOT EXISTS pg_test_probe (id int);\n" +
				"-- +goose Down\nDROP TABLE IF EXISTS pg_test_probe;\n",
		)},
	}

	log := logger.Discard()
	require.NoError(t, pg.Migrate(ctx, pool, fsys, "migrations", cfg, log))

	err = pg.Migrate(ctx, pool, fsys, "missing", cfg, log)
	assert.True(t, errors.Is(err, pg.ErrMigrationsDirNotFound))

	_, err = pool.Exec(ctx, "DROP TABLE IF EXISTS pg_test_probe; DROP TABLE IF EXISTS pg_test_migrations")
	require.NoError(t, err)
}
