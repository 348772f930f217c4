package pg

import (
	"context"
	"errors"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool and *pgx.Conn.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks that the database answers and returns the round trip time.
func Ping(ctx context.Context, db Pinger) (time.Duration, error) {
	start := time.Now()
	if err := db.Ping(ctx); err != nil {
		return 0, errors.Join(ErrHealthcheckFailed, err)
	}
	return time.Since(start), nil
}
