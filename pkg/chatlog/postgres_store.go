package chatlog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Migrations holds the goose migrations for the chat_records table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that goose reads.
const MigrationsDir = "migrations"

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps records in the chat_records table.
type PostgresStore struct {
	db Querier
}

// NewPostgresStore returns a store on db. The chat_records table must exist;
// apply Migrations first. A nil db, typed or not, returns ErrStoreNotSet.
func NewPostgresStore(db Querier) (*PostgresStore, error) {
	if isNil(db) {
		return nil, ErrStoreNotSet
	}
	return &PostgresStore{db: db}, nil
}

const (
	insertRecordSQL = `INSERT INTO chat_records (chat_id, messages, completion, logged_timestamp) VALUES ($1, $2, $3, $4)`
	selectRecordSQL = `SELECT chat_id, messages, completion, logged_timestamp FROM chat_records ORDER BY id`
	deleteRecordSQL = `DELETE FROM chat_records WHERE logged_timestamp < $1`
)

func (s *PostgresStore) Append(ctx context.Context, r Record) error {
	messages, err := json.Marshal(r.Messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}

	var completion []byte
	if len(r.Completion) > 0 {
		completion = r.Completion
	}

	if _, err := s.db.Exec(ctx, insertRecordSQL, r.ChatID, messages, completion, r.LoggedTimestamp); err != nil {
		return fmt.Errorf("insert chat record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx, selectRecordSQL)
	if err != nil {
		return nil, fmt.Errorf("select chat records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r          Record
			messages   []byte
			completion []byte
		)
		if err := rows.Scan(&r.ChatID, &messages, &completion, &r.LoggedTimestamp); err != nil {
			return nil, fmt.Errorf("scan chat record: %w", err)
		}
		if err := json.Unmarshal(messages, &r.Messages); err != nil {
			return nil, fmt.Errorf("%w: chat %s: %w", ErrMalformedRecord, r.ChatID, err)
		}
		if len(completion) > 0 {
			r.Completion = json.RawMessage(completion)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat records: %w", err)
	}
	return records, nil
}

// Cleanup deletes rows logged before cutoff.
func (s *PostgresStore) Cleanup(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.db.Exec(ctx, deleteRecordSQL, epochSeconds(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete chat records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
