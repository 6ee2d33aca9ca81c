// Package journal persists the memory log to PostgreSQL so the being
// keeps its history across restarts. The being runs fine without it.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veleth/anima/internal/memory"
	"go.uber.org/zap"
)

// Journal wraps a PostgreSQL connection pool. It satisfies memory.Mirror,
// so every record and slot write lands here as it happens.
type Journal struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// New creates a Journal with a pgx connection pool.
func New(dsn string, logger *zap.Logger) (*Journal, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("PostgreSQL connected")
	return &Journal{db: pool, logger: logger}, nil
}

// Migrate reads and executes all .up.sql files from the migrations directory.
func (j *Journal) Migrate(ctx context.Context, migrationsDir string) error {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(migrationsDir, f))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", f, err)
		}
		if _, err := j.db.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec migration %s: %w", f, err)
		}
		j.logger.Info("Migration applied", zap.String("file", f))
	}
	return nil
}

// AppendRecord stores one activity outcome.
func (j *Journal) AppendRecord(ctx context.Context, rec memory.Record) error {
	var dataJSON []byte
	if len(rec.Data) > 0 {
		var err error
		dataJSON, err = json.Marshal(rec.Data)
		if err != nil {
			return fmt.Errorf("marshal record data: %w", err)
		}
	}

	_, err := j.db.Exec(ctx, `
		INSERT INTO records (id, activity_type, ts, success, data, error)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.ActivityType, rec.Timestamp, rec.Success, dataJSON, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// SaveSlot upserts one slot. A nil value deletes the slot.
func (j *Journal) SaveSlot(ctx context.Context, key string, value any) error {
	if value == nil {
		if _, err := j.db.Exec(ctx, `DELETE FROM slots WHERE key = $1`, key); err != nil {
			return fmt.Errorf("delete slot: %w", err)
		}
		return nil
	}

	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal slot value: %w", err)
	}
	_, err = j.db.Exec(ctx, `
		INSERT INTO slots (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, valueJSON,
	)
	if err != nil {
		return fmt.Errorf("save slot: %w", err)
	}
	return nil
}

// RecentRecords retrieves the latest records in append order, ready for
// memory.Log.Restore.
func (j *Journal) RecentRecords(ctx context.Context, limit int) ([]memory.Record, error) {
	if limit <= 0 {
		limit = 200
	}

	rows, err := j.db.Query(ctx, `
		SELECT id, activity_type, ts, success, data, error
		FROM records
		ORDER BY ts DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("get records: %w", err)
	}
	defer rows.Close()

	var recs []memory.Record
	for rows.Next() {
		var rec memory.Record
		var dataJSON []byte

		if err := rows.Scan(&rec.ID, &rec.ActivityType, &rec.Timestamp, &rec.Success, &dataJSON, &rec.Error); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if len(dataJSON) > 0 {
			json.Unmarshal(dataJSON, &rec.Data)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	// Newest-first from the query, oldest-first for the log.
	for i, k := 0, len(recs)-1; i < k; i, k = i+1, k-1 {
		recs[i], recs[k] = recs[k], recs[i]
	}
	return recs, nil
}

// Slots retrieves every persisted slot.
func (j *Journal) Slots(ctx context.Context) (map[string]any, error) {
	rows, err := j.db.Query(ctx, `SELECT key, value FROM slots`)
	if err != nil {
		return nil, fmt.Errorf("get slots: %w", err)
	}
	defer rows.Close()

	slots := make(map[string]any)
	for rows.Next() {
		var key string
		var valueJSON []byte
		if err := rows.Scan(&key, &valueJSON); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		var value any
		if err := json.Unmarshal(valueJSON, &value); err != nil {
			return nil, fmt.Errorf("decode slot %s: %w", key, err)
		}
		slots[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return slots, nil
}

// Close shuts down the connection pool.
func (j *Journal) Close() {
	j.db.Close()
}
