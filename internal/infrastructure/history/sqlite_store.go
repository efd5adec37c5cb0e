package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/pkg/filesystem"
	"github.com/doeshing/codecraft/internal/pkg/redact"
	"github.com/doeshing/codecraft/internal/ports"
)

// timestampLayout is fixed width so text comparison orders rows by time.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	timestamp TEXT NOT NULL,
	intent TEXT,
	command TEXT,
	model TEXT,
	tier TEXT,
	status TEXT,
	exit_code INTEGER,
	duration_ms INTEGER
);
CREATE INDEX IF NOT EXISTS runs_timestamp ON runs(timestamp);`

// SQLiteStore persists run history in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// DefaultPath is ~/.codecraft/history.db.
func DefaultPath() string {
	return filepath.Join(filesystem.AppDir(), "history.db")
}

// NewSQLiteStore creates (or opens) the database at path. An empty path uses DefaultPath.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Save inserts a new record. Secrets in the intent and command are redacted first.
func (s *SQLiteStore) Save(ctx context.Context, record domain.RunRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `INSERT INTO runs
		(id, timestamp, intent, command, model, tier, status, exit_code, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp.UTC().Format(timestampLayout),
		redact.String(record.Intent),
		redact.String(record.Command),
		record.Model,
		string(record.Tier),
		string(record.Status),
		record.ExitCode,
		record.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", record.ID, err)
	}
	return nil
}

// Records returns history entries newest first (limit/search optional).
func (s *SQLiteStore) Records(ctx context.Context, limit int, search string) ([]domain.RunRecord, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT id, timestamp, intent, command, model, tier, status, exit_code, duration_ms FROM runs")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE intent LIKE ? OR command LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY timestamp DESC, rowid DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var ts, tier, status string
		if err := rows.Scan(&rec.ID, &ts, &rec.Intent, &rec.Command, &rec.Model, &tier, &status, &rec.ExitCode, &rec.DurationMS); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timestampLayout, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Tier = domain.RiskTier(tier)
		rec.Status = domain.RunStatus(status)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM runs")
	return err
}

// Prune deletes entries recorded before olderThan and reports how many went.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE timestamp < ?", olderThan.UTC().Format(timestampLayout))
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
