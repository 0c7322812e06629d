package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteConfig contains configuration for the SQLite audit sink.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite sink configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        "data/audit.db",
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS audit_decisions (
	record_id              TEXT PRIMARY KEY,
	request_id             TEXT NOT NULL,
	timestamp              TEXT NOT NULL,
	data_type              TEXT NOT NULL,
	data_subject           TEXT NOT NULL,
	data_sender            TEXT NOT NULL,
	data_recipient         TEXT NOT NULL,
	transmission_principle TEXT NOT NULL,
	service_id             TEXT,
	situation              TEXT,
	temporal_role          TEXT,
	emergency_override     INTEGER NOT NULL DEFAULT 0,
	action                 TEXT NOT NULL,
	matched_rule_id        TEXT,
	reasons                TEXT,
	latency_us             INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_decisions(timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_subject ON audit_decisions(data_subject);
`

// SQLiteSink stores audit records in a SQLite database for structured
// querying and scheduled retention pruning.
type SQLiteSink struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteSink opens the database, applies pragmas, and creates the schema.
func NewSQLiteSink(config *SQLiteConfig) (*SQLiteSink, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, NewSinkError("sqlite", "open", err)
	}

	s := &SQLiteSink{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "audit.sink.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("sqlite audit sink initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

func (s *SQLiteSink) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewSinkError("sqlite", "enable_wal", err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return NewSinkError("sqlite", "set_busy_timeout", err)
	}
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return NewSinkError("sqlite", "create_schema", err)
	}
	return nil
}

// Append inserts a batch of records in one transaction.
func (s *SQLiteSink) Append(ctx context.Context, records []DecisionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewSinkError("sqlite", "begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO audit_decisions (
			record_id, request_id, timestamp,
			data_type, data_subject, data_sender, data_recipient, transmission_principle,
			service_id, situation, temporal_role, emergency_override,
			action, matched_rule_id, reasons, latency_us
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return NewSinkError("sqlite", "prepare", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		reasons, _ := json.Marshal(rec.Reasons)
		_, err := stmt.ExecContext(ctx,
			rec.RecordID, rec.RequestID, rec.Timestamp.UTC().Format(time.RFC3339Nano),
			rec.DataType, rec.DataSubject, rec.DataSender, rec.DataRecipient, rec.TransmissionPrinciple,
			rec.ServiceID, rec.Situation, rec.TemporalRole, boolToInt(rec.EmergencyOverride),
			rec.Action, rec.MatchedRuleID, string(reasons), rec.LatencyMicros,
		)
		if err != nil {
			return NewSinkError("sqlite", "insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return NewSinkError("sqlite", "commit", err)
	}
	return nil
}

// ReadEntries returns all stored records ordered by timestamp.
func (s *SQLiteSink) ReadEntries(ctx context.Context) ([]DecisionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_id, request_id, timestamp,
			data_type, data_subject, data_sender, data_recipient, transmission_principle,
			service_id, situation, temporal_role, emergency_override,
			action, matched_rule_id, reasons, latency_us
		FROM audit_decisions ORDER BY timestamp, record_id`)
	if err != nil {
		return nil, NewSinkError("sqlite", "query", err)
	}
	defer rows.Close()

	var records []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		var ts, reasons string
		var emergency int
		err := rows.Scan(
			&rec.RecordID, &rec.RequestID, &ts,
			&rec.DataType, &rec.DataSubject, &rec.DataSender, &rec.DataRecipient, &rec.TransmissionPrinciple,
			&rec.ServiceID, &rec.Situation, &rec.TemporalRole, &emergency,
			&rec.Action, &rec.MatchedRuleID, &reasons, &rec.LatencyMicros,
		)
		if err != nil {
			return nil, NewSinkError("sqlite", "scan", err)
		}
		if rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, NewSinkError("sqlite", "parse_timestamp", err)
		}
		rec.EmergencyOverride = emergency != 0
		if reasons != "" && reasons != "null" {
			if err := json.Unmarshal([]byte(reasons), &rec.Reasons); err != nil {
				return nil, NewSinkError("sqlite", "parse_reasons", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear removes all stored records.
func (s *SQLiteSink) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM audit_decisions"); err != nil {
		return NewSinkError("sqlite", "clear", err)
	}
	return nil
}

// DeleteBefore removes records older than the cutoff and returns the number
// deleted. Used by retention pruning.
func (s *SQLiteSink) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM audit_decisions WHERE timestamp < ?",
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, NewSinkError("sqlite", "delete_before", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
