package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/raysh454/scanconfirm/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// Dialect carries the driver name and placeholder style of a SQL backend.
type Dialect struct {
	Driver string
	// Numbered placeholders ($1) instead of ?.
	Numbered bool
}

var (
	SQLite   = Dialect{Driver: "sqlite"}
	Postgres = Dialect{Driver: "postgres", Numbered: true}
)

func (d Dialect) rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLLedger keeps consumed ids in the consumed_tokens table.
type SQLLedger struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
	logger  logging.Logger

	pruneQuery  string
	insertQuery string
}

// OpenSQL opens dsn with the dialect's driver and applies the schema.
func OpenSQL(d Dialect, dsn string, logger logging.Logger) (*SQLLedger, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s ledger: %w", d.Driver, err)
	}
	if d == SQLite {
		db.SetMaxOpenConns(1)
	}
	l, err := NewSQLLedger(db, d, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// NewSQLLedger runs migrations from schema.sql on db.
func NewSQLLedger(db *sql.DB, d Dialect, logger logging.Logger) (*SQLLedger, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply ledger schema: %w", err)
		}
	}
	logger.Info("replay ledger ready", logging.Field{Key: "driver", Value: d.Driver})

	return &SQLLedger{
		db:          db,
		dialect:     d,
		now:         time.Now,
		logger:      logger,
		pruneQuery:  d.rebind(`DELETE FROM consumed_tokens WHERE expires_at < ?`),
		insertQuery: d.rebind(`INSERT INTO consumed_tokens (job_id, expires_at, consumed_at) VALUES (?, ?, ?) ON CONFLICT (job_id) DO NOTHING`),
	}, nil
}

// Claim prunes expired rows, then inserts jobID. A conflicting row means the
// token was used before.
func (l *SQLLedger) Claim(ctx context.Context, jobID string, expiresAt time.Time) (bool, error) {
	now := l.now()
	if _, err := l.db.ExecContext(ctx, l.pruneQuery, now.Unix()); err != nil {
		return false, fmt.Errorf("prune ledger: %w", err)
	}
	res, err := l.db.ExecContext(ctx, l.insertQuery, jobID, expiresAt.Unix(), now.Unix())
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", jobID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", jobID, err)
	}
	if n == 0 {
		l.logger.Warn("token replay rejected", logging.Field{Key: "job_id", Value: jobID})
		return false, nil
	}
	return true, nil
}

func (l *SQLLedger) Close() error {
	return l.db.Close()
}
