// Package ledger remembers which confirmation tokens were already used so a
// link cannot start the same scan twice. It is optional: without it the
// service keeps no state at all and a valid link may be replayed until it
// expires.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raysh454/scanconfirm/internal/logging"
)

// Backend names accepted by Open.
const (
	KindNone     = "none"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindBadger   = "badger"
)

// DefaultSQLitePath is used when the sqlite backend is chosen without a DSN.
const DefaultSQLitePath = "scanconfirm-ledger.db"

// Ledger records consumed job ids until their token would have expired.
type Ledger interface {
	// Claim returns true the first time jobID is seen and false afterwards.
	Claim(ctx context.Context, jobID string, expiresAt time.Time) (bool, error)
	Close() error
}

// Open builds the ledger for kind. An empty kind means none.
func Open(kind, dsn string, logger logging.Logger) (Ledger, error) {
	logger = logger.With(logging.Field{Key: "component", Value: "ledger"})

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindNone:
		return Nop{}, nil
	case KindSQLite:
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
		return OpenSQL(SQLite, dsn, logger)
	case KindPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres ledger requires a DSN")
		}
		return OpenSQL(Postgres, dsn, logger)
	case KindBadger:
		return OpenBadger(dsn, logger)
	}
	return nil, fmt.Errorf("unknown ledger kind %q", kind)
}

// Nop accepts every claim.
type Nop struct{}

func (Nop) Claim(context.Context, string, time.Time) (bool, error) { return true, nil }

func (Nop) Close() error { return nil }
