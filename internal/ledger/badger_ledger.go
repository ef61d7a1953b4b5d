package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/raysh454/scanconfirm/internal/logging"
)

const keyPrefix = "consumed:"

var errClaimed = errors.New("already claimed")

// BadgerLedger stores one key per consumed id with a TTL matching the
// token's expiry, so entries vanish on their own.
type BadgerLedger struct {
	db     *badger.DB
	now    func() time.Time
	logger logging.Logger
}

// OpenBadger opens a ledger at dir. An empty dir keeps everything in memory.
func OpenBadger(dir string, logger logging.Logger) (*BadgerLedger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{logger})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger ledger: %w", err)
	}
	return NewBadgerLedger(db, logger), nil
}

func NewBadgerLedger(db *badger.DB, logger logging.Logger) *BadgerLedger {
	return &BadgerLedger{db: db, now: time.Now, logger: logger}
}

func (l *BadgerLedger) Claim(_ context.Context, jobID string, expiresAt time.Time) (bool, error) {
	now := l.now()
	ttl := expiresAt.Sub(now)
	if ttl < time.Second {
		ttl = time.Second
	}
	key := []byte(keyPrefix + jobID)

	err := l.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return errClaimed
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		entry := badger.NewEntry(key, []byte(strconv.FormatInt(now.Unix(), 10))).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errClaimed), errors.Is(err, badger.ErrConflict):
		l.logger.Warn("token replay rejected", logging.Field{Key: "job_id", Value: jobID})
		return false, nil
	}
	return false, fmt.Errorf("claim %s: %w", jobID, err)
}

func (l *BadgerLedger) Close() error {
	return l.db.Close()
}

// badgerLogger routes badger's internal logging into ours.
type badgerLogger struct {
	log logging.Logger
}

func (b badgerLogger) Errorf(format string, args ...any) {
	b.log.Error(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Warningf(format string, args ...any) {
	b.log.Warn(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Infof(format string, args ...any) {
	b.log.Debug(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Debugf(format string, args ...any) {
	b.log.Debug(fmt.Sprintf(format, args...))
}
