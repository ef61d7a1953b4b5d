//go:generate go run go.uber.org/mock/mockgen -source=ledger.go -destination=../mocks/mock_ledger.go -package=mocks
package interfaces

import (
	"context"
	"time"
)

// ReplayGuard records confirmation tokens that were already used.
type ReplayGuard interface {
	// Claim marks jobID as consumed until expiresAt. It returns false when
	// the id was claimed before.
	Claim(ctx context.Context, jobID string, expiresAt time.Time) (bool, error)
}
