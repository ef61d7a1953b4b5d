//go:generate go run go.uber.org/mock/mockgen -source=notifier.go -destination=../mocks/mock_notifier.go -package=mocks
package interfaces

import "context"

// ConfirmationNotifier delivers a confirmation link to the requester.
// Implementations should be safe for concurrent use.
type ConfirmationNotifier interface {
	// NotifyConfirmation sends one message to `to` carrying link for jobID.
	NotifyConfirmation(ctx context.Context, to, jobID, link string) error
}
