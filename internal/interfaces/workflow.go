//go:generate go run go.uber.org/mock/mockgen -source=workflow.go -destination=../mocks/mock_workflow.go -package=mocks
package interfaces

import (
	"context"

	"github.com/raysh454/scanconfirm/internal/model"
	"github.com/raysh454/scanconfirm/internal/workflow"
)

// JobTrigger starts the external scan workflow for a confirmed job.
type JobTrigger interface {
	// Fire posts the job once. Non-2xx answers are errors.
	Fire(ctx context.Context, job model.Job) (*workflow.TriggerResult, error)
}

// StatusFetcher reads the orchestrator's status document for a job.
type StatusFetcher interface {
	// Fetch returns the document verbatim.
	Fetch(ctx context.Context, jobID string) ([]byte, error)
}
