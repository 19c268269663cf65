package semantic

import (
	"context"

	"github.com/refindlab/refind/internal/domain"
	"github.com/refindlab/refind/internal/domain/submission"
)

// Completer is the consumer-side chat completion contract.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

// Repository defines the storage contract for submissions.
type Repository interface {
	Create(ctx context.Context, sub submission.Submission) (submission.Submission, error)
	List(ctx context.Context) ([]submission.Submission, error)
}
