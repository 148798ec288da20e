package interfaces

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// EventUseCase defines the interface for queue message processing
type EventUseCase interface {
	// ProcessMessage processes a single queue message: normalize, resolve
	// mapping rules, substitute templates and hand the resulting dispatch
	// requests to the dispatcher
	ProcessMessage(ctx context.Context, msg *model.QueueMessage) error

	// ProcessBatch processes a batch of raw message bodies, isolating
	// per-message failures and aggregating counts
	ProcessBatch(ctx context.Context, bodies [][]byte) (*model.BatchResult, error)
}
