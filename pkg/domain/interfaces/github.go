package interfaces

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// WorkflowDispatcher defines the external collaborator that invokes a
// workflow via the source-control API. The engine itself never performs
// network I/O.
type WorkflowDispatcher interface {
	// Dispatch triggers the workflow described by the fully-resolved request
	Dispatch(ctx context.Context, req *model.DispatchRequest) error
}
