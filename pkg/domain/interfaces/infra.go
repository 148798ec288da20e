package interfaces

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// ConfigLoader loads the declarative mapping rule set from external storage.
// The loaded config is immutable for the duration of processing; there is no
// process-wide cache.
type ConfigLoader interface {
	Load(ctx context.Context) (*model.Config, error)
}

// DispatchRecorder persists an audit record per dispatch attempt. Recording
// failures must not affect event processing.
type DispatchRecorder interface {
	Record(ctx context.Context, rec *model.DispatchRecord) error
}
