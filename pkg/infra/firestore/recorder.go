// Package firestore persists dispatch audit records to Cloud Firestore.
package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
)

const defaultCollection = "dispatches"

type recorder struct {
	client     *firestore.Client
	collection string
}

// Option configures the recorder
type Option func(*recorder)

// WithCollection overrides the Firestore collection name
func WithCollection(name string) Option {
	return func(r *recorder) {
		r.collection = name
	}
}

// NewRecorder creates a dispatch recorder backed by Cloud Firestore
func NewRecorder(ctx context.Context, projectID string, opts ...Option) (interfaces.DispatchRecorder, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client", goerr.V("project_id", projectID))
	}

	r := &recorder{
		client:     client,
		collection: defaultCollection,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Record writes one dispatch attempt as a new document
func (r *recorder) Record(ctx context.Context, rec *model.DispatchRecord) error {
	_, _, err := r.client.Collection(r.collection).Add(ctx, rec)
	if err != nil {
		return goerr.Wrap(err, "failed to record dispatch",
			goerr.V("delivery_id", rec.DeliveryID),
			goerr.V("workflow_file", rec.WorkflowFile),
		)
	}

	return nil
}
