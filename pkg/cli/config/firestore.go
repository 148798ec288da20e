package config

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	firestoreinfra "github.com/m-mizutani/drover/pkg/infra/firestore"
)

// Firestore holds dispatch audit record settings. Recording is disabled
// when no project ID is given.
type Firestore struct {
	ProjectID  string
	Collection string
}

// Flags returns CLI flags for Firestore configuration
func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project ID for dispatch records (empty disables recording)",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("DROVER_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection for dispatch records",
			Value:       "dispatches",
			Destination: &c.Collection,
			Sources:     cli.EnvVars("DROVER_FIRESTORE_COLLECTION"),
		},
	}
}

// Enabled reports whether dispatch recording is configured
func (c *Firestore) Enabled() bool {
	return c.ProjectID != ""
}

// Recorder builds a Firestore-backed dispatch recorder
func (c *Firestore) Recorder(ctx context.Context) (interfaces.DispatchRecorder, error) {
	return firestoreinfra.NewRecorder(ctx, c.ProjectID,
		firestoreinfra.WithCollection(c.Collection))
}
