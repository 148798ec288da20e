package config

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/infra/configstore"
)

// ConfigStore holds mapping configuration source settings. Either a local
// file path or a GCS bucket/object pair must be given; the bucket takes
// precedence when both are set.
type ConfigStore struct {
	Path   string
	Bucket string
	Object string
}

// Flags returns CLI flags for the mapping config source
func (c *ConfigStore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "mapping-file",
			Usage:       "Path to a local workflow mapping JSON file",
			Destination: &c.Path,
			Sources:     cli.EnvVars("DROVER_MAPPING_FILE"),
		},
		&cli.StringFlag{
			Name:        "mapping-bucket",
			Usage:       "GCS bucket holding the workflow mapping object",
			Destination: &c.Bucket,
			Sources:     cli.EnvVars("DROVER_MAPPING_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "mapping-object",
			Usage:       "GCS object name of the workflow mapping JSON",
			Value:       "mapping.json",
			Destination: &c.Object,
			Sources:     cli.EnvVars("DROVER_MAPPING_OBJECT"),
		},
	}
}

// Loader builds a config loader from the configured source
func (c *ConfigStore) Loader(ctx context.Context) (interfaces.ConfigLoader, error) {
	if c.Bucket != "" {
		return configstore.NewGCSLoader(ctx, c.Bucket, c.Object)
	}
	return configstore.NewLocalLoader(c.Path), nil
}

// Configured reports whether any mapping source is set
func (c *ConfigStore) Configured() bool {
	return c.Path != "" || c.Bucket != ""
}
