// Package configstore loads the declarative workflow-mapping configuration
// from external storage. The config is loaded once per invocation batch and
// never cached across loads.
package configstore

import (
	"context"
	"encoding/json"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
)

type localLoader struct {
	path string
}

// NewLocalLoader creates a config loader reading a JSON file from disk
func NewLocalLoader(path string) interfaces.ConfigLoader {
	return &localLoader{path: path}
}

// Load reads and parses the mapping configuration file
func (l *localLoader) Load(ctx context.Context) (*model.Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", l.path))
	}

	return parseConfig(ctx, data)
}

// parseConfig decodes the mapping config, applies defaults and logs
// configuration warnings for patterns that can never match
func parseConfig(ctx context.Context, data []byte) (*model.Config, error) {
	var cfg model.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse mapping config")
	}

	logger := ctxlog.From(ctx)
	for _, warning := range cfg.Normalize() {
		logger.Warn("Mapping config warning", "warning", warning)
	}

	return &cfg, nil
}
