package configstore

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
)

type gcsLoader struct {
	client *storage.Client
	bucket string
	object string
}

// NewGCSLoader creates a config loader reading a JSON object from
// Google Cloud Storage
func NewGCSLoader(ctx context.Context, bucket, object string, opts ...option.ClientOption) (interfaces.ConfigLoader, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GCS client")
	}

	return &gcsLoader{
		client: client,
		bucket: bucket,
		object: object,
	}, nil
}

// Load fetches and parses the mapping configuration object. The object is
// read on every call so config updates take effect without a restart.
func (l *gcsLoader) Load(ctx context.Context) (*model.Config, error) {
	reader, err := l.client.Bucket(l.bucket).Object(l.object).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open config object",
			goerr.V("bucket", l.bucket),
			goerr.V("object", l.object),
		)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config object",
			goerr.V("bucket", l.bucket),
			goerr.V("object", l.object),
		)
	}

	return parseConfig(ctx, data)
}
