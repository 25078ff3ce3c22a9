// Package blob stores whole files for the file-based backends. A key is a
// slash-separated relative name such as "people.csv"; the driver decides
// where it lives.
package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/holdings/pkg/types"
)

// Store reads and writes whole objects.
type Store interface {
	// Put replaces the object at key with data, creating any missing
	// parent containers.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the object at key. A missing object is reported as
	// types.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Location describes where key is stored, for log and error messages.
	Location(key string) string
}

// ErrInvalidKey is returned for empty keys or keys escaping the store root.
var ErrInvalidKey = errors.New("invalid blob key")

// Open returns the Store selected by cfg. root is the directory used by the
// fs driver.
func Open(ctx context.Context, cfg types.BlobConfig, root string, log *logrus.Entry) (Store, error) {
	switch cfg.Driver {
	case "", types.BlobDriverFS:
		return NewFilesystem(root, log)
	case types.BlobDriverS3:
		return NewS3(ctx, S3Config{
			Bucket:          cfg.Bucket,
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			PathStyle:       cfg.PathStyle,
			Prefix:          cfg.Prefix,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
		}, log)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrBlobDriverUnknown, cfg.Driver)
	}
}
