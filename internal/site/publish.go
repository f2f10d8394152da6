package site

import (
	"context"
	"fmt"

	"github.com/reelstack-io/reelstack/internal/logging"
)

// BlobStore is the upload surface of the storage resource.
type BlobStore interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
}

// Publish generates the site bundle and uploads every asset.
func Publish(ctx context.Context, store BlobStore, cfg Config) error {
	bundle, err := Generate(cfg)
	if err != nil {
		return err
	}
	for _, a := range bundle {
		if err := store.PutObject(ctx, a.Key, a.ContentType, a.Body); err != nil {
			return fmt.Errorf("upload %s: %w", a.Key, err)
		}
		logging.Debug("uploaded asset", "key", a.Key, "bytes", len(a.Body))
	}
	logging.Info("site published", "assets", len(bundle))
	return nil
}
