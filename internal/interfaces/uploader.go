package interfaces

import "context"

// Uploader stores logo images. Delete is best-effort: callers replacing a logo
// ignore a failed delete of the old asset.
type Uploader interface {
	UploadBytes(ctx context.Context, folder string, filename string, b []byte) (url string, publicID string, err error)
	Delete(ctx context.Context, publicID string) error
}
