// Package storage provides the optional upload archive backed by an
// S3-compatible object store. Archival is best-effort: extraction never
// fails because the archive is unreachable.
package storage

import "context"

// Archive stores raw uploads for later auditing of extraction results.
type Archive interface {
	// Store uploads the raw document bytes under the given key.
	Store(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error
}
