// Package storage defines the remote object store contract used by the
// asset upload pipeline and its S3-compatible implementation.
package storage

import "context"

// ResourceKind distinguishes raw documents from images on the remote host
type ResourceKind string

const (
	KindRaw   ResourceKind = "raw"
	KindImage ResourceKind = "image"
)

// PutInput controls where and as what an asset is stored
type PutInput struct {
	Kind   ResourceKind
	Folder string
	Format string
}

// PutResult references the stored asset by its two delivery URLs
type PutResult struct {
	SecureURL string
	URL       string
}

// ObjectStore is the remote binary asset host. Each Put is a single
// atomic remote write; Delete removes the object behind a previously
// returned URL via its derived key.
type ObjectStore interface {
	Put(ctx context.Context, data []byte, in PutInput) (PutResult, error)
	Delete(ctx context.Context, key string, kind ResourceKind) error
}
