// Package storage reads POS exports from S3-compatible object storage.
package storage

import (
	"context"
	"io"

	"github.com/andresuchdata/kitchenops/internal/ingest"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the read-only S3-compatible operations ingestion needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	OpenObject(ctx context.Context, key string) (io.ReadCloser, error)
}

// ExportSources lists the CSV and XLSX objects under prefix as ingest sources.
func ExportSources(ctx context.Context, store ObjectStorage, prefix string) ([]ingest.Source, error) {
	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var sources []ingest.Source
	for _, obj := range objects {
		if !ingest.IsExport(obj.Key) {
			continue
		}
		key := obj.Key
		sources = append(sources, ingest.Source{
			Name: key,
			Open: func(ctx context.Context) (io.ReadCloser, error) { return store.OpenObject(ctx, key) },
		})
	}
	return sources, nil
}
