package ingest

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileSource reads an export from the local filesystem.
func FileSource(path string) Source {
	return Source{
		Name: filepath.Base(path),
		Open: func(context.Context) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// BytesSource wraps an export already held in memory, such as an upload.
func BytesSource(name string, data []byte) Source {
	return Source{
		Name: name,
		Open: func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// IsExport reports whether a file name looks like a POS export.
func IsExport(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}
