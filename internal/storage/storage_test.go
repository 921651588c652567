package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/andresuchdata/kitchenops/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	objects map[string]string
}

func (f *fakeStorage) ListObjects(_ context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for _, key := range []string{"exports/items.csv", "exports/orders.xlsx", "exports/readme.txt"} {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(f.objects[key]))})
		}
	}
	return out, nil
}

func (f *fakeStorage) OpenObject(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.objects[key])), nil
}

func TestExportSourcesFiltersByExtension(t *testing.T) {
	store := &fakeStorage{objects: map[string]string{"exports/items.csv": "Order Date,Menu Item,Qty\n"}}

	sources, err := ExportSources(context.Background(), store, "exports/")
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "exports/items.csv", sources[0].Name)

	rc, err := sources[0].Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Menu Item")
}

func TestSplitEndpoint(t *testing.T) {
	host, secure := splitEndpoint("https://objects.example.com/", false)
	assert.Equal(t, "objects.example.com", host)
	assert.True(t, secure)

	host, secure = splitEndpoint("http://localhost:9000", true)
	assert.Equal(t, "localhost:9000", host)
	assert.False(t, secure)

	host, secure = splitEndpoint("minio:9000", true)
	assert.Equal(t, "minio:9000", host)
	assert.True(t, secure)
}

func TestNewS3ClientValidatesConfig(t *testing.T) {
	_, err := NewS3Client(configWith("", "k", "s", "b"))
	assert.ErrorContains(t, err, "endpoint")
	_, err = NewS3Client(configWith("minio:9000", "", "", "b"))
	assert.ErrorContains(t, err, "credentials")
	_, err = NewS3Client(configWith("minio:9000", "k", "s", ""))
	assert.ErrorContains(t, err, "bucket")
}

func configWith(endpoint, access, secret, bucket string) config.SourcesConfig {
	return config.SourcesConfig{S3Endpoint: endpoint, S3AccessKey: access, S3SecretKey: secret, S3Bucket: bucket}
}
