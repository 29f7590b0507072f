package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const minioScheme = "minio://"

// Source is where the upload payload comes from.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name is the filename reported in the multipart part.
	Name() string
}

type LocalFile struct {
	Path string
}

func (f LocalFile) Open(_ context.Context) (io.ReadCloser, error) {
	return os.Open(f.Path)
}

func (f LocalFile) Name() string {
	return filepath.Base(f.Path)
}

func (f LocalFile) String() string {
	return f.Path
}

// Resolve turns a source reference into a Source. References of the form
// minio://<bucket>/<key> are read from MinIO, anything else is a local path.
func Resolve(ref string, cfg MinIOConfig) (Source, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty source reference")
	}

	if !strings.HasPrefix(ref, minioScheme) {
		return LocalFile{Path: ref}, nil
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, minioScheme), "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid minio reference %q: want minio://<bucket>/<key>", ref)
	}

	client, err := NewMinIOClient(cfg)
	if err != nil {
		return nil, err
	}

	return client.Object(bucket, key), nil
}
