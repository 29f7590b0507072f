package testutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/ilkin0/bomprobe/internal/storage"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
	miniocontainer "github.com/testcontainers/testcontainers-go/modules/minio"
)

type MinIOFixture struct {
	Container *miniocontainer.MinioContainer
	Client    *storage.MinIOClient
	Config    storage.MinIOConfig
	Bucket    string
}

// SetupMinIO starts a MinIO container with an empty bucket. It is torn
// down when the test finishes.
func SetupMinIO(t *testing.T) *MinIOFixture {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping MinIO container test in short mode")
	}

	ctx := context.Background()

	minioContainer, err := miniocontainer.Run(ctx,
		"minio/minio:latest",
		miniocontainer.WithUsername("minioadmin"),
		miniocontainer.WithPassword("minioadmin"),
	)
	if err != nil {
		t.Fatalf("Failed to start minio container: %v", err)
	}
	t.Cleanup(func() {
		minioContainer.Terminate(context.Background())
	})

	endpoint, err := minioContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get minio endpoint: %v", err)
	}

	cfg := storage.MinIOConfig{
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}

	client, err := storage.NewMinIOClient(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize MinIO client: %v", err)
	}

	bucket := "bomprobe-test"
	err = client.Client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
	require.NoError(t, err)

	return &MinIOFixture{
		Container: minioContainer,
		Client:    client,
		Config:    cfg,
		Bucket:    bucket,
	}
}

func (f *MinIOFixture) PutObject(t *testing.T, key string, data []byte) {
	t.Helper()

	_, err := f.Client.Client.PutObject(context.Background(), f.Bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/zip"})
	require.NoError(t, err)
}
