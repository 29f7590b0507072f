package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

func LoadMinIOConfig() MinIOConfig {
	return MinIOConfig{
		Endpoint:  os.Getenv("MINIO_ENDPOINT"),
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	}
}

type MinIOClient struct {
	Client *minio.Client
}

func NewMinIOClient(cfg MinIOConfig) (*MinIOClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("MINIO_ENDPOINT environment variable is not set")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinIOClient{Client: client}, nil
}

func (m *MinIOClient) Object(bucket, key string) *MinIOObject {
	return &MinIOObject{
		client: m.Client,
		Bucket: bucket,
		Key:    key,
	}
}

// MinIOObject is an upload source backed by a single bucket object.
type MinIOObject struct {
	client *minio.Client
	Bucket string
	Key    string
}

func (o *MinIOObject) Name() string {
	return path.Base(o.Key)
}

func (o *MinIOObject) String() string {
	return minioScheme + o.Bucket + "/" + o.Key
}

// Open stats the object before returning it so a missing key fails here
// rather than on the first read.
func (o *MinIOObject) Open(ctx context.Context) (io.ReadCloser, error) {
	obj, err := o.client.GetObject(ctx, o.Bucket, o.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", o, err)
	}

	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("failed to stat object %s: %w", o, err)
	}

	return obj, nil
}
