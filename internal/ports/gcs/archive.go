// Package gcs archives finished duel records in a Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"cardduel/internal/ports"
)

// Archive writes objects under one prefix of a bucket.
type Archive struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	prefix string
}

// Open connects to bucketName. An empty endpoint uses the default
// credentials; a non-empty one targets an emulator without authentication.
func Open(ctx context.Context, bucketName, prefix, endpoint string) (*Archive, error) {
	if bucketName == "" {
		return nil, errors.New("archive bucket is required")
	}
	var opts []option.ClientOption
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &Archive{
		client: client,
		bucket: client.Bucket(bucketName),
		name:   bucketName,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (a *Archive) objectPath(name string) string {
	return path.Join(a.prefix, name)
}

// Put stores data under name and returns its gs:// URI.
func (a *Archive) Put(ctx context.Context, name string, data []byte) (string, error) {
	objectPath := a.objectPath(name)
	w := a.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType(name)
	w.Metadata = map[string]string{"source": "cardduel"}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", objectPath, err)
	}
	return fmt.Sprintf("gs://%s/%s", a.name, objectPath), nil
}

// Get reads an object back; a missing object is ports.ErrNotFound.
func (a *Archive) Get(ctx context.Context, name string) ([]byte, error) {
	r, err := a.bucket.Object(a.objectPath(name)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (a *Archive) Close() error {
	return a.client.Close()
}

func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	case strings.HasSuffix(name, ".txt"):
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
