package storage

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/kova98/nbainsights/data"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrNoBatches = errors.New("no batch files found")

// ObjectStore is the part of the bucket the collector and viewer need.
type ObjectStore interface {
	UploadFile(ctx context.Context, key, path string) error
	ListBatches(ctx context.Context, prefix string) ([]string, error)
	Download(ctx context.Context, key string) ([]byte, error)
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type Bucket struct {
	cfg    Config
	client *minio.Client
}

func New(cfg Config) (*Bucket, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &Bucket{cfg: cfg, client: cl}, nil
}

func (s *Bucket) Name() string {
	return s.cfg.Bucket
}

func (s *Bucket) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *Bucket) UploadFile(ctx context.Context, key, path string) error {
	_, err := s.client.FPutObject(ctx, s.cfg.Bucket, key, path, minio.PutObjectOptions{
		ContentType: "text/csv; charset=utf-8",
	})
	return err
}

// ListBatches returns the .csv keys under prefix, newest first. Batch names
// embed the collection time, so reverse lexical order is reverse time order.
func (s *Bucket) ListBatches(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		keys = append(keys, obj.Key)
	}
	return SortBatches(keys), nil
}

func (s *Bucket) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

// SortBatches keeps batch keys only and orders them newest first.
func SortBatches(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if data.IsBatchKey(k) {
			out = append(out, k)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}
