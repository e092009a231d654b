package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"securevault/internal/vault"
)

// S3Config holds the settings needed to reach an S3 (or S3-compatible,
// e.g. MinIO) bucket.
type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Storage is a vault.Storage implementation that keeps the enrollment
// document and the encrypted blob as objects in an S3 bucket.
type S3Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

var _ vault.Storage = (*S3Storage)(nil)

// NewS3Storage builds an S3-backed storage from cfg. When Endpoint is set it
// is used as the base endpoint, which allows pointing at MinIO or another
// S3-compatible service.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		// MinIO requires path-style addressing
		o.UsePathStyle = cfg.Endpoint != ""
	})

	return &S3Storage{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
	}, nil
}

func (s *S3Storage) Enrollment() (*vault.Enrollment, error) {
	data, err := s.getObject(s.key("enrollment.json"))
	if err != nil {
		if errors.Is(err, vault.ErrNoBlob) {
			return nil, nil
		}
		return nil, err
	}

	var ef enrollmentFile
	if err := json.Unmarshal(data, &ef); err != nil {
		return nil, fmt.Errorf("failed to parse enrollment object: %w", err)
	}
	if !ef.Enrolled {
		return nil, nil
	}
	if ef.SchemaVersion > vault.SchemaVersion {
		return nil, fmt.Errorf("vault schema version %d is newer than supported version %d", ef.SchemaVersion, vault.SchemaVersion)
	}

	return &vault.Enrollment{
		Salt:           ef.Salt,
		PassphraseHash: ef.PassphraseHash,
	}, nil
}

func (s *S3Storage) SaveEnrollment(e *vault.Enrollment) error {
	ef := enrollmentFile{
		Salt:           e.Salt,
		PassphraseHash: e.PassphraseHash,
		Enrolled:       true,
		SchemaVersion:  vault.SchemaVersion,
	}
	data, err := json.MarshalIndent(ef, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal enrollment: %w", err)
	}
	return s.putObject(s.key("enrollment.json"), data)
}

func (s *S3Storage) LoadBlob() ([]byte, error) {
	return s.getObject(s.key("vault.blob"))
}

func (s *S3Storage) StoreBlob(data []byte) error {
	return s.putObject(s.key("vault.blob"), data)
}

func (s *S3Storage) Reset() error {
	for _, name := range []string{"enrollment.json", "vault.blob"} {
		key := s.key(name)
		_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}

func (s *S3Storage) Close() error { return nil }

func (s *S3Storage) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *S3Storage) getObject(key string) ([]byte, error) {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, vault.ErrNoBlob
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *S3Storage) putObject(key string, data []byte) error {
	_, err := s.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}
