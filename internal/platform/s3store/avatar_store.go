// Package s3store keeps avatar images in an S3 compatible bucket.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

const (
	keyPrefix   = "avatars/"
	contentType = "image/png"
)

// ObjectAPI is the subset of the S3 client used by AvatarStore.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(
		ctx context.Context,
		in *s3.DeleteObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.DeleteObjectOutput, error)
}

// AvatarStore implements store.AvatarStore on top of an S3 bucket.
// Each avatar is stored as avatars/<user-id>.png.
type AvatarStore struct {
	client ObjectAPI
	bucket string
	logger *slog.Logger
}

var _ store.AvatarStore = (*AvatarStore)(nil)

// NewAvatarStore wraps an existing client.
func NewAvatarStore(client ObjectAPI, bucket string, logger *slog.Logger) *AvatarStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &AvatarStore{
		client: client,
		bucket: bucket,
		logger: logger.With(slog.String("component", "s3_avatar_store")),
	}
}

// NewClient builds an S3 client from the avatar configuration. Static
// credentials are used when both key fields are set; otherwise the default
// AWS credential chain applies. A custom endpoint targets MinIO and similar
// services.
func NewClient(ctx context.Context, cfg config.AvatarConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	}), nil
}

// ObjectKey returns the bucket key for a user's avatar.
func ObjectKey(userID uuid.UUID) string {
	return keyPrefix + userID.String() + ".png"
}

// Put implements store.AvatarStore.Put
func (s *AvatarStore) Put(ctx context.Context, userID uuid.UUID, image []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(ObjectKey(userID)),
		Body:          bytes.NewReader(image),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(image))),
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to upload avatar",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return fmt.Errorf("failed to upload avatar: %w", err)
	}
	return nil
}

// Get implements store.AvatarStore.Get
func (s *AvatarStore) Get(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ObjectKey(userID)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrAvatarNotFound
		}
		return nil, fmt.Errorf("failed to download avatar: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	image, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar body: %w", err)
	}
	return image, nil
}

// Delete implements store.AvatarStore.Delete
func (s *AvatarStore) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ObjectKey(userID)),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
