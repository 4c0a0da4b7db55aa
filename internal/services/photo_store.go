package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/questchain/questchain-api/internal/config"
	"github.com/questchain/questchain-api/internal/models"
)

var ErrPhotoStoreDisabled = errors.New("image storage is not configured")

const photoFolder = "profile_photos"

// PhotoStore keeps profile images outside the database.
type PhotoStore interface {
	Upload(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader, size int64) (models.ProfilePhoto, error)
	Delete(ctx context.Context, publicID string) error
}

type DisabledPhotoStore struct{}

func (DisabledPhotoStore) Upload(context.Context, uuid.UUID, string, string, io.Reader, int64) (models.ProfilePhoto, error) {
	return models.ProfilePhoto{}, ErrPhotoStoreDisabled
}

func (DisabledPhotoStore) Delete(context.Context, string) error {
	return ErrPhotoStoreDisabled
}

// S3PhotoStore stores images in an S3-compatible bucket (AWS, MinIO, R2).
type S3PhotoStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewPhotoStore builds an S3 store from config, or a disabled store when S3 is not configured.
func NewPhotoStore(ctx context.Context, cfg *config.Config) (PhotoStore, error) {
	if !cfg.PhotoStoreEnabled() {
		return DisabledPhotoStore{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey, cfg.S3SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3PhotoStore{
		client:    client,
		bucket:    cfg.S3Bucket,
		publicURL: photoBaseURL(cfg),
	}, nil
}

func (s *S3PhotoStore) Upload(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader, size int64) (models.ProfilePhoto, error) {
	key := photoKey(userID, filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return models.ProfilePhoto{}, fmt.Errorf("failed to upload photo: %w", err)
	}

	return models.ProfilePhoto{PublicID: key, URL: s.publicURL + "/" + key}, nil
}

func (s *S3PhotoStore) Delete(ctx context.Context, publicID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo %s: %w", publicID, err)
	}
	return nil
}

func photoKey(userID uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s/%s/%s%s", photoFolder, userID, uuid.NewString(), ext)
}

func photoBaseURL(cfg *config.Config) string {
	switch {
	case cfg.S3PublicURL != "":
		return strings.TrimRight(cfg.S3PublicURL, "/")
	case cfg.S3Endpoint != "":
		return strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
}
