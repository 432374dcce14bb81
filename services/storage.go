package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rpupo63/sideshub-backend/config"
)

var (
	ErrStorageNotConfigured = errors.New("object storage is not configured")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

// Thumbnail uploads accept these content types, mapped to the object suffix.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type putPresigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// PresignedUpload is what a client needs to PUT a file straight to the bucket.
type PresignedUpload struct {
	UploadURL string    `json:"uploadUrl"`
	Method    string    `json:"method"`
	Key       string    `json:"key"`
	PublicURL string    `json:"publicUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ObjectStorage hands out presigned PUT URLs; file bytes never pass through
// this service.
type ObjectStorage struct {
	presigner putPresigner
	bucket    string
	publicURL string
	ttl       time.Duration
}

// NewObjectStorage builds an S3 client from S3_* configuration. S3_ENDPOINT
// switches to path-style addressing for S3 compatible stores (R2, MinIO).
func NewObjectStorage(ctx context.Context, c map[string]string) (*ObjectStorage, error) {
	bucket := config.GetString(c, "S3_BUCKET", "")
	if bucket == "" {
		return nil, ErrStorageNotConfigured
	}
	region := config.GetString(c, "S3_REGION", "us-east-1")

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if keyID := config.GetString(c, "S3_ACCESS_KEY_ID", ""); keyID != "" {
		secret := config.GetString(c, "S3_SECRET_ACCESS_KEY", "")
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(keyID, secret, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := config.GetString(c, "S3_ENDPOINT", "")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := config.GetString(c, "S3_PUBLIC_URL", "")
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &ObjectStorage{
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		ttl:       config.GetDuration(c, "UPLOAD_URL_TTL", 15*time.Minute),
	}, nil
}

// PresignUpload returns a short-lived PUT URL for a new object under the
// user's prefix. Only image content types are accepted.
func (s *ObjectStorage) PresignUpload(ctx context.Context, userID, contentType string) (PresignedUpload, error) {
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return PresignedUpload{}, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, contentType)
	}

	key := fmt.Sprintf("thumbnails/%s/%s%s", url.PathEscape(userID), uuid.New(), ext)
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return PresignedUpload{}, fmt.Errorf("presign upload: %w", err)
	}

	return PresignedUpload{
		UploadURL: req.URL,
		Method:    req.Method,
		Key:       key,
		PublicURL: s.publicURL + "/" + key,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}, nil
}
