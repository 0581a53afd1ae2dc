package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MaxUploadSize is the per-file cap for report photos: 1.5MB.
const MaxUploadSize = 1536 * 1024

var (
	ErrFileTooLarge    = errors.New("file exceeds the 1.5MB upload limit")
	ErrInvalidFileType = errors.New("only image files can be uploaded")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Config holds the S3 connection settings for report photo storage.
type Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	// PublicURL is the base under which uploaded objects are reachable,
	// e.g. https://<bucket>.s3.<region>.amazonaws.com
	PublicURL string
}

// BlobService stores report photos in an S3 bucket and hands back public
// URLs.
type BlobService struct {
	client *s3.Client
	bucket string
	public string
}

func NewBlobService(cfg Config) (*BlobService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithBaseEndpoint(cfg.Endpoint),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &BlobService{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		public: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// Upload validates the payload, stores it under a generated key in the
// given folder and returns the public URL. Oversized and non-image payloads
// are rejected before any network call.
func (b *BlobService) Upload(ctx context.Context, data []byte, contentType, folder string) (string, error) {
	if len(data) > MaxUploadSize {
		return "", ErrFileTooLarge
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", ErrInvalidFileType
	}

	key := folder + "/" + uuid.NewString() + ext
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return b.public + "/" + key, nil
}

// Delete removes a previously uploaded object identified by its public URL.
func (b *BlobService) Delete(ctx context.Context, url string) error {
	key, err := b.keyFromURL(url)
	if err != nil {
		return err
	}

	_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (b *BlobService) keyFromURL(url string) (string, error) {
	if b.public == "" || !strings.HasPrefix(url, b.public+"/") {
		return "", fmt.Errorf("url %q is not under this bucket", url)
	}
	return strings.TrimPrefix(url, b.public+"/"), nil
}
