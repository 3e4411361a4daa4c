package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"lockerroom-talk/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	awscreds "github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService stores media message attachments and profile photos. MinIO
// is used when configured (self-hosted deployments), S3 otherwise.
type StorageService struct {
	cfg         *config.Config
	s3Client    *s3.S3
	minioClient *minio.Client
	useMinIO    bool
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	service := &StorageService{cfg: cfg}

	if cfg.MinIOEndpoint != "" {
		service.useMinIO = true
		minioClient, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
			Creds:  miniocreds.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create MinIO client: %w", err)
		}
		service.minioClient = minioClient
	} else {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(cfg.AWSRegion),
			Credentials: awscreds.NewStaticCredentials(
				cfg.AWSAccessKeyID,
				cfg.AWSSecretAccessKey,
				"",
			),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		service.s3Client = s3.New(sess)
	}

	return service, nil
}

// UploadMedia validates size and content type against the configured limits
// before storing, and returns the public URL of the stored object.
func (s *StorageService) UploadMedia(ctx context.Context, file io.Reader, size int64, originalName, contentType string) (string, error) {
	if size > s.cfg.MaxFileSize {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", s.cfg.MaxFileSize)
	}
	if !s.allowedType(contentType) {
		return "", fmt.Errorf("content type %q is not allowed", contentType)
	}

	filename := GenerateObjectName(originalName)
	if s.useMinIO {
		return s.uploadToMinIO(ctx, file, size, filename, contentType)
	}
	return s.uploadToS3(file, filename, contentType)
}

func (s *StorageService) DeleteMedia(ctx context.Context, url string) error {
	key := s.extractKeyFromURL(url)
	if key == "" {
		return fmt.Errorf("invalid file URL")
	}

	if s.useMinIO {
		return s.deleteFromMinIO(ctx, key)
	}
	return s.deleteFromS3(key)
}

func (s *StorageService) uploadToS3(file io.Reader, filename, contentType string) (string, error) {
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.MediaBucket),
		Key:         aws.String(filename),
		Body:        bytes.NewReader(fileBytes),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.MediaBucket, s.cfg.AWSRegion, filename)
	return url, nil
}

func (s *StorageService) uploadToMinIO(ctx context.Context, file io.Reader, size int64, filename, contentType string) (string, error) {
	_, err := s.minioClient.PutObject(ctx, s.cfg.MediaBucket, filename, file, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	protocol := "http"
	if s.cfg.MinIOUseSSL {
		protocol = "https"
	}
	url := fmt.Sprintf("%s://%s/%s/%s", protocol, s.cfg.MinIOEndpoint, s.cfg.MediaBucket, filename)
	return url, nil
}

func (s *StorageService) deleteFromS3(key string) error {
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.MediaBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *StorageService) deleteFromMinIO(ctx context.Context, key string) error {
	if err := s.minioClient.RemoveObject(ctx, s.cfg.MediaBucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete from MinIO: %w", err)
	}
	return nil
}

func (s *StorageService) extractKeyFromURL(url string) string {
	if strings.Contains(url, "amazonaws.com") {
		parts := strings.Split(url, "/")
		if len(parts) > 3 {
			return strings.Join(parts[3:], "/")
		}
	}

	if s.cfg.MinIOEndpoint != "" && strings.Contains(url, s.cfg.MinIOEndpoint) {
		parts := strings.Split(url, "/")
		if len(parts) > 4 {
			return strings.Join(parts[4:], "/")
		}
	}

	return ""
}

func (s *StorageService) GeneratePresignedURL(ctx context.Context, filename string, expiration time.Duration) (string, error) {
	if s.useMinIO {
		url, err := s.minioClient.PresignedGetObject(ctx, s.cfg.MediaBucket, filename, expiration, nil)
		if err != nil {
			return "", fmt.Errorf("failed to generate presigned URL: %w", err)
		}
		return url.String(), nil
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.cfg.MediaBucket),
		Key:    aws.String(filename),
	})
	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url, nil
}

func (s *StorageService) EnsureBucket(ctx context.Context) error {
	if s.useMinIO {
		exists, err := s.minioClient.BucketExists(ctx, s.cfg.MediaBucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket existence: %w", err)
		}
		if !exists {
			if err := s.minioClient.MakeBucket(ctx, s.cfg.MediaBucket, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("failed to create MinIO bucket: %w", err)
			}
		}
		return nil
	}

	_, err := s.s3Client.CreateBucket(&s3.CreateBucketInput{
		Bucket: aws.String(s.cfg.MediaBucket),
	})
	if err != nil && !strings.Contains(err.Error(), "BucketAlreadyOwnedByYou") {
		return fmt.Errorf("failed to create S3 bucket: %w", err)
	}
	return nil
}

func (s *StorageService) allowedType(contentType string) bool {
	for _, allowed := range s.cfg.AllowedImageTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

func GenerateObjectName(originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%s%s", uuid.NewString(), ext)
}
