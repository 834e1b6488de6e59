package pics

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/acm19/waexif/internal/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// s3API is the part of the S3 client used to archive run logs
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// LogArchiver defines the interface for copying run logs to S3
type LogArchiver interface {
	// Archive uploads the file at logPath to bucket under prefix and returns the object key.
	// An identical object already in the bucket is not uploaded again.
	Archive(ctx context.Context, logPath, bucket, prefix string) (string, error)
}

// logArchiver implements the LogArchiver interface
type logArchiver struct {
	client s3API
}

// NewLogArchiver creates a LogArchiver using the default AWS configuration chain
func NewLogArchiver(ctx context.Context) (LogArchiver, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &logArchiver{
		client: s3.NewFromConfig(cfg),
	}, nil
}

// Archive uploads the file at logPath to bucket under prefix.
func (a *logArchiver) Archive(ctx context.Context, logPath, bucket, prefix string) (string, error) {
	if bucket == "" {
		return "", fmt.Errorf("bucket is required")
	}
	key := objectKey(prefix, filepath.Base(logPath))

	localHash, err := calculateMD5(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to calculate MD5: %w", err)
	}

	headOutput, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		remoteETag := strings.Trim(aws.ToString(headOutput.ETag), "\"")
		if remoteETag == localHash {
			logger.Info("Run log already archived with matching hash, skipping", "bucket", bucket, "key", key, "hash", localHash)
			return key, nil
		}
		return "", fmt.Errorf("hash mismatch for '%s': S3 object exists with different content (local: %s, remote: %s)", key, localHash, remoteETag)
	} else if !isNotFoundError(err) {
		return "", fmt.Errorf("failed to check S3 object existence: %w", err)
	}

	file, err := os.Open(logPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	logger.Info("Uploading run log to S3", "bucket", bucket, "key", key, "hash", localHash)
	if _, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("text/plain"),
	}); err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return key, nil
}

// objectKey joins prefix and name with a single slash.
func objectKey(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// calculateMD5 calculates the MD5 hash of a file
func calculateMD5(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// isNotFoundError checks if the error is a NotFound error
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return true
	}

	// HeadObject has no body, so some 404s only carry the status code
	return strings.Contains(err.Error(), "StatusCode: 404")
}
