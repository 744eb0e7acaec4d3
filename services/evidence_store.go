package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"autoapply/config"
)

// EvidenceStore keeps a screenshot of the page as it looked after an
// attempt, so partial and failed results can be reviewed by hand.
type EvidenceStore interface {
	SaveScreenshot(ctx context.Context, jobID string, png []byte) (string, error)
}

type S3EvidenceStore struct {
	s3Client s3iface.S3API
	bucket   string
	region   string
	prefix   string
	now      func() time.Time
}

// NewS3EvidenceStore uses static credentials when AWS_ACCESS_KEY_ID and
// AWS_SECRET_ACCESS_KEY are set, otherwise the default credential chain.
func NewS3EvidenceStore(cfg config.EvidenceConfig) (*S3EvidenceStore, error) {
	store := &S3EvidenceStore{bucket: cfg.Bucket, region: cfg.Region, prefix: cfg.Prefix, now: time.Now}
	if err := store.validate(); err != nil {
		return nil, err
	}

	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if accessKey != "" && secretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	store.s3Client = s3.New(sess)
	return store, nil
}

func (s *S3EvidenceStore) SaveScreenshot(ctx context.Context, jobID string, png []byte) (string, error) {
	if len(png) == 0 {
		return "", fmt.Errorf("empty screenshot")
	}
	key := s.objectKey(jobID)

	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(png),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload screenshot to S3: %w", err)
	}

	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	log.Printf("Evidence uploaded to %s", location)
	return location, nil
}

func (s *S3EvidenceStore) objectKey(jobID string) string {
	if jobID == "" {
		jobID = "unknown"
	}
	name := fmt.Sprintf("%s-%d.png", sanitizeKey(jobID), s.now().UnixNano())
	return path.Join(s.prefix, s.now().UTC().Format("2006-01-02"), name)
}

func (s *S3EvidenceStore) validate() error {
	if s.bucket == "" {
		return fmt.Errorf("bucket name is required")
	}
	if s.region == "" {
		return fmt.Errorf("region is required")
	}
	return nil
}

// sanitizeKey keeps job ids (often full URLs) usable as a single key segment.
func sanitizeKey(id string) string {
	out := make([]rune, 0, len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
		if len(out) >= 80 {
			break
		}
	}
	return string(out)
}
