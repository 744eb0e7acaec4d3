package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoapply/config"
)

type fakeS3 struct {
	s3iface.S3API
	puts []*s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.puts = append(f.puts, in)
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func newTestEvidenceStore(client s3iface.S3API) *S3EvidenceStore {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &S3EvidenceStore{
		s3Client: client,
		bucket:   "evidence",
		region:   "us-east-1",
		prefix:   "applications",
		now:      func() time.Time { return fixed },
	}
}

func TestNewS3EvidenceStore_RequiresBucket(t *testing.T) {
	store, err := NewS3EvidenceStore(config.EvidenceConfig{Region: "us-east-1"})
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestS3EvidenceStore_SaveScreenshot(t *testing.T) {
	client := &fakeS3{}
	store := newTestEvidenceStore(client)

	location, err := store.SaveScreenshot(context.Background(), "https://jobs.lever.co/acme/1", []byte("png-bytes"))
	require.NoError(t, err)
	require.Len(t, client.puts, 1)

	put := client.puts[0]
	assert.Equal(t, "evidence", aws.StringValue(put.Bucket))
	assert.Equal(t, "image/png", aws.StringValue(put.ContentType))
	assert.True(t, strings.HasPrefix(aws.StringValue(put.Key), "applications/2025-03-01/https___jobs_lever_co_acme_1-"))
	assert.Equal(t, "png-bytes", string(client.body))
	assert.Equal(t, "s3://evidence/"+aws.StringValue(put.Key), location)
}

func TestS3EvidenceStore_SaveScreenshotErrors(t *testing.T) {
	store := newTestEvidenceStore(&fakeS3{err: errors.New("access denied")})

	_, err := store.SaveScreenshot(context.Background(), "job-1", []byte("x"))
	assert.ErrorContains(t, err, "access denied")

	_, err = store.SaveScreenshot(context.Background(), "job-1", nil)
	assert.Error(t, err)
}

func TestS3EvidenceStoreValidation(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		region  string
		isValid bool
	}{
		{name: "valid configuration", bucket: "my-bucket", region: "us-east-1", isValid: true},
		{name: "empty bucket", bucket: "", region: "us-east-1", isValid: false},
		{name: "empty region", bucket: "my-bucket", region: "", isValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &S3EvidenceStore{bucket: tt.bucket, region: tt.region}
			err := store.validate()
			if tt.isValid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "job_42", sanitizeKey("job/42"))
	assert.Len(t, sanitizeKey(strings.Repeat("a", 200)), 80)
}
