// Package archive exports conversation transcripts to S3 as (optionally
// gzipped) JSON documents, one object per conversation per export.
package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ignite/supportbot/internal/config"
	"github.com/ignite/supportbot/internal/engine"
	"github.com/ignite/supportbot/internal/repository/postgres"
)

// s3API is the slice of the S3 client the archiver uses; narrowed for tests.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Transcript is the exported document shape.
type Transcript struct {
	ConversationID string             `json:"conversation_id"`
	ExportedAt     time.Time          `json:"exported_at"`
	Customer       string             `json:"customer,omitempty"`
	Messages       []postgres.Message `json:"messages"`
	Session        *engine.Session    `json:"session,omitempty"`
}

// Archiver uploads transcripts to an S3 bucket.
type Archiver struct {
	client   s3API
	bucket   string
	prefix   string
	compress bool
}

// New creates an archiver using the default AWS credential chain.
func New(ctx context.Context, cfg config.ArchiveConfig) (*Archiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Archiver{
		client:   s3.NewFromConfig(awsCfg),
		bucket:   cfg.S3Bucket,
		prefix:   cfg.S3Prefix,
		compress: cfg.Compress,
	}, nil
}

// NewWithClient creates an archiver around an existing client (tests).
func NewWithClient(client s3API, cfg config.ArchiveConfig) *Archiver {
	return &Archiver{
		client:   client,
		bucket:   cfg.S3Bucket,
		prefix:   cfg.S3Prefix,
		compress: cfg.Compress,
	}
}

// Export uploads a transcript and returns the object key.
func (a *Archiver) Export(ctx context.Context, t *Transcript) (string, error) {
	if t.ExportedAt.IsZero() {
		t.ExportedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode transcript: %w", err)
	}

	key := fmt.Sprintf("%s%s/%s.json", a.prefix, t.ConversationID, t.ExportedAt.Format("20060102T150405Z"))
	contentType := "application/json"
	var encoding *string

	if a.compress {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(data); err != nil {
			return "", fmt.Errorf("compress transcript: %w", err)
		}
		if err := gz.Close(); err != nil {
			return "", fmt.Errorf("compress transcript: %w", err)
		}
		data = buf.Bytes()
		key += ".gz"
		gzEnc := "gzip"
		encoding = &gzEnc
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          &a.bucket,
		Key:             &key,
		Body:            bytes.NewReader(data),
		ContentType:     &contentType,
		ContentEncoding: encoding,
	})
	if err != nil {
		return "", fmt.Errorf("upload transcript %s: %w", key, err)
	}
	return key, nil
}
