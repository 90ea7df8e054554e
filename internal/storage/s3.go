package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ProofStore holds proof files in an S3-compatible bucket (R2 in
// production). Keys, not URLs, are persisted on the game record; URLs
// are derived when serving so the CDN base can change without a data
// migration.
type ProofStore struct {
	client     *s3.Client
	bucket     string
	cdnBaseURL string
}

type Config struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

func NewProofStore(ctx context.Context, cfg Config) (*ProofStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("proof store: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("proof store: load config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	cdn := cfg.CDNBaseURL
	if cdn == "" {
		cdn = cfg.Endpoint + "/" + cfg.Bucket
	}

	return &ProofStore{client: client, bucket: cfg.Bucket, cdnBaseURL: cdn}, nil
}

// Upload stores one multipart proof file under a fresh key scoped to
// the game and returns the key.
func (p *ProofStore) Upload(ctx context.Context, gameID int64, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("proof store: open upload: %w", err)
	}
	defer f.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, f); err != nil {
		return "", fmt.Errorf("proof store: read upload: %w", err)
	}

	key := fmt.Sprintf("proofs/%d/%s%s", gameID, uuid.NewString(), path.Ext(fh.Filename))
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        buf,
		ContentType: aws.String(fh.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("proof store: put object: %w", err)
	}
	return key, nil
}

// Delete removes a stored proof file. Used by the retention sweeper.
func (p *ProofStore) Delete(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	return err
}

// URL derives the public URL for a stored key.
func (p *ProofStore) URL(key string) string {
	return p.cdnBaseURL + "/" + key
}
