// Package blobstore archives uploaded résumé PDFs in S3-compatible storage.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ContentTypePDF is stored on archived documents.
const ContentTypePDF = "application/pdf"

// Store archives raw documents per résumé version.
type Store interface {
	Put(ctx context.Context, userID, versionID uuid.UUID, data []byte) error
	Delete(ctx context.Context, userID, versionID uuid.UUID) error
}

// Config locates the bucket. An empty Bucket disables archiving.
type Config struct {
	Bucket   string
	Region   string
	Prefix   string
	Endpoint string // optional, for S3-compatible providers
}

// objectAPI is the subset of *s3.Client used here.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store writes documents to <prefix>/<userID>/<versionID>.pdf.
type S3Store struct {
	client objectAPI
	bucket string
	prefix string
}

// New returns a Nop store when cfg.Bucket is empty, otherwise an S3Store
// using the default AWS credential chain.
func New(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Bucket == "" {
		return Nop{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Key returns the object key for a version.
func (s *S3Store) Key(userID, versionID uuid.UUID) string {
	return path.Join(s.prefix, userID.String(), versionID.String()+".pdf")
}

// Put uploads the document.
func (s *S3Store) Put(ctx context.Context, userID, versionID uuid.UUID, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(userID, versionID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ContentTypePDF),
	})
	if err != nil {
		return fmt.Errorf("failed to archive document: %w", err)
	}
	return nil
}

// Delete removes the document. Deleting a missing key is not an error in S3.
func (s *S3Store) Delete(ctx context.Context, userID, versionID uuid.UUID) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(userID, versionID)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete archived document: %w", err)
	}
	return nil
}

// Nop discards documents.
type Nop struct{}

// Put implements Store.
func (Nop) Put(context.Context, uuid.UUID, uuid.UUID, []byte) error { return nil }

// Delete implements Store.
func (Nop) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }
