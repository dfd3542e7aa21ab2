// Package aws stores generated documents in an S3 bucket.
package aws

import (
	"bytes"
	"errors"

	awssdk "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type Config struct {
	Session Session `mapstructure:"session"`
	Bucket  Bucket  `mapstructure:"bucket"`
}

type Session struct {
	Region      string      `mapstructure:"region"`
	Credentials Credentials `mapstructure:"credentials"`
}

type Credentials struct {
	ID     string `mapstructure:"id"`
	Secret string `mapstructure:"secret"`
	Token  string `mapstructure:"token"`
}

type Bucket struct {
	BucketName   string `mapstructure:"bucket_name"`
	SSEncryption string `mapstructure:"server_side_encryption"`
	StorageClass string `mapstructure:"storage_class"`
}

// Enabled is true when a bucket and a region are configured
func (cfg Config) Enabled() bool {
	return cfg.Bucket.BucketName != "" && cfg.Session.Region != ""
}

// Uploader stores files under a key
type Uploader interface {
	Upload(key, contentType string, data []byte) (string, error)
}

type s3Uploader struct {
	uploader *s3manager.Uploader
	bucket   Bucket
}

// CreateSession godoc
func CreateSession(cfg *Session) (*session.Session, error) {
	return session.NewSession(&awssdk.Config{
		Region:      awssdk.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.Credentials.ID, cfg.Credentials.Secret, cfg.Credentials.Token),
	})
}

// NewUploader creates an S3 uploader for the configured bucket
func NewUploader(cfg Config) (Uploader, error) {
	if !cfg.Enabled() {
		return nil, errors.New("aws: bucket is not configured")
	}
	sess, err := CreateSession(&cfg.Session)
	if err != nil {
		return nil, err
	}
	return &s3Uploader{uploader: s3manager.NewUploader(sess), bucket: cfg.Bucket}, nil
}

// Upload the data and return the location of the object
func (u *s3Uploader) Upload(key, contentType string, data []byte) (string, error) {
	input := &s3manager.UploadInput{
		Bucket:      awssdk.String(u.bucket.BucketName),
		Key:         awssdk.String(key),
		Body:        bytes.NewReader(data),
		ContentType: awssdk.String(contentType),
	}
	if u.bucket.SSEncryption != "" {
		input.ServerSideEncryption = awssdk.String(u.bucket.SSEncryption)
	}
	if u.bucket.StorageClass != "" {
		input.StorageClass = awssdk.String(u.bucket.StorageClass)
	}
	out, err := u.uploader.Upload(input)
	if err != nil {
		return "", err
	}
	return out.Location, nil
}
