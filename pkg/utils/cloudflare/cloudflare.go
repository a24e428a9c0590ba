package cloudflare

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Config carries the R2 bucket settings; set once at startup via Init.
type Config struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

var conf Config

func Init(c Config) {
	conf = c
}

func getS3Client() (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			conf.AccessKey,
			conf.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %v", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", conf.AccountID))
		o.UsePathStyle = true
		o.Region = "auto"
	})

	return client, nil
}

func publicURL() string {
	return strings.TrimSuffix(conf.PublicURL, "/")
}

type UploadThumbnailConfig struct {
	Body        *bytes.Buffer
	ContentType string
	VideoSlug   string
	Filename    string
}

type UploadResult struct {
	URL      string
	ObjectID string
}

// UploadThumbnail stores a processed thumbnail under a slugged, unique
// object key and returns its public CDN URL.
func UploadThumbnail(cfg UploadThumbnailConfig) (UploadResult, error) {
	safeSlug := slug.Make(cfg.VideoSlug)

	ext := filepath.Ext(cfg.Filename)
	uniqueID := fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.New().String())
	objectKey := filepath.Join("videos", safeSlug, "thumbnails", uniqueID+ext)

	client, err := getS3Client()
	if err != nil {
		return UploadResult{}, err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(conf.BucketName),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(cfg.Body.Bytes()),
		ContentType: aws.String(cfg.ContentType),
	}

	_, err = client.PutObject(context.TODO(), input)
	if err != nil {
		return UploadResult{}, fmt.Errorf("could not upload file to R2: %v", err)
	}

	return UploadResult{
		URL:      fmt.Sprintf("%s/%s", publicURL(), objectKey),
		ObjectID: uniqueID,
	}, nil
}

// DeleteObject removes a previously uploaded object by its public URL.
func DeleteObject(fullURL string) error {
	objectKey := strings.TrimPrefix(fullURL, publicURL()+"/")

	client, err := getS3Client()
	if err != nil {
		return err
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(conf.BucketName),
		Key:    aws.String(objectKey),
	}

	_, err = client.DeleteObject(context.TODO(), input)
	if err != nil {
		return fmt.Errorf("could not delete file from R2: %v", err)
	}

	return nil
}
