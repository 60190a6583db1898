package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/config"
	"github.com/rs/zerolog/log"
)

var ErrInvalidImage = errors.New("image must be a base64 data URI or an http(s) URL")

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ObjectStore is the part of the S3 client the image service needs.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ImageService uploads base64 encoded images to S3. Without a bucket the
// data URI itself is stored as the image reference.
type ImageService struct {
	client    ObjectStore
	bucket    string
	publicURL string
}

func NewImageService(s3Config *config.S3Config) *ImageService {
	if s3Config == nil {
		log.Warn().Msg("S3 bucket not configured, images are stored inline")
		return &ImageService{}
	}
	return &ImageService{
		client:    s3Config.Client,
		bucket:    s3Config.BucketName,
		publicURL: strings.TrimRight(s3Config.PublicURL, "/"),
	}
}

// NewImageServiceWithClient is used when the S3 client is built elsewhere.
func NewImageServiceWithClient(client ObjectStore, bucket, publicURL string) *ImageService {
	return &ImageService{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Store uploads value under folder and returns the URL to persist.
// Already uploaded http(s) URLs are returned unchanged.
func (s *ImageService) Store(ctx context.Context, folder, value string) (string, error) {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value, nil
	}

	contentType, data, err := decodeDataURI(value)
	if err != nil {
		return "", NewValidationError(imageField(folder), err.Error())
	}
	if s.client == nil {
		return value, nil
	}

	key := fmt.Sprintf("%s/%s.%s", folder, uuid.New().String(), imageExtensions[contentType])
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := s.publicURL + "/" + key
	log.Debug().Str("key", key).Int("bytes", len(data)).Msg("image uploaded")
	return url, nil
}

// Discard deletes an object previously returned by Store. References this
// service did not upload (inline data, foreign URLs) are left alone.
func (s *ImageService) Discard(ctx context.Context, ref string) {
	if s.client == nil {
		return
	}
	key, ok := strings.CutPrefix(ref, s.publicURL+"/")
	if !ok || key == "" {
		return
	}
	_, err := s.client.DeleteObject(context.WithoutCancel(ctx), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to delete orphaned image")
		return
	}
	log.Debug().Str("key", key).Msg("orphaned image deleted")
}

func imageField(folder string) string {
	if folder == "avatars" {
		return "avatar"
	}
	return "image"
}

// decodeDataURI parses "data:image/png;base64,<payload>".
func decodeDataURI(value string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(value, "data:")
	if !ok {
		return "", nil, ErrInvalidImage
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidImage
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrInvalidImage
	}
	if _, known := imageExtensions[contentType]; !known {
		return "", nil, fmt.Errorf("unsupported image type %q", contentType)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return "", nil, ErrInvalidImage
	}
	return contentType, data, nil
}
