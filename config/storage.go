package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	// PublicURL is the prefix under which stored objects are served.
	PublicURL string
}

// NewS3Config initializes the S3 client. It returns nil when no bucket is
// configured, in which case uploads are disabled.
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	if cfg.S3BucketName == "" {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := "https://" + cfg.S3BucketName + ".s3." + cfg.AWSRegion + ".amazonaws.com"
	if cfg.S3Endpoint != "" {
		publicURL = cfg.S3Endpoint + "/" + cfg.S3BucketName
	}

	return &S3Config{
		Client:     client,
		BucketName: cfg.S3BucketName,
		PublicURL:  publicURL,
	}, nil
}
