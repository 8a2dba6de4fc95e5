package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	// PublicBaseURL prefixes object keys to build the URL stored for an image.
	PublicBaseURL string
}

// NewS3Config initializes the S3 client from the application configuration.
// Credentials come from the default AWS chain (env, shared config, instance role).
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return &S3Config{
		Client:        client,
		BucketName:    cfg.S3BucketName,
		PublicBaseURL: publicBaseURL(cfg),
	}, nil
}

func publicBaseURL(cfg *Config) string {
	switch {
	case cfg.S3PublicBaseURL != "":
		return strings.TrimSuffix(cfg.S3PublicBaseURL, "/")
	case cfg.S3Endpoint != "" && cfg.S3UsePathStyle:
		return strings.TrimSuffix(cfg.S3Endpoint, "/") + "/" + cfg.S3BucketName
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.S3BucketName)
	}
}
