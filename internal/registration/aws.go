package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/ChuLiYu/sns-bulkupload/internal/config"
)

// ErrCredentials is returned when no usable AWS credentials are found.
var ErrCredentials = errors.New("credential retrieval failed")

// Options configures the SNS client.
type Options struct {
	Region          string
	EndpointURL     string // empty means the regional AWS endpoint
	CredentialsFile string // empty means the default credential chain
}

// NewSNSAPI builds an SNS client for opts.Region and resolves credentials
// eagerly so a missing key fails before any record is read.
func NewSNSAPI(ctx context.Context, opts Options) (*sns.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}

	if opts.CredentialsFile != "" {
		creds, err := config.LoadCredentials(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCredentials, err)
		}
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKey, creds.SecretKey, creds.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentials, err)
	}
	if awsCfg.Credentials == nil {
		return nil, fmt.Errorf("%w: no credential provider configured", ErrCredentials)
	}
	if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentials, err)
	}

	return sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if opts.EndpointURL != "" {
			o.BaseEndpoint = aws.String(opts.EndpointURL)
		}
	}), nil
}
