// Package registration wraps the SNS platform endpoint calls and folds their
// failures into types.Outcome values.
//
// Only two failures are fatal to a run, and both concern the application
// itself: it does not exist, or its ARN is rejected. Every other failure
// belongs to a single token and becomes a Rejected or ClientError outcome.
package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/smithy-go"

	"github.com/ChuLiYu/sns-bulkupload/pkg/types"
)

//go:generate mockgen -source=client.go -destination=mocks/mocks.go -package=mocks API

var (
	// ErrApplicationNotFound means the platform application ARN does not exist.
	ErrApplicationNotFound = errors.New("platform application not found")
	// ErrApplicationInvalid means the service rejected the application ARN itself.
	ErrApplicationInvalid = errors.New("platform application arn is invalid")
)

// API is the part of *sns.Client used by the tool.
type API interface {
	CreatePlatformEndpoint(ctx context.Context, params *sns.CreatePlatformEndpointInput, optFns ...func(*sns.Options)) (*sns.CreatePlatformEndpointOutput, error)
	GetPlatformApplicationAttributes(ctx context.Context, params *sns.GetPlatformApplicationAttributesInput, optFns ...func(*sns.Options)) (*sns.GetPlatformApplicationAttributesOutput, error)
}

// Client registers device tokens against one SNS API. It is safe for
// concurrent use; it holds no mutable state.
type Client struct {
	api     API
	timeout time.Duration
}

// NewClient wraps api. A non-positive timeout disables the per-call deadline.
func NewClient(api API, timeout time.Duration) *Client {
	return &Client{api: api, timeout: timeout}
}

// VerifyApplication confirms the platform application exists.
func (c *Client) VerifyApplication(ctx context.Context, app types.ApplicationARN) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.api.GetPlatformApplicationAttributes(ctx, &sns.GetPlatformApplicationAttributesInput{
		PlatformApplicationArn: aws.String(app.String()),
	})
	if err == nil {
		return nil
	}

	var notFound *snstypes.NotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s does not correspond to any existing platform application: %s",
			ErrApplicationNotFound, app, notFound.ErrorMessage())
	}
	var invalid *snstypes.InvalidParameterException
	if errors.As(err, &invalid) {
		return fmt.Errorf("%w: %s: %s", ErrApplicationInvalid, app, invalid.ErrorMessage())
	}
	return fmt.Errorf("failed to look up platform application %s: %w", app, err)
}

// Register creates an endpoint for token. The returned error is non-nil only
// when the run cannot continue (the application disappeared); per-token
// failures are reported through the Outcome.
func (c *Client) Register(ctx context.Context, app types.ApplicationARN, token, userData string) (types.Outcome, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	input := &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(app.String()),
		Token:                  aws.String(token),
	}
	if userData != "" {
		input.CustomUserData = aws.String(userData)
	}

	out, err := c.api.CreatePlatformEndpoint(ctx, input)
	if err != nil {
		return Classify(app, err)
	}
	return types.Accepted(aws.ToString(out.EndpointArn)), nil
}

// Classify maps a CreatePlatformEndpoint error onto an outcome.
func Classify(app types.ApplicationARN, err error) (types.Outcome, error) {
	var notFound *snstypes.NotFoundException
	if errors.As(err, &notFound) {
		return types.Outcome{}, fmt.Errorf("%w: %s: %s", ErrApplicationNotFound, app, notFound.ErrorMessage())
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return types.Rejected(fmt.Sprintf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())), nil
	}
	return types.ClientError(err.Error()), nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
