// Package types defines the domain model shared by the bulk upload pipeline.
package types

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Record is one parsed input line that is eligible for registration.
type Record struct {
	Line     int    `json:"line"`      // 1-based source line the record starts on
	Token    string `json:"token"`     // platform device token, never empty
	UserData string `json:"user_data"` // opaque custom user data, may be empty
}

// OutcomeKind classifies the result of one registration call.
type OutcomeKind string

// Outcome kinds
const (
	OutcomeAccepted    OutcomeKind = "accepted"     // endpoint created
	OutcomeRejected    OutcomeKind = "rejected"     // service refused the request
	OutcomeClientError OutcomeKind = "client_error" // transport or client-side failure
)

// Outcome is the result of registering a single record.
// EndpointARN is set only for OutcomeAccepted, Reason only for the failure kinds.
type Outcome struct {
	Kind        OutcomeKind `json:"kind"`
	EndpointARN string      `json:"endpoint_arn,omitempty"`
	Reason      string      `json:"reason,omitempty"`
}

// Accepted builds a successful outcome.
func Accepted(endpointARN string) Outcome {
	return Outcome{Kind: OutcomeAccepted, EndpointARN: endpointARN}
}

// Rejected builds an outcome for a request the service refused.
func Rejected(reason string) Outcome {
	return Outcome{Kind: OutcomeRejected, Reason: reason}
}

// ClientError builds an outcome for a request that never got a service answer.
func ClientError(reason string) Outcome {
	return Outcome{Kind: OutcomeClientError, Reason: reason}
}

// OK reports whether the endpoint was created.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeAccepted
}

// SupportedRegions lists the regions that host SNS mobile push.
var SupportedRegions = []string{
	"us-east-1",
	"us-east-2",
	"us-west-1",
	"us-west-2",
	"ca-central-1",
	"sa-east-1",
	"eu-west-1",
	"eu-west-2",
	"eu-west-3",
	"eu-central-1",
	"eu-north-1",
	"ap-south-1",
	"ap-southeast-1",
	"ap-southeast-2",
	"ap-northeast-1",
	"ap-northeast-2",
	"us-gov-west-1",
}

var (
	// ErrMalformedARN is returned when an ARN has fewer than four segments.
	ErrMalformedARN = errors.New("arn is malformed")
	// ErrUnsupportedRegion is returned when the ARN region is not in SupportedRegions.
	ErrUnsupportedRegion = errors.New("region is not supported")
)

// ApplicationARN is a platform application identifier, e.g.
// arn:aws:sns:us-east-1:123456789012:app/GCM/MyApp.
type ApplicationARN string

// Region returns the fourth colon-delimited segment.
func (a ApplicationARN) Region() (string, error) {
	parts := strings.Split(string(a), ":")
	if len(parts) < 4 {
		return "", fmt.Errorf("%w: %q", ErrMalformedARN, string(a))
	}
	return parts[3], nil
}

// Validate checks that the ARN is well formed and its region is supported.
func (a ApplicationARN) Validate() error {
	region, err := a.Region()
	if err != nil {
		return err
	}
	if !slices.Contains(SupportedRegions, region) {
		return fmt.Errorf("%w: %q", ErrUnsupportedRegion, region)
	}
	return nil
}

func (a ApplicationARN) String() string {
	return string(a)
}
