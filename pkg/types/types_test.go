package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationARN_Region(t *testing.T) {
	arn := ApplicationARN("arn:aws:sns:eu-west-1:123456789012:app/GCM/demo")

	region, err := arn.Region()
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", region)
}

func TestApplicationARN_Validate(t *testing.T) {
	tests := []struct {
		name    string
		arn     ApplicationARN
		wantErr error
	}{
		{"supported region", "arn:aws:sns:us-east-1:123456789012:app/APNS/demo", nil},
		{"gov region", "arn:aws:sns:us-gov-west-1:123456789012:app/GCM/demo", nil},
		{"unknown region", "arn:aws:sns:xx-fake-1:123456789012:app/GCM/demo", ErrUnsupportedRegion},
		{"too few segments", "arn:aws:sns", ErrMalformedARN},
		{"empty", "", ErrMalformedARN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.arn.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOutcomeConstructors(t *testing.T) {
	ok := Accepted("arn:aws:sns:us-east-1:1:endpoint/GCM/demo/abc")
	assert.True(t, ok.OK())
	assert.Equal(t, OutcomeAccepted, ok.Kind)
	assert.Empty(t, ok.Reason)

	rej := Rejected("InvalidParameter: bad token")
	assert.False(t, rej.OK())
	assert.Equal(t, OutcomeRejected, rej.Kind)
	assert.Equal(t, "InvalidParameter: bad token", rej.Reason)

	ce := ClientError("dial tcp: timeout")
	assert.False(t, ce.OK())
	assert.Equal(t, OutcomeClientError, ce.Kind)
}

func TestSupportedRegions_KeepsClassicPushRegions(t *testing.T) {
	// The first regions that offered SNS mobile push must stay accepted.
	classic := []string{
		"us-east-1", "us-west-1", "us-west-2", "sa-east-1", "eu-west-1",
		"ap-southeast-1", "ap-southeast-2", "ap-northeast-1", "us-gov-west-1",
	}
	for _, region := range classic {
		assert.Contains(t, SupportedRegions, region)
		arn := ApplicationARN("arn:aws:sns:" + region + ":123456789012:app/GCM/demo")
		assert.NoError(t, arn.Validate(), region)
	}
	assert.Len(t, SupportedRegions, 17)
}
