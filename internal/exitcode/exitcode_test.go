package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapAndCodeOf(t *testing.T) {
	base := errors.New("open bad.txt: permission denied")

	err := Wrap(FileAccess, base)
	assert.Equal(t, FileAccess, CodeOf(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, base.Error(), err.Error())

	// Outer wrapping keeps the code reachable
	outer := fmt.Errorf("run: %w", err)
	assert.Equal(t, FileAccess, CodeOf(outer))
}

func TestWrap_KeepsFirstCode(t *testing.T) {
	err := Wrap(NotFound, errors.New("no such application"))
	err = Wrap(FileAccess, fmt.Errorf("job: %w", err))

	assert.Equal(t, NotFound, CodeOf(err))
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(FileAccess, nil))
	assert.Equal(t, OK, CodeOf(nil))
}

func TestCodeOf_Untagged(t *testing.T) {
	assert.Equal(t, MalformedConfig, CodeOf(errors.New("unknown flag --foo")))
}

func TestWrapf(t *testing.T) {
	err := Wrapf(CredentialFailure, "load credentials from %s: %w", "creds.properties", errors.New("missing accessKey"))

	assert.Equal(t, CredentialFailure, CodeOf(err))
	assert.Contains(t, err.Error(), "creds.properties")
}
