package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magiconair/properties"
)

// ErrCredentials is returned when the credentials file is unusable.
var ErrCredentials = errors.New("cannot load credentials")

// Credentials holds a static access key pair.
type Credentials struct {
	AccessKey    string
	SecretKey    string
	SessionToken string
}

// LoadCredentials reads an AwsCredentials.properties style file with
// accessKey and secretKey entries (sessionToken is optional).
func LoadCredentials(path string) (Credentials, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w from %s: %v", ErrCredentials, path, err)
	}

	creds := Credentials{
		AccessKey:    strings.TrimSpace(p.GetString("accessKey", "")),
		SecretKey:    strings.TrimSpace(p.GetString("secretKey", "")),
		SessionToken: strings.TrimSpace(p.GetString("sessionToken", "")),
	}
	if creds.AccessKey == "" || creds.SecretKey == "" {
		return Credentials{}, fmt.Errorf("%w from %s: accessKey and secretKey are required", ErrCredentials, path)
	}
	return creds, nil
}
