// Package config loads the bulk upload settings.
//
// Two file formats are accepted. The properties format uses the key names
// of the classic BulkUpload.properties file (matched case-insensitively):
//
//	applicationArn=arn:aws:sns:us-east-1:123456789012:app/GCM/MyApp
//	csvFileName=tokens.csv
//	goodFileName=accepted.txt
//	badFileName=rejected.txt
//	delimiterChar=,
//	quoteChar="
//	numOfThreads=8
//
// Files ending in .yaml or .yml are read as YAML with snake_case keys
// (application_arn, csv_file_name, ...).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"

	"github.com/ChuLiYu/sns-bulkupload/pkg/types"
)

// Defaults
const (
	DefaultDelimiter      = ','
	DefaultQuote          = '"'
	DefaultWorkers        = 1
	DefaultRequestTimeout = 30 * time.Second
)

var (
	// ErrMalformed marks every configuration problem.
	ErrMalformed = errors.New("malformed configuration")
	// ErrRead is returned when the config file itself cannot be read.
	ErrRead = errors.New("cannot read configuration")
)

// Config is the immutable run configuration.
type Config struct {
	ApplicationARN  types.ApplicationARN
	InputFile       string
	AcceptedFile    string
	RejectedFile    string
	Delimiter       rune
	Quote           rune
	Workers         int
	RequestTimeout  time.Duration
	EndpointURL     string // optional SNS endpoint override
	CredentialsFile string // optional accessKey/secretKey properties file
	SyncWrites      bool   // fsync every sink line
}

// Region returns the region embedded in the application ARN.
func (c *Config) Region() string {
	region, _ := c.ApplicationARN.Region()
	return region
}

// fileConfig is the raw, string-typed view shared by both file formats.
type fileConfig struct {
	ApplicationARN  string `yaml:"application_arn"`
	CSVFileName     string `yaml:"csv_file_name"`
	GoodFileName    string `yaml:"good_file_name"`
	BadFileName     string `yaml:"bad_file_name"`
	DelimiterChar   string `yaml:"delimiter_char"`
	QuoteChar       string `yaml:"quote_char"`
	NumOfThreads    string `yaml:"num_of_threads"`
	RequestTimeout  string `yaml:"request_timeout"`
	EndpointURL     string `yaml:"endpoint_url"`
	CredentialsFile string `yaml:"credentials_file"`
	SyncWrites      string `yaml:"sync_writes"`
}

// Load reads, parses and validates the file at path.
func Load(path string) (*Config, error) {
	var (
		raw *fileConfig
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = readYAML(path)
	default:
		raw, err = readProperties(path)
	}
	if err != nil {
		return nil, err
	}
	return raw.build()
}

// Parse builds a Config from properties-format text. Used by tests and for stdin configs.
func Parse(text string) (*Config, error) {
	p, err := (&properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}).LoadBytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fromProperties(p).build()
}

func readProperties(path string) (*fileConfig, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrRead, path, err)
	}
	return fromProperties(p), nil
}

func fromProperties(p *properties.Properties) *fileConfig {
	// Keys are matched case-insensitively.
	values := make(map[string]string, p.Len())
	for _, key := range p.Keys() {
		v, _ := p.Get(key)
		values[strings.ToLower(strings.TrimSpace(key))] = v
	}
	return &fileConfig{
		ApplicationARN:  strings.TrimSpace(values["applicationarn"]),
		CSVFileName:     strings.TrimSpace(values["csvfilename"]),
		GoodFileName:    strings.TrimSpace(values["goodfilename"]),
		BadFileName:     strings.TrimSpace(values["badfilename"]),
		DelimiterChar:   values["delimiterchar"],
		QuoteChar:       values["quotechar"],
		NumOfThreads:    strings.TrimSpace(values["numofthreads"]),
		RequestTimeout:  strings.TrimSpace(values["requesttimeout"]),
		EndpointURL:     strings.TrimSpace(values["endpointurl"]),
		CredentialsFile: strings.TrimSpace(values["credentialsfile"]),
		SyncWrites:      strings.TrimSpace(values["syncwrites"]),
	}
}

func readYAML(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrRead, path, err)
	}
	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config YAML: %v", ErrMalformed, err)
	}
	return &raw, nil
}

// build applies defaults and validates. Every problem is reported at once.
func (f *fileConfig) build() (*Config, error) {
	cfg := &Config{
		ApplicationARN:  types.ApplicationARN(f.ApplicationARN),
		InputFile:       f.CSVFileName,
		AcceptedFile:    f.GoodFileName,
		RejectedFile:    f.BadFileName,
		Delimiter:       firstRune(f.DelimiterChar, DefaultDelimiter),
		Quote:           firstRune(f.QuoteChar, DefaultQuote),
		Workers:         DefaultWorkers,
		RequestTimeout:  DefaultRequestTimeout,
		EndpointURL:     f.EndpointURL,
		CredentialsFile: f.CredentialsFile,
	}

	var errs []string

	if f.NumOfThreads != "" {
		n, err := strconv.Atoi(f.NumOfThreads)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("numOfThreads (%q) must be an integer", f.NumOfThreads))
		case n > 0:
			cfg.Workers = n
		}
	}

	if f.RequestTimeout != "" {
		d, err := time.ParseDuration(f.RequestTimeout)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Sprintf("requestTimeout (%q) must be a positive duration", f.RequestTimeout))
		} else {
			cfg.RequestTimeout = d
		}
	}

	if f.SyncWrites != "" {
		b, err := strconv.ParseBool(f.SyncWrites)
		if err != nil {
			errs = append(errs, fmt.Sprintf("syncWrites (%q) must be a boolean", f.SyncWrites))
		}
		cfg.SyncWrites = b
	}

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w:\n  - %s", ErrMalformed, strings.Join(errs, "\n  - "))
	}
	return cfg, nil
}

// Validate checks required fields and the application ARN.
func (c *Config) Validate() error {
	var errs []string

	if c.ApplicationARN == "" {
		errs = append(errs, "applicationArn is required")
	} else if err := c.ApplicationARN.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("applicationArn: %v", err))
	}
	if c.InputFile == "" {
		errs = append(errs, "csvFileName is required")
	}
	if c.AcceptedFile == "" {
		errs = append(errs, "goodFileName is required")
	}
	if c.RejectedFile == "" {
		errs = append(errs, "badFileName is required")
	}
	if c.AcceptedFile != "" && c.AcceptedFile == c.RejectedFile {
		errs = append(errs, "goodFileName and badFileName must differ")
	}
	if c.Delimiter == c.Quote {
		errs = append(errs, fmt.Sprintf("delimiterChar and quoteChar must differ (both %q)", c.Delimiter))
	}
	if c.Delimiter == '\n' || c.Delimiter == '\r' || c.Quote == '\n' || c.Quote == '\r' {
		errs = append(errs, "delimiterChar and quoteChar cannot be line breaks")
	}
	if c.Workers <= 0 {
		errs = append(errs, "numOfThreads must be positive")
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, "requestTimeout must be positive")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "\n  - "))
	}
	return nil
}

// String is a one-line summary for logging.
func (c *Config) String() string {
	return fmt.Sprintf("Config{ApplicationARN: %s, Input: %q, Accepted: %q, Rejected: %q, Delimiter: %q, Quote: %q, Workers: %d, RequestTimeout: %s}",
		c.ApplicationARN, c.InputFile, c.AcceptedFile, c.RejectedFile, c.Delimiter, c.Quote, c.Workers, c.RequestTimeout)
}

// firstRune returns the first character of s, or def when s is empty.
func firstRune(s string, def rune) rune {
	if s == "" {
		return def
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
