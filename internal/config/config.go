// Package config loads the dsdist.yaml project file that describes a dataset
// and where it is pushed. Command-line flags override every value.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vvka-141/dsdist/pkg/dsdist"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// SupportingFiles is written either as a list (all files under
// "supporting_files") or as a mapping of label to list.
type SupportingFiles map[string][]string

// UnmarshalYAML accepts both the list and the mapping form.
func (s *SupportingFiles) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var paths []string
		if err := node.Decode(&paths); err != nil {
			return err
		}
		*s = SupportingFiles{dsdist.SupportingFilesLabel: paths}
		return nil
	case yaml.MappingNode:
		var labelled map[string][]string
		if err := node.Decode(&labelled); err != nil {
			return err
		}
		*s = labelled
		return nil
	}
	return fmt.Errorf("line %d: supporting_files must be a list or a mapping of label to list", node.Line)
}

type DatasetConfig struct {
	Name            string            `yaml:"name"`
	Owner           string            `yaml:"owner"`
	Table           string            `yaml:"table"`
	Readme          string            `yaml:"readme"`
	PathColumns     []string          `yaml:"path_columns,omitempty"`
	MetadataColumns []string          `yaml:"metadata_columns,omitempty"`
	ColumnLabels    map[string]string `yaml:"column_labels,omitempty"`
	SupportingFiles SupportingFiles   `yaml:"supporting_files,omitempty"`
	UsageDocs       []string          `yaml:"usage_docs,omitempty"`
	LicenseDocs     []string          `yaml:"license_docs,omitempty"`
}

type PushConfig struct {
	Destination   string `yaml:"destination,omitempty"`
	Message       string `yaml:"message,omitempty"`
	BuildDir      string `yaml:"build_dir,omitempty"`
	RetryAttempts *int   `yaml:"retry_attempts,omitempty"`
	Timeout       string `yaml:"timeout,omitempty"`
}

type S3Config struct {
	Region       string `yaml:"region,omitempty"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	UsePathStyle bool   `yaml:"use_path_style,omitempty"`
}

type AzureConfig struct {
	AccountURL  string `yaml:"account_url,omitempty"`
	AccountName string `yaml:"account_name,omitempty"`
	// AccountKey selects shared-key auth; leave empty for DefaultAzureCredential.
	AccountKey string `yaml:"account_key,omitempty"`
}

// CatalogConfig configures authentication for postgres:// destinations.
type CatalogConfig struct {
	// Auth is one of password, aws-iam, google-iam or azure-entra.
	Auth           string `yaml:"auth,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	// AzureClientSecret selects service principal auth together with the
	// tenant and client IDs; otherwise DefaultAzureCredential is used.
	AzureClientSecret string `yaml:"azure_client_secret,omitempty"`
}

type StorageConfig struct {
	S3      S3Config      `yaml:"s3"`
	Azure   AzureConfig   `yaml:"azure"`
	Catalog CatalogConfig `yaml:"catalog"`
}

type ProjectConfig struct {
	Dataset DatasetConfig `yaml:"dataset"`
	Push    PushConfig    `yaml:"push"`
	Storage StorageConfig `yaml:"storage"`
}

const ConfigFileName = "dsdist.yaml"

// Load reads dsdist.yaml from dir. Relative table, README and supporting
// file paths are made relative to dir.
func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", configPath, err, dsdist.ErrInvalidConfig)
	}
	cfg.resolvePaths(dir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return &cfg, nil
}

func (c *ProjectConfig) resolvePaths(dir string) {
	rel := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	c.Dataset.Table = rel(c.Dataset.Table)
	c.Dataset.Readme = rel(c.Dataset.Readme)
	for label, paths := range c.Dataset.SupportingFiles {
		resolved := make([]string, len(paths))
		for i, p := range paths {
			resolved[i] = rel(p)
		}
		c.Dataset.SupportingFiles[label] = resolved
	}
	if c.Push.BuildDir != "" {
		c.Push.BuildDir = rel(c.Push.BuildDir)
	}
}

// Validate checks values that can be checked without touching the dataset.
func (c *ProjectConfig) Validate() error {
	var errs []error

	if c.Push.Timeout != "" {
		if d, err := time.ParseDuration(c.Push.Timeout); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("push.timeout %q is not a positive duration: %w", c.Push.Timeout, dsdist.ErrInvalidConfig))
		}
	}
	if c.Push.RetryAttempts != nil && *c.Push.RetryAttempts < 0 {
		errs = append(errs, fmt.Errorf("push.retry_attempts must not be negative: %w", dsdist.ErrInvalidConfig))
	}
	for col, label := range c.Dataset.ColumnLabels {
		if strings.TrimSpace(label) == "" {
			errs = append(errs, fmt.Errorf("dataset.column_labels.%s is empty: %w", col, dsdist.ErrInvalidConfig))
		}
	}
	if c.Storage.Azure.AccountKey != "" && c.Storage.Azure.AccountName == "" {
		errs = append(errs, fmt.Errorf("storage.azure.account_key requires storage.azure.account_name: %w", dsdist.ErrInvalidConfig))
	}

	switch strings.ToLower(c.Storage.Catalog.Auth) {
	case "", "password", "aws-iam", "azure-entra":
	case "google-iam":
		if c.Storage.Catalog.GoogleInstance == "" {
			errs = append(errs, fmt.Errorf("storage.catalog.auth google-iam requires storage.catalog.google_instance: %w", dsdist.ErrInvalidConfig))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.catalog.auth %q is not one of password, aws-iam, google-iam, azure-entra: %w", c.Storage.Catalog.Auth, dsdist.ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// TimeoutDuration returns push.timeout, or 0 when unset.
func (c *ProjectConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Push.Timeout)
	return d
}

// Retries returns push.retry_attempts or the default.
func (c *ProjectConfig) Retries() int {
	if c.Push.RetryAttempts == nil {
		return dsdist.DefaultRetryMaxAttempts
	}
	return *c.Push.RetryAttempts
}
