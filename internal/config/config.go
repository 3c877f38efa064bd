package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/docuflow-cli/internal/retention"
	"github.com/KaramelBytes/docuflow-cli/internal/version"
)

// ErrConfigIncomplete is returned by Validate when required settings are missing.
var ErrConfigIncomplete = errors.New("configuration incomplete")

type RetentionPolicy struct {
	ArchiveAfterDays int `mapstructure:"archive_after_days" yaml:"archive_after_days"`
	DeleteAfterDays  int `mapstructure:"delete_after_days" yaml:"delete_after_days"`
}

type Exclusions struct {
	Files []string `mapstructure:"files" yaml:"files"`
}

type VersionControl struct {
	VersionDir    string `mapstructure:"version_dir" yaml:"version_dir"`
	MaxVersions   int    `mapstructure:"max_versions" yaml:"max_versions"`
	TrackMetadata bool   `mapstructure:"track_metadata" yaml:"track_metadata"`
	Author        string `mapstructure:"author" yaml:"author,omitempty"`
}

type Alerts struct {
	AlertDaysBeforeDelete int `mapstructure:"alert_days_before_delete" yaml:"alert_days_before_delete"`
}

type Logs struct {
	RetentionFile    string `mapstructure:"retention_file" yaml:"retention_file"`
	OrganizationFile string `mapstructure:"organization_file" yaml:"organization_file"`
	Level            string `mapstructure:"level" yaml:"level"`
}

type Audit struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

type Maintenance struct {
	Schedule    string `mapstructure:"schedule" yaml:"schedule"`
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr"`
}

// Global configuration structure.
type Global struct {
	BasePath        string          `mapstructure:"base_path" yaml:"base_path"`
	ClientName      string          `mapstructure:"client_name" yaml:"client_name"`
	Departments     []string        `mapstructure:"departments" yaml:"departments"`
	Categories      []string        `mapstructure:"categories" yaml:"categories"`
	RetentionPolicy RetentionPolicy `mapstructure:"retention_policy" yaml:"retention_policy"`
	Exclusions      Exclusions      `mapstructure:"exclusions" yaml:"exclusions"`
	VersionControl  VersionControl  `mapstructure:"version_control" yaml:"version_control"`
	Alerts          Alerts          `mapstructure:"alerts" yaml:"alerts"`
	Logs            Logs            `mapstructure:"logs" yaml:"logs"`
	Audit           Audit           `mapstructure:"audit" yaml:"audit"`
	Maintenance     Maintenance     `mapstructure:"maintenance" yaml:"maintenance"`
}

// Dir returns ~/.docuflow.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".docuflow"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.docuflow/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Nested keys map to env vars
// with dots replaced by underscores, e.g. DOCUFLOW_RETENTION_POLICY_ARCHIVE_AFTER_DAYS.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCUFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	v.SetDefault("base_path", "")
	v.SetDefault("client_name", "")
	v.SetDefault("departments", []string{})
	v.SetDefault("categories", []string{retention.Working, retention.Archive, retention.Final})
	// thresholds have no default: Validate refuses to run without them
	v.SetDefault("retention_policy.archive_after_days", 0)
	v.SetDefault("retention_policy.delete_after_days", 0)
	v.SetDefault("exclusions.files", []string{".tmp", ".DS_Store", "Thumbs.db", "desktop.ini"})
	v.SetDefault("version_control.version_dir", filepath.Join(dir, "versions"))
	v.SetDefault("version_control.max_versions", 10)
	v.SetDefault("version_control.track_metadata", true)
	v.SetDefault("version_control.author", "")
	v.SetDefault("alerts.alert_days_before_delete", 7)
	v.SetDefault("logs.retention_file", filepath.Join(dir, "logs", "retention.log"))
	v.SetDefault("logs.organization_file", filepath.Join(dir, "logs", "organization.log"))
	v.SetDefault("logs.level", "info")
	v.SetDefault("audit.db_path", filepath.Join(dir, "audit.db"))
	v.SetDefault("maintenance.schedule", "0 2 * * *")
	v.SetDefault("maintenance.metrics_addr", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(cfgFile != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.VersionControl.Author == "" {
		c.VersionControl.Author = retention.CurrentUser()
	}
	return &c, nil
}

// Validate reports every missing or unusable setting the retention and
// version components depend on. No component should run on guessed values.
func (c *Global) Validate() error {
	var missing []string
	if strings.TrimSpace(c.BasePath) == "" {
		missing = append(missing, "base_path")
	}
	if len(c.Departments) == 0 {
		missing = append(missing, "departments")
	}
	if c.RetentionPolicy.ArchiveAfterDays <= 0 {
		missing = append(missing, "retention_policy.archive_after_days")
	}
	if c.RetentionPolicy.DeleteAfterDays <= 0 {
		missing = append(missing, "retention_policy.delete_after_days")
	}
	if strings.TrimSpace(c.VersionControl.VersionDir) == "" {
		missing = append(missing, "version_control.version_dir")
	}
	if c.VersionControl.MaxVersions < 1 {
		missing = append(missing, "version_control.max_versions")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s", ErrConfigIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// Policy builds the immutable retention policy.
func (c *Global) Policy() retention.Policy {
	return retention.Policy{
		BasePath:          c.BasePath,
		ArchiveAfterDays:  c.RetentionPolicy.ArchiveAfterDays,
		DeleteAfterDays:   c.RetentionPolicy.DeleteAfterDays,
		Departments:       append([]string(nil), c.Departments...),
		ExclusionPatterns: append([]string(nil), c.Exclusions.Files...),
	}
}

// VersionOptions builds the version store options.
func (c *Global) VersionOptions() version.Options {
	return version.Options{
		Dir:           c.VersionControl.VersionDir,
		MaxVersions:   c.VersionControl.MaxVersions,
		TrackMetadata: c.VersionControl.TrackMetadata,
		Author:        c.VersionControl.Author,
	}
}
