// Package yaml parses pkggate.yaml configuration files.
package yaml

import (
	"fmt"
	"os"
	"time"

	"github.com/inhies/go-bytesize"
	"gopkg.in/yaml.v3"

	"github.com/ochairo/pkggate/internal/config"
	"github.com/ochairo/pkggate/internal/domain/entities"
)

// yamlConfig represents the raw YAML structure
type yamlConfig struct {
	Requests      string            `yaml:"requests"`
	Publisher     string            `yaml:"publisher"`
	Workers       int               `yaml:"workers"`
	Notifier      yamlNotifier      `yaml:"notifier"`
	AWS           yamlAWS           `yaml:"aws"`
	Scan          yamlScan          `yaml:"scan"`
	Policy        yamlPolicy        `yaml:"policy"`
	Fetch         yamlFetch         `yaml:"fetch"`
	Signature     yamlSignature     `yaml:"signature"`
	Registry      yamlRegistry      `yaml:"registry"`
	SourceControl yamlSourceControl `yaml:"source_control"`
	Log           yamlLog           `yaml:"log"`
}

type yamlNotifier struct {
	Kind  string `yaml:"kind"`
	Topic string `yaml:"topic"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

type yamlAWS struct {
	Region string `yaml:"region"`
}

type yamlScan struct {
	ScanType        string `yaml:"scan_type"`
	AnalysisType    string `yaml:"analysis_type"`
	PollInterval    string `yaml:"poll_interval"`
	MaxPollAttempts int    `yaml:"max_poll_attempts"`
	Timeout         string `yaml:"timeout"`
	MaxFindings     int    `yaml:"max_findings"`
	FindingStatus   string `yaml:"finding_status"`
}

type yamlPolicy struct {
	RejectAt string `yaml:"reject_at"`
}

type yamlFetch struct {
	Timeout      string   `yaml:"timeout"`
	MaxBytes     string   `yaml:"max_bytes"`
	Retries      *int     `yaml:"retries"`
	AllowedHosts []string `yaml:"allowed_hosts"`
	UserAgent    string   `yaml:"user_agent"`
}

type yamlSignature struct {
	KeyringFile string `yaml:"keyring_file"`
	Suffix      string `yaml:"suffix"`
}

type yamlRegistry struct {
	Domain      string `yaml:"domain"`
	DomainOwner string `yaml:"domain_owner"`
	Repository  string `yaml:"repository"`
}

type yamlSourceControl struct {
	Owner         string `yaml:"owner"`
	Repo          string `yaml:"repo"`
	Token         string `yaml:"token"`
	Username      string `yaml:"username"`
	Email         string `yaml:"email"`
	APIURL        string `yaml:"api_url"`
	WebURL        string `yaml:"web_url"`
	DefaultBranch string `yaml:"default_branch"`
	PathPrefix    string `yaml:"path_prefix"`
}

type yamlLog struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// ConfigParser parses YAML configuration files
type ConfigParser struct{}

// NewConfigParser creates a new YAML parser
func NewConfigParser() *ConfigParser {
	return &ConfigParser{}
}

// ParseFile reads a configuration file and overlays it on the defaults
func (p *ConfigParser) ParseFile(filePath string) (*config.Config, error) {
	//nolint:gosec // G304: filePath is the operator-supplied config path
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read file %s: %v", entities.ErrConfig, filePath, err)
	}

	return p.Parse(data)
}

// Parse overlays YAML bytes on config.Default. Keys that are absent keep their defaults.
func (p *ConfigParser) Parse(data []byte) (*config.Config, error) {
	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", entities.ErrConfig, err)
	}

	cfg := config.Default()

	setString(&cfg.Requests, raw.Requests)
	setString(&cfg.Publisher, raw.Publisher)
	if raw.Workers != 0 {
		cfg.Workers = raw.Workers
	}

	setString(&cfg.Notifier.Kind, raw.Notifier.Kind)
	setString(&cfg.Notifier.Topic, raw.Notifier.Topic)
	setString(&cfg.Notifier.Redis.Addr, raw.Notifier.Redis.Addr)
	setString(&cfg.Notifier.Redis.Password, raw.Notifier.Redis.Password)
	cfg.Notifier.Redis.DB = raw.Notifier.Redis.DB

	setString(&cfg.AWS.Region, raw.AWS.Region)

	if err := convertScan(raw.Scan, &cfg.Scan); err != nil {
		return nil, err
	}

	if raw.Policy.RejectAt != "" {
		severity, ok := entities.ParseSeverity(raw.Policy.RejectAt)
		if !ok {
			return nil, fmt.Errorf("%w: policy.reject_at: unknown severity %q", entities.ErrConfig, raw.Policy.RejectAt)
		}
		cfg.Policy.RejectAt = severity
	}

	if err := convertFetch(raw.Fetch, &cfg.Fetch); err != nil {
		return nil, err
	}

	setString(&cfg.Signature.KeyringFile, raw.Signature.KeyringFile)
	setString(&cfg.Signature.Suffix, raw.Signature.Suffix)

	cfg.Registry = config.RegistryConfig{
		Domain:      raw.Registry.Domain,
		DomainOwner: raw.Registry.DomainOwner,
		Repository:  raw.Registry.Repository,
	}

	sc := raw.SourceControl
	setString(&cfg.SourceControl.Owner, sc.Owner)
	setString(&cfg.SourceControl.Repo, sc.Repo)
	setString(&cfg.SourceControl.Token, sc.Token)
	setString(&cfg.SourceControl.Username, sc.Username)
	setString(&cfg.SourceControl.Email, sc.Email)
	setString(&cfg.SourceControl.APIURL, sc.APIURL)
	setString(&cfg.SourceControl.WebURL, sc.WebURL)
	setString(&cfg.SourceControl.DefaultBranch, sc.DefaultBranch)
	setString(&cfg.SourceControl.PathPrefix, sc.PathPrefix)

	setString(&cfg.Log.Level, raw.Log.Level)
	cfg.Log.JSON = raw.Log.JSON

	return cfg, nil
}

func convertScan(ys yamlScan, dst *config.ScanConfig) error {
	setString(&dst.ScanType, ys.ScanType)
	setString(&dst.AnalysisType, ys.AnalysisType)
	setString(&dst.FindingStatus, ys.FindingStatus)
	if ys.MaxFindings != 0 {
		dst.MaxFindings = ys.MaxFindings
	}
	dst.MaxPollAttempts = ys.MaxPollAttempts

	if err := setDuration(&dst.PollInterval, ys.PollInterval, "scan.poll_interval"); err != nil {
		return err
	}
	return setDuration(&dst.Timeout, ys.Timeout, "scan.timeout")
}

func convertFetch(yf yamlFetch, dst *config.FetchConfig) error {
	if err := setDuration(&dst.Timeout, yf.Timeout, "fetch.timeout"); err != nil {
		return err
	}
	if yf.MaxBytes != "" {
		size, err := bytesize.Parse(yf.MaxBytes)
		if err != nil {
			return fmt.Errorf("%w: fetch.max_bytes: %v", entities.ErrConfig, err)
		}
		dst.MaxBytes = size
	}
	if yf.Retries != nil {
		dst.Retries = *yf.Retries
	}
	if len(yf.AllowedHosts) > 0 {
		dst.AllowedHosts = yf.AllowedHosts
	}
	setString(&dst.UserAgent, yf.UserAgent)
	return nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// setDuration parses Go duration strings. "0" is accepted and disables the bound.
func setDuration(dst *time.Duration, value, key string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", entities.ErrConfig, key, err)
	}
	*dst = d
	return nil
}
