// Package config holds the runtime configuration of the ingestion gate.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/inhies/go-bytesize"

	"github.com/ochairo/pkggate/internal/domain/entities"
)

// Publisher kinds
const (
	PublisherRegistry      = "registry"
	PublisherSourceControl = "source-control"
)

// Notifier kinds
const (
	NotifierSNS   = "sns"
	NotifierRedis = "redis"
	NotifierLog   = "log"
)

// Config is the complete configuration for a gate run
type Config struct {
	Requests      string
	Publisher     string
	Workers       int
	Notifier      NotifierConfig
	AWS           AWSConfig
	Scan          ScanConfig
	Policy        PolicyConfig
	Fetch         FetchConfig
	Signature     SignatureConfig
	Registry      RegistryConfig
	SourceControl SourceControlConfig
	Log           LogConfig
}

// NotifierConfig selects and configures the notification channel
type NotifierConfig struct {
	Kind  string
	Topic string // SNS topic ARN or redis channel
	Redis RedisConfig
}

// RedisConfig configures the redis pub/sub notifier
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AWSConfig holds shared AWS client settings
type AWSConfig struct {
	Region string
}

// ScanConfig controls scan submission and polling
type ScanConfig struct {
	ScanType        string
	AnalysisType    string
	PollInterval    time.Duration
	MaxPollAttempts int
	Timeout         time.Duration
	MaxFindings     int
	FindingStatus   string
}

// PolicyConfig holds the admission threshold
type PolicyConfig struct {
	RejectAt entities.Severity
}

// FetchConfig controls artifact downloads
type FetchConfig struct {
	Timeout      time.Duration
	MaxBytes     bytesize.ByteSize
	Retries      int
	AllowedHosts []string
	UserAgent    string
}

// SignatureConfig enables detached signature checks when KeyringFile is set
type SignatureConfig struct {
	KeyringFile string
	Suffix      string
}

// RegistryConfig identifies the CodeArtifact repository
type RegistryConfig struct {
	Domain      string
	DomainOwner string
	Repository  string
}

// SourceControlConfig identifies the GitHub repository and committer
type SourceControlConfig struct {
	Owner         string
	Repo          string
	Token         string
	Username      string
	Email         string
	APIURL        string
	WebURL        string
	DefaultBranch string
	PathPrefix    string
}

// LogConfig controls log output
type LogConfig struct {
	Level string
	JSON  bool
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Requests:  "external-package-request.csv",
		Publisher: PublisherRegistry,
		Workers:   1,
		Notifier:  NotifierConfig{Kind: NotifierSNS},
		Scan: ScanConfig{
			ScanType:      "Standard",
			AnalysisType:  "Security",
			PollInterval:  time.Second,
			Timeout:       30 * time.Minute,
			MaxFindings:   20,
			FindingStatus: "Open",
		},
		Policy: PolicyConfig{RejectAt: entities.SeverityMedium},
		Fetch: FetchConfig{
			Timeout:   5 * time.Minute,
			MaxBytes:  512 * bytesize.MB,
			Retries:   3,
			UserAgent: "pkggate",
		},
		Signature: SignatureConfig{Suffix: ".asc"},
		SourceControl: SourceControlConfig{
			APIURL:        "https://api.github.com",
			WebURL:        "https://github.com",
			DefaultBranch: "main",
			PathPrefix:    "packages",
		},
		Log: LogConfig{Level: "info"},
	}
}

// ApplyEnv overlays values from the environment. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("ExampleDomain", &c.Registry.Domain)
	str("InternalRepository", &c.Registry.Repository)
	str("SNSTopic", &c.Notifier.Topic)
	str("AWS_REGION", &c.AWS.Region)
	str("PrivateGitHubRepo", &c.SourceControl.Repo)
	str("PrivateGitHubOwner", &c.SourceControl.Owner)
	str("PrivateGitHubUsername", &c.SourceControl.Username)
	str("PrivateGitHubEmail", &c.SourceControl.Email)
	str("GITHUB_TOKEN", &c.SourceControl.Token)
	str("PrivateGitHubToken", &c.SourceControl.Token)
	str("PKGGATE_REDIS_ADDR", &c.Notifier.Redis.Addr)

	if v, ok := lookup("PKGGATE_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PKGGATE_WORKERS=%q is not a number", entities.ErrConfig, v)
		}
		c.Workers = n
	}

	return nil
}

// Validate checks the whole configuration for a gate run
func (c *Config) Validate() error {
	return c.validate(true)
}

// ValidateScan checks only what scanning and deciding need, for runs that
// neither publish nor notify
func (c *Config) ValidateScan() error {
	return c.validate(false)
}

func (c *Config) validate(dispatch bool) error {
	var problems []string

	if c.Workers < 1 {
		problems = append(problems, "workers must be at least 1")
	}
	if dispatch {
		problems = append(problems, c.publisherProblems()...)
		problems = append(problems, c.notifierProblems()...)
	}

	if !c.Policy.RejectAt.Known() {
		problems = append(problems, fmt.Sprintf("unknown severity threshold %q", c.Policy.RejectAt))
	}
	if c.Scan.MaxFindings < 1 || c.Scan.MaxFindings > 20 {
		problems = append(problems, "scan max_findings must be between 1 and 20")
	}
	if c.Scan.PollInterval < 0 || c.Scan.Timeout < 0 || c.Scan.MaxPollAttempts < 0 {
		problems = append(problems, "scan poll settings must not be negative")
	}
	if c.Fetch.MaxBytes <= 0 {
		problems = append(problems, "fetch max_bytes must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", entities.ErrConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) publisherProblems() []string {
	var problems []string
	switch c.Publisher {
	case PublisherRegistry:
		if c.Registry.Domain == "" {
			problems = append(problems, "registry domain is required (ExampleDomain)")
		}
		if c.Registry.Repository == "" {
			problems = append(problems, "registry repository is required (InternalRepository)")
		}
	case PublisherSourceControl:
		if c.SourceControl.Owner == "" {
			problems = append(problems, "source control owner is required (PrivateGitHubOwner)")
		}
		if c.SourceControl.Repo == "" {
			problems = append(problems, "source control repository is required (PrivateGitHubRepo)")
		}
		if c.SourceControl.Token == "" {
			problems = append(problems, "source control token is required (PrivateGitHubToken)")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown publisher %q", c.Publisher))
	}
	return problems
}

func (c *Config) notifierProblems() []string {
	var problems []string
	switch c.Notifier.Kind {
	case NotifierSNS:
		if c.Notifier.Topic == "" {
			problems = append(problems, "notifier topic is required (SNSTopic)")
		}
	case NotifierRedis:
		if c.Notifier.Redis.Addr == "" {
			problems = append(problems, "redis address is required (PKGGATE_REDIS_ADDR)")
		}
		if c.Notifier.Topic == "" {
			problems = append(problems, "redis channel is required")
		}
	case NotifierLog:
	default:
		problems = append(problems, fmt.Sprintf("unknown notifier %q", c.Notifier.Kind))
	}
	return problems
}
