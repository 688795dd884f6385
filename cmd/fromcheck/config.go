package main

import (
	"context"
	"os"
	"time"

	"github.com/lodthe/fromcheck/internal/audit"
	"github.com/lodthe/fromcheck/internal/auditrun"
	"github.com/lodthe/fromcheck/internal/dockerfile"
	"github.com/lodthe/fromcheck/internal/dockertag"
	"github.com/lodthe/fromcheck/pkg/dockerhub"

	"github.com/aws/aws-sdk-go-v2/aws"
	gconfig "github.com/gookit/config/v2"
	gyaml "github.com/gookit/config/v2/yaml"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const DefaultConfigPath = "fromcheck.yaml"

const (
	PrettyLogFormat = "pretty"
	JSONLogFormat   = "json"
)

type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Registry Registry `mapstructure:"registry"`

	Audit Audit `mapstructure:"audit"`

	API API `mapstructure:"api"`

	PrometheusExportAddress string `mapstructure:"prometheus_address"`

	AWS AWS `mapstructure:"aws"`
}

type Registry struct {
	URL      string `mapstructure:"url"`
	PageSize int    `mapstructure:"page_size"`

	// MaxPages is the number of tag pages fetched per repository, a negative value fetches all of them.
	MaxPages int           `mapstructure:"max_pages"`
	MaxRPS   int           `mapstructure:"max_rps"`
	Timeout  time.Duration `mapstructure:"timeout"`

	CacheExpirationTime time.Duration `mapstructure:"cache_expiration_time"`

	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// DockerConfigDir overrides the location of the docker CLI config.json.
	DockerConfigDir      string `mapstructure:"docker_config_dir"`
	UseDockerCredentials bool   `mapstructure:"use_docker_credentials"`
}

type Audit struct {
	Roots       []string      `mapstructure:"roots"`
	FileNames   []string      `mapstructure:"file_names"`
	Concurrency int           `mapstructure:"concurrency"`
	Interval    time.Duration `mapstructure:"interval"`
}

type API struct {
	ListeningAddress string        `mapstructure:"address"`
	ServerTimeout    time.Duration `mapstructure:"server_timeout"`
}

type AWS struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`

	ReportsTableName string `mapstructure:"reports_table"`
}

// envOverrides maps environment variables onto config keys. They take
// precedence over the config file.
var envOverrides = map[string]string{
	"AWS_REGION":    "aws.region",
	"REPORTS_TABLE": "aws.reports_table",
}

// LoadConfig reads the config from path. When path is empty, CONFIG_PATH is
// used, and then DefaultConfigPath if such a file exists.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err == nil {
			path = DefaultConfigPath
		}
	}

	c := gconfig.NewWithOptions("fromcheck",
		gconfig.ParseEnv,
		func(opts *gconfig.Options) {
			opts.DecoderConfig = &mapstructure.DecoderConfig{
				TagName:          "mapstructure",
				WeaklyTypedInput: true,
				DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			}
		},
	)
	c.AddDriver(gyaml.Driver)

	if path != "" {
		err := c.LoadFiles(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
	}

	c.LoadOSEnvs(envOverrides)
	c.Options().Readonly = true

	cfg := new(Config)
	if !c.IsEmpty() {
		err := c.BindStruct("", cfg)
		if err != nil {
			return nil, errors.Wrap(err, "config binding failed")
		}
	}

	err := cfg.validate()
	if err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// validate verifies the loaded config and sets default values for missed fields.
func (c *Config) validate() error {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	switch c.LogFormat {
	case "":
		c.LogFormat = PrettyLogFormat
	case PrettyLogFormat, JSONLogFormat:
	default:
		return errors.Errorf("unknown log_format %s (supported: %s, %s)", c.LogFormat, PrettyLogFormat, JSONLogFormat)
	}

	if c.Registry.URL == "" {
		c.Registry.URL = dockerhub.DockerHubURL
	}
	if c.Registry.PageSize < 0 || c.Registry.MaxRPS < 0 {
		return errors.New("registry.page_size and registry.max_rps cannot be negative")
	}
	if c.Registry.MaxPages == 0 {
		c.Registry.MaxPages = dockerhub.DefaultMaxPages
	}
	if c.Registry.PageSize == 0 {
		c.Registry.PageSize = dockerhub.DefaultPageSize
	}
	if c.Registry.MaxRPS == 0 {
		c.Registry.MaxRPS = dockerhub.DefaultMaxRPS
	}
	if c.Registry.Timeout == 0 {
		c.Registry.Timeout = dockerhub.DefaultTimeout
	}
	if c.Registry.CacheExpirationTime == 0 {
		c.Registry.CacheExpirationTime = dockertag.DefaultExpirationTime
	}
	if (c.Registry.Username == "") != (c.Registry.Password == "") {
		return errors.New("registry.username and registry.password must be set together")
	}

	if len(c.Audit.Roots) == 0 {
		c.Audit.Roots = []string{"."}
	}
	if len(c.Audit.FileNames) == 0 {
		c.Audit.FileNames = dockerfile.DefaultPatterns
	}
	if c.Audit.Concurrency <= 0 {
		c.Audit.Concurrency = audit.DefaultConcurrency
	}
	if c.Audit.Interval == 0 {
		c.Audit.Interval = audit.DefaultInterval
	}
	if c.Audit.Interval < time.Minute {
		return errors.New("audit.interval must be at least 1m")
	}

	if c.API.ListeningAddress == "" {
		c.API.ListeningAddress = ":9000"
	}
	if c.API.ServerTimeout == 0 {
		c.API.ServerTimeout = 60 * time.Second
	}

	if c.PrometheusExportAddress == "" {
		c.PrometheusExportAddress = ":2112"
	}

	if c.AWS.ReportsTableName == "" {
		c.AWS.ReportsTableName = auditrun.DefaultTableName
	}

	return nil
}

// PersistenceEnabled reports whether audit reports are stored in DynamoDB.
func (c *Config) PersistenceEnabled() bool {
	return c.AWS.Region != ""
}

func (c *Config) Retrieve(_ context.Context) (aws.Credentials, error) {
	return aws.Credentials{
		AccessKeyID:     c.AWS.AccessKeyID,
		SecretAccessKey: c.AWS.SecretAccessKey,
		Source:          "local config",
	}, nil
}
