package main

import (
	"context"

	"github.com/lodthe/fromcheck/internal/audit"
	"github.com/lodthe/fromcheck/internal/auditrun"
	"github.com/lodthe/fromcheck/internal/dockertag"
	"github.com/lodthe/fromcheck/pkg/dockerhub"

	awsconf "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/pkg/errors"
)

func newTagCache(ctx context.Context, cfg *Config) (*dockertag.Cache, error) {
	cli := dockerhub.NewClient(dockerhub.Config{
		APIURL:   cfg.Registry.URL,
		MaxRPS:   cfg.Registry.MaxRPS,
		PageSize: cfg.Registry.PageSize,
		MaxPages: cfg.Registry.MaxPages,
		Timeout:  cfg.Registry.Timeout,
	})

	creds := dockerhub.Credentials{
		Username: cfg.Registry.Username,
		Password: cfg.Registry.Password,
	}
	if creds.Empty() && cfg.Registry.UseDockerCredentials {
		var err error
		creds, err = dockerhub.DockerCLICredentials(cfg.Registry.DockerConfigDir)
		if err != nil {
			logger.Warn().Err(err).Msg("docker credentials cannot be loaded, continuing anonymously")
		}
	}

	if !creds.Empty() {
		err := cli.Login(ctx, creds.Username, creds.Password)
		if err != nil {
			return nil, errors.Wrap(err, "docker hub login failed")
		}

		logger.Debug().Str("username", creds.Username).Msg("logged in to docker hub")
	}

	return dockertag.NewCache(dockertag.Config{
		ExpirationTime: cfg.Registry.CacheExpirationTime,
	}, logger, cli), nil
}

func newAuditor(cfg *Config, tags audit.TagSource) *audit.Auditor {
	return audit.New(audit.Config{
		Patterns:    cfg.Audit.FileNames,
		Concurrency: cfg.Audit.Concurrency,
	}, logger, tags)
}

func newReportRepository(ctx context.Context, cfg *Config) (*auditrun.Repo, error) {
	client, err := newDynamoDBClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return auditrun.NewRepository(client, cfg.AWS.ReportsTableName), nil
}

func newDynamoDBClient(ctx context.Context, cfg *Config) (*dynamodb.Client, error) {
	var awsOpts []func(*awsconf.LoadOptions) error
	if cfg.AWS.AccessKeyID != "" {
		// Otherwise, the SDK picks credentials from the available sources.
		awsOpts = append(awsOpts, awsconf.WithCredentialsProvider(cfg))
	}

	awsOpts = append(awsOpts, awsconf.WithRegion(cfg.AWS.Region))

	awsConfig, err := awsconf.LoadDefaultConfig(ctx, awsOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return dynamodb.NewFromConfig(awsConfig), nil
}
