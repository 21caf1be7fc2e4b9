package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/redis/go-redis/v9"

	"github.com/ochairo/pkggate/internal/config"
	"github.com/ochairo/pkggate/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/pkggate/internal/domain-orchestrators"
	"github.com/ochairo/pkggate/internal/domain/interfaces"
	domainGateways "github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
	domainServices "github.com/ochairo/pkggate/internal/domain/interfaces/services"
	"github.com/ochairo/pkggate/internal/domain/services"
)

// application is the wired gate plus the resources it holds open
type application struct {
	gate    *orchestrators.PackageGate
	closers []func() error
}

func (a *application) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// buildApplication wires every adapter named by cfg. With dispatch false the
// gate is built without a publisher or notifier and may only be used for Inspect.
func buildApplication(ctx context.Context, cfg *config.Config, logger interfaces.Logger, dispatch bool) (*application, error) {
	app := &application{}

	awsCfg, err := gateways.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, err
	}

	fetchClient := gateways.NewHTTPClient(gateways.HTTPClientConfig{
		Timeout:  cfg.Fetch.Timeout,
		RetryMax: cfg.Fetch.Retries,
	}, logger)
	downloader, err := gateways.NewDownloader(fetchClient, gateways.DownloaderConfig{
		MaxBytes:     cfg.Fetch.MaxBytes,
		AllowedHosts: cfg.Fetch.AllowedHosts,
		UserAgent:    cfg.Fetch.UserAgent,
	}, logger)
	if err != nil {
		return nil, err
	}

	var verifier domainGateways.SignatureVerifier
	if cfg.Signature.KeyringFile != "" {
		verifier, err = gateways.NewGPGSignatureVerifier(downloader, cfg.Signature.KeyringFile, logger)
		if err != nil {
			return nil, err
		}
	}

	uploadClient := gateways.NewHTTPClient(gateways.HTTPClientConfig{
		Timeout:  cfg.Fetch.Timeout,
		RetryMax: cfg.Fetch.Retries,
	}, logger)
	scanClient := services.NewScanClient(
		gateways.NewCodeGuruGateway(awsCfg),
		gateways.NewStagingUploader(uploadClient),
		services.ScanClientConfig{
			ScanType:      cfg.Scan.ScanType,
			AnalysisType:  cfg.Scan.AnalysisType,
			MaxFindings:   cfg.Scan.MaxFindings,
			FindingStatus: cfg.Scan.FindingStatus,
			Poll: services.PollPolicy{
				Interval:    cfg.Scan.PollInterval,
				MaxAttempts: cfg.Scan.MaxPollAttempts,
				Timeout:     cfg.Scan.Timeout,
			},
		},
		logger,
	)
	scanOrch := orchestrators.NewScanOrchestrator(scanClient, services.NewSeverityPolicy(cfg.Policy.RejectAt))

	var router domainServices.OutcomeRouter
	if dispatch {
		publisher, err := buildPublisher(cfg, awsCfg, logger)
		if err != nil {
			return nil, err
		}
		notifier, closer, err := buildNotifier(cfg, awsCfg, logger)
		if err != nil {
			return nil, err
		}
		if closer != nil {
			app.closers = append(app.closers, closer)
		}
		router = services.NewOutcomeRouter(publisher, notifier, logger)
	}

	app.gate = orchestrators.NewPackageGate(downloader, verifier, scanOrch, router, logger, orchestrators.PackageGateConfig{
		Workers:         cfg.Workers,
		SignatureSuffix: cfg.Signature.Suffix,
	})
	return app, nil
}

func buildPublisher(cfg *config.Config, awsCfg aws.Config, logger interfaces.Logger) (domainServices.Publisher, error) {
	switch cfg.Publisher {
	case config.PublisherRegistry:
		return services.NewRegistryPublisher(gateways.NewCodeArtifactGateway(awsCfg), services.RegistryPublisherConfig{
			Domain:      cfg.Registry.Domain,
			DomainOwner: cfg.Registry.DomainOwner,
			Repository:  cfg.Registry.Repository,
		}), nil

	case config.PublisherSourceControl:
		sc := cfg.SourceControl
		// Own client: the gateway installs its rate-limit retry check on it
		client := gateways.NewHTTPClient(gateways.HTTPClientConfig{
			Timeout:  cfg.Fetch.Timeout,
			RetryMax: cfg.Fetch.Retries,
		}, logger)
		github := gateways.NewHTTPGitHubGateway(client, sc.APIURL, sc.Token, logger)

		var committer *domainGateways.Committer
		if sc.Username != "" && sc.Email != "" {
			committer = &domainGateways.Committer{Name: sc.Username, Email: sc.Email}
		}
		return services.NewSourceControlPublisher(github, services.SourceControlPublisherConfig{
			Owner:         sc.Owner,
			Repo:          sc.Repo,
			PathPrefix:    sc.PathPrefix,
			DefaultBranch: sc.DefaultBranch,
			WebURL:        sc.WebURL,
			Committer:     committer,
		}, logger), nil

	default:
		return nil, fmt.Errorf("unknown publisher %q", cfg.Publisher)
	}
}

// buildNotifier returns the notifier and an optional close function
func buildNotifier(cfg *config.Config, awsCfg aws.Config, logger interfaces.Logger) (domainGateways.Notifier, func() error, error) {
	switch cfg.Notifier.Kind {
	case config.NotifierSNS:
		return gateways.NewSNSNotifier(awsCfg, cfg.Notifier.Topic), nil, nil

	case config.NotifierRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Notifier.Redis.Addr,
			Password: cfg.Notifier.Redis.Password,
			DB:       cfg.Notifier.Redis.DB,
		})
		return gateways.NewRedisNotifier(client, cfg.Notifier.Topic), client.Close, nil

	case config.NotifierLog:
		return gateways.NewLogNotifier(logger), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown notifier %q", cfg.Notifier.Kind)
	}
}
