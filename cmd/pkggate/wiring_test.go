package main

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/ochairo/pkggate/internal/config"
	"github.com/ochairo/pkggate/internal/domain-adapters/gateways"
	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces"
)

func TestBuildPublisher(t *testing.T) {
	tests := []struct {
		name      string
		publisher string
		want      entities.PublishTarget
		wantErr   bool
	}{
		{"registry", config.PublisherRegistry, entities.PublishTargetRegistry, false},
		{"source control", config.PublisherSourceControl, entities.PublishTargetSourceControl, false},
		{"unknown", "ftp", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Publisher = tt.publisher

			publisher, err := buildPublisher(cfg, aws.Config{Region: "us-east-1"}, &interfaces.NoOpLogger{})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildPublisher() error = %v", err)
			}
			if publisher.Target() != tt.want {
				t.Errorf("Target() = %s, want %s", publisher.Target(), tt.want)
			}
		})
	}
}

func TestBuildNotifier(t *testing.T) {
	logger := &interfaces.NoOpLogger{}
	awsCfg := aws.Config{Region: "us-east-1"}

	cfg := config.Default()
	cfg.Notifier.Kind = config.NotifierLog
	notifier, closer, err := buildNotifier(cfg, awsCfg, logger)
	if err != nil || closer != nil {
		t.Fatalf("log notifier: err = %v, closer = %v", err, closer != nil)
	}
	if _, ok := notifier.(*gateways.LogNotifier); !ok {
		t.Errorf("expected *LogNotifier, got %T", notifier)
	}

	cfg.Notifier.Kind = config.NotifierSNS
	cfg.Notifier.Topic = "arn:aws:sns:us-east-1:123456789012:pkggate"
	notifier, _, err = buildNotifier(cfg, awsCfg, logger)
	if err != nil {
		t.Fatalf("sns notifier: %v", err)
	}
	if _, ok := notifier.(*gateways.SNSNotifier); !ok {
		t.Errorf("expected *SNSNotifier, got %T", notifier)
	}

	cfg.Notifier.Kind = config.NotifierRedis
	cfg.Notifier.Redis.Addr = "127.0.0.1:6379"
	notifier, closer, err = buildNotifier(cfg, awsCfg, logger)
	if err != nil {
		t.Fatalf("redis notifier: %v", err)
	}
	if _, ok := notifier.(*gateways.RedisNotifier); !ok {
		t.Errorf("expected *RedisNotifier, got %T", notifier)
	}
	if closer == nil {
		t.Fatal("redis notifier should return a closer")
	}
	if err := closer(); err != nil {
		t.Errorf("close: %v", err)
	}

	cfg.Notifier.Kind = "pager"
	if _, _, err := buildNotifier(cfg, awsCfg, logger); err == nil {
		t.Error("expected error for unknown notifier")
	}
}

func TestApplicationClose(t *testing.T) {
	var calls int
	app := &application{closers: []func() error{
		func() error { calls++; return nil },
		func() error { calls++; return nil },
	}}
	if err := app.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("closers called %d times, want 2", calls)
	}
}
