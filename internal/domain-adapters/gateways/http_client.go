// Package gateways provides implementations of domain gateway interfaces.
package gateways

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ochairo/pkggate/internal/domain/interfaces"
)

// HTTPClientConfig controls the shared retrying transport
type HTTPClientConfig struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// NewHTTPClient builds a retrying client. Once retries are exhausted the last
// response is returned as-is so callers can act on its status code.
func NewHTTPClient(config HTTPClientConfig, logger interfaces.Logger) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{Timeout: config.Timeout}
	client.RetryMax = config.RetryMax
	if config.RetryWaitMin > 0 {
		client.RetryWaitMin = config.RetryWaitMin
	}
	if config.RetryWaitMax > 0 {
		client.RetryWaitMax = config.RetryWaitMax
	}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = leveledLogger{logger: logger}
	return client
}

// leveledLogger routes retryablehttp's key/value logging into the domain logger
type leveledLogger struct {
	logger interfaces.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Error(msg, toFields(keysAndValues)...)
	}
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Info(msg, toFields(keysAndValues)...)
	}
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Debug(msg, toFields(keysAndValues)...)
	}
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Warn(msg, toFields(keysAndValues)...)
	}
}

func toFields(keysAndValues []interface{}) []interfaces.Field {
	fields := make([]interfaces.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, interfaces.F(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return fields
}
