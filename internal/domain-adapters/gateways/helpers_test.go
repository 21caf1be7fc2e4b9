package gateways

import (
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

func newTestClient() *retryablehttp.Client {
	return NewHTTPClient(HTTPClientConfig{
		Timeout:      5 * time.Second,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
	}, nil)
}
