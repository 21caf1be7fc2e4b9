package gateways

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/inhies/go-bytesize"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
)

// DownloaderConfig limits what the downloader will fetch
type DownloaderConfig struct {
	MaxBytes     bytesize.ByteSize
	AllowedHosts []string // glob patterns such as "*.github.com"; empty allows any host
	UserAgent    string
}

// Downloader fetches artifacts into memory
type Downloader struct {
	client    *retryablehttp.Client
	maxBytes  int64
	hosts     []glob.Glob
	userAgent string
	logger    interfaces.Logger
}

// NewDownloader creates a downloader. Invalid host patterns are rejected.
func NewDownloader(client *retryablehttp.Client, config DownloaderConfig, logger interfaces.Logger) (*Downloader, error) {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	hosts := make([]glob.Glob, 0, len(config.AllowedHosts))
	for _, pattern := range config.AllowedHosts {
		g, err := glob.Compile(strings.ToLower(pattern), '.')
		if err != nil {
			return nil, fmt.Errorf("%w: invalid host pattern %q: %v", entities.ErrConfig, pattern, err)
		}
		hosts = append(hosts, g)
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "pkggate"
	}

	return &Downloader{
		client:    client,
		maxBytes:  int64(config.MaxBytes),
		hosts:     hosts,
		userAgent: userAgent,
		logger:    logger,
	}, nil
}

var _ gateways.ArtifactFetcher = (*Downloader)(nil)

// Fetch downloads rawURL and returns its body
func (d *Downloader) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := d.checkHost(rawURL); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", entities.ErrFetch, err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: HTTP request failed: %v", entities.ErrFetch, err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d: %s", entities.ErrFetch, resp.StatusCode, rawURL)
	}

	if d.maxBytes > 0 && resp.ContentLength > d.maxBytes {
		return nil, d.tooLarge(rawURL)
	}

	var body io.Reader = resp.Body
	if d.maxBytes > 0 {
		body = io.LimitReader(resp.Body, d.maxBytes+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", entities.ErrFetch, err)
	}
	if d.maxBytes > 0 && int64(len(data)) > d.maxBytes {
		return nil, d.tooLarge(rawURL)
	}

	d.logger.Debug("downloaded",
		interfaces.F("url", rawURL),
		interfaces.F("size", bytesize.New(float64(len(data))).String()))

	return data, nil
}

func (d *Downloader) checkHost(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: invalid URL %q: %v", entities.ErrFetch, rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported URL scheme %q", entities.ErrFetch, u.Scheme)
	}
	if len(d.hosts) == 0 {
		return nil
	}

	host := strings.ToLower(u.Hostname())
	for _, g := range d.hosts {
		if g.Match(host) {
			return nil
		}
	}
	return fmt.Errorf("%w: host %s is not in the allow-list", entities.ErrFetch, host)
}

func (d *Downloader) tooLarge(rawURL string) error {
	return fmt.Errorf("%w: %s exceeds the %s download limit", entities.ErrFetch, rawURL, bytesize.New(float64(d.maxBytes)))
}
