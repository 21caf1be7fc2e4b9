package gateways

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ochairo/pkggate/internal/domain/interfaces"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
)

// HTTPGitHubGateway implements SourceControlGateway against the GitHub REST API
type HTTPGitHubGateway struct {
	client    *retryablehttp.Client
	baseURL   string
	token     string
	userAgent string
	logger    interfaces.Logger
}

// NewHTTPGitHubGateway creates a GitHub gateway. baseURL defaults to https://api.github.com.
// The client's retry policy is wrapped so an exhausted rate limit is not retried.
func NewHTTPGitHubGateway(client *retryablehttp.Client, baseURL, token string, logger interfaces.Logger) *HTTPGitHubGateway {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	g := &HTTPGitHubGateway{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		userAgent: "pkggate",
		logger:    logger,
	}

	next := client.CheckRetry
	if next == nil {
		next = retryablehttp.DefaultRetryPolicy
	}
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil {
			if rateLimitErr := g.checkRateLimit(resp); rateLimitErr != nil {
				return false, rateLimitErr
			}
		}
		return next(ctx, resp, err)
	}

	return g
}

var _ gateways.SourceControlGateway = (*HTTPGitHubGateway)(nil)

// checkRateLimit returns an error when a request was refused because the API
// rate limit is exhausted. Successful responses always pass through.
func (g *HTTPGitHubGateway) checkRateLimit(resp *http.Response) error {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return nil
	}

	remainingInt, err := strconv.Atoi(remaining)
	if err != nil {
		return nil
	}

	refused := resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests
	if remainingInt == 0 && !refused {
		g.logger.Warn("GitHub API rate limit exhausted", interfaces.F("status", resp.StatusCode))
		return nil
	}

	if remainingInt == 0 {
		resetTime := resp.Header.Get("X-RateLimit-Reset")
		if resetTime != "" {
			if resetUnix, err := strconv.ParseInt(resetTime, 10, 64); err == nil {
				resetAt := time.Unix(resetUnix, 0)
				return fmt.Errorf("GitHub API rate limit exceeded (0 remaining), resets at %s", resetAt.Format(time.RFC3339))
			}
		}
		return fmt.Errorf("GitHub API rate limit exceeded (0 remaining)")
	}

	if remainingInt <= 10 {
		g.logger.Warn("GitHub API rate limit low", interfaces.F("remaining", remainingInt))
	}

	return nil
}

type githubRepository struct {
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
	HTMLURL       string `json:"html_url"`
}

type githubBranch struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

type githubRefRequest struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

type githubContent struct {
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	HTMLURL     string `json:"html_url"`
	DownloadURL string `json:"download_url"`
}

type githubCommitter struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubPutContentRequest struct {
	Message   string           `json:"message"`
	Content   string           `json:"content"`
	Branch    string           `json:"branch"`
	SHA       string           `json:"sha,omitempty"`
	Committer *githubCommitter `json:"committer,omitempty"`
}

type githubPutContentResponse struct {
	Content githubContent `json:"content"`
	Commit  struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

type githubError struct {
	Message string `json:"message"`
}

func (g *HTTPGitHubGateway) newRequest(ctx context.Context, method, path string, body interface{}) (*retryablehttp.Request, error) {
	var raw interface{}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		raw = data
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, g.baseURL+path, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "token "+g.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", g.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes req. A response returned alongside an error is closed here.
func (g *HTTPGitHubGateway) do(req *retryablehttp.Request) (*http.Response, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		if resp != nil {
			//nolint:errcheck,gosec // G104: Best effort close on transport error
			resp.Body.Close()
		}
		return nil, err
	}
	return resp, nil
}

func statusError(action string, resp *http.Response) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to %s: status %d (failed to read response)", action, resp.StatusCode)
	}
	return fmt.Errorf("failed to %s: status %d: %s", action, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
}

func repoPath(owner, repo string) string {
	return "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo)
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// GetRepository returns repository metadata
func (g *HTTPGitHubGateway) GetRepository(ctx context.Context, owner, repo string) (*gateways.RepositoryInfo, error) {
	req, err := g.newRequest(ctx, http.MethodGet, repoPath(owner, repo), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("get repository", resp)
	}

	var result githubRepository
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &gateways.RepositoryInfo{
		FullName:      result.FullName,
		DefaultBranch: result.DefaultBranch,
		HTMLURL:       result.HTMLURL,
	}, nil
}

// FindBranch looks up a branch; a 404 reports found=false
func (g *HTTPGitHubGateway) FindBranch(ctx context.Context, owner, repo, name string) (*gateways.Branch, bool, error) {
	req, err := g.newRequest(ctx, http.MethodGet, repoPath(owner, repo)+"/branches/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := g.do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get branch: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, statusError("get branch", resp)
	}

	var result githubBranch
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, false, fmt.Errorf("failed to decode response: %w", err)
	}

	return &gateways.Branch{Name: result.Name, SHA: result.Commit.SHA}, true, nil
}

// CreateBranch creates refs/heads/<name>. GitHub answers 422 "Reference already exists"
// for an existing ref, which maps to ErrRefExists.
func (g *HTTPGitHubGateway) CreateBranch(ctx context.Context, owner, repo, name, sha string) error {
	req, err := g.newRequest(ctx, http.MethodPost, repoPath(owner, repo)+"/git/refs", githubRefRequest{
		Ref: "refs/heads/" + name,
		SHA: sha,
	})
	if err != nil {
		return err
	}

	resp, err := g.do(req)
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		return nil
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnprocessableEntity {
		var apiErr githubError
		if json.Unmarshal(bodyBytes, &apiErr) == nil && strings.Contains(strings.ToLower(apiErr.Message), "already exists") {
			return gateways.ErrRefExists
		}
	}
	return fmt.Errorf("failed to create branch: status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
}

// FindFile looks up a file on ref; a 404 reports found=false
func (g *HTTPGitHubGateway) FindFile(ctx context.Context, owner, repo, path, ref string) (*gateways.FileInfo, bool, error) {
	endpoint := repoPath(owner, repo) + "/contents/" + escapePath(path) + "?ref=" + url.QueryEscape(ref)
	req, err := g.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := g.do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get contents: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, statusError("get contents", resp)
	}

	var result githubContent
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, false, fmt.Errorf("failed to decode response: %w", err)
	}

	return &gateways.FileInfo{Path: result.Path, SHA: result.SHA}, true, nil
}

// PutFile creates the file, or updates it when input.SHA is set
func (g *HTTPGitHubGateway) PutFile(ctx context.Context, owner, repo string, input gateways.PutFileInput) (*gateways.CommitResult, error) {
	body := githubPutContentRequest{
		Message: input.Message,
		Content: base64.StdEncoding.EncodeToString(input.Content),
		Branch:  input.Branch,
		SHA:     input.SHA,
	}
	if input.Committer != nil && input.Committer.Name != "" && input.Committer.Email != "" {
		body.Committer = &githubCommitter{Name: input.Committer.Name, Email: input.Committer.Email}
	}

	req, err := g.newRequest(ctx, http.MethodPut, repoPath(owner, repo)+"/contents/"+escapePath(input.Path), body)
	if err != nil {
		return nil, err
	}

	resp, err := g.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to put contents: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusError("put contents", resp)
	}

	var result githubPutContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &gateways.CommitResult{
		CommitSHA:   result.Commit.SHA,
		ContentSHA:  result.Content.SHA,
		HTMLURL:     result.Content.HTMLURL,
		DownloadURL: result.Content.DownloadURL,
	}, nil
}
