package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/types"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client talks to the resume analysis backend API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *CircuitBreaker
	logger     *errors.Logger
}

// NewClient creates a backend API client from configuration
func NewClient(cfg *config.BackendConfig, logger *errors.Logger) *Client {
	logger.Debug("Initializing backend client",
		"base_url", cfg.BaseURL,
		"timeout", cfg.Timeout,
		"circuit_breaker_enabled", cfg.CircuitBreaker.Enabled)

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: NewCircuitBreaker("api", &cfg.CircuitBreaker, logger),
		logger:  logger,
	}
}

// UploadResume uploads a resume file and returns the server-assigned filename
func (c *Client) UploadResume(ctx context.Context, filename string, content io.Reader, jobDescription string) (*types.UploadResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeBackendFailed,
			"Failed to build multipart request", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			"Failed to read resume content", err).WithContext("filename", filename)
	}
	if jobDescription != "" {
		if err := writer.WriteField("job_description", jobDescription); err != nil {
			return nil, errors.NewInternalError(errors.ErrCodeBackendFailed,
				"Failed to build multipart request", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeBackendFailed,
			"Failed to finalize multipart request", err)
	}

	respBody, err := c.do(ctx, "upload", c.baseURL+"/api/upload-resume", writer.FormDataContentType(), &body)
	if err != nil {
		return nil, err
	}

	var resp types.UploadResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, errors.NewBackendError(errors.ErrCodeBackendDecode,
			"Failed to decode upload response", err)
	}
	if resp.Filename == "" {
		return nil, errors.NewBackendError(errors.ErrCodeBackendDecode,
			"Upload response is missing the server-assigned filename", nil)
	}

	c.logger.Info("Resume uploaded", "server_filename", resp.Filename)
	return &resp, nil
}

// AnalyzeResume requests a full analysis for a previously uploaded resume
func (c *Client) AnalyzeResume(ctx context.Context, filename, jobDescription string) (*types.AnalysisResult, error) {
	form := url.Values{}
	form.Set("filename", filename)
	form.Set("job_description", jobDescription)

	respBody, err := c.do(ctx, "analyze", c.baseURL+"/api/analyze-resume",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, errors.NewBackendError(errors.ErrCodeBackendDecode,
			"Failed to decode analysis response", err).WithContext("filename", filename)
	}

	c.logger.Info("Resume analyzed",
		"filename", filename,
		"total_score", result.ATSScore.TotalScore)
	return &result, nil
}

// OptimizeResume requests an optimized resume version for the given region
func (c *Client) OptimizeResume(ctx context.Context, filename, jobDescription, region string) (*types.OptimizeResponse, error) {
	form := url.Values{}
	form.Set("filename", filename)
	form.Set("job_description", jobDescription)
	form.Set("region", region)

	respBody, err := c.do(ctx, "optimize", c.baseURL+"/api/optimize-resume",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	var resp types.OptimizeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, errors.NewBackendError(errors.ErrCodeBackendDecode,
			"Failed to decode optimize response", err).WithContext("filename", filename)
	}

	c.logger.Info("Resume optimized",
		"filename", filename,
		"optimized_filename", resp.OptimizedFilename,
		"region", region)
	return &resp, nil
}

// DownloadFile fetches a stored file (such as an optimized resume) from the backend
func (c *Client) DownloadFile(ctx context.Context, filename string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/download/"+url.PathEscape(filename), nil)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeBackendFailed,
			"Failed to build download request", err)
	}
	c.setAuth(req)

	return c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, errors.NewNetworkError(errors.ErrCodeBackendFailed,
				"Backend download request failed", err).WithContext("filename", filename)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, c.statusError("download", resp)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.NewNetworkError(errors.ErrCodeBackendFailed,
				"Failed to read download response", err)
		}
		return data, nil
	})
}

// Ping checks backend reachability for health reporting
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeBackendFailed,
			"Backend is unreachable", err)
	}
	_ = resp.Body.Close()
	return nil
}

// BreakerStats returns circuit breaker statistics for the stats endpoint
func (c *Client) BreakerStats() map[string]any {
	return c.breaker.GetStats()
}

// IsHealthy reports whether the backend circuit breaker is closed
func (c *Client) IsHealthy() bool {
	return c.breaker.IsHealthy()
}

// do issues a POST through the circuit breaker and returns the response body
func (c *Client) do(ctx context.Context, operation, endpoint, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeBackendFailed,
			"Failed to build backend request", err).WithContext("operation", operation)
	}
	req.Header.Set("Content-Type", contentType)
	c.setAuth(req)

	return c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, errors.NewNetworkError(errors.ErrCodeBackendFailed,
				"Backend request failed", err).WithContext("operation", operation)
		}
		defer func() { _ = resp.Body.Close() }()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.NewNetworkError(errors.ErrCodeBackendFailed,
				"Failed to read backend response", err).WithContext("operation", operation)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, c.statusError(operation, resp)
		}
		return respBody, nil
	})
}

func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}

func (c *Client) statusError(operation string, resp *http.Response) *errors.AppError {
	return errors.NewBackendError(errors.ErrCodeBackendStatus,
		fmt.Sprintf("Backend returned status %d", resp.StatusCode), nil).
		WithContext("operation", operation).
		WithContext("status_code", resp.StatusCode)
}
