// Package azure implements text recognition against the Azure Document
// Intelligence prebuilt-read model: submit the binary, then poll the
// returned operation until the analysis settles.
package azure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
	"github.com/meridiancde/nmtc-backend/internal/infrastructure/resilience"
)

const (
	apiVersion          = "2024-11-30"
	defaultModel        = "prebuilt-read"
	defaultPollInterval = 2 * time.Second
	defaultPollTimeout  = 5 * time.Minute
)

type Client struct {
	endpoint     string
	apiKey       string
	model        string
	httpClient   *http.Client
	limiter      *rate.Limiter
	executor     *resilience.Executor
	pollInterval time.Duration
	pollTimeout  time.Duration
}

type Options struct {
	// Model overrides the prebuilt-read analysis model.
	Model string
	// RequestsPerSecond throttles analyze submissions; zero disables
	// throttling.
	RequestsPerSecond  float64
	ResilienceExecutor *resilience.Executor
	PollInterval       time.Duration
	PollTimeout        time.Duration
}

func New(endpoint, apiKey string, options Options) *Client {
	model := options.Model
	if model == "" {
		model = defaultModel
	}
	pollInterval := options.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	pollTimeout := options.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	var limiter *rate.Limiter
	if options.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(options.RequestsPerSecond), 1)
	}

	return &Client{
		endpoint:     strings.TrimRight(endpoint, "/"),
		apiKey:       apiKey,
		model:        model,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		limiter:      limiter,
		executor:     options.ResilienceExecutor,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}
}

func (c *Client) Recognize(ctx context.Context, doc *domain.Document, content io.Reader) (domain.OCRResult, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return domain.OCRResult{}, fmt.Errorf("read document content: %w", err)
	}
	if len(data) == 0 {
		return domain.OCRResult{}, domain.WrapError(domain.ErrInvalidInput, "azure analyze",
			fmt.Errorf("empty document body: id=%s", doc.ID))
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.OCRResult{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var operationURL string
	submit := func(ctx context.Context) error {
		url, err := c.submitAnalyze(ctx, doc.MimeType, data)
		if err != nil {
			return err
		}
		operationURL = url
		return nil
	}

	if c.executor != nil {
		err = c.executor.Execute(ctx, "azure.analyze", submit, classifyAzureError)
	} else {
		err = submit(ctx)
	}
	if err != nil {
		return domain.OCRResult{}, wrapTemporaryIfNeeded("azure analyze", err)
	}

	result, err := c.pollResult(ctx, operationURL)
	if err != nil {
		return domain.OCRResult{}, wrapTemporaryIfNeeded("azure analyze poll", err)
	}
	return result, nil
}
