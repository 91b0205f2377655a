package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

type analyzeResultEnvelope struct {
	Status string `json:"status"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	AnalyzeResult *struct {
		Content string `json:"content"`
		Pages   []struct {
			PageNumber int `json:"pageNumber"`
			Words      []struct {
				Confidence float64 `json:"confidence"`
			} `json:"words"`
		} `json:"pages"`
	} `json:"analyzeResult,omitempty"`
}

func (c *Client) submitAnalyze(ctx context.Context, mimeType string, data []byte) (string, error) {
	url := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		c.endpoint, c.model, apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create analyze request: %w", err)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure analyze request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", newHTTPStatusError("analyze", resp)
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", fmt.Errorf("azure analyze response missing Operation-Location header")
	}
	return operationURL, nil
}

func (c *Client) pollResult(ctx context.Context, operationURL string) (domain.OCRResult, error) {
	deadline := time.Now().Add(c.pollTimeout)

	for {
		envelope, err := c.fetchOperation(ctx, operationURL)
		if err != nil {
			return domain.OCRResult{}, err
		}

		switch strings.ToLower(envelope.Status) {
		case "succeeded":
			return mapResult(envelope)
		case "failed":
			if envelope.Error != nil {
				return domain.OCRResult{}, fmt.Errorf("azure analysis failed: %s: %s",
					envelope.Error.Code, envelope.Error.Message)
			}
			return domain.OCRResult{}, fmt.Errorf("azure analysis failed without error detail")
		}

		if time.Now().After(deadline) {
			return domain.OCRResult{}, fmt.Errorf("azure analysis still %s after %s",
				envelope.Status, c.pollTimeout)
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.OCRResult{}, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) fetchOperation(ctx context.Context, operationURL string) (*analyzeResultEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create poll request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure poll request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, newHTTPStatusError("poll", resp)
	}

	var envelope analyzeResultEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode poll response: %w", err)
	}
	return &envelope, nil
}

func mapResult(envelope *analyzeResultEnvelope) (domain.OCRResult, error) {
	if envelope.AnalyzeResult == nil {
		return domain.OCRResult{}, fmt.Errorf("azure succeeded without analyzeResult payload")
	}

	var confidenceSum float64
	var wordCount int
	for _, page := range envelope.AnalyzeResult.Pages {
		for _, word := range page.Words {
			confidenceSum += word.Confidence
			wordCount++
		}
	}
	overall := 0.0
	if wordCount > 0 {
		overall = confidenceSum / float64(wordCount)
	}

	return domain.OCRResult{
		FullText:          envelope.AnalyzeResult.Content,
		PageCount:         len(envelope.AnalyzeResult.Pages),
		OverallConfidence: overall,
	}, nil
}

func newHTTPStatusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
}
