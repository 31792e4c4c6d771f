package docpipe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetsync-team/meetsync/pkg/config"
)

// ProcessOptions controls a downstream processing invocation
type ProcessOptions struct {
	ForceReprocess bool `json:"force_reprocess,omitempty"`
}

// Result is the downstream pipeline's response
type Result struct {
	Success    bool    `json:"success"`
	DocumentID *string `json:"document_id,omitempty"`
	Error      *string `json:"error,omitempty"`
}

// Processor is the downstream document-extraction pipeline this service
// triggers but does not implement
type Processor interface {
	ProcessTranscript(ctx context.Context, transcriptID uuid.UUID, opts ProcessOptions) (*Result, error)
}

// Client calls the document pipeline over HTTP
type Client struct {
	baseURL  string
	apiToken string
	client   *http.Client
	logger   *zap.Logger
}

// NewClient creates a document pipeline client
func NewClient(cfg *config.PipelineConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		apiToken: cfg.APIToken,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		logger:   logger,
	}
}

// ProcessTranscript submits one transcript for document extraction.
// Transient HTTP failures are retried with exponential backoff; a non-2xx
// response from the pipeline is returned as a failed Result, not an error.
func (c *Client) ProcessTranscript(ctx context.Context, transcriptID uuid.UUID, opts ProcessOptions) (*Result, error) {
	body, err := json.Marshal(map[string]interface{}{
		"transcript_id":   transcriptID.String(),
		"force_reprocess": opts.ForceReprocess,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var result Result
	submitFn := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/pipeline/process", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiToken)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("pipeline request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read pipeline response: %w", err)
		}

		if resp.StatusCode >= 500 {
			return fmt.Errorf("pipeline returned status %d", resp.StatusCode)
		}

		if resp.StatusCode >= 400 {
			errMsg := fmt.Sprintf("pipeline rejected request: status %d", resp.StatusCode)
			result = Result{Success: false, Error: &errMsg}
			return nil
		}

		if err := json.Unmarshal(respBody, &result); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode pipeline response: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(submitFn, backoff.WithContext(bo, ctx)); err != nil {
		if c.logger != nil {
			c.logger.Error("❌ Pipeline call failed after retries",
				zap.String("transcript_id", transcriptID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	if c.logger != nil {
		c.logger.Info("📨 Pipeline call completed",
			zap.String("transcript_id", transcriptID.String()),
			zap.Bool("success", result.Success),
			zap.Bool("force", opts.ForceReprocess),
		)
	}

	return &result, nil
}
