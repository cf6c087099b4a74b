package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("review-service/http-client")

const maxErrorBody = 4 << 10

// jsonClient performs single-shot JSON calls against one downstream service.
// Calls are bounded by the configured timeout and never retried.
type jsonClient struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

func newJSONClient(baseURL string, timeout time.Duration, log *logger.Logger) *jsonClient {
	return &jsonClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  log,
	}
}

// do sends body (when non-nil) as JSON and decodes a 2xx response into out (when non-nil).
// 404 maps to domain.ErrNotFound, any other failure to domain.ErrUpstream.
func (c *jsonClient) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	url := c.baseURL + path
	ctx, span := tracer.Start(ctx, method+" "+strings.SplitN(path, "?", 2)[0])
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", url),
	)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, url, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		c.logger.Warn("Downstream request failed", zap.String("method", method), zap.String("url", url), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUpstream, method, url, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug("Downstream request completed",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := readErrorMessage(resp.Body)
		span.SetStatus(codes.Error, msg)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
		}
		return fmt.Errorf("%w: %s %s returned %d: %s", domain.ErrUpstream, method, url, resp.StatusCode, msg)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: decode response from %s: %v", domain.ErrUpstream, url, err)
	}
	return nil
}

// readErrorMessage extracts "message" or "error" from a JSON error body, falling back to raw text.
func readErrorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
