// Package backend is the HTTP client for the wheelhouse backend's
// pull-based endpoints: the liveness probe and the project directory.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/rcastell/wheelhouse/internal/tracing"
)

// Client talks to the backend over plain HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// HealthResponse is the body of the liveness endpoint. Uptime is reported
// in seconds and may be absent on backends that predate it.
type HealthResponse struct {
	Status string   `json:"status"`
	Uptime *float64 `json:"uptime"`
}

// Project is one entry in the backend's project directory.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Directory is the backend's project directory snapshot.
type Directory struct {
	Projects        []Project `json:"projects"`
	ActiveProjectID string    `json:"active_project_id"`
}

// New creates a client for the backend at baseURL. The timeout bounds each
// request end to end; a hung probe fails like any other network error
// instead of wedging the poll loop. A nil tracer disables spans.
func New(baseURL string, timeout time.Duration, tracer trace.Tracer) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("backend")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tracer:  tracer,
	}
}

// Health probes the backend liveness endpoint. Any network failure or
// non-2xx status comes back as an error.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var response HealthResponse
	if err := c.get(ctx, tracing.SpanBackendHealth, "/api/health", &response); err != nil {
		return HealthResponse{}, err
	}
	return response, nil
}

// Projects fetches the project directory.
func (c *Client) Projects(ctx context.Context) (Directory, error) {
	var response Directory
	if err := c.get(ctx, tracing.SpanBackendProjects, "/api/projects", &response); err != nil {
		return Directory{}, err
	}
	return response, nil
}

// get runs one traced GET against the backend and decodes the JSON body.
func (c *Client) get(ctx context.Context, spanName, path string, out any) error {
	ctx, span := c.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(tracing.AttrEndpoint, path)),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := c.doJSON(req, out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	trace.SpanFromContext(req.Context()).SetAttributes(
		attribute.Int(tracing.AttrHTTPStatus, res.StatusCode),
	)

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		var apiError struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&apiError)
		if strings.TrimSpace(apiError.Error) != "" {
			return errors.New(apiError.Error)
		}
		return fmt.Errorf("backend returned %s", res.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
