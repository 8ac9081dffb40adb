// Package httpjson is the HTTP transport shared by the link and score
// clients: one JSON POST, with cancellation reported apart from failure.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "yuki/internal/platform/errors"
)

const maxResponseBytes = 1 << 20

type Response struct {
	Status int
	Body   []byte
}

func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	tracer  trace.Tracer
}

func New(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    httpClient,
		tracer:  otel.Tracer("yuki/httpjson"),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Post sends body as JSON to baseURL+path. Any HTTP status is a Response; only
// a request that got no response at all is an error, wrapping
// ErrNetworkCancelled when ctx was cancelled and ErrNetworkFailed otherwise.
func (c *Client) Post(ctx context.Context, path string, body any) (Response, error) {
	ctx, span := c.tracer.Start(ctx, "POST "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("%w: build request: %v", apperrors.ErrNetworkFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		if errors.Is(ctx.Err(), context.Canceled) {
			span.SetStatus(codes.Error, "cancelled")
			return Response{}, fmt.Errorf("%w: %s", apperrors.ErrNetworkCancelled, path)
		}
		span.SetStatus(codes.Error, "transport")
		return Response{}, fmt.Errorf("%w: %v", apperrors.ErrNetworkFailed, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return Response{}, fmt.Errorf("%w: %s", apperrors.ErrNetworkCancelled, path)
		}
		return Response{}, fmt.Errorf("%w: read response: %v", apperrors.ErrNetworkFailed, err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
	if res.StatusCode >= 400 {
		span.SetStatus(codes.Error, http.StatusText(res.StatusCode))
	}
	return Response{Status: res.StatusCode, Body: raw}, nil
}
