package client

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/tba-client/pkg/cache"
	"github.com/Sternrassler/tba-client/pkg/endpoint"
	"github.com/Sternrassler/tba-client/pkg/logging"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/trace"
)

// maxBodyBytes bounds a single response body.
const maxBodyBytes = 32 << 20

// withSession runs fn under an acquired session and releases it on every
// exit path.
func withSession[T any](c *Client, fn func(s *session) (T, error)) (T, error) {
	s, err := c.acquire()
	if err != nil {
		var zero T
		return zero, err
	}
	defer c.release()
	return fn(s)
}

// getOne decodes the object at path.
func getOne[T any](ctx context.Context, c *Client, s *session, path string) (*T, error) {
	var out *T
	if err := c.getJSON(ctx, s, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getList decodes the array at path. A null body yields an empty slice.
func getList[T any](ctx context.Context, c *Client, s *session, path string) ([]T, error) {
	var out []T
	if err := c.getJSON(ctx, s, path, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, s *session, path string, out interface{}) error {
	body, err := c.getBody(ctx, s, path)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return errors.Mark(errors.Wrapf(err, "decode %s", path), ErrDecode)
	}
	return nil
}

// getBody performs a GET for path, serving and maintaining the cache when
// one is configured.
func (c *Client) getBody(ctx context.Context, s *session, path string) ([]byte, error) {
	key := cache.Key(path)
	name := endpoint.Name(path)

	var cached *cache.Entry
	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		switch {
		case err == nil && !entry.IsExpired():
			cache.CacheHits.Inc()
			trace.SpanFromContext(ctx).AddEvent("tba.cache_hit")
			c.logger.Debug().Str(logging.FieldPath, path).Dur(logging.FieldTTL, entry.TTL()).Msg("Cache hit")
			return entry.Data, nil
		case err == nil:
			cached = entry
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str(logging.FieldPath, path).Msg("Cache get error")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set(AuthHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	if cached != nil && cache.CanRevalidate(cached) {
		cache.AddConditionalHeaders(req, cached)
		cache.ConditionalRequestsSent.Inc()
		c.logger.Debug().
			Str(logging.FieldPath, path).
			Str(logging.FieldETag, cached.ETag).
			Msg("Making conditional request")
	}

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		tbaRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		tbaRequestsTotal.WithLabelValues(name, "network_error").Inc()
		tbaErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		c.logger.Warn().
			Err(err).
			Str(logging.FieldEndpoint, name).
			Str(logging.FieldPath, path).
			Str(logging.FieldErrorClass, string(ErrorClassNetwork)).
			Msg("HTTP request failed")
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	tbaRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		tbaErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, errors.Wrapf(err, "read body of %s", path)
	}
	tbaRequestsTotal.WithLabelValues(name, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		cache.NotModifiedResponses.Inc()
		trace.SpanFromContext(ctx).AddEvent("tba.not_modified")
		c.logger.Debug().Str(logging.FieldPath, path).Msg("304 Not Modified - using cache")
		if err := c.cache.Refresh(ctx, key, cached, cache.FreshUntil(resp.Header, time.Now())); err != nil {
			c.logger.Warn().Err(err).Str(logging.FieldPath, path).Msg("Failed to refresh cache entry")
		}
		return cached.Data, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message, ok := upstreamMessage(body)
		if !ok {
			message = http.StatusText(resp.StatusCode)
		}
		return nil, c.apiError(&APIError{
			StatusCode: resp.StatusCode,
			Class:      classifyStatus(resp.StatusCode),
			Message:    message,
			Path:       path,
		})
	}

	if message, ok := upstreamMessage(body); ok {
		return nil, c.apiError(&APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassUpstream,
			Message:    message,
			Path:       path,
		})
	}

	c.logger.Debug().
		Str(logging.FieldEndpoint, name).
		Str(logging.FieldPath, path).
		Int(logging.FieldStatus, resp.StatusCode).
		Dur(logging.FieldDuration, time.Since(start)).
		Msg("Request complete")

	if c.cache != nil && resp.StatusCode == http.StatusOK && cache.Cacheable(resp.Header) {
		entry := cache.NewEntry(resp.Header, body, time.Now())
		if err := c.cache.Set(ctx, key, entry); err != nil {
			c.logger.Warn().Err(err).Str(logging.FieldPath, path).Msg("Failed to cache response")
		}
	}

	return body, nil
}

func (c *Client) apiError(apiErr *APIError) error {
	tbaErrorsTotal.WithLabelValues(string(apiErr.Class)).Inc()
	c.logger.Warn().
		Str(logging.FieldEndpoint, endpoint.Name(apiErr.Path)).
		Str(logging.FieldPath, apiErr.Path).
		Int(logging.FieldStatus, apiErr.StatusCode).
		Str(logging.FieldErrorClass, string(apiErr.Class)).
		Str("message", apiErr.Message).
		Msg("TBA request error")
	return apiErr
}

// upstreamMessage extracts the "Error" member of a top-level JSON object.
func upstreamMessage(body []byte) (string, bool) {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return "", false
	}
	node, err := sonic.GetFromString(trimmed, "Error")
	if err != nil || !node.Exists() {
		return "", false
	}
	if msg, err := node.String(); err == nil {
		return msg, true
	}
	raw, _ := node.Raw()
	return raw, true
}
