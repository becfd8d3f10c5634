package client

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// session is the shared HTTP client of all in-flight operations.
type session struct {
	http      *http.Client
	transport *http.Transport // nil when the caller supplied the client
}

func (c *Client) newSession() *session {
	if c.config.HTTPClient != nil {
		return &session{http: c.config.HTTPClient}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = c.config.MaxConcurrency
	return &session{
		http: &http.Client{
			Timeout:   c.config.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		transport: transport,
	}
}

func (s *session) close() {
	if s.transport != nil {
		s.transport.CloseIdleConnections()
		return
	}
	s.http.CloseIdleConnections()
}

// acquire returns the session, creating it on first use. Every successful
// acquire must be paired with release.
func (c *Client) acquire() (*session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if c.sess == nil {
		c.sess = c.newSession()
		c.logger.Debug().Bool("persistent", c.config.PersistentSession).Msg("Session opened")
	}
	c.refs++
	return c.sess, nil
}

// release drops one reference. The last release tears the session down unless
// it is persistent and the client is still open.
func (c *Client) release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refs--
	if c.refs > 0 {
		return
	}
	if c.closed || !c.config.PersistentSession {
		c.teardownLocked()
	}
}

func (c *Client) teardownLocked() {
	if c.sess == nil {
		return
	}
	c.sess.close()
	c.sess = nil
	c.logger.Debug().Msg("Session closed")
}
