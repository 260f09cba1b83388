// Package api wraps the outbound calls to the social HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/socialclient/internal/model"
)

// TokenSource is the session store as seen by the client.
type TokenSource interface {
	// Token returns the current bearer token, ok=false when absent.
	Token(ctx context.Context) (string, bool, error)
	// Clear destroys the session after the API rejected its token.
	Clear(ctx context.Context) error
}

// Client attaches the bearer token to every request and normalizes failures into *RemoteError.
type Client struct {
	base   string
	hc     *http.Client
	tokens TokenSource
	log    *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport (timeouts live there).
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// New constructs a Client for baseURL (e.g. http://127.0.0.1:8000).
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		hc:     &http.Client{Timeout: 30 * time.Second},
		tokens: tokens,
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Body is a request payload.
type Body interface {
	encode() (io.Reader, string, error)
}

// JSON encodes v as the request body.
func JSON(v any) Body { return jsonBody{v: v} }

type jsonBody struct{ v any }

func (b jsonBody) encode() (io.Reader, string, error) {
	raw, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(raw), "application/json", nil
}

// Multipart is a form-data body; nil files are skipped.
type Multipart struct {
	Fields map[string]string
	Files  map[string]*model.Upload
}

func (m Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for field, up := range m.Files {
		if up == nil {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, up.Filename))
		ct := up.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(up.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// Do performs one call. out may be nil; a 2xx with an empty body leaves out untouched.
func (c *Client) Do(ctx context.Context, method, path string, body Body, out any) error {
	var (
		rd io.Reader
		ct string
	)
	if body != nil {
		var err error
		if rd, ct, err = body.encode(); err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	rid, _ := uuid.NewV4()
	req.Header.Set("X-Request-ID", rid.String())

	tok, hasToken, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if hasToken {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("api transport",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("rid", rid.String()),
			zap.Error(err),
		)
		return networkError(err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	// no bodies, only metadata
	c.log.Debug("api",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
		zap.String("rid", rid.String()),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rerr := remoteError(resp.StatusCode, raw)
		if resp.StatusCode == http.StatusUnauthorized && hasToken {
			if cerr := c.tokens.Clear(ctx); cerr != nil {
				c.log.Error("clear rejected session", zap.Error(cerr))
			}
		}
		return rerr
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// IsRemote reports whether err came from Do and returns it.
func IsRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
