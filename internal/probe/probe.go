// Package probe uploads a KiCad project archive to the BOM/ports extraction
// endpoint and reports what came back.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ilkin0/bomprobe/internal/logger"
	"github.com/ilkin0/bomprobe/internal/storage"
)

const DefaultField = "file"

var (
	ErrOpenSource = errors.New("failed to open upload source")
	ErrSend       = errors.New("failed to send upload request")
	ErrDecodeBody = errors.New("failed to decode response body")
)

type Result struct {
	StatusCode int
	Body       []byte
	RequestID  string
}

// JSON decodes the response body into a generic value. Numbers are kept as
// json.Number so they print back unchanged.
func (r *Result) JSON() (any, error) {
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeBody, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrDecodeBody)
	}

	return v, nil
}

type Prober struct {
	client *http.Client
	field  string
}

func New(client *http.Client, field string) *Prober {
	if client == nil {
		client = NewHTTPClient(0)
	}
	if field == "" {
		field = DefaultField
	}

	return &Prober{
		client: client,
		field:  field,
	}
}

// NewHTTPClient returns a client for a single upload. A zero timeout waits
// for the server indefinitely.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: true,
		},
	}
}

// Run uploads src to url, then writes the status code and the decoded JSON
// body to stdout, one line each. The status line is written before the body
// is decoded, so a non-JSON reply still leaves it on stdout.
func (p *Prober) Run(ctx context.Context, url string, src storage.Source, stdout io.Writer) error {
	res, err := p.Upload(ctx, url, src)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(stdout, res.StatusCode); err != nil {
		return fmt.Errorf("failed to write status: %w", err)
	}

	v, err := res.JSON()
	if err != nil {
		return err
	}

	return printJSON(stdout, v)
}

// Upload performs a single multipart POST of src to url. The source is held
// open only for the duration of the call. A non-2xx status is not an error.
func (p *Prober) Upload(ctx context.Context, url string, src storage.Source) (*Result, error) {
	requestID := uuid.New().String()
	ctx, log := logger.ForRequest(ctx, requestID)

	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenSource, err)
	}
	defer rc.Close()

	payload, err := newPayload(rc, p.field, src.Name())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenSource, err)
	}

	log.Debug("sending upload",
		slog.String("url", url),
		slog.String("field", p.field),
		slog.String("filename", src.Name()),
		slog.Int64("size", payload.size),
		slog.String("sha256", payload.sha256),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload.body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSend, err)
	}
	req.Header.Set("Content-Type", payload.contentType)
	req.Header.Set(logger.RequestIDHeader, requestID)

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSend, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.Info("upload completed",
		slog.Int("http.status", resp.StatusCode),
		slog.Int64("http.duration_ms", time.Since(start).Milliseconds()),
		slog.Int("http.bytes", len(body)),
	)

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       body,
		RequestID:  requestID,
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
