// Package provider relays a built prompt to exactly one AI vendor and returns
// the JSON document found in its reply.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Bahjat/a11y-insight-tool/internal/platform/errs"
)

// UnavailableMessage is shown to users when the selected provider has no
// credential configured.
const UnavailableMessage = "A ferramenta não está configurada corretamente para se conectar à IA."

// Sampling temperature used for every vendor.
const temperature = 0.1

// maxResponseBody bounds how much of a vendor reply is read into memory.
const maxResponseBody = 8 << 20

// maxLoggedText bounds the offending reply written to the log.
const maxLoggedText = 2048

// ErrBlocked is wrapped by adapters when the vendor answered without any
// candidate content.
var ErrBlocked = errors.New("provider returned no content")

var errResponseTooLarge = errors.New("provider response exceeds size limit")

// Adapter converts between the relay and one vendor's wire format.
type Adapter interface {
	// Name returns the provider identity (openai, google, groq).
	Name() string
	// BuildRequest returns the outbound request carrying prompt.
	BuildRequest(ctx context.Context, prompt string) (*http.Request, error)
	// ExtractText returns the generated text from a 2xx response body.
	ExtractText(body []byte) (string, error)
}

// Observer receives the latency of each outbound call.
type Observer interface {
	ObserveProvider(provider string, start time.Time)
}

// Relay performs one vendor call per Complete. A Relay without an adapter
// reports the provider as unavailable and never touches the network.
type Relay struct {
	name     string
	adapter  Adapter
	client   *http.Client
	logger   *slog.Logger
	observer Observer
}

// Option configures a Relay.
type Option func(*Relay)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Relay) { r.logger = l }
}

// WithObserver records call latency, typically into Prometheus.
func WithObserver(o Observer) Option {
	return func(r *Relay) { r.observer = o }
}

// New returns a Relay that sends requests built by adapter through client.
func New(adapter Adapter, client *http.Client, opts ...Option) *Relay {
	if client == nil {
		client = http.DefaultClient
	}
	r := &Relay{
		name:    adapter.Name(),
		adapter: adapter,
		client:  client,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Unavailable returns a Relay for a provider that lacks a credential.
func Unavailable(name string, opts ...Option) *Relay {
	r := &Relay{name: name, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the provider identity.
func (r *Relay) Name() string {
	return r.name
}

// Configured reports whether the relay can reach its vendor.
func (r *Relay) Configured() bool {
	return r.adapter != nil
}

// Complete sends prompt to the vendor and returns the JSON text of its
// reply with markdown fences removed. Errors are *errs.AppError values.
func (r *Relay) Complete(ctx context.Context, prompt string) ([]byte, error) {
	if r.adapter == nil {
		return nil, &errs.AppError{
			Kind:    errs.Unavailable,
			Message: UnavailableMessage,
			Cause:   fmt.Errorf("no API key configured for provider %q", r.name),
		}
	}

	req, err := r.adapter.BuildRequest(ctx, prompt)
	if err != nil {
		return nil, &errs.AppError{Kind: errs.ProviderFailed, Message: "failed to build provider request", Cause: err}
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if r.observer != nil {
		r.observer.ObserveProvider(r.name, start)
	}
	if err != nil {
		return nil, &errs.AppError{Kind: errs.ProviderFailed, Message: r.name + " request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readBounded(resp.Body, maxResponseBody)
	if err != nil {
		return nil, &errs.AppError{
			Kind:           errs.ProviderFailed,
			UpstreamStatus: resp.StatusCode,
			Message:        "failed to read " + r.name + " response",
			Cause:          err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := vendorErrorMessage(body)
		if detail == "" {
			detail = resp.Status
		}
		return nil, &errs.AppError{
			Kind:           errs.ProviderFailed,
			UpstreamStatus: resp.StatusCode,
			Message:        r.name + " API error",
			Cause:          errors.New(detail),
		}
	}

	text, err := r.adapter.ExtractText(body)
	if err != nil {
		kind := errs.ProviderFailed
		if errors.Is(err, ErrBlocked) {
			kind = errs.ProviderBlocked
		}
		return nil, &errs.AppError{Kind: kind, Message: r.name + " returned no usable content", Cause: err}
	}

	payload, err := ParseJSON(text)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "provider returned invalid JSON",
			slog.String("provider", r.name),
			slog.String("text", truncate(text, maxLoggedText)),
			slog.Any("error", err),
		)
		return nil, &errs.AppError{Kind: errs.InvalidJSON, Message: "invalid JSON from " + r.name, Cause: err}
	}

	return payload, nil
}

func readBounded(rd io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(rd, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, errResponseTooLarge
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
