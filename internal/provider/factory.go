package provider

import (
	"net/http"

	"golang.org/x/oauth2"

	"github.com/Bahjat/a11y-insight-tool/internal/platform/config"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/tracing"
)

// FromConfig returns the relay for the configured provider. A provider
// without an API key yields an unavailable relay rather than an error, so
// the server still starts and answers 503.
func FromConfig(cfg config.Config, opts ...Option) *Relay {
	v := cfg.Selected()
	if v.APIKey == "" {
		return Unavailable(cfg.Provider, opts...)
	}

	base := tracing.Transport(http.DefaultTransport)
	client := &http.Client{Timeout: cfg.ProviderTimeout, Transport: base}

	switch cfg.Provider {
	case config.ProviderGoogle:
		return New(NewGoogle(v.BaseURL, v.Model, v.APIKey), client, opts...)
	default:
		client.Transport = bearerTransport(v.APIKey, base)
		return New(NewChat(cfg.Provider, v.BaseURL, v.Model), client, opts...)
	}
}

// bearerTransport adds "Authorization: Bearer <token>" to every request.
func bearerTransport(token string, base http.RoundTripper) http.RoundTripper {
	return &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		Base:   base,
	}
}
