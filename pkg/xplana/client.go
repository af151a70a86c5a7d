package xplana

import (
	"fmt"
	"time"

	"github.com/samvad-hq/xplana-partner-client/pkg/httpclient"
)

// DefaultAPIVersion is used when Config.APIVersion is empty.
const DefaultAPIVersion = "v1"

// Config holds the optional client settings.
type Config struct {
	// APIVersion accepts numeric ("0.7") or string ("v2") forms.
	APIVersion       string
	TrustedPartnerID string
	// Timeout applies to the default transport only.
	Timeout   time.Duration
	Transport httpclient.Client
	Logger    Logger
}

// Client is a DirectDigital / Xplana partner API client.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	host             string
	version          Version
	trustedPartnerID string
	transport        httpclient.Client
	log              Logger
}

// NewClient creates a client for the API served at host. The host is used verbatim as
// the URL prefix, so it should carry a scheme and no trailing slash.
func NewClient(host string, cfg Config) (*Client, error) {
	rawVersion := cfg.APIVersion
	if rawVersion == "" {
		rawVersion = DefaultAPIVersion
	}
	version, err := ParseVersion(rawVersion)
	if err != nil {
		return nil, fmt.Errorf("xplana client: %w", err)
	}

	transport := cfg.Transport
	if transport == nil {
		transport = httpclient.NewRestyClient(cfg.Timeout)
	}

	return &Client{
		host:             host,
		version:          version,
		trustedPartnerID: cfg.TrustedPartnerID,
		transport:        transport,
		log:              ensureLogger(cfg.Logger),
	}, nil
}

// Host returns the configured API host.
func (c *Client) Host() string { return c.host }

// APIVersion returns the configured API version.
func (c *Client) APIVersion() Version { return c.version }

// Logger defines the logging surface the client relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
