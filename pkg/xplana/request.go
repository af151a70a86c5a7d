package xplana

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/samvad-hq/xplana-partner-client/pkg/httpclient"
)

// Namespace selects one of the two service path prefixes endpoints are mounted under.
type Namespace int

const (
	// PlatformIntegration is mounted at /xplana-platform-integration.
	PlatformIntegration Namespace = iota
	// CoreServices is mounted at /directdigital.
	CoreServices
)

// Path returns the URL path prefix of the namespace.
func (n Namespace) Path() string {
	switch n {
	case CoreServices:
		return "/directdigital"
	case PlatformIntegration:
		return "/xplana-platform-integration"
	default:
		return ""
	}
}

func (n Namespace) String() string {
	switch n {
	case CoreServices:
		return "core"
	case PlatformIntegration:
		return "platform"
	default:
		return "unknown"
	}
}

const trustedPartnerParam = "trustedPartnerID"

var jsonHeaders = map[string]string{"Accept": "application/json"}

// request is built per call and discarded after use.
type request struct {
	method    string
	namespace Namespace
	endpoint  string
	query     url.Values
	form      url.Values
}

// buildURL returns host + namespace path + "/services" + endpoint, where endpoint is
// normalized to exactly one leading slash.
func (c *Client) buildURL(endpoint string, ns Namespace) string {
	return c.host + ns.Path() + "/services" + normalizeEndpoint(endpoint)
}

func normalizeEndpoint(endpoint string) string {
	return "/" + strings.TrimLeft(endpoint, "/")
}

func (c *Client) doGet(ctx context.Context, endpoint string, ns Namespace, query url.Values) (json.RawMessage, error) {
	return c.sendAndClassify(ctx, request{
		method:    http.MethodGet,
		namespace: ns,
		endpoint:  endpoint,
		query:     query,
	})
}

// doPost keeps query in the URL so repeated keys survive; form becomes the body.
func (c *Client) doPost(ctx context.Context, endpoint string, ns Namespace, query, form url.Values) (json.RawMessage, error) {
	return c.sendAndClassify(ctx, request{
		method:    http.MethodPost,
		namespace: ns,
		endpoint:  endpoint,
		query:     query,
		form:      form,
	})
}

func (c *Client) sendAndClassify(ctx context.Context, req request) (json.RawMessage, error) {
	target := c.buildURL(req.endpoint, req.namespace)
	query := withTrustedPartner(req.query, c.trustedPartnerID)

	resp, err := c.transport.Do(ctx, httpclient.Request{
		Method:  req.method,
		URL:     target,
		Query:   query,
		Form:    req.form,
		Headers: jsonHeaders,
	})
	if err != nil {
		c.log.WarnObj("xplana request failed", "xplana_transport_error", map[string]any{
			"method": req.method,
			"url":    target,
			"error":  err.Error(),
		})
		return nil, err
	}

	body := resp.Body()
	if !isResponseSuccessful(resp.StatusCode()) || !isBodySuccessful(body) {
		apiErr := newAPIError(resp.StatusCode(), target, body)
		c.log.WarnObj("xplana request rejected", "xplana_api_error", map[string]any{
			"method":      req.method,
			"url":         target,
			"status_code": apiErr.StatusCode,
		})
		return nil, apiErr
	}

	c.log.DebugObj("xplana request completed", "xplana_request", map[string]any{
		"method":      req.method,
		"url":         target,
		"status_code": resp.StatusCode(),
	})

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(body), nil
}

// withTrustedPartner copies query and sets the partner id on the copy.
func withTrustedPartner(query url.Values, partnerID string) url.Values {
	out := make(url.Values, len(query)+1)
	for k, vs := range query {
		out[k] = append([]string(nil), vs...)
	}
	out.Set(trustedPartnerParam, partnerID)
	return out
}

func isResponseSuccessful(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// isBodySuccessful reports whether body is empty or valid JSON without a truthy "code".
func isBodySuccessful(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return true
	}
	if !json.Valid(trimmed) {
		return false
	}
	if trimmed[0] != '{' {
		return true
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return false
	}
	code, ok := fields["code"]
	if !ok {
		return true
	}
	return !isTruthy(code)
}

func isTruthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}
