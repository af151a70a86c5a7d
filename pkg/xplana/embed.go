package xplana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoEmbedFrame is returned by ParseEmbedHTML when the fragment has no iframe.
var ErrNoEmbedFrame = errors.New("embed code has no iframe")

// RetrieveEmbedCode picks the V2 endpoint when the API version supports it and falls
// back to V1, which ignores opts.
func (c *Client) RetrieveEmbedCode(ctx context.Context, customerID string, user UserInfo, opts EmbedCodeOptions) (json.RawMessage, error) {
	if c.Supports(OpRetrieveEmbedCodeV2) {
		return c.RetrieveEmbedCodeV2(ctx, customerID, user, opts)
	}
	return c.RetrieveEmbedCodeV1(ctx, customerID, user)
}

func (c *Client) RetrieveEmbedCodeV1(ctx context.Context, customerID string, user UserInfo) (json.RawMessage, error) {
	q := customerQuery(customerID, nil)
	user.addTo(q)
	return c.doGet(ctx, "/retrieveEmbedCode", PlatformIntegration, q)
}

// RetrieveEmbedCodeV2 always sends remote, emptyMode, width and height, applying defaults.
func (c *Client) RetrieveEmbedCodeV2(ctx context.Context, customerID string, user UserInfo, opts EmbedCodeOptions) (json.RawMessage, error) {
	q := customerQuery(customerID, nil)
	user.addTo(q)
	opts.addTo(q)
	return c.doGet(ctx, "/retrieveEmbedCode", CoreServices, q)
}

// RetrieveIntegratedEmbedCode returns a nil body without an API call below version 0.7.
func (c *Client) RetrieveIntegratedEmbedCode(ctx context.Context, customerID string, remote bool, user UserInfo) (json.RawMessage, error) {
	if c.unsupported(OpRetrieveIntegratedEmbedCode) {
		return nil, nil
	}
	q := customerQuery(customerID, nil)
	q.Set(paramRemote, strconv.FormatBool(remote))
	return c.doPost(ctx, "/retrieveIntegratedEmbedCode", PlatformIntegration, q, user.values())
}

// RetrieveEmbedFrame fetches the customer's embed code and returns its iframe.
func (c *Client) RetrieveEmbedFrame(ctx context.Context, customerID string, user UserInfo, opts EmbedCodeOptions) (EmbedFrame, error) {
	body, err := c.RetrieveEmbedCode(ctx, customerID, user, opts)
	if err != nil {
		return EmbedFrame{}, err
	}
	fragment, err := EmbedHTML(body)
	if err != nil {
		return EmbedFrame{}, err
	}
	return ParseEmbedHTML(fragment)
}

// EmbedFrame is the iframe descriptor carried by an embed code.
type EmbedFrame struct {
	Src    string
	Width  string
	Height string
}

// EmbedHTML extracts the HTML fragment from an embed code response, which is either a
// JSON string or an object with an "embedCode" field.
func EmbedHTML(body json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s, nil
	}
	var obj struct {
		EmbedCode *string `json:"embedCode"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", fmt.Errorf("decode embed code: %w", err)
	}
	if obj.EmbedCode == nil {
		return "", errors.New("embed code response has no embedCode field")
	}
	return *obj.EmbedCode, nil
}

// ParseEmbedHTML returns the first iframe found in fragment.
func ParseEmbedHTML(fragment string) (EmbedFrame, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return EmbedFrame{}, fmt.Errorf("parse embed html: %w", err)
	}

	node := doc.Find("iframe").First()
	if node.Length() == 0 {
		return EmbedFrame{}, ErrNoEmbedFrame
	}

	attr := func(name string) string {
		val, _ := node.Attr(name)
		return strings.TrimSpace(val)
	}
	return EmbedFrame{
		Src:    attr("src"),
		Width:  attr("width"),
		Height: attr("height"),
	}, nil
}
