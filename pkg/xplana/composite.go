package xplana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// UserProducts is the decoded body of RetrieveUserProducts.
type UserProducts struct {
	Active   []string `json:"active"`
	Inactive []string `json:"inactive"`
}

// RetrieveUserProductLists calls RetrieveUserProducts and decodes the entitlement lists.
func (c *Client) RetrieveUserProductLists(ctx context.Context, customerID string) (UserProducts, error) {
	body, err := c.RetrieveUserProducts(ctx, customerID)
	if err != nil {
		return UserProducts{}, err
	}
	var up UserProducts
	if err := json.Unmarshal(body, &up); err != nil {
		return UserProducts{}, fmt.Errorf("decode user products: %w", err)
	}
	return up, nil
}

// GetUserProductCount sums the lengths of the lists selected by opts.
func (c *Client) GetUserProductCount(ctx context.Context, customerID string, opts CountOptions) (int, error) {
	up, err := c.RetrieveUserProductLists(ctx, customerID)
	if err != nil {
		return 0, err
	}
	count := 0
	if opts.Active {
		count += len(up.Active)
	}
	if opts.Inactive {
		count += len(up.Inactive)
	}
	return count, nil
}

// IsProductFulfilled reports whether productCode is an exact element of the customer's
// active list.
func (c *Client) IsProductFulfilled(ctx context.Context, customerID, productCode string) (bool, error) {
	up, err := c.RetrieveUserProductLists(ctx, customerID)
	if err != nil {
		return false, err
	}
	for _, code := range up.Active {
		if code == productCode {
			return true, nil
		}
	}
	return false, nil
}

// IsUser reports whether the customer holds any active or inactive product.
//
// Callers historically pass a username here, but the API only understands customer
// IDs; a username that differs from the customer ID will always report false.
func (c *Client) IsUser(ctx context.Context, customerID string) (bool, error) {
	count, err := c.GetUserProductCount(ctx, customerID, CountOptions{Active: true, Inactive: true})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Product is a catalog entry returned by RetrieveProducts.
type Product struct {
	Code  string          `json:"productCode"`
	Title string          `json:"title"`
	Raw   json.RawMessage `json:"-"`
}

// ListProducts calls RetrieveProducts and decodes the catalog. Both a top-level array and
// an object with a "products" array are accepted.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	body, err := c.RetrieveProducts(ctx)
	if err != nil {
		return nil, err
	}
	return decodeProducts(body)
}

func decodeProducts(body json.RawMessage) ([]Product, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var entries []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("decode products: %w", err)
		}
	} else {
		var wrapper struct {
			Products []json.RawMessage `json:"products"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("decode products: %w", err)
		}
		entries = wrapper.Products
	}

	products := make([]Product, 0, len(entries))
	for i, raw := range entries {
		var p Product
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode products[%d]: %w", i, err)
		}
		p.Raw = raw
		products = append(products, p)
	}
	return products, nil
}
