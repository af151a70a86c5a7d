package xplana

import (
	"context"
	"encoding/json"
	"net/url"
)

// DeactivateUserProducts revokes the customer's access to productCodes.
func (c *Client) DeactivateUserProducts(ctx context.Context, customerID string, productCodes []string) (json.RawMessage, error) {
	return c.doPost(ctx, "/deactivateUserProducts", PlatformIntegration, customerQuery(customerID, productCodes), nil)
}

// FulfillProducts grants the customer access to productCodes.
func (c *Client) FulfillProducts(ctx context.Context, customerID string, user UserInfo, productCodes []string) (json.RawMessage, error) {
	return c.doPost(ctx, "/fulfillProducts", PlatformIntegration, customerQuery(customerID, productCodes), user.values())
}

func (c *Client) GenerateMobileKey(ctx context.Context, customerID string) (json.RawMessage, error) {
	return c.doGet(ctx, "/generateMobileKey", PlatformIntegration, customerQuery(customerID, nil))
}

// RetrieveUserProducts returns the customer's active and inactive entitlements.
func (c *Client) RetrieveUserProducts(ctx context.Context, customerID string) (json.RawMessage, error) {
	return c.doGet(ctx, "/retrieveUserProducts", PlatformIntegration, customerQuery(customerID, nil))
}

// RetrieveProducts lists the products available to the trusted partner.
func (c *Client) RetrieveProducts(ctx context.Context) (json.RawMessage, error) {
	return c.doGet(ctx, "/retrieveProducts", PlatformIntegration, nil)
}

func (c *Client) VerifyProducts(ctx context.Context, productCodes []string) (json.RawMessage, error) {
	q := url.Values{}
	for _, code := range productCodes {
		q.Add(paramProductCode, code)
	}
	return c.doPost(ctx, "/verifyProducts", PlatformIntegration, q, nil)
}

// RenewProduct extends the customer's entitlements. It returns a nil body without
// calling the API when the configured version predates renewals.
func (c *Client) RenewProduct(ctx context.Context, customerID string, productCodes []string) (json.RawMessage, error) {
	if c.unsupported(OpRenewProduct) {
		return nil, nil
	}
	return c.doPost(ctx, "/renewProducts", PlatformIntegration, customerQuery(customerID, productCodes), nil)
}

// RedeemCodeFromBookstore redeems a bookstore code for the customer. Versions from 0.8
// send the user details as a form body over POST; 0.7 sends everything as a GET query.
// Older versions get a nil body without an API call.
func (c *Client) RedeemCodeFromBookstore(ctx context.Context, customerID string, user UserInfo, redeemCode string) (json.RawMessage, error) {
	if c.unsupported(OpRedeemCodeFromBookstore) {
		return nil, nil
	}

	q := customerQuery(customerID, nil)
	q.Set(paramRedeemCode, redeemCode)

	if c.Supports(OpRedeemCodeViaPost) {
		return c.doPost(ctx, "/redeemCodeFromBookStore", CoreServices, q, user.values())
	}
	user.addTo(q)
	return c.doGet(ctx, "/redeemCodeFromBookStore", CoreServices, q)
}
