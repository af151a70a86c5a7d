// Package xplana provides a client for the DirectDigital / Xplana trusted partner API.
//
// The API lets a trusted partner manage its catalog of digital products: list the
// products it may sell, fulfil and deactivate customer entitlements, generate embed
// codes for the bookshelf widget and redeem bookstore codes. Endpoints are mounted
// under one of two service namespaces (see Namespace) and every request carries the
// partner's trustedPartnerID as a query parameter.
//
// # Basic Usage
//
//	client, err := xplana.NewClient("https://partner.xplana.com", xplana.Config{
//	    APIVersion:       "0.8",
//	    TrustedPartnerID: "your-partner-id",
//	})
//	if err != nil {
//	    return err
//	}
//
//	body, err := client.FulfillProducts(ctx, customerID, xplana.UserInfo{
//	    FirstName: "Ada",
//	    LastName:  "Lovelace",
//	    Email:     "ada@example.com",
//	    Username:  "ada",
//	}, []string{"BOOK-1", "BOOK-2"})
//
// # Error Handling
//
// A response is successful when its status is 2xx and its JSON body does not carry a
// truthy "code" field. Anything else is returned as *APIError, whose Meta holds the raw
// response body:
//
//	if _, err := client.RetrieveProducts(ctx); err != nil {
//	    var apiErr *xplana.APIError
//	    if errors.As(err, &apiErr) {
//	        log.Printf("status=%d body=%s", apiErr.StatusCode, apiErr.Meta)
//	    }
//	}
//
// Transport failures (DNS, connect, timeout) are returned as produced by the transport.
//
// # API Versions
//
// Some operations only exist from a given API version on. When the configured version is
// below that minimum the operation returns a nil body and a nil error without contacting
// the API; use Client.Supports to check ahead of time.
package xplana
