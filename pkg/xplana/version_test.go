package xplana

import (
	"context"
	"net/http"
	"testing"
)

func TestParseVersionForms(t *testing.T) {
	cases := []struct {
		a, b  string
		atLst bool
	}{
		{"0.7", "0.6", true},
		{"v0.7", "0.7", true},
		{"0.6", "0.7", false},
		{"v2", "0.8", true},
		{"2", "v2", true},
		{"V1", "0.8", true},
		{"0.7.1", "0.7", true},
		{"0.7", "0.7.1", false},
		{"0.75", "0.8", false},
		{"0.75", "0.7", true},
		{"0.65", "0.7", false},
		{"0.10", "0.8", false},
		{"0.10", "0.1", true},
		{"0.1", "0.10", true},
		{"0.8-beta", "0.8", false},
		{"1.2", "0.99", true},
	}
	for _, tc := range cases {
		a, err := ParseVersion(tc.a)
		if err != nil {
			t.Fatalf("ParseVersion(%q): %v", tc.a, err)
		}
		b, err := ParseVersion(tc.b)
		if err != nil {
			t.Fatalf("ParseVersion(%q): %v", tc.b, err)
		}
		if got := a.AtLeast(b); got != tc.atLst {
			t.Fatalf("%s.AtLeast(%s) = %v, want %v", tc.a, tc.b, got, tc.atLst)
		}
	}

	for _, bad := range []string{"", "v", "next", "1.x", "0.7.1.2", "-1", "0..7"} {
		if _, err := ParseVersion(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestGatedOperationsSkipTransportBelowMinimum(t *testing.T) {
	tr := &fakeTransport{body: `{}`}
	c := newTestClient(t, "0.5", tr)
	ctx := context.Background()

	body, err := c.RenewProduct(ctx, "cust-1", []string{"A"})
	if body != nil || err != nil {
		t.Fatalf("RenewProduct = %s, %v; want nil, nil", body, err)
	}
	body, err = c.RetrieveIntegratedEmbedCode(ctx, "cust-1", true, UserInfo{})
	if body != nil || err != nil {
		t.Fatalf("RetrieveIntegratedEmbedCode = %s, %v; want nil, nil", body, err)
	}
	body, err = c.RedeemCodeFromBookstore(ctx, "cust-1", UserInfo{}, "CODE")
	if body != nil || err != nil {
		t.Fatalf("RedeemCodeFromBookstore = %s, %v; want nil, nil", body, err)
	}
	if len(tr.calls) != 0 {
		t.Fatalf("expected zero transport calls, got %d", len(tr.calls))
	}
}

func TestDecimalVersionsBelowGateSkipTransport(t *testing.T) {
	for _, version := range []string{"0.75", "0.65", "0.10", "0.79"} {
		tr := &fakeTransport{body: `{}`}
		c := newTestClient(t, version, tr)
		if c.Supports(OpRenewProduct) || c.Supports(OpRedeemCodeViaPost) {
			t.Fatalf("version %s should not support 0.8 operations", version)
		}
		body, err := c.RenewProduct(context.Background(), "cust-1", []string{"A"})
		if body != nil || err != nil {
			t.Fatalf("version %s: RenewProduct = %s, %v; want nil, nil", version, body, err)
		}
		if len(tr.calls) != 0 {
			t.Fatalf("version %s: expected zero transport calls, got %d", version, len(tr.calls))
		}
	}

	c := newTestClient(t, "0.65", &fakeTransport{})
	if !c.Supports(OpRetrieveEmbedCodeV2) || c.Supports(OpRetrieveIntegratedEmbedCode) {
		t.Fatalf("0.65 gates: embedV2=%v integrated=%v", c.Supports(OpRetrieveEmbedCodeV2), c.Supports(OpRetrieveIntegratedEmbedCode))
	}

	redeem := &fakeTransport{body: `{}`}
	if _, err := newTestClient(t, "0.75", redeem).RedeemCodeFromBookstore(context.Background(), "cust-1", UserInfo{}, "R-1"); err != nil {
		t.Fatalf("redeem on 0.75: %v", err)
	}
	if req := redeem.last(t); req.Method != http.MethodGet {
		t.Fatalf("0.75 redeem method = %s, want GET", req.Method)
	}
}

func TestRenewProductAtThreshold(t *testing.T) {
	tr := &fakeTransport{body: `{"renewed":true}`}
	c := newTestClient(t, "0.8", tr)

	body, err := c.RenewProduct(context.Background(), "cust-1", []string{"A"})
	if err != nil {
		t.Fatalf("RenewProduct: %v", err)
	}
	if string(body) != `{"renewed":true}` {
		t.Fatalf("body = %s", body)
	}
	req := tr.last(t)
	if req.Method != http.MethodPost || req.URL != testHost+"/xplana-platform-integration/services/renewProducts" {
		t.Fatalf("unexpected request %s %s", req.Method, req.URL)
	}
}

func TestRedeemCodeMethodFollowsVersion(t *testing.T) {
	user := UserInfo{Email: "ada@example.com"}

	getTr := &fakeTransport{body: `{}`}
	if _, err := newTestClient(t, "0.7", getTr).RedeemCodeFromBookstore(context.Background(), "cust-1", user, "R-1"); err != nil {
		t.Fatalf("redeem on 0.7: %v", err)
	}
	req := getTr.last(t)
	if req.Method != http.MethodGet {
		t.Fatalf("0.7 method = %s, want GET", req.Method)
	}
	if req.URL != testHost+"/directdigital/services/redeemCodeFromBookStore" {
		t.Fatalf("url = %s", req.URL)
	}
	if req.Query.Get("redeemCode") != "R-1" || req.Query.Get("email") != "ada@example.com" {
		t.Fatalf("query = %v", req.Query)
	}

	postTr := &fakeTransport{body: `{}`}
	if _, err := newTestClient(t, "0.8", postTr).RedeemCodeFromBookstore(context.Background(), "cust-1", user, "R-1"); err != nil {
		t.Fatalf("redeem on 0.8: %v", err)
	}
	req = postTr.last(t)
	if req.Method != http.MethodPost {
		t.Fatalf("0.8 method = %s, want POST", req.Method)
	}
	if req.Query.Get("redeemCode") != "R-1" || req.Form.Get("email") != "ada@example.com" {
		t.Fatalf("query = %v form = %v", req.Query, req.Form)
	}
}

func TestMinVersionTable(t *testing.T) {
	if _, ok := MinVersion(Operation("retrieveProducts")); ok {
		t.Fatalf("ungated operation reported a minimum version")
	}
	v, ok := MinVersion(OpRenewProduct)
	if !ok || v.String() != "0.8" {
		t.Fatalf("renew minimum = %v, %v", v, ok)
	}
}
