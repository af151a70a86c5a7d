package xplana

import (
	"net/url"
	"strconv"
)

// Request parameter names.
const (
	paramCustomerID  = "customerID"
	paramProductCode = "productCode"
	paramRedeemCode  = "redeemCode"
	paramRemote      = "remote"
	paramEmptyMode   = "emptyMode"
	paramWidth       = "width"
	paramHeight      = "height"
)

// UserInfo identifies the end user on fulfilment, embed and redeem calls.
type UserInfo struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
}

// addTo writes the non-empty fields of u into v.
func (u UserInfo) addTo(v url.Values) {
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("firstName", u.FirstName)
	set("lastName", u.LastName)
	set("email", u.Email)
	set("username", u.Username)
}

func (u UserInfo) values() url.Values {
	v := url.Values{}
	u.addTo(v)
	return v
}

// EmbedCodeOptions configures RetrieveEmbedCodeV2. Empty Width and Height default to "100%".
type EmbedCodeOptions struct {
	Remote    bool
	EmptyMode bool
	Width     string
	Height    string
}

const defaultEmbedDimension = "100%"

func (o EmbedCodeOptions) withDefaults() EmbedCodeOptions {
	if o.Width == "" {
		o.Width = defaultEmbedDimension
	}
	if o.Height == "" {
		o.Height = defaultEmbedDimension
	}
	return o
}

func (o EmbedCodeOptions) addTo(v url.Values) {
	o = o.withDefaults()
	v.Set(paramRemote, strconv.FormatBool(o.Remote))
	v.Set(paramEmptyMode, strconv.FormatBool(o.EmptyMode))
	v.Set(paramWidth, o.Width)
	v.Set(paramHeight, o.Height)
}

// CountOptions selects which entitlement lists GetUserProductCount sums.
type CountOptions struct {
	Active   bool
	Inactive bool
}

func customerQuery(customerID string, productCodes []string) url.Values {
	q := url.Values{}
	q.Set(paramCustomerID, customerID)
	for _, code := range productCodes {
		q.Add(paramProductCode, code)
	}
	return q
}
