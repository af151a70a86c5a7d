package xplana

import (
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a comparable API version. "0.7", "v0.7", "2" and "v2" are all accepted.
// Major and minor compare as a decimal number, so 0.75 sorts below 0.8; a patch
// component and pre-release suffix break ties using semver ordering.
type Version struct {
	raw     string
	decimal *big.Rat
	tail    string
}

// ParseVersion parses a numeric or "v"-prefixed API version.
func ParseVersion(raw string) (Version, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")
	invalid := fmt.Errorf("invalid api version %q", raw)

	core, suffix := s, ""
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		core, suffix = s[:i], s[i:]
	}
	parts := strings.Split(core, ".")
	if len(parts) > 3 {
		return Version{}, invalid
	}
	for _, p := range parts {
		if !isDigits(p) {
			return Version{}, invalid
		}
	}

	decimal := parts[0]
	if len(parts) > 1 {
		decimal += "." + parts[1]
	}
	rat, ok := new(big.Rat).SetString(decimal)
	if !ok {
		return Version{}, invalid
	}

	patch := "0"
	if len(parts) == 3 {
		patch = strings.TrimLeft(parts[2], "0")
		if patch == "" {
			patch = "0"
		}
	}
	tail := "v0.0." + patch + suffix
	if !semver.IsValid(tail) {
		return Version{}, invalid
	}

	return Version{raw: strings.TrimSpace(raw), decimal: rat, tail: semver.Canonical(tail)}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func mustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// AtLeast reports whether v >= min.
func (v Version) AtLeast(min Version) bool {
	if c := v.number().Cmp(min.number()); c != 0 {
		return c > 0
	}
	return semver.Compare(v.tail, min.tail) >= 0
}

func (v Version) number() *big.Rat {
	if v.decimal == nil {
		return new(big.Rat)
	}
	return v.decimal
}

func (v Version) String() string {
	return v.raw
}

// Operation names a version-gated client operation.
type Operation string

const (
	OpRetrieveEmbedCodeV2         Operation = "retrieveEmbedCodeV2"
	OpRetrieveIntegratedEmbedCode Operation = "retrieveIntegratedEmbedCode"
	OpRedeemCodeFromBookstore     Operation = "redeemCodeFromBookstore"
	OpRedeemCodeViaPost           Operation = "redeemCodeFromBookstorePost"
	OpRenewProduct                Operation = "renewProduct"
)

// minVersions is the single source of truth for version gates. Operations missing
// from the table are available on every version.
var minVersions = map[Operation]Version{
	OpRetrieveEmbedCodeV2:         mustParseVersion("0.6"),
	OpRetrieveIntegratedEmbedCode: mustParseVersion("0.7"),
	OpRedeemCodeFromBookstore:     mustParseVersion("0.7"),
	OpRedeemCodeViaPost:           mustParseVersion("0.8"),
	OpRenewProduct:                mustParseVersion("0.8"),
}

// MinVersion returns the minimum API version for op and whether op is gated at all.
func MinVersion(op Operation) (Version, bool) {
	v, ok := minVersions[op]
	return v, ok
}

// Supports reports whether the configured API version allows op.
func (c *Client) Supports(op Operation) bool {
	min, ok := minVersions[op]
	if !ok {
		return true
	}
	return c.version.AtLeast(min)
}

// unsupported logs and reports a gated operation that must not reach the transport.
func (c *Client) unsupported(op Operation) bool {
	if c.Supports(op) {
		return false
	}
	min := minVersions[op]
	c.log.DebugObj("xplana operation skipped for api version", "xplana_unsupported", map[string]any{
		"operation":   string(op),
		"api_version": c.version.String(),
		"min_version": min.String(),
	})
	return true
}
