package xplana

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/samvad-hq/xplana-partner-client/pkg/httpclient"
)

// Status is the result of CheckStatus.
type Status struct {
	Online     bool       `json:"online"`
	Subsystems Subsystems `json:"subsystems"`
	Latency    string     `json:"latency"`
}

type Subsystems struct {
	Web bool `json:"web"`
}

// CheckStatus issues a GET against the host root and reports reachability and
// round-trip latency. It never fails: transport errors report Online false.
func (c *Client) CheckStatus(ctx context.Context) Status {
	start := time.Now()
	web := checkWebStatus(ctx, c.transport, c.host, c.trustedPartnerID)
	elapsed := time.Since(start)

	status := Status{
		Online:     web,
		Subsystems: Subsystems{Web: web},
		Latency:    formatLatency(elapsed),
	}
	c.log.DebugObj("xplana status checked", "xplana_status", status)
	return status
}

// checkWebStatus reports whether host answered with a 2xx status.
func checkWebStatus(ctx context.Context, transport httpclient.Client, host, partnerID string) bool {
	resp, err := transport.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		URL:    host,
		Query:  url.Values{trustedPartnerParam: {partnerID}},
	})
	if err != nil {
		return false
	}
	return isResponseSuccessful(resp.StatusCode())
}

func formatLatency(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}
