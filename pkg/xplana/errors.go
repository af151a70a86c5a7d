package xplana

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// APIError is returned when the API answers with a non-2xx status or with a body that
// carries a truthy "code" field.
type APIError struct {
	Message    string
	StatusCode int
	URL        string
	// Meta is the response body as received. Bodies that are not JSON are stored as a JSON string.
	Meta json.RawMessage
}

func (e *APIError) Error() string {
	return e.Message
}

func newAPIError(statusCode int, url string, body []byte) *APIError {
	return &APIError{
		Message:    fmt.Sprintf("%d - %s failed", statusCode, url),
		StatusCode: statusCode,
		URL:        url,
		Meta:       rawMeta(body),
	}
}

func rawMeta(body []byte) json.RawMessage {
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(body) {
		return json.RawMessage(append([]byte(nil), body...))
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return json.RawMessage("null")
	}
	return quoted
}
