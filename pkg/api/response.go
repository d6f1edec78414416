package api

import (
	"encoding/json"
	"fmt"
)

// Response is the raw result of one API call: the HTTP status code and the
// unmodified body. A minority of endpoints answer with bare quoted-string
// sentinels ("ok", "LOGIN_ERROR") instead of JSON objects, so the body is
// kept as bytes and decoded on demand.
type Response struct {
	StatusCode int
	Body       []byte
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("api: failed to decode response body: %w", err)
	}
	return nil
}
