// Package intake decodes fight submissions arriving over HTTP.
package intake

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"newomega/server/internal/fights"
)

// DefaultMaxBytes bounds a request body when no limit is configured.
const DefaultMaxBytes = 64 << 10

// ErrMalformed matches every decoding failure.
var ErrMalformed = errors.New("malformed fight request")

// DecodeRequest reads a single JSON fight request from r. Unknown fields and
// trailing data are rejected.
func DecodeRequest(r io.Reader, maxBytes int64) (fights.Request, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	limited := io.LimitReader(r, maxBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return fights.Request{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if int64(len(data)) > maxBytes {
		return fights.Request{}, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformed, maxBytes)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	var req fights.Request
	if err := decoder.Decode(&req); err != nil {
		return fights.Request{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if decoder.More() {
		return fights.Request{}, fmt.Errorf("%w: trailing data after request", ErrMalformed)
	}
	return req, nil
}
