package api

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// Envelope codes with a fixed meaning.
const (
	CodeSuccess      = "200"
	CodeUnauthorized = "401"
)

// Envelope is the decoded {code, message, data} reply of the backend.
type Envelope struct {
	// Code is the envelope code normalised to its decimal string form; numeric 200 and
	// string "200" both become "200".
	Code    string
	Message string
	Data    gjson.Result
}

// Success reports whether the envelope code denotes success.
func (e Envelope) Success() bool {
	return e.Code == CodeSuccess
}

// Unauthorized reports whether the envelope code denotes an expired session.
func (e Envelope) Unauthorized() bool {
	return e.Code == CodeUnauthorized
}

// HasData reports whether data is present and not null.
func (e Envelope) HasData() bool {
	return e.Data.Exists() && e.Data.Type != gjson.Null
}

// Decode unmarshals data into out.
func (e Envelope) Decode(out any) error {
	if !e.HasData() {
		return ErrMissingData
	}
	if err := json.Unmarshal([]byte(e.Data.Raw), out); err != nil {
		return fmt.Errorf("%w: decode data: %v", ErrMalformedResponse, err)
	}
	return nil
}

// ParseEnvelope decodes body. A body that is not a JSON object fails with
// ErrMalformedResponse.
func ParseEnvelope(body []byte) (Envelope, error) {
	if !gjson.ValidBytes(body) {
		return Envelope{}, ErrMalformedResponse
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return Envelope{}, ErrMalformedResponse
	}

	return Envelope{
		Code:    normalizeCode(root.Get("code")),
		Message: root.Get("message").String(),
		Data:    root.Get("data"),
	}, nil
}

func normalizeCode(r gjson.Result) string {
	switch r.Type {
	case gjson.Number:
		return strconv.FormatFloat(r.Num, 'f', -1, 64)
	case gjson.String:
		return r.Str
	default:
		return ""
	}
}
