package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// envelope is the {"success", "message", "data"} wrapper every endpoint uses.
// Bodies that carry neither success nor data are treated as bare data.
type envelope struct {
	enveloped bool
	success   *bool
	message   string
	data      json.RawMessage
}

func parseEnvelope(body []byte) (*envelope, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return &envelope{}, nil
	}
	if !json.Valid(body) {
		return nil, ErrNotJSON
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		// arrays and scalars
		return &envelope{data: body}, nil
	}

	env := &envelope{}
	if raw, ok := fields["success"]; ok {
		var b bool
		if json.Unmarshal(raw, &b) == nil {
			env.success = &b
			env.enveloped = true
		}
	}
	if raw, ok := fields["data"]; ok {
		env.data = raw
		env.enveloped = true
	}
	for _, key := range []string{"message", "error"} {
		if raw, ok := fields[key]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				env.message = s
				break
			}
		}
	}

	if !env.enveloped {
		env.data = body
	}
	return env, nil
}

// decodeResponse turns a finished response into out or an *APIError.
func decodeResponse(status int, body []byte, out any) error {
	env, err := parseEnvelope(body)
	ok := status >= 200 && status < 300

	if err != nil {
		if !ok {
			return &APIError{Status: status, Message: http.StatusText(status), Body: body}
		}
		if out == nil {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if !ok {
		msg := env.message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &APIError{Status: status, Message: msg, Body: body}
	}

	if env.success != nil && !*env.success {
		msg := env.message
		if msg == "" {
			msg = "request failed"
		}
		return &APIError{Status: status, Message: msg, Body: body}
	}

	if out == nil || len(env.data) == 0 || string(env.data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
