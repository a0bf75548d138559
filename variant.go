package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Variants travel as single-key objects: {"Tag": payload}. Unit variants
// carry a null payload.

func encodeVariant(tag string, payload any) ([]byte, error) {
	raw := json.RawMessage("null")
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(map[string]json.RawMessage{tag: raw})
}

func decodeVariant(data []byte) (string, json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		// bare strings are accepted for unit variants
		var tag string
		if json.Unmarshal(data, &tag) == nil && tag != "" {
			return tag, nil, nil
		}
		return "", nil, err
	}
	if len(m) != 1 {
		return "", nil, errors.Errorf("variant must have exactly one key, got %d", len(m))
	}
	for tag, payload := range m {
		return tag, payload, nil
	}
	return "", nil, nil
}

func isNullPayload(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

// renderPayload flattens an arbitrary variant payload into display text.
func renderPayload(raw json.RawMessage) string {
	if isNullPayload(raw) {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if p := renderPayload(item); p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, ", ")
	}

	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if inner := renderPayload(obj[k]); inner != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", k, inner))
			} else {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, ", ")
	}

	return strings.TrimSpace(string(raw))
}
