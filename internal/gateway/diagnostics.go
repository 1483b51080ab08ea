package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RedactPayload serializes resp for logging. Inline data URLs are replaced by
// their size and the result is cut at limit bytes when limit is positive.
func RedactPayload(resp Response, limit int) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(redactValue(map[string]any(resp))); err != nil {
		return fmt.Sprintf("<unserializable response: %v>", err)
	}
	out := strings.TrimRight(buf.String(), "\n")
	if limit > 0 && len(out) > limit {
		out = out[:limit] + "...(truncated)"
	}
	return out
}

func redactValue(v any) any {
	switch val := v.(type) {
	case string:
		if strings.HasPrefix(strings.ToLower(val), "data:") {
			return fmt.Sprintf("data:<redacted %d bytes>", len(val))
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = redactValue(item)
		}
		return out
	case Response:
		return redactValue(map[string]any(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = redactValue(item)
		}
		return out
	default:
		return val
	}
}
