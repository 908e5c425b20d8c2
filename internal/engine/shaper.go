package engine

import (
	"encoding/json"
	"fmt"
)

// DefaultMaxResponseChars is the serialized-body length limit applied when no
// limit is configured.
const DefaultMaxResponseChars = 30000

// shapeBody normalizes the final payload for the result envelope. Bodies
// whose serialized form exceeds maxChars are truncated to exactly maxChars
// with a trailing marker disclosing the truncation and the original length;
// content is never silently dropped. Within the limit the body passes through
// unchanged, preserving its structure.
func shapeBody(body interface{}, maxChars int) interface{} {
	if body == nil {
		return nil
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxResponseChars
	}

	serialized, ok := body.(string)
	if !ok {
		encoded, err := json.Marshal(body)
		if err != nil {
			// Unserializable bodies are represented by their formatted form.
			serialized = fmt.Sprintf("%v", body)
		} else {
			serialized = string(encoded)
		}
	}

	// Slice on runes so the cut never lands inside a multi-byte character and
	// the truncated string stays valid UTF-8.
	runes := []rune(serialized)
	if len(runes) <= maxChars {
		return body
	}
	return string(runes[:maxChars]) + truncationMarker(len(runes))
}

func truncationMarker(originalLen int) string {
	return fmt.Sprintf("... [truncated, %d chars total]", originalLen)
}
