package chain

import (
    "encoding/json"
    "fmt"
    "strings"
)

// ParseError reports a structured-output contract violation. It keeps the
// raw model text so callers can log or inspect what came back.
type ParseError struct {
    Raw    string
    Reason string
}

func (e *ParseError) Error() string {
    raw := e.Raw
    if len(raw) > 200 { raw = raw[:200] + "..." }
    return fmt.Sprintf("structured output violation: %s (raw: %q)", e.Reason, raw)
}

// parseStrict decodes raw strictly as one JSON object carrying every
// required field. Non-JSON text, fenced JSON, and missing fields all fail
// loudly; there is no silent defaulting.
func parseStrict(raw string, required []string, out any) error {
    trimmed := strings.TrimSpace(raw)
    var fields map[string]json.RawMessage
    if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
        return &ParseError{Raw: raw, Reason: "not a JSON object: " + err.Error()}
    }
    for _, key := range required {
        if _, ok := fields[key]; !ok {
            return &ParseError{Raw: raw, Reason: fmt.Sprintf("missing required field %q", key)}
        }
    }
    if err := json.Unmarshal([]byte(trimmed), out); err != nil {
        return &ParseError{Raw: raw, Reason: "schema mismatch: " + err.Error()}
    }
    return nil
}
