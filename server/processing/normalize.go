// Package processing turns validated chat requests into normalized replies.
package processing

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NormalizedReply is the structured result recovered from raw model output.
type NormalizedReply struct {
	Reply string `json:"reply"`
}

// NormalizeErrorKind classifies why raw output could not be normalized.
type NormalizeErrorKind string

const (
	// InvalidFormat means the output was not parseable JSON.
	InvalidFormat NormalizeErrorKind = "invalid_format"
	// MissingField means the output parsed but lacked the reply field.
	MissingField NormalizeErrorKind = "missing_field"
)

// NormalizeError reports a normalization failure. RawOutput preserves the
// original model text for diagnostics.
type NormalizeError struct {
	Kind      NormalizeErrorKind
	RawOutput string
	cause     error
}

func (e *NormalizeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("normalize model output (%s): %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("normalize model output (%s)", e.Kind)
}

func (e *NormalizeError) Unwrap() error { return e.cause }

// stripFences removes a leading markdown code fence (with or without a
// language tag) and a trailing closing fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = s[3:]
		// Drop a language tag like "json" up to the first newline.
		if idx := strings.IndexByte(s, '\n'); idx != -1 {
			firstLine := strings.TrimSpace(s[:idx])
			if firstLine != "" && !strings.ContainsAny(firstLine, "{}") {
				s = s[idx+1:]
			}
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Normalize coerces raw model output into a NormalizedReply. Models are
// instructed to answer with a bare JSON object, but output drifts: fences,
// prose around the object, missing keys. Nothing is ever synthesized; if the
// reply cannot be recovered, the raw text comes back in the error.
func Normalize(raw string) (NormalizedReply, error) {
	cleaned := stripFences(raw)

	payload, err := parseObject(cleaned)
	if err != nil {
		// The object may be embedded in surrounding prose. Try the
		// outermost brace-delimited substring before giving up.
		start := strings.IndexByte(cleaned, '{')
		end := strings.LastIndexByte(cleaned, '}')
		if start == -1 || end <= start {
			return NormalizedReply{}, &NormalizeError{Kind: InvalidFormat, RawOutput: raw, cause: err}
		}
		payload, err = parseObject(cleaned[start : end+1])
		if err != nil {
			return NormalizedReply{}, &NormalizeError{Kind: InvalidFormat, RawOutput: raw, cause: err}
		}
	}

	replyValue, ok := payload["reply"]
	if !ok {
		return NormalizedReply{}, &NormalizeError{Kind: MissingField, RawOutput: raw}
	}
	reply, ok := replyValue.(string)
	if !ok || strings.TrimSpace(reply) == "" {
		return NormalizedReply{}, &NormalizeError{Kind: MissingField, RawOutput: raw}
	}

	return NormalizedReply{Reply: reply}, nil
}

func parseObject(s string) (map[string]interface{}, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
