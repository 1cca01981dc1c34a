package extract

import (
	"encoding/json"
)

// Key spellings accepted when decoding call objects. LLMs are loose about
// the envelope even when the JSON itself is well formed.
var (
	nameKeys  = []string{"tool_name", "name", "tool", "function"}
	paramKeys = []string{"parameters", "arguments", "args", "params", "input"}
)

// decodeEnvelope parses a complete JSON document into call records. Accepted
// shapes, in order: the {"tool_calls": [...]} envelope, a bare array of call
// objects, and a single bare call object. Returns nil when the document is
// not valid JSON or contains no recognizable call.
func decodeEnvelope(text string) []rawCall {
	trimmed := []byte(text)

	var envelope struct {
		ToolCalls []json.RawMessage `json:"tool_calls"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err == nil && envelope.ToolCalls != nil {
		var calls []rawCall
		for _, item := range envelope.ToolCalls {
			if call, ok := decodeCallObject(item); ok {
				calls = append(calls, call)
			}
		}
		return calls
	}

	var array []json.RawMessage
	if err := json.Unmarshal(trimmed, &array); err == nil {
		var calls []rawCall
		for _, item := range array {
			if call, ok := decodeCallObject(item); ok {
				calls = append(calls, call)
			}
		}
		return calls
	}

	if call, ok := decodeCallObject(trimmed); ok {
		return []rawCall{call}
	}
	return nil
}

// rawCall is a decoded call before ID assignment and method tagging.
type rawCall struct {
	Name       string
	Parameters map[string]any
}

// decodeCallObject decodes one JSON object as a call, accepting the key
// spellings in nameKeys and paramKeys.
func decodeCallObject(data []byte) (rawCall, bool) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return rawCall{}, false
	}
	return callFromObject(obj)
}

// callFromObject recognizes a decoded object as a call when it carries a
// tool-name-like key. A missing parameters key yields empty parameters.
func callFromObject(obj map[string]any) (rawCall, bool) {
	var name string
	for _, key := range nameKeys {
		if v, ok := obj[key].(string); ok && v != "" {
			name = v
			break
		}
	}
	if name == "" {
		return rawCall{}, false
	}

	params := map[string]any{}
	for _, key := range paramKeys {
		if v, ok := obj[key].(map[string]any); ok {
			params = v
			break
		}
	}

	return rawCall{Name: name, Parameters: params}, true
}
