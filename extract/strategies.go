package extract

import (
	"regexp"
	"strings"

	"github.com/qhy991/vagent/tool"
)

// fencedBlockPattern matches fenced code blocks, optionally tagged json.
var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")

// extractDirect parses the entire trimmed text as a single JSON document.
// It succeeds only when the whole reply is valid JSON.
func (p *Pipeline) extractDirect(text string) []tool.Call {
	cleaned := cleanJSON(strings.TrimSpace(text))
	return fromRaw(decodeEnvelope(cleaned))
}

// extractFenced scans fenced code blocks in order of appearance and returns
// the calls from the first block that parses as a complete JSON document.
func (p *Pipeline) extractFenced(text string) []tool.Call {
	for _, match := range fencedBlockPattern.FindAllStringSubmatch(text, -1) {
		cleaned := cleanJSON(strings.TrimSpace(match[1]))
		if calls := fromRaw(decodeEnvelope(cleaned)); len(calls) > 0 {
			return calls
		}
	}
	return nil
}

// extractScan recovers candidate objects from arbitrary prose by balanced
// brace scanning. Each candidate parses independently: a malformed candidate
// is discarded without failing the batch, and independent objects
// concatenated without a wrapping array are each recovered. Candidates
// decode through the same envelope logic as the other strategies, so an
// unfenced {"tool_calls": [...]} wrapper embedded in prose yields its inner
// calls rather than being discarded as an unrecognized object.
func (p *Pipeline) extractScan(text string) []tool.Call {
	var calls []tool.Call
	for _, candidate := range scanObjects(text) {
		cleaned := cleanJSON(candidate)
		calls = append(calls, fromRaw(decodeEnvelope(cleaned))...)
	}
	return calls
}

// scanObjects returns the top-level balanced {...} substrings of text,
// respecting JSON string syntax so braces inside string values do not
// unbalance the scan. Nested objects are covered by their enclosing one.
func scanObjects(text string) []string {
	var objects []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue // Stray closing brace in prose.
			}
			depth--
			if depth == 0 && start >= 0 {
				objects = append(objects, text[start:i+1])
				start = -1
			}
		}
	}
	return objects
}

// extractHeuristic is the last-resort strategy: it flags tool intent rather
// than fabricating it. A known tool name mentioned verbatim and followed by
// colon-style key/value lines synthesizes one best-effort call. The
// dispatcher tags the result "heuristic" so the router always routes it
// through repair.
func (p *Pipeline) extractHeuristic(text string) []tool.Call {
	if p.knownNames == nil {
		return nil
	}

	lines := strings.Split(text, "\n")
	for _, name := range p.knownNames() {
		lineIdx := findToolMention(lines, name)
		if lineIdx < 0 {
			continue
		}
		params := collectKeyValueLines(lines[lineIdx+1:])
		if len(params) == 0 {
			continue
		}
		return []tool.Call{{Name: name, Parameters: params}}
	}
	return nil
}

// heuristicWindow is how many lines after a tool mention are scanned for
// key/value pairs.
const heuristicWindow = 8

// findToolMention returns the index of the first line mentioning the tool
// name as a whole word, or -1.
func findToolMention(lines []string, name string) int {
	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	for i, line := range lines {
		if pattern.MatchString(line) {
			return i
		}
	}
	return -1
}

// collectKeyValueLines parses `key: value` lines from the window following
// a tool mention. Values stay strings; type coercion is repair's job.
func collectKeyValueLines(lines []string) map[string]any {
	params := map[string]any{}
	limit := heuristicWindow
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*"))
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" || strings.ContainsAny(key, " \t") {
			continue
		}
		params[key] = strings.Trim(value, `"'`)
	}
	if len(params) == 0 {
		return nil
	}
	return params
}

// fromRaw converts decoded raw calls to tool.Call values.
func fromRaw(raws []rawCall) []tool.Call {
	if len(raws) == 0 {
		return nil
	}
	calls := make([]tool.Call, 0, len(raws))
	for _, r := range raws {
		calls = append(calls, tool.Call{Name: r.Name, Parameters: r.Parameters})
	}
	return calls
}
