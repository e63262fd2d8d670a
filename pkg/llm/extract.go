package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSONFound indicates no strategy could parse JSON out of the model
// output. Callers decide whether to degrade or fail; this package never does.
var ErrNoJSONFound = errors.New("no parseable JSON found in model output")

// Fenced blocks, tagged and untagged. The tag match is case-insensitive.
var (
	fencedJSONPattern = regexp.MustCompile("(?is)```json[ \t]*\r?\n?(.*?)```")
	fencedAnyPattern  = regexp.MustCompile("(?s)```[a-zA-Z]*[ \t]*\r?\n?(.*?)```")
)

// ExtractJSON pulls a JSON object out of raw model output. Strategies are
// tried in order of decreasing confidence, first success wins:
//
//  1. a fenced code block tagged json
//  2. any fenced code block
//  3. the substring from the first '{' to the last '}'
//
// Individual parse failures are swallowed; ErrNoJSONFound is returned only
// after all strategies fail.
func ExtractJSON(raw string) (json.RawMessage, error) {
	if candidate, ok := fromFencedBlock(fencedJSONPattern, raw); ok {
		return candidate, nil
	}

	if candidate, ok := fromFencedBlock(fencedAnyPattern, raw); ok {
		return candidate, nil
	}

	if candidate, ok := fromBraceSpan(raw); ok {
		return candidate, nil
	}

	return nil, ErrNoJSONFound
}

// ExtractObject extracts JSON and decodes it into a generic object. Non-object
// JSON (arrays, scalars) is reported as not found, since every pipeline stage
// contract is an object.
func ExtractObject(raw string) (map[string]any, error) {
	candidate, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var obj map[string]any
	if err := json.Unmarshal(candidate, &obj); err != nil {
		return nil, ErrNoJSONFound
	}

	return obj, nil
}

// ExtractJSONAs extracts JSON and unmarshals it into T.
func ExtractJSONAs[T any](raw string) (T, error) {
	var out T

	candidate, err := ExtractJSON(raw)
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(candidate, &out); err != nil {
		return out, fmt.Errorf("extracted JSON does not match expected shape: %w", err)
	}

	return out, nil
}

func fromFencedBlock(pattern *regexp.Regexp, raw string) (json.RawMessage, bool) {
	for _, match := range pattern.FindAllStringSubmatch(raw, -1) {
		if len(match) < 2 {
			continue
		}

		content := strings.TrimSpace(match[1])
		if json.Valid([]byte(content)) {
			return json.RawMessage(content), true
		}
	}

	return nil, false
}

func fromBraceSpan(raw string) (json.RawMessage, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")

	if start < 0 || end <= start {
		return nil, false
	}

	candidate := raw[start : end+1]
	if json.Valid([]byte(candidate)) {
		return json.RawMessage(candidate), true
	}

	return nil, false
}
