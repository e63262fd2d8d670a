package models

// Parameters is the per-node configuration bag. Serialization keeps the raw
// shape; typed views below decode the shapes the simulator understands
// (trigger, HTTP, assignment, conditional) and everything else stays generic.
type Parameters map[string]any

// HTTPParameters is the decoded view for HTTP-call nodes.
type HTTPParameters struct {
	URL     string
	Method  string
	Headers map[string]string
}

// Assignment is one field set by an assignment node.
type Assignment struct {
	Name  string
	Value any
}

func (p Parameters) stringValue(key string) string {
	if p == nil {
		return ""
	}

	if v, ok := p[key].(string); ok {
		return v
	}

	return ""
}

// HTTP decodes the parameters of an HTTP-call node. The second return value
// reports whether a url is present, the one parameter the simulator treats
// as required.
func (p Parameters) HTTP() (HTTPParameters, bool) {
	params := HTTPParameters{
		URL:     p.stringValue("url"),
		Method:  p.stringValue("method"),
		Headers: make(map[string]string),
	}

	if params.Method == "" {
		params.Method = "GET"
	}

	if headers, ok := p["headers"].(map[string]any); ok {
		for key, value := range headers {
			if str, ok := value.(string); ok {
				params.Headers[key] = str
			}
		}
	}

	return params, params.URL != ""
}

// Assignments decodes the fields declared by an assignment node. Both the
// nested assignments shape ({"assignments":{"assignments":[...]}}) and a flat
// {"values": {...}} bag are recognized.
func (p Parameters) Assignments() []Assignment {
	out := make([]Assignment, 0)

	if nested, ok := p["assignments"].(map[string]any); ok {
		if list, ok := nested["assignments"].([]any); ok {
			for _, item := range list {
				entry, ok := item.(map[string]any)
				if !ok {
					continue
				}

				name, _ := entry["name"].(string)
				if name == "" {
					continue
				}

				out = append(out, Assignment{Name: name, Value: entry["value"]})
			}
		}
	}

	if values, ok := p["values"].(map[string]any); ok {
		for name, value := range values {
			out = append(out, Assignment{Name: name, Value: value})
		}
	}

	return out
}

// Raw returns the untyped parameter bag for unrecognized node types.
func (p Parameters) Raw() map[string]any {
	if p == nil {
		return map[string]any{}
	}

	return p
}
