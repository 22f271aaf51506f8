package gateway

import (
	"fmt"
	"sort"
	"strings"
)

// Kind tags the normalized shape of a tool response.
type Kind int

// Payload kinds. Remote tools answer with a mapping, a sequence, or a bare
// scalar; everything else normalizes to Empty.
const (
	KindEmpty Kind = iota
	KindMap
	KindList
	KindText
)

// Payload is the single normalized result type for tool responses. All
// shape-sniffing of the heterogeneous wire formats happens in Normalize;
// callers only see these accessors.
type Payload struct {
	kind Kind
	m    map[string]any
	l    []any
	s    string
}

// Normalize converts a decoded tool response into a Payload. A mapping whose
// output.value field is present is unwrapped first (the gateway's envelope
// format); plain mappings, lists, and scalars pass through.
func Normalize(raw any) Payload {
	switch v := raw.(type) {
	case nil:
		return Payload{}
	case map[string]any:
		if out, ok := v["output"].(map[string]any); ok {
			if inner, ok := out["value"]; ok {
				return Normalize(inner)
			}
		}
		return Payload{kind: KindMap, m: v}
	case []any:
		return Payload{kind: KindList, l: v}
	case string:
		if strings.TrimSpace(v) == "" {
			return Payload{}
		}
		return Payload{kind: KindText, s: v}
	default:
		return Payload{kind: KindText, s: fmt.Sprint(v)}
	}
}

// Kind returns the payload's shape tag.
func (p Payload) Kind() Kind { return p.kind }

// IsEmpty reports whether the payload carries no content.
func (p Payload) IsEmpty() bool { return p.kind == KindEmpty }

// Map returns the mapping form, or nil for non-map payloads.
func (p Payload) Map() map[string]any {
	if p.kind != KindMap {
		return nil
	}
	return p.m
}

// List returns the sequence form, or nil for non-list payloads.
func (p Payload) List() []any {
	if p.kind != KindList {
		return nil
	}
	return p.l
}

// Text returns the scalar form, or "" for non-text payloads.
func (p Payload) Text() string {
	if p.kind != KindText {
		return ""
	}
	return p.s
}

// Keys returns the sorted keys of a map payload, for logging.
func (p Payload) Keys() []string {
	if p.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(p.m))
	for k := range p.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StringField returns the named map field if it is a string.
func (p Payload) StringField(key string) string {
	if p.kind != KindMap {
		return ""
	}
	s, _ := p.m[key].(string)
	return s
}

// ListField returns the named map field if it is a list.
func (p Payload) ListField(key string) []any {
	if p.kind != KindMap {
		return nil
	}
	l, _ := p.m[key].([]any)
	return l
}

// MapField returns the named map field if it is a mapping.
func (p Payload) MapField(key string) map[string]any {
	if p.kind != KindMap {
		return nil
	}
	m, _ := p.m[key].(map[string]any)
	return m
}
