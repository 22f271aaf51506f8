package scrape

import (
	"strings"

	"github.com/jonathan/prep-coach/internal/gateway"
)

// ExtractContent pulls the main textual content out of a scrape response.
// Tools disagree about where the markdown lives, so fields are tried in
// priority order: a bare string payload, a top-level markdown field, one
// nested under data, the first item of a data list, and finally a content or
// text field. An empty string means "no content; try the next tier".
func ExtractContent(p gateway.Payload) string {
	if p.Kind() == gateway.KindText {
		return p.Text()
	}
	if p.Kind() != gateway.KindMap {
		return ""
	}

	if md := p.StringField("markdown"); strings.TrimSpace(md) != "" {
		return md
	}

	if data := p.MapField("data"); data != nil {
		if md, ok := data["markdown"].(string); ok && strings.TrimSpace(md) != "" {
			return md
		}
	}

	for _, it := range p.ListField("data") {
		item, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if md, ok := item["markdown"].(string); ok && strings.TrimSpace(md) != "" {
			return md
		}
	}

	for _, candidate := range []string{
		p.StringField("content"),
		mapString(p.MapField("data"), "content"),
		p.StringField("text"),
		mapString(p.MapField("data"), "text"),
	} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

// PageKey derives the result map key for a URL: the final path segment, or
// "home" for the site root.
func PageKey(u string) string {
	trimmed := u
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if trimmed == "" {
		return "home"
	}
	return trimmed
}

func mapString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
