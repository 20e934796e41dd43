package catalog

import "strings"

// Model describes a remote chat model the front-end can talk to.
type Model struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Default bool   `json:"default,omitempty"`
}

// Seed returns the model list offered when nothing is configured.
func Seed() []Model {
	return FromIDs([]string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro", "gemini-1.0-pro"}, "")
}

// FromIDs builds a catalog from raw identifiers. Blank and duplicate ids are
// skipped. defaultID is marked default when present, otherwise the first entry.
func FromIDs(ids []string, defaultID string) []Model {
	defaultID = strings.TrimSpace(defaultID)

	seen := make(map[string]struct{}, len(ids))
	models := make([]Model, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		models = append(models, Model{ID: id, Name: displayName(id)})
	}

	if defaultID != "" {
		if _, ok := seen[defaultID]; !ok {
			models = append([]Model{{ID: defaultID, Name: displayName(defaultID)}}, models...)
		}
	}

	for i := range models {
		if defaultID == "" && i == 0 {
			models[i].Default = true
			continue
		}
		models[i].Default = models[i].ID == defaultID
	}
	return models
}

// displayName 把模型 ID 转换成侧边栏展示用的名称，例如 gemini-1.5-pro -> Gemini 1.5 Pro。
func displayName(id string) string {
	parts := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' })
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	if len(parts) == 0 {
		return id
	}
	return strings.Join(parts, " ")
}

// Resolve builds the catalog from configuration: the configured ids with
// defaultID as default, only defaultID, or Seed when nothing is configured.
func Resolve(ids []string, defaultID string) []Model {
	models := FromIDs(ids, defaultID)
	if len(models) == 0 {
		return Seed()
	}
	return models
}
