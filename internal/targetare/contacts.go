package targetare

import (
	"encoding/json"
	"strings"
)

// Administrator is one registered officer of a company.
type Administrator struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// decodeStringList normalizes a contact sub-resource payload into a flat
// list of strings. Observed shapes: a bare array, or an object wrapping the
// array under the resource name ("phones": [...]) or a generic key; items
// are plain strings, numbers, or objects carrying the value under one of
// itemKeys.
func decodeStringList(body []byte, wrapper string, itemKeys ...string) ([]string, error) {
	items, err := listItems(body, wrapper)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := scalarString(item); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, key := range itemKeys {
			if s, ok := scalarString(obj[key]); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
					break
				}
			}
		}
	}
	return out, nil
}

// decodeAdministrators normalizes the administrators payload. Items are
// either plain name strings or objects with name and role keys.
func decodeAdministrators(body []byte) ([]Administrator, error) {
	items, err := listItems(body, "administrators")
	if err != nil {
		return nil, err
	}

	out := make([]Administrator, 0, len(items))
	for _, item := range items {
		if s, ok := scalarString(item); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, Administrator{Name: s})
			}
			continue
		}
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		admin := Administrator{
			Name: firstScalar(obj, "name", "full_name", "nume"),
			Role: firstScalar(obj, "role", "function", "functie"),
		}
		if admin.Name != "" {
			out = append(out, admin)
		}
	}
	return out, nil
}

// listItems unwraps the raw payload down to its item slice. Empty bodies
// and recognized-but-absent wrappers yield an empty list, not an error.
func listItems(body []byte, wrapper string) ([]any, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}

	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, err
	}

	switch v := root.(type) {
	case []any:
		return v, nil
	case map[string]any:
		for _, key := range []string{wrapper, "data", "results", "items"} {
			if inner, ok := v[key].([]any); ok {
				return inner, nil
			}
		}
	}
	return nil, nil
}

func firstScalar(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := scalarString(obj[key]); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}
