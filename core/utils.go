package core

import "strings"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanStrings cleans each element and drops empties and duplicates,
// preserving first-seen order.
func CleanStrings(vals []string, lower ...bool) []string {
	if vals == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(vals))
	cleaned := make([]string, 0, len(vals))
	for _, v := range vals {
		v = CleanString(v, lower...)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		cleaned = append(cleaned, v)
	}
	return cleaned
}
