package portal

import "sort"

// Flatten converts a decoded JSON value into a single-level map with
// dot-joined key paths. Only plain objects recurse; arrays and every
// other value are stored whole under the path built so far. A scalar or
// array at the top level (empty prefix) lands under the key "value".
func Flatten(v any, prefix string) map[string]any {
	out := make(map[string]any)
	flattenInto(out, v, prefix)
	return out
}

func flattenInto(out map[string]any, v any, prefix string) {
	obj, ok := v.(map[string]any)
	if !ok {
		if prefix == "" {
			prefix = "value"
		}
		out[prefix] = v
		return
	}
	for k, child := range obj {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if nested, ok := child.(map[string]any); ok {
			flattenInto(out, nested, path)
		} else {
			out[path] = child
		}
	}
}

// UnionKeys returns the union of keys across rows as a column order:
// preferred keys that occur in at least one row come first, in the given
// order, followed by the remaining keys sorted lexicographically.
func UnionKeys(rows []map[string]any, preferred []string) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			seen[k] = true
		}
	}

	cols := make([]string, 0, len(seen))
	taken := make(map[string]bool, len(seen))
	for _, k := range preferred {
		if seen[k] && !taken[k] {
			cols = append(cols, k)
			taken[k] = true
		}
	}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		if !taken[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(cols, rest...)
}
