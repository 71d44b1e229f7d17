package utils

import "strings"

// NormalizeSet trims whitespace from every value, drops empties, and removes
// duplicates while preserving first-seen order.
func NormalizeSet(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// ReconcileAddRemove normalizes both lists and cancels values that appear in
// both. Asking to add and remove the same value in one request is a no-op
// for that value.
func ReconcileAddRemove(add, remove []string) (toAdd, toRemove []string) {
	add = NormalizeSet(add)
	remove = NormalizeSet(remove)

	inRemove := make(map[string]bool, len(remove))
	for _, v := range remove {
		inRemove[v] = true
	}
	inAdd := make(map[string]bool, len(add))
	for _, v := range add {
		inAdd[v] = true
	}

	toAdd = make([]string, 0, len(add))
	for _, v := range add {
		if !inRemove[v] {
			toAdd = append(toAdd, v)
		}
	}
	toRemove = make([]string, 0, len(remove))
	for _, v := range remove {
		if !inAdd[v] {
			toRemove = append(toRemove, v)
		}
	}
	return toAdd, toRemove
}
