package postgres

import (
	"fmt"
	"time"

	"catalog-backend/pkg/errors"
)

// ResultMap declares how the flat rows of a denormalized join query fold
// into nested objects. Column names of nested maps are read through their
// declared prefix, matching the aliases of the base query.
type ResultMap struct {
	// IDColumn identifies the object; rows sharing a value are one object.
	// A NULL id marks the object as absent in that row.
	IDColumn string
	// KeyColumns extend the identity for objects whose id is only unique
	// together with another column, as with component types.
	KeyColumns []string
	// Columns are the scalar columns copied onto the object, keyed without
	// prefix in the output.
	Columns []string
	// Associations are nested one-to-one objects, omitted when the id
	// column is NULL on every row of the group.
	Associations []Relationship
	// Collections are nested one-to-many lists, deduplicated by the nested
	// id in first-seen row order.
	Collections []Relationship
}

// Relationship names one nested object shape and the column prefix its
// values are read through.
type Relationship struct {
	Name   string
	Prefix string
	Map    *ResultMap
}

// Tree is one folded object: scalar values plus nested Trees and []Tree.
type Tree map[string]any

// mapRows folds flat rows into nested objects, preserving the order in
// which each primary id first appears.
func mapRows(rows []Row, m *ResultMap) []Tree {
	return fold(rows, m, "")
}

// mapOne folds rows that are expected to describe a single object. No rows
// means the object does not exist.
func mapOne(rows []Row, m *ResultMap, resource string) (Tree, error) {
	trees := fold(rows, m, "")
	switch len(trees) {
	case 0:
		return nil, errors.NewNotFoundError(resource)
	case 1:
		return trees[0], nil
	default:
		return nil, errors.NewDependencyError(
			fmt.Sprintf("query for a single %s matched %d records", resource, len(trees)), nil)
	}
}

func fold(rows []Row, m *ResultMap, prefix string) []Tree {
	var order []string
	groups := make(map[string][]Row)
	for _, row := range rows {
		id, ok := row[prefix+m.IDColumn]
		if !ok || id == nil {
			continue
		}
		key := fmt.Sprint(id)
		for _, kc := range m.KeyColumns {
			key += "\x00" + fmt.Sprint(row[prefix+kc])
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}

	out := make([]Tree, 0, len(order))
	for _, key := range order {
		group := groups[key]
		tree := make(Tree, len(m.Columns)+len(m.Associations)+len(m.Collections))

		first := group[0]
		for _, col := range m.Columns {
			if v, ok := first[prefix+col]; ok {
				tree[col] = v
			}
		}

		for _, a := range m.Associations {
			if nested := fold(group, a.Map, a.Prefix); len(nested) > 0 {
				tree[a.Name] = nested[0]
			}
		}
		for _, c := range m.Collections {
			tree[c.Name] = fold(group, c.Map, c.Prefix)
		}

		out = append(out, tree)
	}
	return out
}

// Typed accessors. Rows scanned through database/sql arrive loosely typed,
// so each accessor tolerates the representations the driver produces.

func (t Tree) str(key string) string {
	switch v := t[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (t Tree) boolVal(key string) bool {
	b, _ := t[key].(bool)
	return b
}

func (t Tree) int64Val(key string) int64 {
	switch v := t[key].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func (t Tree) timeVal(key string) time.Time {
	ts, _ := t[key].(time.Time)
	return ts
}

func (t Tree) tree(key string) Tree {
	nested, _ := t[key].(Tree)
	return nested
}

func (t Tree) trees(key string) []Tree {
	nested, _ := t[key].([]Tree)
	return nested
}
