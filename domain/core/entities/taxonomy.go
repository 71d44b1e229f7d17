// Package entities defines the catalog taxonomy: Domains contain
// DomainProducts, DomainProducts contain Products, Products contain
// Components. Containment is not stored on the entities themselves but in a
// single polymorphic relation table whose edges connect adjacent levels.
package entities

import "fmt"

// Level identifies which taxonomy level an entity belongs to. Relation
// endpoints are typed with levels because ids alone are ambiguous across
// tables.
type Level string

const (
	LevelDomain        Level = "DOMAIN"
	LevelDomainProduct Level = "DOMAINPRODUCT"
	LevelProduct       Level = "PRODUCT"
	LevelComponent     Level = "COMPONENT"
)

// ChildLevel returns the level directly contained by l, or "" for the
// bottom of the taxonomy.
func (l Level) ChildLevel() Level {
	switch l {
	case LevelDomain:
		return LevelDomainProduct
	case LevelDomainProduct:
		return LevelProduct
	case LevelProduct:
		return LevelComponent
	default:
		return ""
	}
}

// ParentLevel returns the level that contains l, or "" for the top of the
// taxonomy.
func (l Level) ParentLevel() Level {
	switch l {
	case LevelDomainProduct:
		return LevelDomain
	case LevelProduct:
		return LevelDomainProduct
	case LevelComponent:
		return LevelProduct
	default:
		return ""
	}
}

// Relation is one parent-child edge in the containment graph.
type Relation struct {
	ParentID   string `json:"parentId"`
	ParentType Level  `json:"parentType"`
	ChildID    string `json:"childId"`
	ChildType  Level  `json:"childType"`
}

// Validate checks that the edge connects adjacent taxonomy levels.
func (r Relation) Validate() error {
	if r.ParentID == "" || r.ChildID == "" {
		return fmt.Errorf("relation endpoints must not be empty")
	}
	if r.ParentType.ChildLevel() != r.ChildType || r.ChildType == "" {
		return fmt.Errorf("relation %s -> %s does not connect adjacent levels", r.ParentType, r.ChildType)
	}
	return nil
}

// Component types. A component id is only unique together with its type.
const (
	ComponentTypeLibrary = "LIBRARY"
	ComponentTypeUI      = "UI"
	ComponentTypeData    = "DATA"
	ComponentTypeAPI     = "API"
)

// IsValidComponentType reports whether t names a known component type.
func IsValidComponentType(t string) bool {
	switch t {
	case ComponentTypeLibrary, ComponentTypeUI, ComponentTypeData, ComponentTypeAPI:
		return true
	}
	return false
}

// ComponentKey is the composite identity of a component.
type ComponentKey struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// String renders the key in the TYPE:id form used for relation endpoints.
func (k ComponentKey) String() string {
	return k.Type + ":" + k.ID
}
