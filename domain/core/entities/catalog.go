package entities

import "time"

// EntityRef is a shallow view of an ancestor entity embedded in read
// results. Description is only populated where the listing includes it.
type EntityRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Domain is the top taxonomy level.
type Domain struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	SlugName          string    `json:"slugName"`
	Description       string    `json:"description"`
	SortID            int64     `json:"-"`
	IsActive          bool      `json:"isActive"`
	IsSystemGenerated bool      `json:"isSystemGenerated"`
	CreatedAt         time.Time `json:"createdAt"`
	LastModifiedAt    time.Time `json:"lastModifiedAt"`

	DomainProducts []DomainProduct `json:"domainProducts"`
}

// DomainProduct groups products inside a domain and owns the exclusive
// claim on its resource types.
type DomainProduct struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	SlugName          string    `json:"slugName"`
	Description       string    `json:"description"`
	SortID            int64     `json:"-"`
	IsActive          bool      `json:"isActive"`
	IsSystemGenerated bool      `json:"isSystemGenerated"`
	CreatedAt         time.Time `json:"createdAt"`
	LastModifiedAt    time.Time `json:"lastModifiedAt"`

	Domain        *EntityRef     `json:"domain,omitempty"`
	Products      []Product      `json:"products"`
	ResourceTypes []ResourceType `json:"resourceTypes"`
}

// ResourceType is a named infrastructure resource class claimed by exactly
// one domain product.
type ResourceType struct {
	Name string `json:"name"`
}

// Product is the third taxonomy level.
type Product struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	SlugName          string    `json:"slugName"`
	Description       string    `json:"description"`
	SortID            int64     `json:"-"`
	IsActive          bool      `json:"isActive"`
	IsSystemGenerated bool      `json:"isSystemGenerated"`
	CreatedAt         time.Time `json:"createdAt"`
	LastModifiedAt    time.Time `json:"lastModifiedAt"`

	Domain        *EntityRef `json:"domain,omitempty"`
	DomainProduct *EntityRef `json:"domainProduct,omitempty"`
}

// Component is a deployable or buildable unit owned by a product.
type Component struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	SortID         int64     `json:"-"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	LastModifiedAt time.Time `json:"lastModifiedAt"`

	Domain        *EntityRef `json:"domain,omitempty"`
	DomainProduct *EntityRef `json:"domainProduct,omitempty"`
	Product       *EntityRef `json:"product,omitempty"`
}

// Key returns the component's composite identity.
func (c *Component) Key() ComponentKey {
	return ComponentKey{Type: c.Type, ID: c.ID}
}
