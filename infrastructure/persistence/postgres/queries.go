package postgres

import "strings"

// Statement text for the catalog tables. Mutations return their key columns
// so RowCount reflects the rows actually touched.

var (
	insertDomainSQL = renderPositional(`
INSERT INTO domains (id, name, slug_name, description, is_system_generated)
VALUES (?, ?, ?, ?, ?)
RETURNING id`)

	insertDomainProductSQL = renderPositional(`
INSERT INTO domain_products (id, name, slug_name, description, is_system_generated)
VALUES (?, ?, ?, ?, ?)
RETURNING id`)

	insertProductSQL = renderPositional(`
INSERT INTO products (id, name, slug_name, description, is_system_generated)
VALUES (?, ?, ?, ?, ?)
RETURNING id`)

	insertComponentSQL = renderPositional(`
INSERT INTO components (component_id, type, name, description)
VALUES (?, ?, ?, ?)
RETURNING component_id`)

	insertRelationSQL = renderPositional(`
INSERT INTO relations (parent_id, parent_type, child_id, child_type)
VALUES (?, ?, ?, ?)
RETURNING parent_id, parent_type, child_id, child_type`)

	reparentRelationSQL = renderPositional(`
UPDATE relations
SET parent_id = ?, parent_type = ?
WHERE child_id = ? AND child_type = ?
RETURNING child_id`)

	rekeyComponentRelationSQL = renderPositional(`
UPDATE relations
SET child_id = ?
WHERE child_id = ? AND child_type = 'COMPONENT'
RETURNING child_id`)

	countDomainsSQL = `SELECT COUNT(*) AS count FROM domains WHERE is_active = TRUE`

	deleteResourceTypesSQLPrefix = `
DELETE FROM domain_product_resource_types
WHERE domain_product_id = ? AND resource_type_name IN `
)

// checkResourceTypesSQL finds resource types already claimed by another
// domain product, with the claimant's name for the error message.
func checkResourceTypesSQL(count int) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
	return renderPositional(`
SELECT rt.resource_type_name, rt.domain_product_id, dp.name AS domain_product_name
FROM domain_product_resource_types rt
LEFT JOIN domain_products dp ON dp.id = rt.domain_product_id
WHERE rt.resource_type_name IN (` + marks + `) AND rt.domain_product_id <> ?`)
}

func insertResourceTypesSQL(count int) string {
	return renderPositional(`
INSERT INTO domain_product_resource_types (domain_product_id, resource_type_name)
VALUES ` + valuesClause(count, 2) + `
RETURNING resource_type_name`)
}

func deleteResourceTypesSQL(count int) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
	return renderPositional(deleteResourceTypesSQLPrefix + `(` + marks + `)
RETURNING resource_type_name`)
}

// Base read queries. Each denormalizes one entity with its related entities
// through the relation table, aliasing related columns with the prefixes
// the result maps expect. Soft-deleted primary entities are filtered out
// here; soft-deleted related entities are dropped at the join.

const domainBaseQuery = `SELECT
    d.id,
    d.name,
    d.slug_name,
    d.description,
    d.sort_id,
    d.is_active,
    d.is_system_generated,
    d.created_at,
    d.last_modified_at,
    dp.id AS domain_product_id,
    dp.name AS domain_product_name,
    dp.description AS domain_product_description,
    dp.is_system_generated AS domain_product_is_system_generated,
    p.id AS product_id,
    p.name AS product_name,
    p.description AS product_description,
    p.is_system_generated AS product_is_system_generated
FROM domains d
LEFT JOIN relations r_dp
    ON r_dp.parent_id = d.id AND r_dp.parent_type = 'DOMAIN'
LEFT JOIN domain_products dp
    ON dp.id = r_dp.child_id AND dp.is_active = TRUE
LEFT JOIN relations r_p
    ON r_p.parent_id = dp.id AND r_p.parent_type = 'DOMAINPRODUCT'
LEFT JOIN products p
    ON p.id = r_p.child_id AND p.is_active = TRUE
WHERE d.is_active = TRUE`

const domainProductBaseQuery = `SELECT
    dp.id,
    dp.name,
    dp.slug_name,
    dp.description,
    dp.sort_id,
    dp.is_active,
    dp.is_system_generated,
    dp.created_at,
    dp.last_modified_at,
    d.id AS domain_id,
    d.name AS domain_name,
    p.id AS product_id,
    p.name AS product_name,
    p.description AS product_description,
    p.is_system_generated AS product_is_system_generated,
    rt.resource_type_name AS resource_type_name
FROM domain_products dp
LEFT JOIN relations r_d
    ON r_d.child_id = dp.id AND r_d.child_type = 'DOMAINPRODUCT'
LEFT JOIN domains d
    ON d.id = r_d.parent_id AND d.is_active = TRUE
LEFT JOIN relations r_p
    ON r_p.parent_id = dp.id AND r_p.parent_type = 'DOMAINPRODUCT'
LEFT JOIN products p
    ON p.id = r_p.child_id AND p.is_active = TRUE
LEFT JOIN domain_product_resource_types rt
    ON rt.domain_product_id = dp.id
WHERE dp.is_active = TRUE`

// productBaseQuery joins ancestors on demand. The relation hop to the
// parent domain product is always present because both optional joins hang
// off it.
func productBaseQuery(withDomainProduct, withDomain bool) string {
	var b strings.Builder
	b.WriteString(`SELECT
    p.id,
    p.name,
    p.slug_name,
    p.description,
    p.sort_id,
    p.is_active,
    p.is_system_generated,
    p.created_at,
    p.last_modified_at`)
	if withDomainProduct {
		b.WriteString(`,
    dp.id AS domain_product_id,
    dp.name AS domain_product_name,
    dp.description AS domain_product_description`)
	}
	if withDomain {
		b.WriteString(`,
    d.id AS domain_id,
    d.name AS domain_name,
    d.description AS domain_description`)
	}
	b.WriteString(`
FROM products p
LEFT JOIN relations r1
    ON r1.child_id = p.id AND r1.child_type = 'PRODUCT'`)
	if withDomainProduct {
		b.WriteString(`
LEFT JOIN domain_products dp
    ON dp.id = r1.parent_id AND dp.is_active = TRUE`)
	}
	if withDomain {
		b.WriteString(`
LEFT JOIN relations r2
    ON r2.child_id = r1.parent_id AND r2.child_type = 'DOMAINPRODUCT'
LEFT JOIN domains d
    ON d.id = r2.parent_id AND d.is_active = TRUE`)
	}
	b.WriteString(`
WHERE p.is_active = TRUE`)
	return b.String()
}

// componentBaseQuery walks up to three relation hops. Relation endpoints
// store components under their composite TYPE:id key, so the first hop
// joins on the concatenation.
func componentBaseQuery(withProduct, withDomainProduct, withDomain bool) string {
	var b strings.Builder
	b.WriteString(`SELECT
    c.component_id AS id,
    c.type,
    c.name,
    c.description,
    c.sort_id,
    c.is_active,
    c.created_at,
    c.last_modified_at`)
	if withProduct {
		b.WriteString(`,
    p.id AS product_id,
    p.name AS product_name`)
	}
	if withDomainProduct {
		b.WriteString(`,
    dp.id AS domain_product_id,
    dp.name AS domain_product_name`)
	}
	if withDomain {
		b.WriteString(`,
    d.id AS domain_id,
    d.name AS domain_name`)
	}
	b.WriteString(`
FROM components c
LEFT JOIN relations r1
    ON r1.child_id = c.type || ':' || c.component_id AND r1.child_type = 'COMPONENT'`)
	if withProduct {
		b.WriteString(`
LEFT JOIN products p
    ON p.id = r1.parent_id AND p.is_active = TRUE`)
	}
	if withDomainProduct || withDomain {
		b.WriteString(`
LEFT JOIN relations r2
    ON r2.child_id = r1.parent_id AND r2.child_type = 'PRODUCT'`)
	}
	if withDomainProduct {
		b.WriteString(`
LEFT JOIN domain_products dp
    ON dp.id = r2.parent_id AND dp.is_active = TRUE`)
	}
	if withDomain {
		b.WriteString(`
LEFT JOIN relations r3
    ON r3.child_id = r2.parent_id AND r3.child_type = 'DOMAINPRODUCT'
LEFT JOIN domains d
    ON d.id = r3.parent_id AND d.is_active = TRUE`)
	}
	b.WriteString(`
WHERE c.is_active = TRUE`)
	return b.String()
}
