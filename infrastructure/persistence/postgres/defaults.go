package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"catalog-backend/domain/core/entities"
	"catalog-backend/domain/core/valueobjects"
	"catalog-backend/pkg/errors"
)

// Creating a domain or a domain product also provisions a default child, so
// every level of the taxonomy is immediately usable as an attachment point.
const (
	defaultDomainProductName        = "(Default Domain-Product)"
	defaultDomainProductDescription = "This is a system generated domainProduct."
	defaultProductName              = "(Default Product)"
	defaultProductDescription       = "This is a system generated product."
)

// execCreateRelation inserts one containment edge through the given
// executor, so it participates in whatever transaction the caller runs.
func execCreateRelation(ctx context.Context, exec Executor, rel entities.Relation) error {
	if err := rel.Validate(); err != nil {
		return errors.NewValidationError(err.Error())
	}

	res, err := exec.Execute(ctx, insertRelationSQL,
		rel.ParentID, string(rel.ParentType), rel.ChildID, string(rel.ChildType))
	if err != nil {
		return classifyRelationError(err, "an error occurred while creating the relation")
	}
	if res.RowCount == 0 {
		return errors.NewDependencyError("relation insert returned no rows", nil)
	}
	return nil
}

// execReparent moves a child under a new parent by updating its edge in
// place. The edge itself must already exist.
func execReparent(ctx context.Context, exec Executor, childID string, childType entities.Level, newParentID string) error {
	parentType := childType.ParentLevel()
	if parentType == "" {
		return errors.NewValidationError(fmt.Sprintf("%s entities have no parent", strings.ToLower(string(childType))))
	}

	res, err := exec.Execute(ctx, reparentRelationSQL,
		newParentID, string(parentType), childID, string(childType))
	if err != nil {
		return classifyRelationError(err, "an error occurred while moving the relation")
	}
	if res.RowCount == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("relation for %s '%s'", strings.ToLower(string(childType)), childID))
	}
	return nil
}

func createDefaultDomainProduct(ctx context.Context, exec Executor, domainID string) (string, error) {
	id := uuid.NewString()

	res, err := exec.Execute(ctx, insertDomainProductSQL,
		id, defaultDomainProductName, valueobjects.Slugify(defaultDomainProductName),
		defaultDomainProductDescription, true)
	if err != nil {
		return "", classifyEntityError(err, "an error occurred while creating the default domain product")
	}
	if res.RowCount == 0 {
		return "", errors.NewDependencyError("default domain product insert returned no rows", nil)
	}

	err = execCreateRelation(ctx, exec, entities.Relation{
		ParentID:   domainID,
		ParentType: entities.LevelDomain,
		ChildID:    id,
		ChildType:  entities.LevelDomainProduct,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func createDefaultProduct(ctx context.Context, exec Executor, domainProductID string) (string, error) {
	id := uuid.NewString()

	res, err := exec.Execute(ctx, insertProductSQL,
		id, defaultProductName, valueobjects.Slugify(defaultProductName),
		defaultProductDescription, true)
	if err != nil {
		return "", classifyEntityError(err, "an error occurred while creating the default product")
	}
	if res.RowCount == 0 {
		return "", errors.NewDependencyError("default product insert returned no rows", nil)
	}

	err = execCreateRelation(ctx, exec, entities.Relation{
		ParentID:   domainProductID,
		ParentType: entities.LevelDomainProduct,
		ChildID:    id,
		ChildType:  entities.LevelProduct,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
