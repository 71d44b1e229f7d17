package postgres

import (
	"context"

	"go.uber.org/zap"

	"catalog-backend/application/ports"
	"catalog-backend/domain/core/entities"
)

// RelationStore exposes direct edge manipulation for callers that manage
// containment themselves, such as bulk import tooling.
type RelationStore struct {
	store  Store
	logger *zap.Logger
}

// NewRelationStore creates a relation store.
func NewRelationStore(store Store, logger *zap.Logger) *RelationStore {
	return &RelationStore{store: store, logger: logger}
}

var _ ports.RelationStore = (*RelationStore)(nil)

// CreateRelation inserts one containment edge. Duplicate edges surface as
// conflicts.
func (s *RelationStore) CreateRelation(ctx context.Context, rel entities.Relation) (*entities.Relation, error) {
	if err := execCreateRelation(ctx, s.store, rel); err != nil {
		s.logger.Error("Failed to create relation",
			zap.String("parent_id", rel.ParentID),
			zap.String("child_id", rel.ChildID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Relation created",
		zap.String("parent_id", rel.ParentID),
		zap.String("parent_type", string(rel.ParentType)),
		zap.String("child_id", rel.ChildID),
		zap.String("child_type", string(rel.ChildType)),
	)
	return &rel, nil
}

// Reparent moves a child under a new parent of the appropriate level,
// updating the existing edge rather than recreating it.
func (s *RelationStore) Reparent(ctx context.Context, childID string, childType entities.Level, newParentID string) error {
	if err := execReparent(ctx, s.store, childID, childType, newParentID); err != nil {
		s.logger.Error("Failed to move relation",
			zap.String("child_id", childID),
			zap.String("new_parent_id", newParentID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
