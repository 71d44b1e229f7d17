package postgres

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"catalog-backend/pkg/errors"
)

// PostgreSQL error codes this layer cares about.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	classIntegrityViolation = "23"
)

// classifyEntityError maps a driver error from an entity statement onto the
// application error model. Unique violations carry the driver detail so the
// caller can see which key collided. AppErrors pass through untouched.
func classifyEntityError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	if appErr := errors.GetAppError(err); appErr != nil {
		return err
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			msg := "a record with the same unique value already exists"
			if pgErr.Detail != "" {
				msg = fmt.Sprintf("%s: %s", msg, pgErr.Detail)
			}
			return errors.NewValidationError(msg)
		case codeForeignKeyViolation:
			return errors.NewValidationError("a referenced record does not exist")
		}
	}

	return errors.NewDependencyError(fallback, err)
}

// classifyRelationError maps a driver error from a relation statement.
// Integrity violations on the edge table, duplicate edges above all, are
// conflicts rather than validation failures.
func classifyRelationError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	if appErr := errors.GetAppError(err); appErr != nil {
		return err
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, classIntegrityViolation) {
		if pgErr.Code == codeUniqueViolation {
			return errors.NewConflictError("the relation already exists")
		}
		return errors.NewConflictError("the relation violates an integrity constraint")
	}

	return errors.NewDependencyError(fallback, err)
}
