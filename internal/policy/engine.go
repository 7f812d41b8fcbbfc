// Package policy decides whether a caller may perform an operation on a table.
//
// Rules are evaluated per row, the way row-level security would: inserts look
// at the drafts, updates and deletes at every row the filters match. A request
// is allowed only if every row passes; anything the table does not list is
// forbidden.
package policy

import (
	"denuncias/internal/models"
	"denuncias/internal/query"
)

// TargetFinder returns the rows a mutation would touch without touching them.
type TargetFinder interface {
	Targets(table models.Table, filters []query.Filter) ([]models.Owned, error)
}

// Engine evaluates the per-table rules.
type Engine struct {
	targets TargetFinder
}

// NewEngine returns an engine that looks up mutation targets through targets.
func NewEngine(targets TargetFinder) *Engine {
	return &Engine{targets: targets}
}

// AuthorizeSelect allows any authenticated caller to read any table.
func (e *Engine) AuthorizeSelect(caller *models.User, table models.Table) error {
	if caller == nil {
		return models.NewNotAuthenticatedError()
	}
	if !table.Valid() {
		return models.NewInvalidRequestError("unknown table %q", table)
	}
	return nil
}

// AuthorizeInsert checks every draft. drafts is a slice of the table's draft type.
func (e *Engine) AuthorizeInsert(caller *models.User, table models.Table, drafts any) error {
	if caller == nil {
		return models.NewNotAuthenticatedError()
	}
	switch d := drafts.(type) {
	case []models.DenunciaDraft:
		return ownsAll(caller, d)
	case []models.ComentarioDraft:
		return ownsAll(caller, d)
	case []models.LikeDraft:
		return ownsAll(caller, d)
	case []models.ModeracionDraft:
		if !caller.IsAdmin() {
			return models.NewForbiddenError()
		}
		for _, m := range d {
			if m.AdminID != caller.ID {
				return models.NewForbiddenError()
			}
		}
		return nil
	}
	// Accounts are created through sign-up only.
	return models.NewForbiddenError()
}

// AuthorizeUpdate allows owners to patch their reports, and admins to change
// the estado of any report when nothing else changes.
func (e *Engine) AuthorizeUpdate(caller *models.User, table models.Table, filters []query.Filter, patch any) error {
	if caller == nil {
		return models.NewNotAuthenticatedError()
	}
	if table != models.TableDenuncias {
		return models.NewForbiddenError()
	}
	p, ok := patch.(models.DenunciaPatch)
	if !ok {
		return models.NewForbiddenError()
	}
	if caller.IsAdmin() && p.OnlyEstado() {
		return nil
	}
	targets, err := e.targets.Targets(table, filters)
	if err != nil {
		return err
	}
	return ownsAll(caller, targets)
}

// AuthorizeDelete allows owners to delete their rows. Admins may also delete
// any report.
func (e *Engine) AuthorizeDelete(caller *models.User, table models.Table, filters []query.Filter) error {
	if caller == nil {
		return models.NewNotAuthenticatedError()
	}
	switch table {
	case models.TableDenuncias:
		if caller.IsAdmin() {
			return nil
		}
	case models.TableComentarios, models.TableLikes:
	default:
		return models.NewForbiddenError()
	}
	targets, err := e.targets.Targets(table, filters)
	if err != nil {
		return err
	}
	return ownsAll(caller, targets)
}

func ownsAll[T models.Owned](caller *models.User, rows []T) error {
	for _, r := range rows {
		if r.OwnerID() != caller.ID {
			return models.NewForbiddenError()
		}
	}
	return nil
}
