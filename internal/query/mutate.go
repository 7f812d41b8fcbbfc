package query

import (
	"context"
	"fmt"
	"strings"

	"denuncias/internal/models"
	"denuncias/internal/observability"
)

// Insert stores one or more typed drafts. The whole batch is validated before
// any row is written, so a rejected batch leaves the store unchanged.
// drafts must be a slice of the table's draft type.
func (e *Executor) Insert(ctx context.Context, table models.Table, drafts any) (Result, error) {
	var (
		res Result
		err error
	)
	switch d := drafts.(type) {
	case []models.DenunciaDraft:
		res, err = e.insertDenuncias(table, d)
	case []models.ComentarioDraft:
		res, err = e.insertComentarios(table, d)
	case []models.LikeDraft:
		res, err = e.insertLikes(table, d)
	case []models.ModeracionDraft:
		res, err = e.insertModeraciones(table, d)
	default:
		err = models.NewInvalidRequestError("cannot insert %T into %q", drafts, table)
	}

	logger := observability.NewRepoLogger(string(table))
	if err != nil {
		logger.LogError(ctx, err, "insert")
		return Result{}, err
	}
	logger.LogCreate(ctx, map[string]interface{}{"rows": rowCount(res.Data)})
	return res, nil
}

func rowCount(data any) int {
	switch d := data.(type) {
	case []models.Denuncia:
		return len(d)
	case []models.Comentario:
		return len(d)
	case []models.Like:
		return len(d)
	case []models.Moderacion:
		return len(d)
	}
	return 0
}

func requireTable(got, want models.Table) error {
	if got != want {
		return models.NewInvalidRequestError("values do not match table %q", got)
	}
	return nil
}

func required(table models.Table, fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return models.NewInvalidRequestError("null value in column %q of %q violates not-null constraint", name, table)
		}
	}
	return nil
}

// ids tracks primary keys already in use, including earlier rows of the batch.
type ids map[string]bool

func (e *Executor) claimID(seen ids, table models.Table, id string) (string, error) {
	if id == "" {
		id = e.newID()
	}
	if seen[id] {
		return "", models.NewConflictError(fmt.Sprintf("%q (id=%s)", table+"_pkey", id))
	}
	seen[id] = true
	return id, nil
}

func existingIDs[T any](rows []*T, id func(*T) string) ids {
	seen := make(ids, len(rows))
	for _, r := range rows {
		seen[id(r)] = true
	}
	return seen
}

func (e *Executor) userExists(id string) bool {
	return e.store.UserByID(id) != nil
}

func (e *Executor) insertDenuncias(table models.Table, drafts []models.DenunciaDraft) (Result, error) {
	if err := requireTable(table, models.TableDenuncias); err != nil {
		return Result{}, err
	}
	now := e.now()
	seen := existingIDs(e.store.Denuncias, func(d *models.Denuncia) string { return d.ID })
	rows := make([]*models.Denuncia, 0, len(drafts))
	for _, d := range drafts {
		if err := required(table, map[string]string{
			"user_id":         d.UserID,
			"nombre_asociado": d.NombreAsociado,
			"descripcion":     d.Descripcion,
		}); err != nil {
			return Result{}, err
		}
		if !e.userExists(d.UserID) {
			return Result{}, models.NewForeignKeyError(string(table), "user_id", d.UserID)
		}
		estado := d.Estado
		if estado == "" {
			estado = models.EstadoActiva
		}
		if !estado.Valid() {
			return Result{}, models.NewInvalidRequestError("invalid estado %q", estado)
		}
		id, err := e.claimID(seen, table, d.ID)
		if err != nil {
			return Result{}, err
		}
		row := &models.Denuncia{
			ID:             id,
			UserID:         d.UserID,
			NombreAsociado: d.NombreAsociado,
			MailAsociado:   d.MailAsociado,
			Descripcion:    d.Descripcion,
			Estado:         estado,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if d.CreatedAt != nil {
			row.CreatedAt = *d.CreatedAt
		}
		if d.UpdatedAt != nil {
			row.UpdatedAt = *d.UpdatedAt
		}
		*row = row.Clone()
		rows = append(rows, row)
	}

	out := make([]models.Denuncia, 0, len(rows))
	for _, row := range rows {
		e.store.Denuncias = append(e.store.Denuncias, row)
		e.store.Recount(row.ID)
		out = append(out, row.Clone())
	}
	return Result{Data: out}, nil
}

func (e *Executor) insertComentarios(table models.Table, drafts []models.ComentarioDraft) (Result, error) {
	if err := requireTable(table, models.TableComentarios); err != nil {
		return Result{}, err
	}
	now := e.now()
	seen := existingIDs(e.store.Comentarios, func(c *models.Comentario) string { return c.ID })
	rows := make([]*models.Comentario, 0, len(drafts))
	for _, d := range drafts {
		if err := required(table, map[string]string{
			"denuncia_id": d.DenunciaID,
			"user_id":     d.UserID,
			"contenido":   d.Contenido,
		}); err != nil {
			return Result{}, err
		}
		if e.store.DenunciaByID(d.DenunciaID) == nil {
			return Result{}, models.NewForeignKeyError(string(table), "denuncia_id", d.DenunciaID)
		}
		if !e.userExists(d.UserID) {
			return Result{}, models.NewForeignKeyError(string(table), "user_id", d.UserID)
		}
		id, err := e.claimID(seen, table, d.ID)
		if err != nil {
			return Result{}, err
		}
		row := &models.Comentario{
			ID:         id,
			DenunciaID: d.DenunciaID,
			UserID:     d.UserID,
			Contenido:  d.Contenido,
			CreatedAt:  now,
		}
		if d.CreatedAt != nil {
			row.CreatedAt = *d.CreatedAt
		}
		rows = append(rows, row)
	}

	out := make([]models.Comentario, 0, len(rows))
	for _, row := range rows {
		e.store.Comentarios = append(e.store.Comentarios, row)
		e.store.Recount(row.DenunciaID)
		out = append(out, row.Clone())
	}
	return Result{Data: out}, nil
}

func (e *Executor) insertLikes(table models.Table, drafts []models.LikeDraft) (Result, error) {
	if err := requireTable(table, models.TableLikes); err != nil {
		return Result{}, err
	}
	now := e.now()
	seen := existingIDs(e.store.Likes, func(l *models.Like) string { return l.ID })
	pairs := make(map[[2]string]bool, len(e.store.Likes))
	for _, l := range e.store.Likes {
		pairs[[2]string{l.DenunciaID, l.UserID}] = true
	}

	rows := make([]*models.Like, 0, len(drafts))
	for _, d := range drafts {
		if err := required(table, map[string]string{
			"denuncia_id": d.DenunciaID,
			"user_id":     d.UserID,
		}); err != nil {
			return Result{}, err
		}
		if e.store.DenunciaByID(d.DenunciaID) == nil {
			return Result{}, models.NewForeignKeyError(string(table), "denuncia_id", d.DenunciaID)
		}
		if !e.userExists(d.UserID) {
			return Result{}, models.NewForeignKeyError(string(table), "user_id", d.UserID)
		}
		pair := [2]string{d.DenunciaID, d.UserID}
		if pairs[pair] {
			return Result{}, models.NewConflictError(`"likes_denuncia_id_user_id_key"`)
		}
		pairs[pair] = true
		id, err := e.claimID(seen, table, d.ID)
		if err != nil {
			return Result{}, err
		}
		row := &models.Like{ID: id, DenunciaID: d.DenunciaID, UserID: d.UserID, CreatedAt: now}
		if d.CreatedAt != nil {
			row.CreatedAt = *d.CreatedAt
		}
		rows = append(rows, row)
	}

	out := make([]models.Like, 0, len(rows))
	for _, row := range rows {
		e.store.Likes = append(e.store.Likes, row)
		e.store.Recount(row.DenunciaID)
		out = append(out, row.Clone())
	}
	return Result{Data: out}, nil
}

func (e *Executor) insertModeraciones(table models.Table, drafts []models.ModeracionDraft) (Result, error) {
	if err := requireTable(table, models.TableModeraciones); err != nil {
		return Result{}, err
	}
	now := e.now()
	seen := existingIDs(e.store.Moderaciones, func(m *models.Moderacion) string { return m.ID })
	rows := make([]*models.Moderacion, 0, len(drafts))
	for _, d := range drafts {
		if err := required(table, map[string]string{
			"denuncia_id": d.DenunciaID,
			"admin_id":    d.AdminID,
			"accion":      string(d.Accion),
		}); err != nil {
			return Result{}, err
		}
		if _, ok := models.EstadoForAccion(d.Accion); !ok {
			return Result{}, models.NewInvalidRequestError("invalid accion %q", d.Accion)
		}
		if e.store.DenunciaByID(d.DenunciaID) == nil {
			return Result{}, models.NewForeignKeyError(string(table), "denuncia_id", d.DenunciaID)
		}
		if !e.userExists(d.AdminID) {
			return Result{}, models.NewForeignKeyError(string(table), "admin_id", d.AdminID)
		}
		id, err := e.claimID(seen, table, d.ID)
		if err != nil {
			return Result{}, err
		}
		row := &models.Moderacion{
			ID:         id,
			DenunciaID: d.DenunciaID,
			AdminID:    d.AdminID,
			Accion:     d.Accion,
			Comentario: d.Comentario,
			Fecha:      now,
		}
		if d.Fecha != nil {
			row.Fecha = *d.Fecha
		}
		*row = row.Clone()
		rows = append(rows, row)
	}

	out := make([]models.Moderacion, 0, len(rows))
	for _, row := range rows {
		e.store.Moderaciones = append(e.store.Moderaciones, row)
		out = append(out, row.Clone())
	}
	return Result{Data: out}, nil
}

// Update merges a typed patch into the matched rows in place. Only reports
// accept patches; the other tables are append-only.
func (e *Executor) Update(ctx context.Context, q UpdateQuery) (Result, error) {
	logger := observability.NewRepoLogger(string(q.Table))
	if q.Table != models.TableDenuncias {
		err := models.NewInvalidRequestError("table %q does not support update", q.Table)
		logger.LogError(ctx, err, "update")
		return Result{}, err
	}
	patch, ok := q.Patch.(models.DenunciaPatch)
	if !ok {
		return Result{}, models.NewInvalidRequestError("cannot update %q with %T", q.Table, q.Patch)
	}
	if len(patch.Changed()) == 0 {
		return Result{}, models.NewInvalidRequestError("update requires at least one column")
	}
	if patch.Estado.Set && !patch.Estado.Value.Valid() {
		return Result{}, models.NewInvalidRequestError("invalid estado %q", patch.Estado.Value)
	}
	if patch.NombreAsociado.Set && strings.TrimSpace(patch.NombreAsociado.Value) == "" {
		return Result{}, models.NewInvalidRequestError("nombre_asociado cannot be empty")
	}
	if patch.Descripcion.Set && strings.TrimSpace(patch.Descripcion.Value) == "" {
		return Result{}, models.NewInvalidRequestError("descripcion cannot be empty")
	}
	if patch.UpdatedAt.Set && patch.UpdatedAt.Value.IsZero() {
		return Result{}, models.NewInvalidRequestError("updated_at cannot be empty")
	}

	targets, err := match(e.store.Denuncias, denunciaColumns, q.Table, q.Filters, nil)
	if err != nil {
		logger.LogError(ctx, err, "update")
		return Result{}, err
	}

	now := e.now()
	out := make([]models.Denuncia, 0, len(targets))
	for _, row := range targets {
		patch.Apply(row, now)
		e.store.Recount(row.ID)
		out = append(out, row.Clone())
	}
	logger.LogUpdate(ctx, map[string]interface{}{"rows": len(out), "columns": patch.Changed()})
	return Result{Data: out}, nil
}

// Delete removes matched rows and returns them. Removing comments or likes
// recounts their reports; removing a report cascades to its dependants.
func (e *Executor) Delete(ctx context.Context, q DeleteQuery) (Result, error) {
	logger := observability.NewRepoLogger(string(q.Table))
	s := e.store

	var (
		res Result
		err error
	)
	switch q.Table {
	case models.TableDenuncias:
		var doomed []*models.Denuncia
		if doomed, err = match(s.Denuncias, denunciaColumns, q.Table, q.Filters, nil); err == nil {
			s.Denuncias = without(s.Denuncias, doomed)
			for _, d := range doomed {
				s.Comentarios = dropWhere(s.Comentarios, func(c *models.Comentario) bool { return c.DenunciaID == d.ID })
				s.Likes = dropWhere(s.Likes, func(l *models.Like) bool { return l.DenunciaID == d.ID })
				s.Moderaciones = dropWhere(s.Moderaciones, func(m *models.Moderacion) bool { return m.DenunciaID == d.ID })
			}
			res = Result{Data: cloneAll(doomed, (*models.Denuncia).Clone)}
		}
	case models.TableComentarios:
		var doomed []*models.Comentario
		if doomed, err = match(s.Comentarios, comentarioColumns, q.Table, q.Filters, nil); err == nil {
			s.Comentarios = without(s.Comentarios, doomed)
			for _, c := range doomed {
				s.Recount(c.DenunciaID)
			}
			res = Result{Data: cloneAll(doomed, (*models.Comentario).Clone)}
		}
	case models.TableLikes:
		var doomed []*models.Like
		if doomed, err = match(s.Likes, likeColumns, q.Table, q.Filters, nil); err == nil {
			s.Likes = without(s.Likes, doomed)
			for _, l := range doomed {
				s.Recount(l.DenunciaID)
			}
			res = Result{Data: cloneAll(doomed, (*models.Like).Clone)}
		}
	case models.TableModeraciones:
		var doomed []*models.Moderacion
		if doomed, err = match(s.Moderaciones, moderacionColumns, q.Table, q.Filters, nil); err == nil {
			s.Moderaciones = without(s.Moderaciones, doomed)
			res = Result{Data: cloneAll(doomed, (*models.Moderacion).Clone)}
		}
	default:
		err = models.NewInvalidRequestError("table %q does not support delete", q.Table)
	}

	if err != nil {
		logger.LogError(ctx, err, "delete")
		return Result{}, err
	}
	logger.LogDelete(ctx, map[string]interface{}{"rows": rowCount(res.Data)})
	return res, nil
}

func without[T any](rows []*T, doomed []*T) []*T {
	if len(doomed) == 0 {
		return rows
	}
	gone := make(map[*T]bool, len(doomed))
	for _, d := range doomed {
		gone[d] = true
	}
	return dropWhere(rows, func(r *T) bool { return gone[r] })
}

func dropWhere[T any](rows []*T, drop func(*T) bool) []*T {
	kept := make([]*T, 0, len(rows))
	for _, r := range rows {
		if !drop(r) {
			kept = append(kept, r)
		}
	}
	return kept
}

func cloneAll[T any, V any](rows []*T, clone func(*T) V) []V {
	out := make([]V, 0, len(rows))
	for _, r := range rows {
		out = append(out, clone(r))
	}
	return out
}
