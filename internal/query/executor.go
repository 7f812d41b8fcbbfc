// Package query executes filtered selects and mutations against a store and
// keeps the derived report counters in step with likes and comments.
package query

import (
	"context"
	"slices"
	"strings"
	"time"

	"denuncias/internal/models"
	"denuncias/internal/observability"
	"denuncias/internal/store"

	"github.com/google/uuid"
)

// Result is the data half of a response envelope. Data is always a copy.
type Result struct {
	Data  any
	Count *int
}

// SelectQuery describes a read.
type SelectQuery struct {
	Table       models.Table
	Filters     []Filter
	Order       *Order
	Columns     string
	Single      bool
	MaybeSingle bool
	Count       CountOption
}

// wantsAuthor reports whether the projection asks for the comment author.
func (q SelectQuery) wantsAuthor() bool {
	return q.Table == models.TableComentarios &&
		strings.Contains(strings.Join(strings.Fields(q.Columns), ""), "users(")
}

// UpdateQuery merges Patch into every row matched by Filters.
type UpdateQuery struct {
	Table   models.Table
	Filters []Filter
	Patch   any
}

// DeleteQuery removes every row matched by Filters.
type DeleteQuery struct {
	Table   models.Table
	Filters []Filter
}

// Executor runs queries against a store it does not own.
type Executor struct {
	store *store.Store
	now   func() time.Time
	newID func() string
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock overrides the time source used for server-assigned timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithIDGenerator overrides server-assigned ids.
func WithIDGenerator(next func() string) Option {
	return func(e *Executor) { e.newID = next }
}

// NewExecutor returns an executor over s.
func NewExecutor(s *store.Store, opts ...Option) *Executor {
	e := &Executor{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Select filters, orders and projects a table, then applies the cardinality modifier.
func (e *Executor) Select(ctx context.Context, q SelectQuery) (Result, error) {
	if q.Single && q.MaybeSingle {
		return Result{}, models.NewInvalidRequestError("single and maybeSingle are mutually exclusive")
	}
	if q.Count != CountNone && q.Count != CountExact {
		return Result{}, models.NewInvalidRequestError("unsupported count option %q", q.Count)
	}

	var (
		res Result
		err error
	)
	s := e.store
	switch q.Table {
	case models.TableDenuncias:
		res, err = selectFrom(s.Denuncias, denunciaColumns, q, (*models.Denuncia).Clone)
	case models.TableComentarios:
		if q.wantsAuthor() {
			res, err = selectFrom(s.Comentarios, comentarioColumns, q, e.withAuthor)
		} else {
			res, err = selectFrom(s.Comentarios, comentarioColumns, q, (*models.Comentario).Clone)
		}
	case models.TableLikes:
		res, err = selectFrom(s.Likes, likeColumns, q, (*models.Like).Clone)
	case models.TableModeraciones:
		res, err = selectFrom(s.Moderaciones, moderacionColumns, q, (*models.Moderacion).Clone)
	case models.TableUsers:
		res, err = selectFrom(s.Users, userColumns, q, (*models.User).Clone)
	default:
		return Result{}, models.NewInvalidRequestError("unknown table %q", q.Table)
	}

	logger := observability.NewRepoLogger(string(q.Table))
	if err != nil && !models.IsCode(err, models.CodeNotFound) && !models.IsCode(err, models.CodeMultipleRows) {
		logger.LogError(ctx, err, "select")
		return Result{}, err
	}
	logger.LogRead(ctx, map[string]interface{}{"filters": len(q.Filters), "single": q.Single || q.MaybeSingle})
	return res, err
}

func (e *Executor) withAuthor(c *models.Comentario) models.ComentarioWithAuthor {
	name := "Usuario"
	if u := e.store.UserByID(c.UserID); u != nil {
		name = u.Name
	}
	return models.ComentarioWithAuthor{Comentario: c.Clone(), Users: models.Author{Name: name}}
}

func selectFrom[T any, V any](rows []*T, cols columns[T], q SelectQuery, project func(*T) V) (Result, error) {
	matched, err := match(rows, cols, q.Table, q.Filters, q.Order)
	if err != nil {
		return Result{}, err
	}

	out := make([]V, 0, len(matched))
	for _, row := range matched {
		out = append(out, project(row))
	}

	switch {
	case q.Single:
		switch len(out) {
		case 0:
			return Result{}, models.NewNotFoundError()
		case 1:
			return Result{Data: out[0]}, nil
		default:
			return Result{}, models.NewMultipleRowsError()
		}
	case q.MaybeSingle:
		switch len(out) {
		case 0:
			return Result{Data: nil}, nil
		case 1:
			return Result{Data: out[0]}, nil
		default:
			return Result{}, models.NewMultipleRowsError()
		}
	}

	res := Result{Data: out}
	if q.Count == CountExact {
		n := len(out)
		res.Count = &n
	}
	return res, nil
}

// match returns the live rows satisfying every filter, stably sorted when an
// order is given so ties keep insertion order.
func match[T any](rows []*T, cols columns[T], table models.Table, filters []Filter, order *Order) ([]*T, error) {
	if err := cols.validate(table, filters, order); err != nil {
		return nil, err
	}
	matched := make([]*T, 0, len(rows))
	for _, row := range rows {
		if cols.matches(row, filters) {
			matched = append(matched, row)
		}
	}
	if order != nil {
		slices.SortStableFunc(matched, func(a, b *T) int {
			return cols.compareRows(a, b, *order)
		})
	}
	return matched, nil
}

// Targets returns copies of the rows a mutation with filters would touch,
// without touching them. The policy engine uses it for ownership checks.
func (e *Executor) Targets(table models.Table, filters []Filter) ([]models.Owned, error) {
	s := e.store
	switch table {
	case models.TableDenuncias:
		return owned(s.Denuncias, denunciaColumns, table, filters, (*models.Denuncia).Clone)
	case models.TableComentarios:
		return owned(s.Comentarios, comentarioColumns, table, filters, (*models.Comentario).Clone)
	case models.TableLikes:
		return owned(s.Likes, likeColumns, table, filters, (*models.Like).Clone)
	case models.TableModeraciones:
		return owned(s.Moderaciones, moderacionColumns, table, filters, (*models.Moderacion).Clone)
	case models.TableUsers:
		return owned(s.Users, userColumns, table, filters, (*models.User).Clone)
	}
	return nil, models.NewInvalidRequestError("unknown table %q", table)
}

func owned[T any, V any](rows []*T, cols columns[T], table models.Table, filters []Filter, clone func(*T) V) ([]models.Owned, error) {
	matched, err := match(rows, cols, table, filters, nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.Owned, 0, len(matched))
	for _, row := range matched {
		v := clone(row)
		o, ok := any(&v).(models.Owned)
		if !ok {
			return nil, models.NewInvalidRequestError("%q rows have no owner", table)
		}
		out = append(out, o)
	}
	return out, nil
}

// ValidateFilters checks filters against table without reading rows.
func ValidateFilters(table models.Table, filters []Filter, order *Order) error {
	switch table {
	case models.TableDenuncias:
		return denunciaColumns.validate(table, filters, order)
	case models.TableComentarios:
		return comentarioColumns.validate(table, filters, order)
	case models.TableLikes:
		return likeColumns.validate(table, filters, order)
	case models.TableModeraciones:
		return moderacionColumns.validate(table, filters, order)
	case models.TableUsers:
		return userColumns.validate(table, filters, order)
	}
	return models.NewInvalidRequestError("unknown table %q", table)
}
