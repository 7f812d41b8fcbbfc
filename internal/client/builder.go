package client

import (
	"context"
	"encoding/json"
	"sync"

	"denuncias/internal/dispatch"
	"denuncias/internal/models"
	"denuncias/internal/query"
)

// Builder accumulates one request. Nothing is sent until Execute, and Execute
// sends at most once: later calls return the settled response.
type Builder struct {
	client *Client
	table  models.Table
	op     dispatch.Operation

	filters     []query.Filter
	order       *query.Order
	columns     string
	options     dispatch.Options
	values      any
	single      bool
	maybeSingle bool
	misuse      *models.AppError

	once sync.Once
	resp dispatch.Response
}

// Select reads columns ("*" when empty). A "users(" projection on comments
// inlines the author's name.
func (b *Builder) Select(columns string, opts ...dispatch.Options) *Builder {
	b.setOp(dispatch.OpSelect)
	if columns == "" {
		columns = "*"
	}
	b.columns = columns
	for _, o := range opts {
		b.options = o
	}
	return b
}

// Insert stores one draft or a slice of drafts. values may be typed drafts or maps.
func (b *Builder) Insert(values any) *Builder {
	b.setOp(dispatch.OpInsert)
	b.values = values
	return b
}

// Update patches the filtered rows with values.
func (b *Builder) Update(values any) *Builder {
	b.setOp(dispatch.OpUpdate)
	b.values = values
	return b
}

// Delete removes the filtered rows.
func (b *Builder) Delete() *Builder {
	b.setOp(dispatch.OpDelete)
	return b
}

func (b *Builder) setOp(op dispatch.Operation) {
	if b.op != "" && b.op != op && b.misuse == nil {
		b.misuse = models.NewInvalidRequestError("%s() cannot follow %s()", op, b.op)
	}
	b.op = op
}

// Eq adds an equality filter.
func (b *Builder) Eq(column string, value any) *Builder {
	b.filters = append(b.filters, query.Eq(column, value))
	return b
}

// In adds a set-membership filter.
func (b *Builder) In(column string, values ...any) *Builder {
	b.filters = append(b.filters, query.In(column, values...))
	return b
}

// Order sorts by column.
func (b *Builder) Order(column string, ascending bool) *Builder {
	b.order = &query.Order{Column: column, Ascending: ascending}
	return b
}

// Single expects exactly one row.
func (b *Builder) Single() *Builder {
	b.cardinality("single")
	b.single = true
	return b
}

// MaybeSingle expects at most one row.
func (b *Builder) MaybeSingle() *Builder {
	b.cardinality("maybeSingle")
	b.maybeSingle = true
	return b
}

func (b *Builder) cardinality(name string) {
	if b.op != dispatch.OpSelect && b.misuse == nil {
		b.misuse = models.NewInvalidRequestError("%s() can only be used after select()", name)
	}
}

// Request returns the request Execute would send.
func (b *Builder) Request() (dispatch.Request, error) {
	if b.misuse != nil {
		return dispatch.Request{}, b.misuse
	}
	if b.op == "" {
		return dispatch.Request{}, models.NewInvalidRequestError("no operation specified")
	}
	req := dispatch.Request{
		Operation:   b.op,
		Table:       b.table,
		Filters:     b.filters,
		Order:       b.order,
		Columns:     b.columns,
		Single:      b.single,
		MaybeSingle: b.maybeSingle,
		Options:     b.options,
	}
	if b.values != nil {
		raw, err := json.Marshal(b.values)
		if err != nil {
			return dispatch.Request{}, models.NewInvalidRequestError("encode values: %v", err)
		}
		req.Values = raw
	}
	return req, nil
}

// Execute sends the request once and returns its response. Successful
// mutations republish the derived views.
func (b *Builder) Execute(ctx context.Context) dispatch.Response {
	b.once.Do(func() {
		req, err := b.Request()
		if err != nil {
			b.resp = failed(err)
			return
		}
		b.resp = b.client.dispatcher.Dispatch(ctx, b.client.token(), req)
		if b.resp.OK() && req.Operation != dispatch.OpSelect {
			b.client.resync(ctx)
		}
	})
	return b.resp
}
