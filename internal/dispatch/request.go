package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"denuncias/internal/models"
	"denuncias/internal/query"
)

// Operation is the request tag.
type Operation string

const (
	OpSelect Operation = "select"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

func (o Operation) valid() bool {
	switch o {
	case OpSelect, OpInsert, OpUpdate, OpDelete:
		return true
	}
	return false
}

// Options carries select modifiers.
type Options struct {
	Count query.CountOption `json:"count,omitempty"`
}

// Request is one call into the engine. Values holds a draft object or array
// for inserts and a patch object for updates.
type Request struct {
	Operation   Operation       `json:"operation"`
	Table       models.Table    `json:"table"`
	Filters     []query.Filter  `json:"filters,omitempty"`
	Order       *query.Order    `json:"order,omitempty"`
	Columns     string          `json:"columns,omitempty"`
	Values      json.RawMessage `json:"values,omitempty"`
	Single      bool            `json:"single,omitempty"`
	MaybeSingle bool            `json:"maybeSingle,omitempty"`
	Options     Options         `json:"options,omitzero"`
}

// Response is the envelope every request resolves to. Exactly one of Data
// and Error is meaningful; Status is the conceptual transport status.
type Response struct {
	Data   any               `json:"data"`
	Error  *models.ErrorBody `json:"error"`
	Count  *int              `json:"count,omitempty"`
	Status int               `json:"-"`
}

// OK reports whether the response carries no error.
func (r Response) OK() bool {
	return r.Error == nil
}

func success(res query.Result) Response {
	return Response{Data: res.Data, Count: res.Count, Status: http.StatusOK}
}

func failure(err error) Response {
	appErr := models.AsAppError(err)
	return Response{Error: appErr.Body(), Status: appErr.Status()}
}

// strictDecode decodes raw into dest, rejecting unknown fields and trailing data.
func strictDecode(raw []byte, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after values")
	}
	return nil
}

// decodeDrafts accepts one draft object or a non-empty array of them.
func decodeDrafts[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, models.NewInvalidRequestError("insert requires values")
	}
	var drafts []T
	if trimmed[0] == '[' {
		if err := strictDecode(trimmed, &drafts); err != nil {
			return nil, models.NewInvalidRequestError("invalid values: %v", err)
		}
	} else {
		var one T
		if err := strictDecode(trimmed, &one); err != nil {
			return nil, models.NewInvalidRequestError("invalid values: %v", err)
		}
		drafts = []T{one}
	}
	if len(drafts) == 0 {
		return nil, models.NewInvalidRequestError("insert requires at least one row")
	}
	return drafts, nil
}

// decodeInsert returns the typed drafts for table. The users table has no
// draft shape and yields nil, which the policy rejects.
func decodeInsert(table models.Table, raw json.RawMessage) (any, error) {
	switch table {
	case models.TableDenuncias:
		return decodeDrafts[models.DenunciaDraft](raw)
	case models.TableComentarios:
		return decodeDrafts[models.ComentarioDraft](raw)
	case models.TableLikes:
		return decodeDrafts[models.LikeDraft](raw)
	case models.TableModeraciones:
		return decodeDrafts[models.ModeracionDraft](raw)
	case models.TableUsers:
		return nil, nil
	}
	return nil, models.NewInvalidRequestError("unknown table %q", table)
}

// decodePatch returns the typed patch for table. Only reports are patchable;
// other tables yield nil, which the policy rejects.
func decodePatch(table models.Table, raw json.RawMessage) (any, error) {
	if !table.Valid() {
		return nil, models.NewInvalidRequestError("unknown table %q", table)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, models.NewInvalidRequestError("update requires an object of values")
	}
	if table != models.TableDenuncias {
		return nil, nil
	}
	var patch models.DenunciaPatch
	if err := strictDecode(trimmed, &patch); err != nil {
		return nil, models.NewInvalidRequestError("invalid values: %v", err)
	}
	return patch, nil
}

// DecodeRequest parses a wire request. Unknown keys are rejected and numbers
// keep their literal form until a filter compares them.
func DecodeRequest(raw []byte) (Request, error) {
	var req Request
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return Request{}, models.NewInvalidRequestError("invalid request body: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Request{}, models.NewInvalidRequestError("invalid request body: unexpected trailing data")
	}
	return req, nil
}
