package models

import "time"

// Accion is a moderation decision taken by an admin.
type Accion string

const (
	AccionAprobada   Accion = "Aprobada"
	AccionEnRevision Accion = "En revisión"
	AccionResuelta   Accion = "Resuelta"
)

var accionEstado = map[Accion]Estado{
	AccionAprobada:   EstadoActiva,
	AccionEnRevision: EstadoEnRevision,
	AccionResuelta:   EstadoResuelta,
}

// EstadoForAccion returns the report state a moderation decision leads to.
func EstadoForAccion(a Accion) (Estado, bool) {
	e, ok := accionEstado[a]
	return e, ok
}

// Moderacion is an audit record of an admin decision on a report.
type Moderacion struct {
	ID         string    `json:"id" yaml:"id"`
	DenunciaID string    `json:"denuncia_id" yaml:"denuncia_id"`
	AdminID    string    `json:"admin_id" yaml:"admin_id"`
	Accion     Accion    `json:"accion" yaml:"accion"`
	Comentario *string   `json:"comentario" yaml:"comentario"`
	Fecha      time.Time `json:"fecha" yaml:"fecha"`
}

func (m *Moderacion) OwnerID() string { return m.AdminID }

// Clone returns a deep copy.
func (m *Moderacion) Clone() Moderacion {
	c := *m
	c.Comentario = cloneString(m.Comentario)
	return c
}

// ModeracionDraft is the insert shape for a moderation action.
// AdminID defaults to the caller when empty.
type ModeracionDraft struct {
	ID         string     `json:"id,omitempty"`
	DenunciaID string     `json:"denuncia_id"`
	AdminID    string     `json:"admin_id,omitempty"`
	Accion     Accion     `json:"accion"`
	Comentario *string    `json:"comentario,omitempty"`
	Fecha      *time.Time `json:"fecha,omitempty"`
}
