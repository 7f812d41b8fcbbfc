package models

import "time"

// Estado is the moderation state of a report.
type Estado string

const (
	EstadoActiva     Estado = "activa"
	EstadoEnRevision Estado = "en revisión"
	EstadoResuelta   Estado = "resuelta"
)

// Valid reports whether e is a known state.
func (e Estado) Valid() bool {
	switch e {
	case EstadoActiva, EstadoEnRevision, EstadoResuelta:
		return true
	}
	return false
}

// Denuncia is a user-submitted report. LikesCount and ComentariosCount are
// derived from the likes and comentarios tables and are never written directly.
type Denuncia struct {
	ID               string    `json:"id" yaml:"id"`
	UserID           string    `json:"user_id" yaml:"user_id"`
	NombreAsociado   string    `json:"nombre_asociado" yaml:"nombre_asociado"`
	MailAsociado     *string   `json:"mail_asociado" yaml:"mail_asociado"`
	Descripcion      string    `json:"descripcion" yaml:"descripcion"`
	Estado           Estado    `json:"estado" yaml:"estado"`
	LikesCount       int       `json:"likes_count" yaml:"-"`
	ComentariosCount int       `json:"comentarios_count" yaml:"-"`
	CreatedAt        time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" yaml:"updated_at"`
}

func (d *Denuncia) OwnerID() string { return d.UserID }

// Clone returns a deep copy.
func (d *Denuncia) Clone() Denuncia {
	c := *d
	c.MailAsociado = cloneString(d.MailAsociado)
	return c
}

// DenunciaDraft is the insert shape for a report.
type DenunciaDraft struct {
	ID             string     `json:"id,omitempty"`
	UserID         string     `json:"user_id"`
	NombreAsociado string     `json:"nombre_asociado"`
	MailAsociado   *string    `json:"mail_asociado,omitempty"`
	Descripcion    string     `json:"descripcion"`
	Estado         Estado     `json:"estado,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

func (d DenunciaDraft) OwnerID() string { return d.UserID }

// DenunciaPatch is the update shape for a report. Only supplied fields change.
type DenunciaPatch struct {
	NombreAsociado Field[string]    `json:"nombre_asociado,omitzero"`
	MailAsociado   Field[*string]   `json:"mail_asociado,omitzero"`
	Descripcion    Field[string]    `json:"descripcion,omitzero"`
	Estado         Field[Estado]    `json:"estado,omitzero"`
	UpdatedAt      Field[time.Time] `json:"updated_at,omitzero"`
}

// Changed lists the JSON names of the supplied fields.
func (p DenunciaPatch) Changed() []string {
	var out []string
	if p.NombreAsociado.Set {
		out = append(out, "nombre_asociado")
	}
	if p.MailAsociado.Set {
		out = append(out, "mail_asociado")
	}
	if p.Descripcion.Set {
		out = append(out, "descripcion")
	}
	if p.Estado.Set {
		out = append(out, "estado")
	}
	if p.UpdatedAt.Set {
		out = append(out, "updated_at")
	}
	return out
}

// OnlyEstado reports whether the patch changes the moderation state and nothing else.
func (p DenunciaPatch) OnlyEstado() bool {
	changed := p.Changed()
	return len(changed) == 1 && changed[0] == "estado"
}

// Apply merges the patch into d, refreshing UpdatedAt to now unless supplied.
func (p DenunciaPatch) Apply(d *Denuncia, now time.Time) {
	if p.NombreAsociado.Set {
		d.NombreAsociado = p.NombreAsociado.Value
	}
	if p.MailAsociado.Set {
		d.MailAsociado = cloneString(p.MailAsociado.Value)
	}
	if p.Descripcion.Set {
		d.Descripcion = p.Descripcion.Value
	}
	if p.Estado.Set {
		d.Estado = p.Estado.Value
	}
	if p.UpdatedAt.Set {
		d.UpdatedAt = p.UpdatedAt.Value
	} else {
		d.UpdatedAt = now
	}
}
