package query

import "denuncias/internal/models"

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

var denunciaColumns = columns[models.Denuncia]{
	"id":                func(d *models.Denuncia) any { return d.ID },
	"user_id":           func(d *models.Denuncia) any { return d.UserID },
	"nombre_asociado":   func(d *models.Denuncia) any { return d.NombreAsociado },
	"mail_asociado":     func(d *models.Denuncia) any { return optional(d.MailAsociado) },
	"descripcion":       func(d *models.Denuncia) any { return d.Descripcion },
	"estado":            func(d *models.Denuncia) any { return string(d.Estado) },
	"likes_count":       func(d *models.Denuncia) any { return d.LikesCount },
	"comentarios_count": func(d *models.Denuncia) any { return d.ComentariosCount },
	"created_at":        func(d *models.Denuncia) any { return d.CreatedAt },
	"updated_at":        func(d *models.Denuncia) any { return d.UpdatedAt },
}

var comentarioColumns = columns[models.Comentario]{
	"id":          func(c *models.Comentario) any { return c.ID },
	"denuncia_id": func(c *models.Comentario) any { return c.DenunciaID },
	"user_id":     func(c *models.Comentario) any { return c.UserID },
	"contenido":   func(c *models.Comentario) any { return c.Contenido },
	"created_at":  func(c *models.Comentario) any { return c.CreatedAt },
}

var likeColumns = columns[models.Like]{
	"id":          func(l *models.Like) any { return l.ID },
	"denuncia_id": func(l *models.Like) any { return l.DenunciaID },
	"user_id":     func(l *models.Like) any { return l.UserID },
	"created_at":  func(l *models.Like) any { return l.CreatedAt },
}

var moderacionColumns = columns[models.Moderacion]{
	"id":          func(m *models.Moderacion) any { return m.ID },
	"denuncia_id": func(m *models.Moderacion) any { return m.DenunciaID },
	"admin_id":    func(m *models.Moderacion) any { return m.AdminID },
	"accion":      func(m *models.Moderacion) any { return string(m.Accion) },
	"comentario":  func(m *models.Moderacion) any { return optional(m.Comentario) },
	"fecha":       func(m *models.Moderacion) any { return m.Fecha },
}

// Password hashes are not queryable.
var userColumns = columns[models.User]{
	"id":         func(u *models.User) any { return u.ID },
	"email":      func(u *models.User) any { return u.Email },
	"name":       func(u *models.User) any { return u.Name },
	"role":       func(u *models.User) any { return string(u.Role) },
	"rut":        func(u *models.User) any { return optional(u.Rut) },
	"created_at": func(u *models.User) any { return u.CreatedAt },
}
