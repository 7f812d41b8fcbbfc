// Package models contains data structures for the reporting backend's domain models.
package models

// Table names the collections reachable through the dispatcher.
type Table string

const (
	TableDenuncias    Table = "denuncias"
	TableComentarios  Table = "comentarios"
	TableLikes        Table = "likes"
	TableModeraciones Table = "moderaciones"
	TableUsers        Table = "users"
)

// Tables lists every known table in store order.
var Tables = []Table{TableDenuncias, TableComentarios, TableLikes, TableModeraciones, TableUsers}

// Valid reports whether t names a known table.
func (t Table) Valid() bool {
	for _, known := range Tables {
		if t == known {
			return true
		}
	}
	return false
}

// Owned is implemented by rows that belong to a user.
type Owned interface {
	OwnerID() string
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
