// Package cache republishes derived read views to client-side caches after
// state changes, so consumers never re-query for data they just changed.
package cache

import (
	"context"
	"strings"

	"denuncias/internal/models"
)

// Key identifies a cached view, e.g. ["denuncias", "detail", "denuncia-1"].
type Key []string

func (k Key) String() string {
	return strings.Join(k, ":")
}

func ListKey() Key {
	return Key{"denuncias", "list"}
}

func DetailKey(denunciaID string) Key {
	return Key{"denuncias", "detail", denunciaID}
}

func ComentariosKey(denunciaID string) Key {
	return Key{"comentarios", "byDenuncia", denunciaID}
}

func LikesKey(denunciaID string) Key {
	return Key{"likes", "byDenuncia", denunciaID}
}

func LikesByUserKey(userID string) Key {
	return Key{"likes", "byUser", userID}
}

// Views is a snapshot of every derived view. ByUser is only filled for a
// signed-in caller.
type Views struct {
	List        []models.Denuncia
	Comentarios map[string][]models.ComentarioWithAuthor
	Likes       map[string][]models.Like
	UserID      string
	ByUser      []models.Like
}

// Entry is one key/value pair of a snapshot.
type Entry struct {
	Key   Key
	Value any
}

// Entries flattens the snapshot in a stable order: list, then per report
// detail, comments and likes, then the caller's likes.
func (v Views) Entries() []Entry {
	entries := make([]Entry, 0, 1+3*len(v.List)+1)
	entries = append(entries, Entry{Key: ListKey(), Value: v.List})
	for _, d := range v.List {
		comentarios := v.Comentarios[d.ID]
		if comentarios == nil {
			comentarios = []models.ComentarioWithAuthor{}
		}
		likes := v.Likes[d.ID]
		if likes == nil {
			likes = []models.Like{}
		}
		entries = append(entries,
			Entry{Key: DetailKey(d.ID), Value: d},
			Entry{Key: ComentariosKey(d.ID), Value: comentarios},
			Entry{Key: LikesKey(d.ID), Value: likes},
		)
	}
	if v.UserID != "" {
		byUser := v.ByUser
		if byUser == nil {
			byUser = []models.Like{}
		}
		entries = append(entries, Entry{Key: LikesByUserKey(v.UserID), Value: byUser})
	}
	return entries
}

// Observer receives every snapshot after a state change.
type Observer interface {
	Publish(ctx context.Context, views Views) error
}

// Observers fans a snapshot out to several observers, returning the first error.
type Observers []Observer

func (o Observers) Publish(ctx context.Context, views Views) error {
	var first error
	for _, obs := range o {
		if err := obs.Publish(ctx, views); err != nil && first == nil {
			first = err
		}
	}
	return first
}
