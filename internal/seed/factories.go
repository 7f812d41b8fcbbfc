package seed

import (
	"denuncias/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds realistic drafts. It is a thin helper used by tests and demo runs.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory creates a Factory. A fixed seed yields a reproducible sequence.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// Denuncia builds a report draft owned by userID.
func (f *Factory) Denuncia(userID string, overrides ...func(*models.DenunciaDraft)) models.DenunciaDraft {
	draft := models.DenunciaDraft{
		UserID:         userID,
		NombreAsociado: f.faker.Company(),
		Descripcion:    f.faker.Paragraph(1, 2, 12, " "),
	}
	if f.faker.Bool() {
		mail := f.faker.Email()
		draft.MailAsociado = &mail
	}
	for _, override := range overrides {
		override(&draft)
	}
	return draft
}

// Comentario builds a comment draft by userID on denunciaID.
func (f *Factory) Comentario(denunciaID, userID string) models.ComentarioDraft {
	return models.ComentarioDraft{
		DenunciaID: denunciaID,
		UserID:     userID,
		Contenido:  f.faker.Sentence(8),
	}
}

// Like builds a like draft by userID on denunciaID.
func (f *Factory) Like(denunciaID, userID string) models.LikeDraft {
	return models.LikeDraft{DenunciaID: denunciaID, UserID: userID}
}

// Moderacion builds a moderation draft with a random decision.
func (f *Factory) Moderacion(denunciaID string) models.ModeracionDraft {
	accion := models.Accion(f.faker.RandomString([]string{
		string(models.AccionAprobada),
		string(models.AccionEnRevision),
		string(models.AccionResuelta),
	}))
	note := f.faker.Sentence(5)
	return models.ModeracionDraft{DenunciaID: denunciaID, Accion: accion, Comentario: &note}
}

// Pick returns one of ids at random.
func (f *Factory) Pick(ids []string) string {
	return ids[f.faker.IntRange(0, len(ids)-1)]
}

// Chance returns true with probability p.
func (f *Factory) Chance(p float64) bool {
	return f.faker.Float64Range(0, 1) < p
}
