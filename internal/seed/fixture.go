// Package seed provides the deterministic fixture the store resets to and
// factories that build realistic drafts for tests and demos.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"denuncias/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed fixture.yaml
var defaultFixture []byte

// Fixture is a full table image. Passwords are already hashed.
type Fixture struct {
	Users        []models.User
	Denuncias    []models.Denuncia
	Comentarios  []models.Comentario
	Likes        []models.Like
	Moderaciones []models.Moderacion
}

type fixtureUser struct {
	models.User `yaml:",inline"`
	Password    string `yaml:"password"`
}

type fixtureFile struct {
	Users        []fixtureUser       `yaml:"users"`
	Denuncias    []models.Denuncia   `yaml:"denuncias"`
	Comentarios  []models.Comentario `yaml:"comentarios"`
	Likes        []models.Like       `yaml:"likes"`
	Moderaciones []models.Moderacion `yaml:"moderaciones"`
}

// Default parses the embedded fixture, hashing passwords at the given bcrypt cost.
func Default(cost int) (*Fixture, error) {
	return Parse(defaultFixture, cost)
}

// LoadFile parses a fixture from path. An empty path yields the embedded fixture.
func LoadFile(path string, cost int) (*Fixture, error) {
	if path == "" {
		return Default(cost)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data, cost)
}

// Parse decodes fixture YAML and hashes every password once, so resets reuse the hashes.
func Parse(data []byte, cost int) (*Fixture, error) {
	var raw fixtureFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	f := &Fixture{
		Denuncias:    raw.Denuncias,
		Comentarios:  raw.Comentarios,
		Likes:        raw.Likes,
		Moderaciones: raw.Moderaciones,
	}
	for _, u := range raw.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", u.ID, err)
		}
		user := u.User
		user.PasswordHash = string(hash)
		if user.Role == "" {
			user.Role = models.RoleUser
		}
		f.Users = append(f.Users, user)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the referential invariants the store relies on.
func (f *Fixture) Validate() error {
	users := make(map[string]bool, len(f.Users))
	for _, u := range f.Users {
		if users[u.ID] {
			return fmt.Errorf("seed: duplicate user %q", u.ID)
		}
		users[u.ID] = true
	}
	reports := make(map[string]bool, len(f.Denuncias))
	for _, d := range f.Denuncias {
		if !users[d.UserID] {
			return fmt.Errorf("seed: denuncia %q references unknown user %q", d.ID, d.UserID)
		}
		if !d.Estado.Valid() {
			return fmt.Errorf("seed: denuncia %q has unknown estado %q", d.ID, d.Estado)
		}
		reports[d.ID] = true
	}
	for _, c := range f.Comentarios {
		if !reports[c.DenunciaID] || !users[c.UserID] {
			return fmt.Errorf("seed: comentario %q has a dangling reference", c.ID)
		}
	}
	for _, l := range f.Likes {
		if !reports[l.DenunciaID] || !users[l.UserID] {
			return fmt.Errorf("seed: like %q has a dangling reference", l.ID)
		}
	}
	for _, m := range f.Moderaciones {
		if !reports[m.DenunciaID] || !users[m.AdminID] {
			return fmt.Errorf("seed: moderacion %q has a dangling reference", m.ID)
		}
	}
	return nil
}
