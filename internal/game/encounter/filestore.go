package encounter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cory-johannsen/forge/internal/game/character"
)

// ErrCharacterNotFound is returned by FileStore when no file matches a name.
var ErrCharacterNotFound = errors.New("encounter: character not found")

// FileStore keeps characters as YAML files named after the lower-cased
// character name, e.g. brokk.yaml. It serves when no database is configured.
type FileStore struct {
	Dir string
}

func (s FileStore) path(name string) string {
	return filepath.Join(s.Dir, strings.ToLower(strings.ReplaceAll(name, " ", "_"))+".yaml")
}

// GetByName implements CharacterStore.
func (s FileStore) GetByName(_ context.Context, name string) (*character.Character, error) {
	p := s.path(name)
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCharacterNotFound, name)
	}
	return character.LoadFile(p)
}

// SaveProgress implements CharacterStore.
func (s FileStore) SaveProgress(_ context.Context, c *character.Character) error {
	return c.SaveFile(s.path(c.Name))
}

// ErrCharacterExists is returned by FileStore.Create when the name is taken.
var ErrCharacterExists = errors.New("encounter: character already exists")

// Create writes a new character file, refusing to overwrite an existing one.
func (s FileStore) Create(_ context.Context, c *character.Character) (*character.Character, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating character dir: %w", err)
	}
	p := s.path(c.Name)
	if _, err := os.Stat(p); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCharacterExists, c.Name)
	}
	if err := c.SaveFile(p); err != nil {
		return nil, err
	}
	return c, nil
}
