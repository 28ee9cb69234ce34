// Package ruleset loads the static rule tables used by character creation.
package ruleset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// characteristics lists the keys a race may modify.
var characteristics = map[string]bool{
	"strength": true, "stamina": true, "intellect": true,
	"insight": true, "dexterity": true, "awareness": true,
}

// StartingSkill is a skill a new character of a race begins with.
type StartingSkill struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

// Race is a playable race.
//
// Precondition: ID and Name must be non-empty after loading.
type Race struct {
	ID               string             `yaml:"id"`
	Name             string             `yaml:"name"`
	Description      string             `yaml:"description"`
	Modifiers        map[string]float64 `yaml:"modifiers"`
	MinStrength      float64            `yaml:"min_strength"`
	NaturalArmor     int                `yaml:"natural_armor"`
	StartingSkills   []StartingSkill    `yaml:"starting_skills"`
	SpecialAbilities []string           `yaml:"special_abilities"`
}

// Validate checks the race for loader errors.
func (r *Race) Validate() error {
	var errs []error
	if r.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if r.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	for k := range r.Modifiers {
		if !characteristics[k] {
			errs = append(errs, fmt.Errorf("unknown characteristic %q", k))
		}
	}
	for _, s := range r.StartingSkills {
		if s.Name == "" || s.Level < 1 {
			errs = append(errs, fmt.Errorf("starting skill %q must have a name and level >= 1", s.Name))
		}
	}
	if r.NaturalArmor < 0 {
		errs = append(errs, errors.New("natural_armor must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("race %q: %w", r.ID, errors.Join(errs...))
	}
	return nil
}

// LoadRaces reads every .yaml file in dir as a Race, sorted by ID.
func LoadRaces(dir string) ([]*Race, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	races := make([]*Race, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var r Race
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("parsing race file %s: %w", path, err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("race %q defined in both %s and %s", r.ID, prev, path)
		}
		seen[r.ID] = path
		races = append(races, &r)
	}
	sort.Slice(races, func(i, j int) bool { return races[i].ID < races[j].ID })
	return races, nil
}

// Find returns the race whose ID or name matches key, case-insensitively.
func Find(races []*Race, key string) (*Race, bool) {
	for _, r := range races {
		if strings.EqualFold(r.ID, key) || strings.EqualFold(r.Name, key) {
			return r, true
		}
	}
	return nil, false
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
