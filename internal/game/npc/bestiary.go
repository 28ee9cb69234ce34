package npc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/cory-johannsen/forge/internal/game/combat"
)

// Bestiary indexes creature templates and spawns numbered hostiles from
// them. The index is read-only after NewBestiary, so all methods are safe for
// concurrent use without locking.
type Bestiary struct {
	templates map[string]*Template
	counter   atomic.Uint64
}

// NewBestiary indexes templates by lower-cased ID.
//
// Postcondition: Returns an error if two templates share an ID.
func NewBestiary(templates []*Template) (*Bestiary, error) {
	b := &Bestiary{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		key := strings.ToLower(t.ID)
		if _, dup := b.templates[key]; dup {
			return nil, fmt.Errorf("duplicate creature template %q", t.ID)
		}
		b.templates[key] = t
	}
	return b, nil
}

// Get returns the template with the given ID.
func (b *Bestiary) Get(id string) (*Template, bool) {
	t, ok := b.templates[strings.ToLower(id)]
	return t, ok
}

// All returns every template sorted by ID.
func (b *Bestiary) All() []*Template {
	out := make([]*Template, 0, len(b.templates))
	for _, t := range b.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GroupEntry is one line of an encounter group: Count creatures of Template.
type GroupEntry struct {
	Template string
	Count    int
}

// ParseGroup parses "goblin:2,rat" into entries. A missing count means one.
func ParseGroup(spec string) ([]GroupEntry, error) {
	var out []GroupEntry
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, countStr, hasCount := strings.Cut(part, ":")
		count := 1
		if hasCount {
			n, err := strconv.Atoi(strings.TrimSpace(countStr))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid creature count in %q", part)
			}
			count = n
		}
		out = append(out, GroupEntry{Template: strings.TrimSpace(id), Count: count})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("creature group %q is empty", spec)
	}
	return out, nil
}

// SpawnGroup spawns every creature of the group. When a template appears more
// than once in total its spawns are numbered, e.g. "Goblin 1", "Goblin 2".
func (b *Bestiary) SpawnGroup(group []GroupEntry) ([]*combat.Combatant, error) {
	totals := make(map[string]int)
	for _, g := range group {
		if _, ok := b.Get(g.Template); !ok {
			return nil, fmt.Errorf("unknown creature %q", g.Template)
		}
		totals[strings.ToLower(g.Template)] += g.Count
	}
	seen := make(map[string]int)
	var out []*combat.Combatant
	for _, g := range group {
		tmpl, _ := b.Get(g.Template)
		key := strings.ToLower(g.Template)
		for i := 0; i < g.Count; i++ {
			seen[key]++
			name := tmpl.Name
			if totals[key] > 1 {
				name = fmt.Sprintf("%s %d", tmpl.Name, seen[key])
			}
			id := fmt.Sprintf("%s-%d", tmpl.ID, b.counter.Add(1))
			out = append(out, tmpl.Spawn(id, name))
		}
	}
	return out, nil
}
