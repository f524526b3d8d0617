package commands

import (
	"fmt"
	"strings"

	"github.com/safatanc/hypergiga-core/internal/app/models"
)

// Catalog builds the commands of one category. The registry is passed so
// directory commands such as /help can read it at run time.
type Catalog func(r *Registry, deps *Deps) []Command

// DefaultCatalogs is the built-in command set in load order.
func DefaultCatalogs() []Catalog {
	return []Catalog{
		CoreCommands,
		MediaCommands,
		AICommands,
		StickerCommands,
		UtilityCommands,
		GameCommands,
		AdminCommands,
	}
}

// Registry maps command names and aliases to commands. It is filled once by
// NewRegistry and read-only afterwards, so lookups take no lock.
type Registry struct {
	byName  map[string]*Command
	ordered []*Command
	sealed  bool
}

func NewRegistry(deps *Deps, catalogs ...Catalog) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Command)}
	for _, catalog := range catalogs {
		for _, cmd := range catalog(r, deps) {
			if err := r.Register(cmd.CommandMetadata, cmd.Handler); err != nil {
				return nil, err
			}
		}
	}
	r.sealed = true
	return r, nil
}

// Register adds a command under its name and every alias. Any name already
// taken is an error.
func (r *Registry) Register(meta models.CommandMetadata, handler Handler) error {
	if r.sealed {
		return fmt.Errorf("register %q: registry is sealed", meta.Name)
	}
	if meta.Name == "" || handler == nil {
		return fmt.Errorf("register %q: name and handler are required", meta.Name)
	}
	if !meta.Category.Valid() {
		return fmt.Errorf("register %q: unknown category %q", meta.Name, meta.Category)
	}
	if len(meta.Roles) == 0 {
		meta.Roles = models.AllRoles
	}

	keys := append([]string{meta.Name}, meta.Aliases...)
	for i, key := range keys {
		key = strings.ToLower(key)
		keys[i] = key
		if existing, ok := r.byName[key]; ok {
			return fmt.Errorf("register %q: %q is already taken by /%s", meta.Name, key, existing.Name)
		}
		for _, earlier := range keys[:i] {
			if earlier == key {
				return fmt.Errorf("register %q: %q listed twice", meta.Name, key)
			}
		}
	}

	cmd := &Command{CommandMetadata: meta, Handler: handler}
	for _, key := range keys {
		r.byName[key] = cmd
	}
	r.ordered = append(r.ordered, cmd)
	return nil
}

func (r *Registry) Get(name string) (*Command, bool) {
	cmd, ok := r.byName[strings.ToLower(name)]
	return cmd, ok
}

// GetByCategory lists the visible commands of category in registration order.
func (r *Registry) GetByCategory(category models.CommandCategory) []models.CommandMetadata {
	var out []models.CommandMetadata
	for _, cmd := range r.ordered {
		if cmd.Category == category && !cmd.Hidden {
			out = append(out, cmd.CommandMetadata)
		}
	}
	return out
}

// GetCategories lists categories with at least one visible command.
func (r *Registry) GetCategories() []models.CommandCategory {
	seen := make(map[models.CommandCategory]bool)
	var out []models.CommandCategory
	for _, cmd := range r.ordered {
		if cmd.Hidden || seen[cmd.Category] {
			continue
		}
		seen[cmd.Category] = true
		out = append(out, cmd.Category)
	}
	return out
}

func (r *Registry) All() []models.CommandMetadata {
	out := make([]models.CommandMetadata, 0, len(r.ordered))
	for _, cmd := range r.ordered {
		out = append(out, cmd.CommandMetadata)
	}
	return out
}
