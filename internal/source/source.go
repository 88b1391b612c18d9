package source

import (
	"errors"
	"fmt"
	"strings"
)

// Scope is the level a single request target is fetched at.
type Scope string

const (
	ScopeProject  Scope = "project"
	ScopeGroup    Scope = "group"
	ScopePersonal Scope = "personal"
)

// Issue level names accepted in settings.
const (
	LevelProject  = "project"
	LevelGroup    = "group"
	LevelPersonal = "personal"
	LevelCustom   = "custom"
)

// ErrInvalidSourceSpec indicates a malformed custom-scope target list.
var ErrInvalidSourceSpec = errors.New("invalid source spec")

// RequestTarget is one resolved remote-fetch unit. Targets are built fresh
// per synchronization run and never cached across runs.
type RequestTarget struct {
	Scope  Scope
	ID     string
	Filter string
}

// Resolve builds the ordered list of request targets for the configured
// issue level.
//
// For the project and group levels, targets holds the single identifier.
// For the personal level, targets is ignored. For the custom level,
// targets is a comma-separated list of "P:id" and "G:id" entries
// (case-insensitive prefixes), resolved in input order.
func Resolve(level, targets, filter string) ([]RequestTarget, error) {
	switch level {
	case LevelProject:
		return []RequestTarget{{Scope: ScopeProject, ID: strings.TrimSpace(targets), Filter: filter}}, nil
	case LevelGroup:
		return []RequestTarget{{Scope: ScopeGroup, ID: strings.TrimSpace(targets), Filter: filter}}, nil
	case LevelPersonal:
		return []RequestTarget{{Scope: ScopePersonal, Filter: filter}}, nil
	case LevelCustom:
		return resolveCustom(targets, filter)
	default:
		return nil, fmt.Errorf("%w: unknown issues level %q", ErrInvalidSourceSpec, level)
	}
}

// resolveCustom parses a "P:123, G:45" style list into one target per
// entry, preserving input order.
func resolveCustom(spec, filter string) ([]RequestTarget, error) {
	entries := strings.Split(spec, ",")
	out := make([]RequestTarget, 0, len(entries))
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		prefix, id, found := strings.Cut(entry, ":")
		if !found {
			return nil, fmt.Errorf("%w: entry %q has no type prefix", ErrInvalidSourceSpec, entry)
		}
		var scope Scope
		switch strings.ToUpper(strings.TrimSpace(prefix)) {
		case "P":
			scope = ScopeProject
		case "G":
			scope = ScopeGroup
		default:
			return nil, fmt.Errorf("%w: unknown type prefix %q in entry %q", ErrInvalidSourceSpec, prefix, entry)
		}
		out = append(out, RequestTarget{Scope: scope, ID: strings.TrimSpace(id), Filter: filter})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no targets in %q", ErrInvalidSourceSpec, spec)
	}
	return out, nil
}
