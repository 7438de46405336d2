// ABOUTME: Thread-safe registry mapping tool names to tool variants.
// ABOUTME: Enforces global name uniqueness and path-placeholder coverage at registration.

package tools

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"sync"
)

// ErrToolNotFound indicates the named tool is not registered.
var ErrToolNotFound = errors.New("tool not found")

// ErrToolCollision indicates a tool with the same name is already registered.
var ErrToolCollision = errors.New("tool name collision")

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Registry is the shared name -> Tool lookup table.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
}

// Register adds a tool. It fails on a name collision, and for HTTP tools it
// verifies every {placeholder} in the path template is covered by exactly
// one path-bound parameter, so a registry/argument mismatch is caught at
// startup rather than mid-call.
func (r *Registry) Register(t Tool) error {
	def := t.Def()
	if def.Name == "" {
		return fmt.Errorf("tool name is required")
	}

	if ht, ok := t.(HTTPTool); ok {
		if err := checkPlaceholders(ht.Definition); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolCollision, def.Name)
	}
	r.tools[def.Name] = t
	r.logger.Debug("tool registered", "tool_name", def.Name)
	return nil
}

// RegisterAll registers every tool, failing on the first error.
func (r *Registry) RegisterAll(ts []Tool) error {
	for _, t := range ts {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return t, nil
}

// List returns all registered tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Def().Name < out[j].Def().Name })
	return out
}

// checkPlaceholders verifies path placeholders and path-bound parameters
// match one to one.
func checkPlaceholders(def Definition) error {
	placeholders := map[string]bool{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(def.PathTemplate, -1) {
		placeholders[m[1]] = true
	}

	bound := map[string]bool{}
	for _, p := range def.Params {
		if p.In != InPath {
			continue
		}
		if bound[p.Name] {
			return fmt.Errorf("tool %s: duplicate path parameter %q", def.Name, p.Name)
		}
		bound[p.Name] = true
		if !placeholders[p.Name] {
			return fmt.Errorf("tool %s: path parameter %q has no {%s} placeholder", def.Name, p.Name, p.Name)
		}
	}

	for name := range placeholders {
		if !bound[name] {
			return fmt.Errorf("tool %s: placeholder {%s} has no path-bound parameter", def.Name, name)
		}
	}
	return nil
}
