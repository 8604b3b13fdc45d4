// Package tools exposes every store operation as a named, independently
// invocable action with schema-checked JSON arguments. This is the call
// surface an agent runtime consumes; the runtime itself lives elsewhere.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/chandralegend/day-planner-ai/internal/model"
)

// Handler executes an action. The arguments have already passed schema
// validation when a handler runs.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Action is a named operation with a JSON Schema describing its argument
// object.
type Action struct {
	Name        string
	Description string
	Schema      string
	Handler     Handler

	compiled *jsonschema.Schema
}

// Registry holds registered actions.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]*Action
}

func NewRegistry() *Registry {
	return &Registry{actions: map[string]*Action{}}
}

// Register compiles the action's schema and adds it to the registry.
// Returns an error on a duplicate name or an invalid schema.
func (r *Registry) Register(a *Action) error {
	compiler := jsonschema.NewCompiler()
	url := a.Name + ".schema.json"
	if err := compiler.AddResource(url, strings.NewReader(a.Schema)); err != nil {
		return fmt.Errorf("action %s: add schema: %w", a.Name, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("action %s: compile schema: %w", a.Name, err)
	}
	a.compiled = compiled

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[a.Name]; exists {
		return fmt.Errorf("action already registered: %s", a.Name)
	}
	r.actions[a.Name] = a
	return nil
}

// Find looks up an action by name.
func (r *Registry) Find(name string) (*Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[name]
	return a, ok
}

// All returns every action sorted by name.
func (r *Registry) All() []*Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Action, len(names))
	for i, name := range names {
		out[i] = r.actions[name]
	}
	return out
}

// Dispatch validates args against the action's schema and runs its handler.
// An unknown name is a NotFoundError; a schema violation is a
// ValidationError naming the offending field.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (any, error) {
	a, ok := r.Find(name)
	if !ok {
		return nil, model.NotFound("action", name)
	}

	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	var doc any
	if err := json.Unmarshal(args, &doc); err != nil {
		return nil, model.Invalid("arguments", "not valid JSON: %v", err)
	}
	if err := a.compiled.Validate(doc); err != nil {
		return nil, schemaViolation(err)
	}
	return a.Handler(ctx, args)
}

// schemaViolation maps a jsonschema error to the store's ValidationError,
// keeping the deepest cause so the message points at a concrete field.
func schemaViolation(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return model.Invalid("arguments", "%v", err)
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	field := strings.Trim(ve.InstanceLocation, "/")
	if field == "" {
		field = "arguments"
	}
	return model.Invalid(field, "%s", ve.Message)
}
