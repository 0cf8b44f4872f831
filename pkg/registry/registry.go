// Package registry implements the node catalog: a static mapping from a
// node type string to its executable behavior contract, resolved once at
// startup. Dispatch is an explicit map lookup, never reflection.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/chainreact/chainreact/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

// Entry is the catalog metadata for one registered node type.
type Entry struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	IsTrigger   bool           `json:"is_trigger"`
	Schema      map[string]any `json:"schema,omitempty"`
}

// Registry holds the node catalog.
type Registry struct {
	logger    *slog.Logger
	factories map[string]protocol.ActionFactory
}

// NewRegistry creates an empty catalog.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[string]protocol.ActionFactory),
	}
}

// RegisterAction adds a node type to the catalog. Later registrations for
// the same type replace earlier ones.
func (r *Registry) RegisterAction(factory protocol.ActionFactory) {
	r.factories[factory.ID()] = factory
}

// IsRegistered reports whether the node type exists in the catalog.
func (r *Registry) IsRegistered(nodeType string) bool {
	_, ok := r.factories[nodeType]

	return ok
}

// Create validates the config against the node type's schema and builds an
// action instance. Config validation failures surface before any execution
// is created.
func (r *Registry) Create(nodeType string, config map[string]any) (protocol.Action, error) {
	factory, ok := r.factories[nodeType]
	if !ok {
		return nil, fmt.Errorf("node type %q not registered", nodeType)
	}

	err := r.validateConfig(factory, config)
	if err != nil {
		return nil, err
	}

	return factory.Create(config)
}

// ValidateConfig checks a node config against its type's schema without
// instantiating the action.
func (r *Registry) ValidateConfig(nodeType string, config map[string]any) error {
	factory, ok := r.factories[nodeType]
	if !ok {
		return fmt.Errorf("node type %q not registered", nodeType)
	}

	return r.validateConfig(factory, config)
}

func (r *Registry) validateConfig(factory protocol.ActionFactory, config map[string]any) error {
	schema := factory.Schema()
	if schema == nil {
		return nil
	}

	if config == nil {
		config = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("failed to validate config for node type %q: %w", factory.ID(), err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			details = append(details, resultError.String())
		}

		return fmt.Errorf("invalid config for node type %q: %s", factory.ID(), strings.Join(details, "; "))
	}

	return nil
}

// IsTriggerType reports whether a registered node type is a trigger.
func (r *Registry) IsTriggerType(nodeType string) bool {
	factory, ok := r.factories[nodeType]

	return ok && factory.IsTrigger()
}

// Entries returns catalog metadata for every registered node type, sorted
// by type for stable listings.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, 0, len(r.factories))

	for _, factory := range r.factories {
		entries = append(entries, Entry{
			Type:        factory.ID(),
			Name:        factory.Name(),
			Description: factory.Description(),
			IsTrigger:   factory.IsTrigger(),
			Schema:      factory.Schema(),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Type < entries[j].Type })

	return entries
}
