package config

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/ggoodman/mcp-stdio-server/mcpservice"
	"github.com/ggoodman/mcp-stdio-server/storage"
)

// ModuleDeps is what a module factory may draw on.
type ModuleDeps struct {
	Store     storage.Storage
	Namespace string
	Now       func() time.Time
}

// ModuleFactory builds the components of a named module.
type ModuleFactory func(deps ModuleDeps) ([]mcpservice.Component, error)

// ModuleRegistry resolves module names listed in a manifest.
type ModuleRegistry struct {
	factories map[string]ModuleFactory
}

// NewModuleRegistry returns an empty registry.
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{factories: make(map[string]ModuleFactory)}
}

// DefaultModules returns a registry holding the built-in modules: echo,
// store and clock.
func DefaultModules() *ModuleRegistry {
	r := NewModuleRegistry()
	r.Register("echo", echoModule)
	r.Register("store", storeModule)
	r.Register("clock", clockModule)
	return r
}

// Register adds or replaces a module factory.
func (r *ModuleRegistry) Register(name string, f ModuleFactory) {
	r.factories[name] = f
}

// Lookup returns the factory registered under name. A nil registry holds
// no modules.
func (r *ModuleRegistry) Lookup(name string) (ModuleFactory, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered module names in lexical order.
func (r *ModuleRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

type echoArgs struct {
	Text string `json:"text" jsonschema:"description=Text to echo back"`
}

func echoModule(ModuleDeps) ([]mcpservice.Component, error) {
	echo := mcpservice.NewTypedTool("echo", func(_ context.Context, a echoArgs) (any, error) {
		return a.Text, nil
	}, mcpservice.WithToolDescription("Echo the input text"), mcpservice.WithToolReturnType(mcpservice.ReturnText))
	return []mcpservice.Component{echo}, nil
}

func storeModule(deps ModuleDeps) ([]mcpservice.Component, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("store module requires a store")
	}
	tools := mcpservice.StoreTools(deps.Store, deps.Namespace)
	out := make([]mcpservice.Component, 0, len(tools))
	for _, t := range tools {
		out = append(out, t)
	}
	return out, nil
}

type nowArgs struct {
	Timezone string `json:"timezone,omitempty" jsonschema:"description=IANA time zone name,default=UTC"`
}

func clockModule(deps ModuleDeps) ([]mcpservice.Component, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	tool := mcpservice.NewTypedTool("now", func(_ context.Context, a nowArgs) (any, error) {
		tz := a.Timezone
		if tz == "" {
			tz = "UTC"
		}
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", mcpservice.ErrInvalidArguments, err)
		}
		return now().In(loc).Format(time.RFC3339), nil
	}, mcpservice.WithToolDescription("Current time in RFC 3339 format"), mcpservice.WithToolReturnType(mcpservice.ReturnText))

	res := mcpservice.Resource{
		URI:         "clock://now",
		Name:        "now",
		Description: "Current time",
		MimeType:    "application/json",
		Provider: func(context.Context, string) (any, error) {
			t := now().UTC()
			return map[string]any{"unix": t.Unix(), "rfc3339": t.Format(time.RFC3339)}, nil
		},
	}
	return []mcpservice.Component{tool, res}, nil
}
