package config

import (
	"fmt"
	"time"

	"github.com/ggoodman/mcp-stdio-server/mcp"
	"github.com/ggoodman/mcp-stdio-server/mcpservice"
)

// DefaultManifest is used when no manifest is configured: the built-in
// modules under the given server identity.
func DefaultManifest(name, version string) *Manifest {
	return &Manifest{
		Server:  ServerSection{Name: name, Version: version},
		Modules: []string{"echo", "store", "clock"},
	}
}

// CapabilityList returns the default capability set merged with the
// manifest's overrides.
func (m *Manifest) CapabilityList() []mcp.Capability {
	var override []mcp.Capability
	c := m.Capabilities
	if c.Resources != nil {
		override = append(override, mcp.ResourceCapability{ListChanged: c.Resources.ListChanged, Subscribe: c.Resources.Subscribe})
	}
	if c.Tools != nil {
		override = append(override, mcp.ToolCapability{ListChanged: c.Tools.ListChanged})
	}
	if c.Prompts != nil {
		override = append(override, mcp.PromptCapability{ListChanged: c.Prompts.ListChanged})
	}
	if c.Logging != nil {
		levels := make([]mcp.LoggingLevel, 0, len(c.Logging.Levels))
		for _, l := range c.Logging.Levels {
			levels = append(levels, mcp.LoggingLevel(l))
		}
		override = append(override, mcp.LoggingCapability{Levels: levels})
	}
	return mcp.MergeCapabilities(mcp.DefaultCapabilities(), override)
}

// Build validates the manifest and assembles a Server from it. Inline
// prompts and resources are registered first, then modules in listed order.
func (m *Manifest) Build(modules *ModuleRegistry, deps ModuleDeps, opts ...mcpservice.ServerOption) (*mcpservice.Server, error) {
	if err := m.Validate(modules); err != nil {
		return nil, err
	}
	if deps.Namespace == "" {
		deps.Namespace = m.Store.Namespace
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	srv := mcpservice.NewServer(mcpservice.Config{
		Name:         m.Server.Name,
		Version:      m.Server.Version,
		Description:  m.Server.Description,
		Instructions: m.Server.Instructions,
		Capabilities: m.CapabilityList(),
	}, opts...)

	for _, p := range m.Prompts {
		srv.Register(m.prompt(p))
	}
	for _, r := range m.Resources {
		srv.Register(m.resource(r))
	}
	for _, name := range m.Modules {
		f, _ := modules.Lookup(name)
		cs, err := f(deps)
		if err != nil {
			return nil, fmt.Errorf("config: module %q: %w", name, err)
		}
		srv.Register(cs...)
	}
	return srv, nil
}

func (m *Manifest) prompt(p PromptSpec) mcpservice.Prompt {
	out := mcpservice.Prompt{Name: p.Name, Description: p.Description}
	for _, a := range p.Arguments {
		out.Arguments = append(out.Arguments, mcp.PromptArgument{Name: a.Name, Description: a.Description, Required: a.Required})
	}
	for _, msg := range p.Messages {
		out.Messages = append(out.Messages, mcp.PromptMessage{Role: mcp.Role(msg.Role), Content: mcp.NewText(msg.Text)})
	}
	return out
}

func (m *Manifest) resource(r ResourceSpec) mcpservice.Resource {
	if r.File != "" {
		opts := []mcpservice.FileResourceOption{mcpservice.WithFileDescription(r.Description)}
		if r.Name != "" {
			opts = append(opts, mcpservice.WithFileName(r.Name))
		}
		if r.MimeType != "" {
			opts = append(opts, mcpservice.WithFileMimeType(r.MimeType))
		}
		return mcpservice.FileResource(r.URI, m.ResolvePath(r.File), opts...)
	}

	mt := r.MimeType
	if mt == "" {
		mt = "text/plain"
	}
	return mcpservice.Resource{
		URI:         r.URI,
		Name:        r.Name,
		Description: r.Description,
		MimeType:    mt,
		Provider:    mcpservice.StaticData(r.Text),
	}
}
