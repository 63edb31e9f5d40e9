package mcpservice

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/ggoodman/mcp-stdio-server/mcp"
)

// Config is the static description of a server advertised during initialize.
type Config struct {
	Name         string
	Version      string
	Description  string
	Capabilities []mcp.Capability
	Instructions string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// Server is the component registry: the tools, resources and prompts a
// connection can reach, the resource subscription table and the lifecycle
// flag flipped by notifications/initialized.
//
// Registration does not enforce unique names or URIs. Lookups return the
// first registered match, so a later duplicate is shadowed; Register logs a
// warning when that happens.
type Server struct {
	cfg     Config
	log     *slog.Logger
	logging LevelSetter

	mu            sync.RWMutex
	tools         []Tool
	resources     []Resource
	prompts       []Prompt
	subscriptions map[string][]*Subscription
	active        bool
}

// NewServer builds a Server from cfg. When cfg declares no capabilities the
// defaults from mcp.DefaultCapabilities are used.
func NewServer(cfg Config, opts ...ServerOption) *Server {
	if len(cfg.Capabilities) == 0 {
		cfg.Capabilities = mcp.DefaultCapabilities()
	}
	s := &Server{
		cfg:           cfg,
		log:           slog.Default(),
		subscriptions: make(map[string][]*Subscription),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// WithLogger sets the logger used for registry events.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCapabilities merges caps onto the configured capabilities, replacing
// entries of the same kind.
func WithCapabilities(caps ...mcp.Capability) ServerOption {
	return func(s *Server) { s.cfg.Capabilities = mcp.MergeCapabilities(s.cfg.Capabilities, caps) }
}

// WithInstructions sets the instructions returned during initialize.
func WithInstructions(instr string) ServerOption {
	return func(s *Server) { s.cfg.Instructions = instr }
}

// WithLogging wires a LevelSetter for logging/setLevel and advertises the
// logging capability if the configuration does not already.
func WithLogging(ls LevelSetter) ServerOption {
	return func(s *Server) {
		s.logging = ls
		if _, ok := mcp.FindCapability[mcp.LoggingCapability](s.cfg.Capabilities); !ok {
			s.cfg.Capabilities = append(s.cfg.Capabilities, mcp.LoggingCapability{})
		}
	}
}

// WithComponents registers components at construction time.
func WithComponents(cs ...Component) ServerOption {
	return func(s *Server) { s.Register(cs...) }
}

// Config returns a copy of the server configuration.
func (s *Server) Config() Config {
	cfg := s.cfg
	cfg.Capabilities = slices.Clone(s.cfg.Capabilities)
	return cfg
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger { return s.log }

// Component is a registrable server feature: a Tool, a Resource or a Prompt.
type Component interface {
	componentKind() string
	componentKey() string
}

// Register appends each component to the matching list. Duplicate names or
// URIs are kept; the earlier registration keeps winning lookups.
func (s *Server) Register(cs ...Component) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range cs {
		if s.hasKeyLocked(c) {
			s.log.Warn("mcpservice.register.duplicate",
				slog.String("kind", c.componentKind()),
				slog.String("key", c.componentKey()))
		}
		switch v := c.(type) {
		case Tool:
			s.tools = append(s.tools, v)
		case Resource:
			checkMimeType(s.log, v)
			s.resources = append(s.resources, v)
		case Prompt:
			s.prompts = append(s.prompts, v)
		}
		s.log.Debug("mcpservice.register.ok",
			slog.String("kind", c.componentKind()),
			slog.String("key", c.componentKey()))
	}
}

func (s *Server) hasKeyLocked(c Component) bool {
	key := c.componentKey()
	switch c.(type) {
	case Tool:
		return slices.ContainsFunc(s.tools, func(t Tool) bool { return t.Name == key })
	case Resource:
		return slices.ContainsFunc(s.resources, func(r Resource) bool { return r.URI == key })
	case Prompt:
		return slices.ContainsFunc(s.prompts, func(p Prompt) bool { return p.Name == key })
	}
	return false
}

// Tools returns a snapshot of the registered tools in registration order.
func (s *Server) Tools() []Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tools)
}

// Resources returns a snapshot of the registered resources in registration order.
func (s *Server) Resources() []Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.resources)
}

// Prompts returns a snapshot of the registered prompts in registration order.
func (s *Server) Prompts() []Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.prompts)
}

// FindTool returns the first tool registered under name.
func (s *Server) FindTool(name string) (Tool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// FindResource returns the first resource registered under uri.
func (s *Server) FindResource(uri string) (Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.resources {
		if r.URI == uri {
			return r, true
		}
	}
	return Resource{}, false
}

// FindPrompt returns the first prompt registered under name.
func (s *Server) FindPrompt(name string) (Prompt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.prompts {
		if p.Name == name {
			return p, true
		}
	}
	return Prompt{}, false
}

// Activate marks the connection as initialized. It is idempotent.
func (s *Server) Activate() {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
}

// Active reports whether the client completed the initialize handshake.
func (s *Server) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SubscriptionFunc is invoked when a subscribed resource changes.
type SubscriptionFunc func(ctx context.Context, uri string)

// Subscription is the handle returned by Subscribe. Its identity, not its
// callback, is what Unsubscribe matches on.
type Subscription struct {
	uri string
	fn  SubscriptionFunc
}

// URI returns the subscribed resource URI.
func (sub *Subscription) URI() string { return sub.uri }

// Subscribe appends a subscription for uri and returns its handle.
func (s *Server) Subscribe(uri string, fn SubscriptionFunc) *Subscription {
	sub := &Subscription{uri: uri, fn: fn}
	s.mu.Lock()
	s.subscriptions[uri] = append(s.subscriptions[uri], sub)
	s.mu.Unlock()
	return sub
}

// Unsubscribe removes exactly the given subscription. It reports whether the
// handle was found.
func (s *Server) Unsubscribe(sub *Subscription) bool {
	if sub == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.subscriptions[sub.uri]
	i := slices.Index(subs, sub)
	if i < 0 {
		return false
	}
	subs = slices.Delete(subs, i, i+1)
	if len(subs) == 0 {
		delete(s.subscriptions, sub.uri)
	} else {
		s.subscriptions[sub.uri] = subs
	}
	return true
}

// Subscriptions returns the active subscriptions for uri.
func (s *Server) Subscriptions(uri string) []*Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.subscriptions[uri])
}

// NotifyResourceUpdated invokes every subscription callback registered for
// uri and returns how many ran. Callbacks run outside the registry lock.
func (s *Server) NotifyResourceUpdated(ctx context.Context, uri string) int {
	subs := s.Subscriptions(uri)
	for _, sub := range subs {
		if sub.fn != nil {
			sub.fn(ctx, uri)
		}
	}
	return len(subs)
}
