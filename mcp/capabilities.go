package mcp

// CapabilityKind names a protocol feature group. It doubles as the key under
// which the capability appears in the initialize result.
type CapabilityKind string

const (
	CapabilityTools     CapabilityKind = "tools"
	CapabilityResources CapabilityKind = "resources"
	CapabilityPrompts   CapabilityKind = "prompts"
	CapabilityLogging   CapabilityKind = "logging"
)

// Capability is a declarative server feature. Implementations are plain value
// objects; ToProtocolFormat projects them onto the wire map.
type Capability interface {
	Kind() CapabilityKind
	ToProtocolFormat() map[string]any
}

// ResourceCapability advertises resources/list and resources/read, and
// optionally resource subscriptions.
type ResourceCapability struct {
	ListChanged bool
	Subscribe   bool
}

func (ResourceCapability) Kind() CapabilityKind { return CapabilityResources }

func (c ResourceCapability) ToProtocolFormat() map[string]any {
	return map[string]any{
		"listChanged": c.ListChanged,
		"subscribe":   c.Subscribe,
	}
}

// ToolCapability advertises tools/list and tools/call.
type ToolCapability struct {
	ListChanged bool
}

func (ToolCapability) Kind() CapabilityKind { return CapabilityTools }

func (c ToolCapability) ToProtocolFormat() map[string]any {
	return map[string]any{"listChanged": c.ListChanged}
}

// PromptCapability advertises prompts/list and prompts/get.
type PromptCapability struct {
	ListChanged bool
}

func (PromptCapability) Kind() CapabilityKind { return CapabilityPrompts }

func (c PromptCapability) ToProtocolFormat() map[string]any {
	return map[string]any{"listChanged": c.ListChanged}
}

// LoggingCapability advertises logging/setLevel. Levels, when set, restricts
// the advertised levels; empty means all protocol levels.
type LoggingCapability struct {
	Levels []LoggingLevel
}

func (LoggingCapability) Kind() CapabilityKind { return CapabilityLogging }

func (c LoggingCapability) ToProtocolFormat() map[string]any {
	if len(c.Levels) == 0 {
		return map[string]any{}
	}
	levels := make([]string, len(c.Levels))
	for i, l := range c.Levels {
		levels[i] = string(l)
	}
	return map[string]any{"levels": levels}
}

// Allows reports whether level is permitted by the capability.
func (c LoggingCapability) Allows(level LoggingLevel) bool {
	if !IsValidLoggingLevel(level) {
		return false
	}
	if len(c.Levels) == 0 {
		return true
	}
	for _, l := range c.Levels {
		if l == level {
			return true
		}
	}
	return false
}

// DefaultCapabilities is the capability set used when a server declares none.
func DefaultCapabilities() []Capability {
	return []Capability{
		ResourceCapability{},
		ToolCapability{},
		PromptCapability{},
	}
}

// MergeCapabilities returns base with every entry replaced by the override
// entry of the same kind. Override kinds absent from base are appended in
// override order. Neither input is modified.
func MergeCapabilities(base, override []Capability) []Capability {
	out := make([]Capability, 0, len(base)+len(override))
	used := make(map[CapabilityKind]bool, len(override))
	for _, b := range base {
		replaced := false
		for _, o := range override {
			if o.Kind() == b.Kind() {
				out = append(out, o)
				used[o.Kind()] = true
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, b)
		}
	}
	for _, o := range override {
		if used[o.Kind()] {
			continue
		}
		used[o.Kind()] = true
		out = append(out, o)
	}
	return out
}

// FindCapability returns the first capability of the given kind.
func FindCapability[C Capability](caps []Capability) (C, bool) {
	for _, c := range caps {
		if v, ok := c.(C); ok {
			return v, true
		}
	}
	var zero C
	return zero, false
}
