package mcp

// Role indicates the role of a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValidRole reports whether r is a protocol-defined role.
func IsValidRole(r Role) bool {
	return r == RoleUser || r == RoleAssistant
}

// LoggingLevel represents structured log severity.
type LoggingLevel string

const (
	LoggingLevelDebug     LoggingLevel = "debug"
	LoggingLevelInfo      LoggingLevel = "info"
	LoggingLevelNotice    LoggingLevel = "notice"
	LoggingLevelWarning   LoggingLevel = "warning"
	LoggingLevelError     LoggingLevel = "error"
	LoggingLevelCritical  LoggingLevel = "critical"
	LoggingLevelAlert     LoggingLevel = "alert"
	LoggingLevelEmergency LoggingLevel = "emergency"
)

// AllLoggingLevels lists every protocol level from least to most severe.
var AllLoggingLevels = []LoggingLevel{
	LoggingLevelDebug,
	LoggingLevelInfo,
	LoggingLevelNotice,
	LoggingLevelWarning,
	LoggingLevelError,
	LoggingLevelCritical,
	LoggingLevelAlert,
	LoggingLevelEmergency,
}

// IsValidLoggingLevel reports whether the provided level is one of the
// protocol-defined syslog severities.
func IsValidLoggingLevel(level LoggingLevel) bool {
	for _, l := range AllLoggingLevels {
		if l == level {
			return true
		}
	}
	return false
}

// ImplementationInfo describes the implementation name and version.
type ImplementationInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Title   string `json:"title,omitzero"`
}

// Annotations provide optional routing/prioritization hints.
type Annotations struct {
	Audience []Role  `json:"audience,omitempty"`
	Priority float64 `json:"priority,omitzero"`
}

// Tool describes a callable tool and its input schema as listed by tools/list.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitzero"`
	InputSchema ToolInputSchema `json:"inputSchema"`
}

// ToolInputSchema is a JSON-schema-like description of tool input. It is
// always an object schema.
type ToolInputSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]SchemaProperty `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// SchemaProperty is a simplified schema node describing one tool parameter.
type SchemaProperty struct {
	Type        string          `json:"type,omitempty"`
	Description string          `json:"description,omitzero"`
	Default     any             `json:"default,omitempty"`
	Items       *SchemaProperty `json:"items,omitempty"`
	Enum        []any           `json:"enum,omitempty"`
}

// Resource represents an addressable resource as listed by resources/list.
type Resource struct {
	URI         string       `json:"uri"`
	Name        string       `json:"name"`
	MimeType    string       `json:"mimeType,omitzero"`
	Description string       `json:"description,omitzero"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

// Prompt describes a named prompt the server can provide.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitzero"`
	Arguments   []PromptArgument `json:"arguments"`
}

// PromptArgument describes a single prompt argument.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitzero"`
	Required    bool   `json:"required"`
}

// LatestProtocolVersion is the protocol revision the server advertises when a
// client does not request one.
const LatestProtocolVersion = "2025-06-18"
