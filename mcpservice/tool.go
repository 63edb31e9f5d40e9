package mcpservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"

	"github.com/ggoodman/mcp-stdio-server/internal/logctx"
	"github.com/ggoodman/mcp-stdio-server/mcp"
	"github.com/invopop/jsonschema"
)

// ToolHandler is the function signature used to handle a tool invocation. The
// returned value is normalized into a CallToolResult; see NormalizeToolResult.
type ToolHandler func(ctx context.Context, args map[string]any) (any, error)

// Parameter describes one named tool argument.
type Parameter struct {
	Name        string
	Type        string // JSON schema type tag: string, number, integer, boolean, object, array
	Description string
	Required    bool
	Default     any
	Enum        []any
	ItemType    string // element type tag when Type is "array"
}

// ReturnType constrains the content a tool may produce. The zero value
// accepts any content.
type ReturnType int

const (
	ReturnAny ReturnType = iota
	ReturnText
	ReturnImage
	ReturnResource
)

func (r ReturnType) String() string {
	switch r {
	case ReturnText:
		return mcp.ContentTypeText
	case ReturnImage:
		return mcp.ContentTypeImage
	case ReturnResource:
		return mcp.ContentTypeResource
	}
	return "any"
}

// accepts reports whether every block in content matches r.
func (r ReturnType) accepts(content []mcp.Content) bool {
	if r == ReturnAny {
		return true
	}
	for _, c := range content {
		if c.ContentType() != r.String() {
			return false
		}
	}
	return true
}

// Tool is a named callable with a declared parameter list.
type Tool struct {
	Name        string
	Description string
	Parameters  []Parameter
	Handler     ToolHandler
	ReturnType  ReturnType
}

func (Tool) componentKind() string  { return "tool" }
func (t Tool) componentKey() string { return t.Name }

// Descriptor projects the tool onto its tools/list shape. Parameter defaults
// are advertised in the schema but not applied to calls.
func (t Tool) Descriptor() mcp.Tool {
	props := make(map[string]mcp.SchemaProperty, len(t.Parameters))
	var required []string
	for _, p := range t.Parameters {
		prop := mcp.SchemaProperty{
			Type:        p.Type,
			Description: p.Description,
			Default:     p.Default,
			Enum:        p.Enum,
		}
		if p.Type == "array" && p.ItemType != "" {
			prop.Items = &mcp.SchemaProperty{Type: p.ItemType}
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}

// CallTool invokes the first tool registered under name and normalizes its
// result. Failures after lookup are reported as *ToolError.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	t, ok := s.FindTool(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if t.Handler == nil {
		return nil, &ToolError{Tool: name, Cause: CauseHandlerFailed, Err: fmt.Errorf("tool has no handler")}
	}
	if args == nil {
		args = map[string]any{}
	}

	ctx = logctx.WithToolCallData(ctx, &logctx.ToolCallData{ToolName: name})

	out, err := s.invokeTool(ctx, t, args)
	if err != nil {
		return nil, err
	}

	res, err := NormalizeToolResult(out)
	if err != nil {
		return nil, &ToolError{Tool: name, Cause: CauseResultMismatch, Err: err}
	}
	if _, direct := out.(*mcp.CallToolResult); !direct && !t.ReturnType.accepts(res.Content) {
		return nil, &ToolError{
			Tool:  name,
			Cause: CauseResultMismatch,
			Err:   fmt.Errorf("%w: want %s", ErrResultMismatch, t.ReturnType),
		}
	}
	return res, nil
}

func (s *Server) invokeTool(ctx context.Context, t Tool, args map[string]any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "mcpservice.tool.panic",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			out = nil
			err = &ToolError{Tool: t.Name, Cause: CauseHandlerPanicked, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	out, err = t.Handler(ctx, args)
	if err != nil {
		cause := CauseHandlerFailed
		if errors.Is(err, ErrInvalidArguments) {
			cause = CauseInvalidArguments
		}
		return nil, &ToolError{Tool: t.Name, Cause: cause, Err: err}
	}
	return out, nil
}

// ToolOption configures NewTypedTool.
type ToolOption func(*toolConfig)

type toolConfig struct {
	description               string
	returnType                ReturnType
	allowAdditionalProperties bool
}

// WithToolDescription sets the tool description used in listings.
func WithToolDescription(desc string) ToolOption {
	return func(c *toolConfig) { c.description = desc }
}

// WithToolReturnType declares the content kind the tool produces.
func WithToolReturnType(rt ReturnType) ToolOption {
	return func(c *toolConfig) { c.returnType = rt }
}

// WithToolAllowAdditionalProperties controls whether unknown argument fields
// are accepted. When false (default) decoding rejects unknown fields.
func WithToolAllowAdditionalProperties(allow bool) ToolOption {
	return func(c *toolConfig) { c.allowAdditionalProperties = allow }
}

// NewTypedTool constructs a Tool from a typed args struct A. It reflects the
// parameter list from A using invopop/jsonschema and decodes the call
// arguments into A before invoking fn.
func NewTypedTool[A any](name string, fn func(ctx context.Context, args A) (any, error), opts ...ToolOption) Tool {
	cfg := toolConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	handler := func(ctx context.Context, args map[string]any) (any, error) {
		var a A
		raw, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		if !cfg.allowAdditionalProperties {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(&a); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		return fn(ctx, a)
	}

	return Tool{
		Name:        name,
		Description: cfg.description,
		Parameters:  reflectParameters[A](),
		Handler:     handler,
		ReturnType:  cfg.returnType,
	}
}

// reflectParameters reflects a Go struct type A into a parameter list.
// Non-object types yield no parameters.
func reflectParameters[A any]() []Parameter {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(new(A))
	if s == nil || s.Type != "object" || s.Properties == nil {
		return nil
	}

	params := make([]Parameter, 0, s.Properties.Len())
	for el := s.Properties.Oldest(); el != nil; el = el.Next() {
		prop := el.Value
		p := Parameter{
			Name:     el.Key,
			Required: slices.Contains(s.Required, el.Key),
		}
		if prop != nil {
			p.Type = prop.Type
			p.Description = prop.Description
			p.Default = prop.Default
			p.Enum = prop.Enum
			if prop.Type == "array" && prop.Items != nil {
				p.ItemType = prop.Items.Type
			}
		}
		params = append(params, p)
	}
	return params
}
