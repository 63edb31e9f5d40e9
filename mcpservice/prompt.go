package mcpservice

import (
	"context"
	"fmt"

	"github.com/ggoodman/mcp-stdio-server/mcp"
)

// Prompt is a named, argument-parameterized list of message templates.
type Prompt struct {
	Name        string
	Description string
	Arguments   []mcp.PromptArgument
	Messages    []mcp.PromptMessage
}

func (Prompt) componentKind() string  { return "prompt" }
func (p Prompt) componentKey() string { return p.Name }

// Descriptor projects the prompt onto its prompts/list shape.
func (p Prompt) Descriptor() mcp.Prompt {
	args := p.Arguments
	if args == nil {
		args = []mcp.PromptArgument{}
	}
	return mcp.Prompt{Name: p.Name, Description: p.Description, Arguments: args}
}

// GetPrompt renders the first prompt registered under name. Every required
// argument must be present in args; text messages are passed through
// RenderTemplate and other content is returned unchanged.
func (s *Server) GetPrompt(ctx context.Context, name string, args map[string]any) (*mcp.GetPromptResult, error) {
	p, ok := s.FindPrompt(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPromptNotFound, name)
	}

	var missing []string
	for _, a := range p.Arguments {
		if !a.Required {
			continue
		}
		if _, ok := args[a.Name]; !ok {
			missing = append(missing, a.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingArgumentsError{Prompt: name, Names: missing}
	}

	vars := make(map[string]string, len(args))
	for k, v := range args {
		vars[k] = argString(v)
	}

	msgs := make([]mcp.PromptMessage, 0, len(p.Messages))
	for _, m := range p.Messages {
		if tc, ok := m.Content.(*mcp.TextContent); ok {
			rendered := *tc
			rendered.Text = RenderTemplate(tc.Text, vars)
			m.Content = &rendered
		}
		msgs = append(msgs, m)
	}
	return &mcp.GetPromptResult{Description: p.Description, Messages: msgs}, nil
}

func argString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	return fmt.Sprint(v)
}
