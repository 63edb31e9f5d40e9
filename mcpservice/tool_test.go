package mcpservice

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/ggoodman/mcp-stdio-server/mcp"
)

type echoArgs struct {
	Text   string `json:"text" jsonschema:"description=Text to echo"`
	Repeat int    `json:"repeat,omitempty"`
}

func TestCallToolNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	_, err := srv.CallTool(context.Background(), "nonexistent", nil)
	if !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
}

func TestCallToolHandlerErrorAndPanic(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.Register(
		Tool{Name: "fail", Handler: func(context.Context, map[string]any) (any, error) { return nil, errors.New("boom") }},
		Tool{Name: "panic", Handler: func(context.Context, map[string]any) (any, error) { panic("kaboom") }},
		Tool{Name: "ok", Handler: func(context.Context, map[string]any) (any, error) { return "fine", nil }},
	)
	ctx := context.Background()

	var te *ToolError
	_, err := srv.CallTool(ctx, "fail", nil)
	if !errors.As(err, &te) || te.Cause != CauseHandlerFailed {
		t.Fatalf("expected handler_failed ToolError, got %v", err)
	}

	_, err = srv.CallTool(ctx, "panic", nil)
	if !errors.As(err, &te) || te.Cause != CauseHandlerPanicked {
		t.Fatalf("expected handler_panicked ToolError, got %v", err)
	}

	if _, err := srv.CallTool(ctx, "ok", nil); err != nil {
		t.Fatalf("server should keep working after a failing tool: %v", err)
	}
}

func TestCallToolReturnTypeMismatch(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.Register(Tool{
		Name:       "img",
		ReturnType: ReturnImage,
		Handler:    func(context.Context, map[string]any) (any, error) { return "not an image", nil },
	})
	_, err := srv.CallTool(context.Background(), "img", nil)
	var te *ToolError
	if !errors.As(err, &te) || te.Cause != CauseResultMismatch || !errors.Is(err, ErrResultMismatch) {
		t.Fatalf("expected result mismatch, got %v", err)
	}
}

func TestCallToolUnsupportedResult(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.Register(Tool{Name: "num", Handler: func(context.Context, map[string]any) (any, error) { return 42, nil }})
	_, err := srv.CallTool(context.Background(), "num", nil)
	if !errors.Is(err, ErrUnsupportedResult) {
		t.Fatalf("expected ErrUnsupportedResult, got %v", err)
	}
}

func TestNormalizeToolResult(t *testing.T) {
	direct := &mcp.CallToolResult{Content: mcp.ContentList{mcp.NewText("x")}, IsError: true}

	cases := []struct {
		name  string
		in    any
		types []string
		text  string
	}{
		{"nil", nil, nil, ""},
		{"string", "hi", []string{"text"}, "hi"},
		{"map", map[string]any{"a": 1}, []string{"text"}, `{"a":1}`},
		{"image", Image{Data: []byte{1, 2}, MimeType: "image/png"}, []string{"image"}, ""},
		{"content", mcp.NewText("c"), []string{"text"}, "c"},
		{"content slice", []mcp.Content{mcp.NewText("a"), &mcp.ImageContent{MimeType: "image/png"}}, []string{"text", "image"}, "a"},
		{"direct", direct, []string{"text"}, "x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := NormalizeToolResult(tc.in)
			if err != nil {
				t.Fatalf("NormalizeToolResult: %v", err)
			}
			if res.Content == nil {
				t.Fatal("content must never be nil")
			}
			var got []string
			for _, c := range res.Content {
				got = append(got, c.ContentType())
			}
			if !slices.Equal(got, tc.types) {
				t.Fatalf("content types = %v, want %v", got, tc.types)
			}
			if tc.text != "" {
				if txt := res.Content[0].(*mcp.TextContent).Text; txt != tc.text {
					t.Fatalf("text = %q, want %q", txt, tc.text)
				}
			}
		})
	}
	if res, _ := NormalizeToolResult(direct); res != direct || !res.IsError {
		t.Fatal("CallToolResult should pass through untouched")
	}
}

func TestTypedToolReflection(t *testing.T) {
	tool := NewTypedTool("echo", func(_ context.Context, a echoArgs) (any, error) { return a.Text, nil },
		WithToolDescription("Echo"))

	d := tool.Descriptor()
	if d.InputSchema.Type != "object" {
		t.Fatalf("schema type = %q", d.InputSchema.Type)
	}
	text, ok := d.InputSchema.Properties["text"]
	if !ok || text.Type != "string" || text.Description != "Text to echo" {
		t.Fatalf("text property = %+v", text)
	}
	if rep := d.InputSchema.Properties["repeat"]; rep.Type != "integer" {
		t.Fatalf("repeat property = %+v", rep)
	}
	if !slices.Equal(d.InputSchema.Required, []string{"text"}) {
		t.Fatalf("required = %v", d.InputSchema.Required)
	}
}

func TestTypedToolDecode(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.Register(NewTypedTool("echo", func(_ context.Context, a echoArgs) (any, error) { return a.Text, nil }))
	ctx := context.Background()

	res, err := srv.CallTool(ctx, "echo", map[string]any{"text": "hi"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if len(res.Content) != 1 || res.Content[0].(*mcp.TextContent).Text != "hi" {
		t.Fatalf("unexpected result %+v", res.Content)
	}

	_, err = srv.CallTool(ctx, "echo", map[string]any{"text": "hi", "extra": true})
	var te *ToolError
	if !errors.As(err, &te) || te.Cause != CauseInvalidArguments {
		t.Fatalf("expected invalid_arguments, got %v", err)
	}

	_, err = srv.CallTool(ctx, "echo", map[string]any{"text": 5})
	if !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments for wrong type, got %v", err)
	}
}

func TestToolDescriptorFromParameters(t *testing.T) {
	tool := Tool{
		Name: "search",
		Parameters: []Parameter{
			{Name: "q", Type: "string", Description: "query", Required: true},
			{Name: "limit", Type: "integer", Default: 10},
			{Name: "tags", Type: "array", ItemType: "string"},
		},
	}
	d := tool.Descriptor()
	if d.InputSchema.Properties["limit"].Default != 10 {
		t.Fatalf("default not advertised: %+v", d.InputSchema.Properties["limit"])
	}
	if it := d.InputSchema.Properties["tags"].Items; it == nil || it.Type != "string" {
		t.Fatalf("array items = %+v", it)
	}
	if !slices.Equal(d.InputSchema.Required, []string{"q"}) {
		t.Fatalf("required = %v", d.InputSchema.Required)
	}
}
