// Package mcpservice is the component registry behind an MCP server: the
// tools, resources and prompts a client can reach, plus the resource
// subscription table.
//
// Quick start:
//
//	type EchoArgs struct {
//	    Text string `json:"text"`
//	}
//
//	srv := mcpservice.NewServer(mcpservice.Config{Name: "example", Version: "1.0.0"})
//	srv.Register(
//	    mcpservice.NewTypedTool("echo", func(ctx context.Context, a EchoArgs) (any, error) {
//	        return a.Text, nil
//	    }, mcpservice.WithToolDescription("Echo the input text")),
//	    mcpservice.Resource{
//	        URI:      "config://app",
//	        Name:     "app config",
//	        MimeType: "application/json",
//	        Provider: mcpservice.StaticData(map[string]any{"debug": true}),
//	    },
//	    mcpservice.Prompt{
//	        Name:      "greet",
//	        Arguments: []mcp.PromptArgument{{Name: "name", Required: true}, {Name: "greeting"}},
//	        Messages: []mcp.PromptMessage{{
//	            Role:    mcp.RoleUser,
//	            Content: mcp.NewText("Hello {name}{?greeting? and {greeting}}!"),
//	        }},
//	    },
//	)
//
// Names and URIs are not required to be unique. Lookups return the first
// registration and later duplicates are logged and shadowed.
//
// # Tool results
//
// Handlers return any value accepted by NormalizeToolResult. Errors returned
// by CallTool, ReadResource and GetPrompt wrap the sentinels in errors.go so
// callers can map them onto protocol error codes.
//
// # Files
//
// FileResource serves a file under a shared flock and FileWatcher reports
// changes to it through NotifyResourceUpdated.
package mcpservice
