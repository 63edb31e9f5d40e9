// Package mcp contains protocol data types and constants for the Model
// Context Protocol as served over stdio. It mirrors the wire representation
// while keeping the surface Go-friendly (exported structs with json tags,
// string constants for method names and enumerations, helper validation
// functions).
//
// The package is free of transport and dispatch logic: the stdio transport
// and the engine import these types but implement their own framing and
// routing.
//
// # Method Names
//
// JSON-RPC method and notification names are enumerated as Method constants
// (e.g. ToolsListMethod).
//
// # Content
//
// Content is a closed sum type over *TextContent, *ImageContent and
// *EmbeddedResource. Consumers switch on the concrete type:
//
//	switch c := block.(type) {
//	case *mcp.TextContent:
//	    fmt.Println(c.Text)
//	case *mcp.ImageContent:
//	    save(c.Data, c.MimeType)
//	case *mcp.EmbeddedResource:
//	    inspect(c.Resource)
//	}
//
// ContentList and ResourceContentsList decode polymorphic JSON arrays back
// into the sum types.
//
// # Capabilities
//
// ResourceCapability, ToolCapability, PromptCapability and LoggingCapability
// are value objects implementing Capability. ToProtocolFormat projects each
// onto its wire map; MergeCapabilities overlays a partial set onto defaults:
//
//	caps := mcp.MergeCapabilities(mcp.DefaultCapabilities(), []mcp.Capability{
//	    mcp.ResourceCapability{Subscribe: true},
//	})
//
// # Logging Levels
//
// LoggingLevel values mirror syslog severities. Use IsValidLoggingLevel to
// validate user-provided values.
package mcp
