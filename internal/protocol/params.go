package protocol

import (
	"github.com/ggoodman/mcp-stdio-server/mcp"
)

// paramsTable maps every known method to a constructor for its params value.
// The constructor's zero value is what handlers receive when params are
// absent or empty.
var paramsTable = map[mcp.Method]func() any{
	mcp.InitializeMethod:              func() any { return &mcp.InitializeRequest{} },
	mcp.PingMethod:                    func() any { return &mcp.PingRequest{} },
	mcp.ResourcesListMethod:           func() any { return &mcp.ListResourcesRequest{} },
	mcp.ResourcesReadMethod:           func() any { return &mcp.ReadResourceRequest{} },
	mcp.ResourcesSubscribeMethod:      func() any { return &mcp.SubscribeRequest{} },
	mcp.ResourcesUnsubscribeMethod:    func() any { return &mcp.UnsubscribeRequest{} },
	mcp.ToolsListMethod:               func() any { return &mcp.ListToolsRequest{} },
	mcp.ToolsCallMethod:               func() any { return &mcp.CallToolRequest{} },
	mcp.PromptsListMethod:             func() any { return &mcp.ListPromptsRequest{} },
	mcp.PromptsGetMethod:              func() any { return &mcp.GetPromptRequest{} },
	mcp.LoggingSetLevelMethod:         func() any { return &mcp.SetLevelRequest{} },
	mcp.InitializedNotificationMethod: func() any { return &mcp.InitializedNotification{} },
	mcp.CancelledNotificationMethod:   func() any { return &mcp.CancelledNotification{} },
	mcp.ProgressNotificationMethod:    func() any { return &mcp.ProgressNotificationParams{} },
}

// KnownMethod reports whether method has a registered params type.
func KnownMethod(method string) bool {
	_, ok := paramsTable[mcp.Method(method)]
	return ok
}

// NewParams returns a fresh zero params value for method and whether the
// method is known. Unknown methods get an empty mcp.RawParams.
func NewParams(method string) (any, bool) {
	if ctor, ok := paramsTable[mcp.Method(method)]; ok {
		return ctor(), true
	}
	return mcp.RawParams{}, false
}
