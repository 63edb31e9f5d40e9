package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ggoodman/mcp-stdio-server/mcp"
	"github.com/ggoodman/mcp-stdio-server/mcpservice"
)

func (e *Engine) handleInitialize(ctx context.Context, rc *RequestContext, params any) (any, error) {
	p, err := paramsAs[mcp.InitializeRequest](params)
	if err != nil {
		return nil, err
	}

	cfg := rc.Server.Config()
	version := p.ProtocolVersion
	if version == "" {
		version = mcp.LatestProtocolVersion
	}

	e.log.InfoContext(ctx, "engine.initialize",
		slog.String("client_name", p.ClientInfo.Name),
		slog.String("client_version", p.ClientInfo.Version),
		slog.String("protocol_version", version))

	return &mcp.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    e.capabilities(cfg.Capabilities),
		ServerInfo:      mcp.ImplementationInfo{Name: cfg.Name, Version: cfg.Version},
		Instructions:    cfg.Instructions,
	}, nil
}

// capabilities projects the configured capabilities onto the initialize
// result. The resources entry also lists the live resource descriptors;
// tools are only ever advertised through tools/list.
func (e *Engine) capabilities(caps []mcp.Capability) map[string]any {
	out := make(map[string]any, len(caps))
	for _, c := range caps {
		entry := c.ToProtocolFormat()
		if c.Kind() == mcp.CapabilityResources {
			entry["resources"] = resourceDescriptors(e.srv.Resources())
		}
		out[string(c.Kind())] = entry
	}
	return out
}

func resourceDescriptors(rs []mcpservice.Resource) []mcp.Resource {
	out := make([]mcp.Resource, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Descriptor())
	}
	return out
}

func (e *Engine) handlePing(context.Context, *RequestContext, any) (any, error) {
	return &mcp.EmptyResult{}, nil
}

func (e *Engine) handleToolsList(ctx context.Context, rc *RequestContext, params any) (any, error) {
	if _, err := paramsAs[mcp.ListToolsRequest](params); err != nil {
		return nil, err
	}
	tools := rc.Server.Tools()
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, t.Descriptor())
	}
	return &mcp.ListToolsResult{Tools: out}, nil
}

func (e *Engine) handleToolsCall(ctx context.Context, rc *RequestContext, params any) (any, error) {
	p, err := paramsAs[mcp.CallToolRequest](params)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, fmt.Errorf("%w: missing tool name", errInvalidParams)
	}
	return rc.Server.CallTool(ctx, p.Name, p.Arguments)
}

func (e *Engine) handleResourcesList(ctx context.Context, rc *RequestContext, params any) (any, error) {
	p, err := paramsAs[mcp.ListResourcesRequest](params)
	if err != nil {
		return nil, err
	}
	return &mcp.ListResourcesResult{
		Resources:       resourceDescriptors(rc.Server.Resources()),
		PaginatedResult: mcp.PaginatedResult{NextCursor: p.Cursor},
	}, nil
}

func (e *Engine) handleResourcesRead(ctx context.Context, rc *RequestContext, params any) (any, error) {
	p, err := paramsAs[mcp.ReadResourceRequest](params)
	if err != nil {
		return nil, err
	}
	return rc.Server.ReadResource(ctx, p.URI)
}

func (e *Engine) subscriptionsEnabled() bool {
	rcap, ok := mcp.FindCapability[mcp.ResourceCapability](e.srv.Config().Capabilities)
	return ok && rcap.Subscribe
}

func (e *Engine) handleResourcesSubscribe(ctx context.Context, rc *RequestContext, params any) (any, error) {
	if !e.subscriptionsEnabled() {
		return nil, fmt.Errorf("%w: resource subscriptions", errUnsupported)
	}
	p, err := paramsAs[mcp.SubscribeRequest](params)
	if err != nil {
		return nil, err
	}
	if p.URI == "" {
		return nil, fmt.Errorf("%w: missing uri", errInvalidParams)
	}
	if _, ok := rc.Server.FindResource(p.URI); !ok {
		return nil, fmt.Errorf("%w: %s", mcpservice.ErrResourceNotFound, p.URI)
	}

	e.subMu.Lock()
	defer e.subMu.Unlock()
	if _, ok := e.subs[p.URI]; !ok {
		e.subs[p.URI] = rc.Server.Subscribe(p.URI, e.onResourceUpdated)
	}
	return &mcp.EmptyResult{}, nil
}

func (e *Engine) handleResourcesUnsubscribe(ctx context.Context, rc *RequestContext, params any) (any, error) {
	if !e.subscriptionsEnabled() {
		return nil, fmt.Errorf("%w: resource subscriptions", errUnsupported)
	}
	p, err := paramsAs[mcp.UnsubscribeRequest](params)
	if err != nil {
		return nil, err
	}

	e.subMu.Lock()
	defer e.subMu.Unlock()
	if sub, ok := e.subs[p.URI]; ok {
		rc.Server.Unsubscribe(sub)
		delete(e.subs, p.URI)
	}
	return &mcp.EmptyResult{}, nil
}

// onResourceUpdated is the callback registered for this connection's
// subscriptions. The transport has no outbound channel, so the update is
// only logged.
func (e *Engine) onResourceUpdated(ctx context.Context, uri string) {
	e.log.InfoContext(ctx, "engine.resource.updated", slog.String("uri", uri))
}

func (e *Engine) handlePromptsList(ctx context.Context, rc *RequestContext, params any) (any, error) {
	if _, err := paramsAs[mcp.ListPromptsRequest](params); err != nil {
		return nil, err
	}
	prompts := rc.Server.Prompts()
	out := make([]mcp.Prompt, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, p.Descriptor())
	}
	return &mcp.ListPromptsResult{Prompts: out}, nil
}

func (e *Engine) handlePromptsGet(ctx context.Context, rc *RequestContext, params any) (any, error) {
	p, err := paramsAs[mcp.GetPromptRequest](params)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, fmt.Errorf("%w: missing prompt name", errInvalidParams)
	}
	return rc.Server.GetPrompt(ctx, p.Name, p.Arguments)
}

func (e *Engine) handleSetLoggingLevel(ctx context.Context, rc *RequestContext, params any) (any, error) {
	p, err := paramsAs[mcp.SetLevelRequest](params)
	if err != nil {
		return nil, err
	}
	if err := rc.Server.SetLogLevel(ctx, p.Level); err != nil {
		return nil, err
	}
	return &mcp.EmptyResult{}, nil
}

// Close drops every subscription this engine registered.
func (e *Engine) Close() {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for uri, sub := range e.subs {
		e.srv.Unsubscribe(sub)
		delete(e.subs, uri)
	}
}
