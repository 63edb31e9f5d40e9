package mcpservice

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/ggoodman/mcp-stdio-server/mcp"
)

func newTestServer(t *testing.T, opts ...ServerOption) (*Server, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]ServerOption{WithLogger(log)}, opts...)
	return NewServer(Config{Name: "test", Version: "0.0.1"}, opts...), &buf
}

func TestNewServerDefaultCapabilities(t *testing.T) {
	srv, _ := newTestServer(t)
	caps := srv.Config().Capabilities
	if len(caps) != 3 {
		t.Fatalf("expected 3 default capabilities, got %d", len(caps))
	}
	if _, ok := mcp.FindCapability[mcp.LoggingCapability](caps); ok {
		t.Fatal("logging should not be advertised by default")
	}
}

func TestWithLoggingAdvertisesCapability(t *testing.T) {
	var lv slog.LevelVar
	srv, _ := newTestServer(t, WithLogging(NewSlogLevelVarLogging(&lv)))
	if _, ok := mcp.FindCapability[mcp.LoggingCapability](srv.Config().Capabilities); !ok {
		t.Fatal("expected logging capability")
	}
	if err := srv.SetLogLevel(context.Background(), mcp.LoggingLevelWarning); err != nil {
		t.Fatalf("SetLogLevel: %v", err)
	}
	if lv.Level() != slog.LevelWarn {
		t.Fatalf("level = %v, want warn", lv.Level())
	}
	if err := srv.SetLogLevel(context.Background(), "loud"); err != ErrInvalidLoggingLevel {
		t.Fatalf("expected ErrInvalidLoggingLevel, got %v", err)
	}
}

func TestSetLogLevelUnsupported(t *testing.T) {
	srv, _ := newTestServer(t)
	if err := srv.SetLogLevel(context.Background(), mcp.LoggingLevelInfo); err != ErrLoggingUnsupported {
		t.Fatalf("expected ErrLoggingUnsupported, got %v", err)
	}
}

func TestDuplicateToolFirstMatch(t *testing.T) {
	srv, logs := newTestServer(t)
	first := Tool{Name: "dup", Handler: func(context.Context, map[string]any) (any, error) { return "first", nil }}
	second := Tool{Name: "dup", Handler: func(context.Context, map[string]any) (any, error) { return "second", nil }}
	srv.Register(first, second)

	if got := len(srv.Tools()); got != 2 {
		t.Fatalf("duplicates should both be kept, got %d tools", got)
	}
	if !strings.Contains(logs.String(), "mcpservice.register.duplicate") {
		t.Fatalf("expected duplicate warning, logs: %s", logs.String())
	}

	res, err := srv.CallTool(context.Background(), "dup", nil)
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if txt := res.Content[0].(*mcp.TextContent).Text; txt != "first" {
		t.Fatalf("expected first registration to win, got %q", txt)
	}
}

func TestActivate(t *testing.T) {
	srv, _ := newTestServer(t)
	if srv.Active() {
		t.Fatal("new server should be inactive")
	}
	srv.Activate()
	srv.Activate()
	if !srv.Active() {
		t.Fatal("expected active after Activate")
	}
}

func TestSubscriptionsByIdentity(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	var calls []string
	fn := func(_ context.Context, uri string) { calls = append(calls, uri) }

	a := srv.Subscribe("file:///a", fn)
	b := srv.Subscribe("file:///a", fn)

	if n := srv.NotifyResourceUpdated(ctx, "file:///a"); n != 2 {
		t.Fatalf("expected 2 callbacks, got %d", n)
	}

	if !srv.Unsubscribe(a) {
		t.Fatal("Unsubscribe(a) should succeed")
	}
	if srv.Unsubscribe(a) {
		t.Fatal("second Unsubscribe(a) should report false")
	}
	subs := srv.Subscriptions("file:///a")
	if len(subs) != 1 || subs[0] != b {
		t.Fatalf("expected only b to remain, got %v", subs)
	}

	srv.Unsubscribe(b)
	if n := srv.NotifyResourceUpdated(ctx, "file:///a"); n != 0 {
		t.Fatalf("expected no callbacks after unsubscribe, got %d", n)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 recorded calls, got %v", calls)
	}
}
