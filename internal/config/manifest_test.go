package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ggoodman/mcp-stdio-server/mcp"
	"github.com/ggoodman/mcp-stdio-server/storage/memory"
	"github.com/hashicorp/go-multierror"
)

const tomlManifest = `
modules = ["echo", "clock"]

[server]
name = "demo"
version = "0.1.0"
instructions = "Be brief."

[capabilities.resources]
subscribe = true

[capabilities.logging]
levels = ["info", "error"]

[[prompts]]
name = "greet"
description = "Greeting"

[[prompts.arguments]]
name = "name"
required = true

[[prompts.messages]]
role = "user"
text = "Hello {name}{?title? ({title})}"

[[resources]]
uri = "note://readme"
name = "readme"
text = "read me"
`

const yamlManifest = `
server:
  name: demo
  version: 0.1.0
modules: [echo]
resources:
  - uri: file://notes
    file: notes.txt
    mime_type: text/markdown
`

func TestParseManifestTOML(t *testing.T) {
	m, err := ParseManifest([]byte(tomlManifest), "toml")
	if err != nil {
		t.Fatalf("ParseManifest() failed: %v", err)
	}
	if m.Server.Name != "demo" || m.Server.Instructions != "Be brief." {
		t.Fatalf("unexpected server section: %+v", m.Server)
	}
	if len(m.Prompts) != 1 || len(m.Prompts[0].Arguments) != 1 || !m.Prompts[0].Arguments[0].Required {
		t.Fatalf("unexpected prompts: %+v", m.Prompts)
	}
	if m.Capabilities.Resources == nil || !m.Capabilities.Resources.Subscribe {
		t.Fatalf("expected resources.subscribe override")
	}
	if err := m.Validate(DefaultModules()); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
}

func TestParseManifestYAML(t *testing.T) {
	m, err := ParseManifest([]byte(yamlManifest), "yml")
	if err != nil {
		t.Fatalf("ParseManifest() failed: %v", err)
	}
	if len(m.Resources) != 1 || m.Resources[0].File != "notes.txt" || m.Resources[0].MimeType != "text/markdown" {
		t.Fatalf("unexpected resources: %+v", m.Resources)
	}
}

func TestParseManifestUnknownKeys(t *testing.T) {
	if _, err := ParseManifest([]byte("server:\n  name: x\n  colour: red\n"), "yaml"); err == nil {
		t.Fatalf("expected yaml decode to reject unknown field")
	}

	m, err := ParseManifest([]byte("[server]\nname = \"x\"\ncolour = \"red\"\n"), "toml")
	if err != nil {
		t.Fatalf("ParseManifest() failed: %v", err)
	}
	err = m.Validate(DefaultModules())
	if err == nil || !strings.Contains(err.Error(), `unknown key "server.colour"`) {
		t.Fatalf("Validate() = %v, want unknown key error", err)
	}
}

func TestParseManifestUnsupportedFormat(t *testing.T) {
	if _, err := ParseManifest([]byte("{}"), "json"); err == nil {
		t.Fatalf("expected error for json format")
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	m := &Manifest{
		Capabilities: CapabilitySection{Logging: &LoggingCapabilitySpec{Levels: []string{"loud"}}},
		Modules:      []string{"echo", "nope"},
		Prompts: []PromptSpec{{
			Arguments: []ArgumentSpec{{}},
			Messages:  []MessageSpec{{Role: "system", Text: "x"}},
		}},
		Resources: []ResourceSpec{
			{Name: "no uri", Text: "x"},
			{URI: "a://both", Text: "x", File: "y"},
		},
	}

	err := m.Validate(DefaultModules())
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("Validate() = %v, want *multierror.Error", err)
	}
	// server.name, level, module, prompt name, argument name, role, uri, text/file
	if got := len(merr.Errors); got != 8 {
		t.Fatalf("got %d errors, want 8: %v", got, err)
	}
}

func TestLoadManifestResolvesFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("# notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "server.yaml")
	if err := os.WriteFile(path, []byte(yamlManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() failed: %v", err)
	}
	if got, want := m.ResolvePath("notes.txt"), filepath.Join(dir, "notes.txt"); got != want {
		t.Fatalf("ResolvePath() = %q, want %q", got, want)
	}
	if got := m.ResolvePath("/abs/path"); got != "/abs/path" {
		t.Fatalf("ResolvePath() = %q for absolute path", got)
	}

	srv, err := m.Build(DefaultModules(), ModuleDeps{})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	res, err := srv.ReadResource(context.Background(), "file://notes")
	if err != nil {
		t.Fatalf("ReadResource() failed: %v", err)
	}
	tc, ok := res.Contents[0].(*mcp.TextResourceContents)
	if !ok || tc.Text != "# notes" || tc.MimeType != "text/markdown" {
		t.Fatalf("unexpected contents: %#v", res.Contents[0])
	}
}

func TestBuild(t *testing.T) {
	m, err := ParseManifest([]byte(tomlManifest), "toml")
	if err != nil {
		t.Fatalf("ParseManifest() failed: %v", err)
	}
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	srv, err := m.Build(DefaultModules(), ModuleDeps{Now: func() time.Time { return fixed }})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	ctx := context.Background()

	cfg := srv.Config()
	if cfg.Name != "demo" || cfg.Instructions != "Be brief." {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	rc, ok := mcp.FindCapability[mcp.ResourceCapability](cfg.Capabilities)
	if !ok || !rc.Subscribe {
		t.Fatalf("resources capability = %+v, %v", rc, ok)
	}
	lc, _ := mcp.FindCapability[mcp.LoggingCapability](cfg.Capabilities)
	if lc.Allows(mcp.LoggingLevelDebug) || !lc.Allows(mcp.LoggingLevelError) {
		t.Fatalf("logging capability = %+v", lc)
	}

	if got := len(srv.Tools()); got != 2 {
		t.Fatalf("got %d tools, want 2", got)
	}

	pr, err := srv.GetPrompt(ctx, "greet", map[string]any{"name": "Ann", "title": "Dr"})
	if err != nil {
		t.Fatalf("GetPrompt() failed: %v", err)
	}
	if got := pr.Messages[0].Content.(*mcp.TextContent).Text; got != "Hello Ann (Dr)" {
		t.Fatalf("rendered %q", got)
	}

	res, err := srv.ReadResource(ctx, "note://readme")
	if err != nil {
		t.Fatalf("ReadResource() failed: %v", err)
	}
	if tc := res.Contents[0].(*mcp.TextResourceContents); tc.Text != "read me" || tc.MimeType != "text/plain" {
		t.Fatalf("unexpected contents: %#v", tc)
	}

	out, err := srv.CallTool(ctx, "now", map[string]any{})
	if err != nil {
		t.Fatalf("CallTool(now) failed: %v", err)
	}
	if got := out.Content[0].(*mcp.TextContent).Text; got != "2024-03-01T12:00:00Z" {
		t.Fatalf("now = %q", got)
	}

	clock, err := srv.ReadResource(ctx, "clock://now")
	if err != nil {
		t.Fatalf("ReadResource(clock://now) failed: %v", err)
	}
	if tc := clock.Contents[0].(*mcp.TextResourceContents); !strings.Contains(tc.Text, `"unix":1709294400`) {
		t.Fatalf("clock contents = %s", tc.Text)
	}
}

func TestBuildRejectsInvalidManifest(t *testing.T) {
	m := &Manifest{Modules: []string{"echo"}}
	if _, err := m.Build(DefaultModules(), ModuleDeps{}); err == nil {
		t.Fatalf("expected Build() to fail without server.name")
	}
}

func TestStoreModuleRequiresStore(t *testing.T) {
	m := DefaultManifest("demo", "dev")
	if _, err := m.Build(DefaultModules(), ModuleDeps{}); err == nil || !strings.Contains(err.Error(), `module "store"`) {
		t.Fatalf("Build() = %v, want store module error", err)
	}

	store, err := memory.New(16)
	if err != nil {
		t.Fatalf("memory.New() failed: %v", err)
	}
	defer store.Close()

	srv, err := m.Build(DefaultModules(), ModuleDeps{Store: store, Namespace: "ws"})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	// echo + four store tools + now
	if got := len(srv.Tools()); got != 6 {
		t.Fatalf("got %d tools, want 6", got)
	}
}

func TestClockTimezone(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cs, err := clockModule(ModuleDeps{Now: func() time.Time { return fixed }})
	if err != nil {
		t.Fatalf("clockModule() failed: %v", err)
	}
	m := DefaultManifest("demo", "dev")
	m.Modules = nil
	srv, err := m.Build(nil, ModuleDeps{})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	srv.Register(cs...)

	out, err := srv.CallTool(context.Background(), "now", map[string]any{"timezone": "Asia/Tokyo"})
	if err != nil {
		t.Fatalf("CallTool() failed: %v", err)
	}
	if got := out.Content[0].(*mcp.TextContent).Text; got != "2024-03-01T21:00:00+09:00" {
		t.Fatalf("now = %q", got)
	}

	if _, err := srv.CallTool(context.Background(), "now", map[string]any{"timezone": "Mars/Olympus"}); err == nil {
		t.Fatalf("expected unknown timezone to fail")
	}
}

func TestModuleRegistryNames(t *testing.T) {
	r := DefaultModules()
	r.Register("extra", echoModule)
	got := strings.Join(r.Names(), ",")
	if got != "clock,echo,extra,store" {
		t.Fatalf("Names() = %s", got)
	}
}
