package mcpservice

import (
	"context"
	"errors"
	"testing"

	"github.com/ggoodman/mcp-stdio-server/mcp"
)

func readText(t *testing.T, res *mcp.ReadResourceResult) *mcp.TextResourceContents {
	t.Helper()
	if len(res.Contents) != 1 {
		t.Fatalf("expected exactly one contents entry, got %d", len(res.Contents))
	}
	tc, ok := res.Contents[0].(*mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected text contents, got %T", res.Contents[0])
	}
	return tc
}

func TestReadResourceEncoding(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.Register(
		Resource{URI: "config://app", Name: "app", MimeType: "application/json", Provider: StaticData(map[string]any{"debug": true})},
		Resource{URI: "note://plain", Name: "plain", MimeType: "text/plain", Provider: StaticData("hello")},
		Resource{URI: "note://json-string", Name: "js", Provider: StaticData("hello")},
	)
	ctx := context.Background()

	res, err := srv.ReadResource(ctx, "config://app")
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	tc := readText(t, res)
	if tc.Text != `{"debug":true}` || tc.MimeType != "application/json" || tc.URI != "config://app" {
		t.Fatalf("unexpected contents %+v", tc)
	}

	res, _ = srv.ReadResource(ctx, "note://plain")
	if tc := readText(t, res); tc.Text != "hello" {
		t.Fatalf("text/plain should be verbatim, got %q", tc.Text)
	}

	res, _ = srv.ReadResource(ctx, "note://json-string")
	if tc := readText(t, res); tc.Text != `"hello"` {
		t.Fatalf("string without mime type should be JSON encoded, got %q", tc.Text)
	}
}

func TestReadResourceErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.Register(
		Resource{URI: "bad://fails", Provider: func(context.Context, string) (any, error) { return nil, errors.New("nope") }},
		Resource{URI: "bad://panics", Provider: func(context.Context, string) (any, error) { panic("oops") }},
		Resource{URI: "bad://none"},
		Resource{URI: "bad://unencodable", Provider: StaticData(make(chan int))},
	)
	ctx := context.Background()

	cases := []struct {
		uri  string
		want error
	}{
		{"unknown://x", ErrResourceNotFound},
		{"", ErrInvalidURI},
		{"%zz", ErrInvalidURI},
		{"bad://fails", ErrProviderFailed},
		{"bad://panics", ErrProviderFailed},
		{"bad://none", ErrProviderFailed},
		{"bad://unencodable", ErrProviderFailed},
	}
	for _, tc := range cases {
		if _, err := srv.ReadResource(ctx, tc.uri); !errors.Is(err, tc.want) {
			t.Fatalf("ReadResource(%q) = %v, want %v", tc.uri, err, tc.want)
		}
	}
}

func TestIsJSONMimeType(t *testing.T) {
	for mt, want := range map[string]bool{
		"":                         true,
		"application/json":         true,
		"application/ld+json":      true,
		"text/plain":               false,
		"text/markdown":            false,
		"application/octet-stream": false,
	} {
		if got := isJSONMimeType(mt); got != want {
			t.Fatalf("isJSONMimeType(%q) = %v, want %v", mt, got, want)
		}
	}
}
