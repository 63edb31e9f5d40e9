package mcp

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestContentWireShape(t *testing.T) {
	cases := []struct {
		name string
		in   Content
		want string
	}{
		{"text", NewText("hi"), `{"type":"text","text":"hi"}`},
		{"image", &ImageContent{Data: []byte{1, 2, 3}, MimeType: "image/png"}, `{"type":"image","data":"AQID","mimeType":"image/png"}`},
		{
			"embedded text",
			&EmbeddedResource{Resource: &TextResourceContents{URI: "mem://a", MimeType: "text/plain", Text: "x"}},
			`{"type":"resource","resource":{"uri":"mem://a","mimeType":"text/plain","text":"x"}}`,
		},
		{
			"annotated",
			&TextContent{Text: "a", Annotations: &Annotations{Audience: []Role{RoleUser}, Priority: 0.5}},
			`{"type":"text","text":"a","annotations":{"audience":["user"],"priority":0.5}}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(b) != tc.want {
				t.Fatalf("got %s, want %s", b, tc.want)
			}
			back, err := UnmarshalContent(b)
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if back.ContentType() != tc.in.ContentType() {
				t.Fatalf("type = %s, want %s", back.ContentType(), tc.in.ContentType())
			}
		})
	}
}

func TestUnmarshalContentUnknownType(t *testing.T) {
	_, err := UnmarshalContent([]byte(`{"type":"audio","data":""}`))
	if !errors.Is(err, ErrUnknownContentType) {
		t.Fatalf("expected ErrUnknownContentType, got %v", err)
	}
}

func TestBlobResourceContentsDecode(t *testing.T) {
	var l ResourceContentsList
	if err := json.Unmarshal([]byte(`[{"uri":"f","blob":"AQI="},{"uri":"g","text":"t"}]`), &l); err != nil {
		t.Fatal(err)
	}
	b, ok := l[0].(*BlobResourceContents)
	if !ok || len(b.Blob) != 2 {
		t.Fatalf("expected blob contents, got %#v", l[0])
	}
	if _, ok := l[1].(*TextResourceContents); !ok {
		t.Fatalf("expected text contents, got %#v", l[1])
	}
}

func TestPromptMessageDecode(t *testing.T) {
	var m PromptMessage
	if err := json.Unmarshal([]byte(`{"role":"assistant","content":{"type":"text","text":"yo"}}`), &m); err != nil {
		t.Fatal(err)
	}
	tc, ok := m.Content.(*TextContent)
	if m.Role != RoleAssistant || !ok || tc.Text != "yo" {
		t.Fatalf("unexpected message: %+v", m)
	}
}
