package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Content type tags as they appear on the wire.
const (
	ContentTypeText     = "text"
	ContentTypeImage    = "image"
	ContentTypeResource = "resource"
)

// ErrUnknownContentType is returned when decoding a content block whose type
// tag is not one of the supported variants.
var ErrUnknownContentType = errors.New("mcp: unknown content type")

// Content is a payload block exchanged in tool results and prompt messages.
// The set of implementations is closed: *TextContent, *ImageContent and
// *EmbeddedResource.
type Content interface {
	// ContentType returns the wire type tag.
	ContentType() string
	isContent()
}

// TextContent is a plain text block.
type TextContent struct {
	Text        string
	Annotations *Annotations
}

// ImageContent carries raw image bytes. Data is base64 encoded on the wire.
type ImageContent struct {
	Data        []byte
	MimeType    string
	Annotations *Annotations
}

// EmbeddedResource inlines the contents of a resource.
type EmbeddedResource struct {
	Resource    ResourceContents
	Annotations *Annotations
}

func (*TextContent) ContentType() string      { return ContentTypeText }
func (*ImageContent) ContentType() string     { return ContentTypeImage }
func (*EmbeddedResource) ContentType() string { return ContentTypeResource }

func (*TextContent) isContent()      {}
func (*ImageContent) isContent()     {}
func (*EmbeddedResource) isContent() {}

// NewText is shorthand for a TextContent without annotations.
func NewText(s string) *TextContent { return &TextContent{Text: s} }

type textWire struct {
	Type        string       `json:"type"`
	Text        string       `json:"text"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

type imageWire struct {
	Type        string       `json:"type"`
	Data        []byte       `json:"data"`
	MimeType    string       `json:"mimeType"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

type resourceWire struct {
	Type        string          `json:"type"`
	Resource    json.RawMessage `json:"resource"`
	Annotations *Annotations    `json:"annotations,omitempty"`
}

func (c *TextContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(textWire{Type: ContentTypeText, Text: c.Text, Annotations: c.Annotations})
}

func (c *ImageContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(imageWire{Type: ContentTypeImage, Data: c.Data, MimeType: c.MimeType, Annotations: c.Annotations})
}

func (c *EmbeddedResource) MarshalJSON() ([]byte, error) {
	if c.Resource == nil {
		return nil, errors.New("mcp: embedded resource without contents")
	}
	inner, err := json.Marshal(c.Resource)
	if err != nil {
		return nil, err
	}
	return json.Marshal(resourceWire{Type: ContentTypeResource, Resource: inner, Annotations: c.Annotations})
}

// UnmarshalContent decodes a single content block by its type tag.
func UnmarshalContent(data []byte) (Content, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case ContentTypeText:
		var w textWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return &TextContent{Text: w.Text, Annotations: w.Annotations}, nil
	case ContentTypeImage:
		var w imageWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return &ImageContent{Data: w.Data, MimeType: w.MimeType, Annotations: w.Annotations}, nil
	case ContentTypeResource:
		var w resourceWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		rc, err := UnmarshalResourceContents(w.Resource)
		if err != nil {
			return nil, err
		}
		return &EmbeddedResource{Resource: rc, Annotations: w.Annotations}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, head.Type)
}

// ContentList is a slice of Content that knows how to decode itself.
type ContentList []Content

func (l *ContentList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(ContentList, 0, len(raws))
	for _, raw := range raws {
		c, err := UnmarshalContent(raw)
		if err != nil {
			return err
		}
		out = append(out, c)
	}
	*l = out
	return nil
}

// ResourceContents is the value of a resource read. The set of
// implementations is closed: *TextResourceContents and *BlobResourceContents.
type ResourceContents interface {
	ResourceURI() string
	isResourceContents()
}

// TextResourceContents holds textual resource data.
type TextResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitzero"`
	Text     string `json:"text"`
}

// BlobResourceContents holds binary resource data, base64 encoded on the wire.
type BlobResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitzero"`
	Blob     []byte `json:"blob"`
}

func (r *TextResourceContents) ResourceURI() string { return r.URI }
func (r *BlobResourceContents) ResourceURI() string { return r.URI }

func (*TextResourceContents) isResourceContents() {}
func (*BlobResourceContents) isResourceContents() {}

// UnmarshalResourceContents decodes text or blob contents by which member is
// present.
func UnmarshalResourceContents(data []byte) (ResourceContents, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if _, ok := fields["blob"]; ok {
		var b BlobResourceContents
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return &b, nil
	}
	var t TextResourceContents
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ResourceContentsList is a slice of ResourceContents that knows how to
// decode itself.
type ResourceContentsList []ResourceContents

func (l *ResourceContentsList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(ResourceContentsList, 0, len(raws))
	for _, raw := range raws {
		rc, err := UnmarshalResourceContents(raw)
		if err != nil {
			return err
		}
		out = append(out, rc)
	}
	*l = out
	return nil
}

// PromptMessage is a message used in a prompt.
type PromptMessage struct {
	Role    Role
	Content Content
}

type promptMessageWire struct {
	Role    Role            `json:"role"`
	Content json.RawMessage `json:"content"`
}

func (m PromptMessage) MarshalJSON() ([]byte, error) {
	if m.Content == nil {
		return nil, errors.New("mcp: prompt message without content")
	}
	c, err := json.Marshal(m.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(promptMessageWire{Role: m.Role, Content: c})
}

func (m *PromptMessage) UnmarshalJSON(data []byte) error {
	var w promptMessageWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c, err := UnmarshalContent(w.Content)
	if err != nil {
		return err
	}
	m.Role = w.Role
	m.Content = c
	return nil
}
