package mcpservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/elnormous/contenttype"
	"github.com/ggoodman/mcp-stdio-server/mcp"
)

// DataProvider produces the current value of a resource. The uri argument is
// the URI that was read, so one provider can serve several resources.
type DataProvider func(ctx context.Context, uri string) (any, error)

// StaticData returns a DataProvider that always yields v.
func StaticData(v any) DataProvider {
	return func(context.Context, string) (any, error) { return v, nil }
}

// Resource is a URI-addressed data source readable on demand.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
	Annotations *mcp.Annotations
	Provider    DataProvider

	path string // backing file, set by FileResource
}

func (Resource) componentKind() string  { return "resource" }
func (r Resource) componentKey() string { return r.URI }

// Path returns the file backing a FileResource, or "".
func (r Resource) Path() string { return r.path }

// Descriptor projects the resource onto its resources/list shape.
func (r Resource) Descriptor() mcp.Resource {
	return mcp.Resource{
		URI:         r.URI,
		Name:        r.Name,
		MimeType:    r.MimeType,
		Description: r.Description,
		Annotations: r.Annotations,
	}
}

var jsonMediaType = contenttype.NewMediaType("application/json")

// isJSONMimeType reports whether mime declares a JSON document, including
// structured suffixes such as application/ld+json.
func isJSONMimeType(mime string) bool {
	if mime == "" {
		return true
	}
	mt := contenttype.NewMediaType(mime)
	return mt.Matches(jsonMediaType) || strings.HasSuffix(mt.Subtype, "+json")
}

func checkMimeType(log *slog.Logger, r Resource) {
	if r.MimeType == "" {
		return
	}
	if mt := contenttype.NewMediaType(r.MimeType); mt.Type == "" || mt.Subtype == "" {
		log.Warn("mcpservice.register.invalid_mime_type",
			slog.String("uri", r.URI),
			slog.String("mime_type", r.MimeType))
	}
}

// ReadResource resolves uri against the registered resources and returns a
// single contents entry carrying the provider's value.
//
// Provider values are encoded as follows: mcp.ResourceContents is passed
// through; a string or []byte is used verbatim unless the declared mime type
// is JSON (or unset); everything else is JSON encoded.
func (s *Server) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: empty uri", ErrInvalidURI)
	}
	if _, err := url.Parse(uri); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}

	r, ok := s.FindResource(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, uri)
	}
	if r.Provider == nil {
		return nil, fmt.Errorf("%w: %s has no provider", ErrProviderFailed, uri)
	}

	v, err := s.provide(ctx, r)
	if err != nil {
		return nil, err
	}

	contents, err := encodeResourceValue(r, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	return &mcp.ReadResourceResult{Contents: mcp.ResourceContentsList{contents}}, nil
}

func (s *Server) provide(ctx context.Context, r Resource) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.ErrorContext(ctx, "mcpservice.resource.panic", slog.String("uri", r.URI), slog.Any("panic", rec))
			v = nil
			err = fmt.Errorf("%w: panic: %v", ErrProviderFailed, rec)
		}
	}()
	v, err = r.Provider(ctx, r.URI)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderFailed, err)
	}
	return v, nil
}

func encodeResourceValue(r Resource, v any) (mcp.ResourceContents, error) {
	switch c := v.(type) {
	case *mcp.TextResourceContents:
		out := *c
		fillContents(&out.URI, &out.MimeType, r)
		return &out, nil
	case *mcp.BlobResourceContents:
		out := *c
		fillContents(&out.URI, &out.MimeType, r)
		return &out, nil
	case string:
		if !isJSONMimeType(r.MimeType) {
			return &mcp.TextResourceContents{URI: r.URI, MimeType: r.MimeType, Text: c}, nil
		}
	case []byte:
		if !isJSONMimeType(r.MimeType) {
			return &mcp.TextResourceContents{URI: r.URI, MimeType: r.MimeType, Text: string(c)}, nil
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &mcp.TextResourceContents{URI: r.URI, MimeType: r.MimeType, Text: string(b)}, nil
}

func fillContents(uri, mime *string, r Resource) {
	if *uri == "" {
		*uri = r.URI
	}
	if *mime == "" {
		*mime = r.MimeType
	}
}
