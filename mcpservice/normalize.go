package mcpservice

import (
	"encoding/json"
	"fmt"

	"github.com/ggoodman/mcp-stdio-server/mcp"
)

// Image is the (bytes, mime type) pair a tool handler may return to produce
// an image content block.
type Image struct {
	Data     []byte
	MimeType string
}

// NormalizeToolResult converts a tool handler's return value into a
// CallToolResult:
//
//   - string: a single TextContent carrying the string verbatim
//   - map[string]any: a single TextContent carrying the JSON encoding
//   - Image or *Image: a single ImageContent
//   - mcp.Content, []mcp.Content, mcp.ContentList: used as-is
//   - *mcp.CallToolResult: returned untouched
//   - nil: an empty content list
//
// Any other type yields ErrUnsupportedResult.
func NormalizeToolResult(v any) (*mcp.CallToolResult, error) {
	switch r := v.(type) {
	case nil:
		return &mcp.CallToolResult{Content: mcp.ContentList{}}, nil
	case *mcp.CallToolResult:
		if r == nil {
			return &mcp.CallToolResult{Content: mcp.ContentList{}}, nil
		}
		if r.Content == nil {
			r.Content = mcp.ContentList{}
		}
		return r, nil
	case string:
		return contentResult(mcp.NewText(r)), nil
	case map[string]any:
		b, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedResult, err)
		}
		return contentResult(mcp.NewText(string(b))), nil
	case Image:
		return contentResult(&mcp.ImageContent{Data: r.Data, MimeType: r.MimeType}), nil
	case *Image:
		if r == nil {
			return nil, fmt.Errorf("%w: nil image", ErrUnsupportedResult)
		}
		return contentResult(&mcp.ImageContent{Data: r.Data, MimeType: r.MimeType}), nil
	case mcp.Content:
		return contentResult(r), nil
	case []mcp.Content:
		return contentResult(r...), nil
	case mcp.ContentList:
		return contentResult(r...), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedResult, v)
}

func contentResult(cs ...mcp.Content) *mcp.CallToolResult {
	out := make(mcp.ContentList, 0, len(cs))
	for _, c := range cs {
		if c != nil {
			out = append(out, c)
		}
	}
	return &mcp.CallToolResult{Content: out}
}

// TextResult builds a CallToolResult with a single text block.
func TextResult(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: mcp.ContentList{mcp.NewText(s)}}
}

// Errorf returns a CallToolResult with a single text block and IsError set.
// Tools return it to report a failure the model should see, as opposed to a
// protocol error.
func Errorf(format string, a ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: mcp.ContentList{mcp.NewText(fmt.Sprintf(format, a...))}, IsError: true}
}
