package mcpservice

import (
	"context"
	"fmt"
	"time"

	"github.com/ggoodman/mcp-stdio-server/storage"
)

type storeKeyArgs struct {
	Key string `json:"key" jsonschema:"description=Key to operate on"`
}

type storeSetArgs struct {
	Key        string `json:"key" jsonschema:"description=Key to write"`
	Value      string `json:"value" jsonschema:"description=Value to store"`
	TTLSeconds int    `json:"ttl_seconds,omitempty" jsonschema:"description=Expire the value after this many seconds"`
}

type storeListArgs struct{}

// StoreTools returns the workspace state tools backed by store. All keys
// live in namespace ns.
//
//	store_get    {key}                   -> stored value, or an error result when absent
//	store_set    {key, value, ttl_seconds} -> "ok"
//	store_delete {key}                   -> "ok"
//	store_list   {}                      -> {"keys": [...]}
func StoreTools(store storage.Storage, ns string) []Tool {
	nsOpt := storage.WithNamespace(ns)

	get := NewTypedTool("store_get", func(ctx context.Context, a storeKeyArgs) (any, error) {
		item, err := store.Get(ctx, a.Key, nsOpt)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return Errorf("no value stored under %q", a.Key), nil
		}
		return string(item.Data), nil
	}, WithToolDescription("Read a value from the workspace store"), WithToolReturnType(ReturnText))

	set := NewTypedTool("store_set", func(ctx context.Context, a storeSetArgs) (any, error) {
		if a.Key == "" {
			return nil, fmt.Errorf("%w: key is required", ErrInvalidArguments)
		}
		if a.TTLSeconds < 0 {
			return nil, fmt.Errorf("%w: ttl_seconds must not be negative", ErrInvalidArguments)
		}
		opts := []storage.Option{nsOpt}
		if a.TTLSeconds > 0 {
			opts = append(opts, storage.WithTTL(time.Duration(a.TTLSeconds)*time.Second))
		}
		if err := store.Set(ctx, a.Key, []byte(a.Value), opts...); err != nil {
			return nil, err
		}
		return "ok", nil
	}, WithToolDescription("Write a value to the workspace store"), WithToolReturnType(ReturnText))

	del := NewTypedTool("store_delete", func(ctx context.Context, a storeKeyArgs) (any, error) {
		if err := store.Delete(ctx, nsOpt, storage.WithKey(a.Key)); err != nil {
			return nil, err
		}
		return "ok", nil
	}, WithToolDescription("Delete a value from the workspace store"), WithToolReturnType(ReturnText))

	list := NewTypedTool("store_list", func(ctx context.Context, _ storeListArgs) (any, error) {
		keys, err := store.Keys(ctx, nsOpt)
		if err != nil {
			return nil, err
		}
		if keys == nil {
			keys = []string{}
		}
		return map[string]any{"keys": keys}, nil
	}, WithToolDescription("List the keys in the workspace store"), WithToolReturnType(ReturnText))

	return []Tool{get, set, del, list}
}
