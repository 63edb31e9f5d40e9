package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ggoodman/mcp-stdio-server/mcp"
	"github.com/hashicorp/go-multierror"
	"github.com/joeshaw/envdecode"
)

// Store backends selectable through MCP_STORE.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Env is the process configuration read from the environment. Command line
// flags override individual fields.
type Env struct {
	// LogLevel is an MCP logging level. ENV: MCP_LOG_LEVEL
	LogLevel string `env:"MCP_LOG_LEVEL,default=info"`
	// LogFormat is "text" or "json". ENV: MCP_LOG_FORMAT
	LogFormat string `env:"MCP_LOG_FORMAT,default=text"`
	// Manifest is the path of the component manifest. ENV: MCP_MANIFEST
	Manifest string `env:"MCP_MANIFEST"`

	// Store selects the workspace store backend. ENV: MCP_STORE
	Store string `env:"MCP_STORE,default=memory"`
	// StoreMaxItems bounds the in-memory store. ENV: MCP_STORE_MAX_ITEMS
	StoreMaxItems int `env:"MCP_STORE_MAX_ITEMS,default=1024"`
	// StorePrefix prefixes every redis key. ENV: MCP_STORE_PREFIX
	StorePrefix string `env:"MCP_STORE_PREFIX,default=mcp:storage:"`
	// RedisAddr like "localhost:6379". ENV: REDIS_ADDR
	RedisAddr string `env:"REDIS_ADDR,default=localhost:6379"`
	// RedisDB selects the redis database. ENV: REDIS_DB
	RedisDB int `env:"REDIS_DB,default=0"`
}

// LoadEnv decodes Env from the process environment. Callers apply their
// overrides and then call Validate.
func LoadEnv() (Env, error) {
	var env Env
	if err := envdecode.Decode(&env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Env{}, fmt.Errorf("config: decode env: %w", err)
	}
	return env, nil
}

// Validate reports every invalid field at once.
func (e Env) Validate() error {
	var err error
	if !mcp.IsValidLoggingLevel(mcp.LoggingLevel(e.LogLevel)) {
		err = multierror.Append(err, fmt.Errorf("log level %q is not an MCP logging level", e.LogLevel))
	}
	if !slices.Contains([]string{"text", "json"}, e.LogFormat) {
		err = multierror.Append(err, fmt.Errorf("log format %q must be text or json", e.LogFormat))
	}
	if !slices.Contains([]string{StoreMemory, StoreRedis}, e.Store) {
		err = multierror.Append(err, fmt.Errorf("store %q must be %s or %s", e.Store, StoreMemory, StoreRedis))
	}
	if e.StoreMaxItems <= 0 {
		err = multierror.Append(err, fmt.Errorf("store max items must be positive, got %d", e.StoreMaxItems))
	}
	return err
}
