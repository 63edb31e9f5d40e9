package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/ggoodman/mcp-stdio-server/internal/config"
	"github.com/ggoodman/mcp-stdio-server/internal/logctx"
	"github.com/ggoodman/mcp-stdio-server/mcp"
	"github.com/ggoodman/mcp-stdio-server/mcpservice"
	"github.com/ggoodman/mcp-stdio-server/stdio"
	"github.com/ggoodman/mcp-stdio-server/storage"
	"github.com/ggoodman/mcp-stdio-server/storage/memory"
	redisstore "github.com/ggoodman/mcp-stdio-server/storage/redis"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// serveOptions holds flag values. Empty fields fall back to the environment.
type serveOptions struct {
	manifest string
	logLevel string
	store    string
}

func (o *serveOptions) bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.manifest, "manifest", "", "component manifest (.toml, .yaml or .yml) [MCP_MANIFEST]")
	fs.StringVar(&o.logLevel, "log-level", "", "MCP logging level written to stderr [MCP_LOG_LEVEL]")
	fs.StringVar(&o.store, "store", "", "workspace store backend: memory or redis [MCP_STORE]")
}

func (o serveOptions) apply(env *config.Env) {
	if o.manifest != "" {
		env.Manifest = o.manifest
	}
	if o.logLevel != "" {
		env.LogLevel = o.logLevel
	}
	if o.store != "" {
		env.Store = o.store
	}
}

func newServeCmd() *cobra.Command {
	var opts serveOptions
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin and stdout (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	opts.bind(serveCmd.Flags())
	return serveCmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	opts.apply(&env)
	if err := env.Validate(); err != nil {
		return err
	}

	lv := new(slog.LevelVar)
	lvl, _ := mcpservice.SlogLevel(mcp.LoggingLevel(env.LogLevel))
	lv.Set(lvl)
	log := newLogger(cmd.ErrOrStderr(), env.LogFormat, lv)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, err := loadManifest(env.Manifest)
	if err != nil {
		return err
	}

	deps := config.ModuleDeps{}
	if slices.Contains(m.Modules, "store") {
		store, err := openStore(ctx, env)
		if err != nil {
			return err
		}
		defer store.Close()
		deps.Store = store
	}

	srv, err := m.Build(config.DefaultModules(), deps,
		mcpservice.WithLogger(log),
		mcpservice.WithLogging(mcpservice.NewSlogLevelVarLogging(lv)),
	)
	if err != nil {
		return err
	}

	fw, err := mcpservice.NewFileWatcher(srv)
	if err != nil {
		return err
	}
	defer fw.Close()
	n, err := fw.WatchResources()
	if err != nil {
		return err
	}
	if n > 0 {
		go func() {
			if err := fw.Run(ctx); err != nil && ctx.Err() == nil {
				log.Warn("main.watcher.stopped", slog.String("err", err.Error()))
			}
		}()
	}

	log.Info("main.serve.start",
		slog.String("manifest", env.Manifest),
		slog.String("store", env.Store),
		slog.Int("watched", n),
	)

	h := stdio.NewHandler(srv, stdio.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()), stdio.WithLogger(log))
	if err := h.Serve(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info("main.serve.stop")
	return nil
}

func newLogger(w io.Writer, format string, lv *slog.LevelVar) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: lv}
	var base slog.Handler
	if format == "json" {
		base = slog.NewJSONHandler(w, hopts)
	} else {
		base = slog.NewTextHandler(w, hopts)
	}
	return slog.New(logctx.Handler{Handler: base}).With(slog.String("instance", uuid.NewString()))
}

func loadManifest(path string) (*config.Manifest, error) {
	if path == "" {
		return config.DefaultManifest(serverName, version), nil
	}
	return config.LoadManifest(path)
}

func openStore(ctx context.Context, env config.Env) (storage.Storage, error) {
	switch env.Store {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: env.RedisAddr, DB: env.RedisDB})
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis %s: %w", env.RedisAddr, err)
		}
		return redisstore.New(redisstore.Config{Client: client, KeyPrefix: env.StorePrefix})
	default:
		return memory.New(env.StoreMaxItems)
	}
}
