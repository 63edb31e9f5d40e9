package mcpservice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ggoodman/mcp-stdio-server/mcp"
)

// ErrInvalidLoggingLevel indicates the provided level is not one of the
// protocol-defined LoggingLevel values, or is not among the levels the
// server advertises.
var ErrInvalidLoggingLevel = errors.New("invalid logging level")

// ErrLoggingUnsupported is returned by SetLogLevel when no LevelSetter is
// configured.
var ErrLoggingUnsupported = errors.New("logging not supported")

// LevelSetter applies an MCP logging level to the process logger.
type LevelSetter interface {
	SetLevel(ctx context.Context, level mcp.LoggingLevel) error
}

// NewSlogLevelVarLogging returns a LevelSetter that maps MCP LoggingLevel
// onto a slog.LevelVar. Handlers created from the same LevelVar follow the
// change.
func NewSlogLevelVarLogging(lv *slog.LevelVar) LevelSetter {
	return &slogLevelVarLogging{lv: lv}
}

type slogLevelVarLogging struct{ lv *slog.LevelVar }

func (l *slogLevelVarLogging) SetLevel(_ context.Context, level mcp.LoggingLevel) error {
	if l == nil || l.lv == nil {
		return nil
	}
	lvl, ok := SlogLevel(level)
	if !ok {
		return ErrInvalidLoggingLevel
	}
	l.lv.Set(lvl)
	return nil
}

// SlogLevel maps an MCP level onto the nearest slog level. Notice maps to
// info and everything above error maps to error.
func SlogLevel(level mcp.LoggingLevel) (slog.Level, bool) {
	switch level {
	case mcp.LoggingLevelDebug:
		return slog.LevelDebug, true
	case mcp.LoggingLevelInfo, mcp.LoggingLevelNotice:
		return slog.LevelInfo, true
	case mcp.LoggingLevelWarning:
		return slog.LevelWarn, true
	case mcp.LoggingLevelError, mcp.LoggingLevelCritical, mcp.LoggingLevelAlert, mcp.LoggingLevelEmergency:
		return slog.LevelError, true
	}
	return 0, false
}

// SetLogLevel applies level through the configured LevelSetter.
func (s *Server) SetLogLevel(ctx context.Context, level mcp.LoggingLevel) error {
	if s.logging == nil {
		return ErrLoggingUnsupported
	}
	lc, _ := mcp.FindCapability[mcp.LoggingCapability](s.cfg.Capabilities)
	if !lc.Allows(level) {
		return ErrInvalidLoggingLevel
	}
	if err := s.logging.SetLevel(ctx, level); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "mcpservice.logging.set_level", slog.String("level", string(level)))
	return nil
}
