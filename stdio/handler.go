package stdio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ggoodman/mcp-stdio-server/internal/engine"
	"github.com/ggoodman/mcp-stdio-server/internal/jsonrpc"
	"github.com/ggoodman/mcp-stdio-server/internal/protocol"
	"github.com/ggoodman/mcp-stdio-server/mcpservice"
)

// ErrAlreadyServing is returned when Serve is called more than once.
var ErrAlreadyServing = errors.New("stdio: handler already serving")

// Handler is a single-connection stdio transport that reads newline-delimited
// JSON-RPC messages from an io.Reader and writes replies to an io.Writer. By
// default it uses os.Stdin and os.Stdout.
//
// The handler is transport-only; it delegates all MCP semantics to an engine
// bound to the provided mcpservice.Server.
type Handler struct {
	srv *mcpservice.Server
	r   io.Reader
	w   io.Writer
	l   *slog.Logger

	serving  atomic.Bool
	stopped  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHandler constructs a stdio Handler with defaults and applies options.
func NewHandler(srv *mcpservice.Server, opts ...Option) *Handler {
	h := &Handler{
		srv:    srv,
		r:      os.Stdin,
		w:      os.Stdout,
		l:      slog.Default(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Stop asks Serve to return after the line it is currently processing.
func (h *Handler) Stop() {
	h.stopped.Store(true)
	h.stopOnce.Do(func() { close(h.stopCh) })
}

type readResult struct {
	line string
	err  error
}

// Serve runs the event loop until EOF on the reader, cancellation of ctx or
// a call to Stop. Lines are processed one at a time in arrival order: each
// request produces exactly one reply line, notifications produce none, and
// the writer is flushed after every reply.
//
// EOF and Stop return nil; cancellation returns ctx.Err(). A read blocked on
// the underlying reader is abandoned, not interrupted, when Serve returns.
func (h *Handler) Serve(ctx context.Context) error {
	if !h.serving.CompareAndSwap(false, true) {
		return ErrAlreadyServing
	}

	eng := engine.NewEngine(h.srv, engine.WithLogger(h.l))
	defer eng.Close()

	bw := bufio.NewWriter(h.w)
	lines := make(chan readResult)
	done := make(chan struct{})
	defer close(done)
	go h.readLines(lines, done)

	h.l.InfoContext(ctx, "stdio.serve.start", slog.String("engine_id", eng.ID()))
	defer h.l.InfoContext(ctx, "stdio.serve.stop")

	for {
		if h.stopped.Load() {
			return nil
		}

		var rr readResult
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.stopCh:
			return nil
		case rr = <-lines:
		}

		if line := strings.TrimSpace(rr.line); line != "" {
			if err := h.processLine(ctx, eng, bw, line); err != nil {
				return err
			}
		}

		if rr.err != nil {
			if errors.Is(rr.err, io.EOF) {
				return nil
			}
			h.l.ErrorContext(ctx, "stdio.read.fail", slog.String("err", rr.err.Error()))
			return fmt.Errorf("stdio: read: %w", rr.err)
		}
	}
}

func (h *Handler) readLines(out chan<- readResult, done <-chan struct{}) {
	br := bufio.NewReader(h.r)
	for {
		line, err := br.ReadString('\n')
		select {
		case out <- readResult{line: line, err: err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

// processLine handles one raw line. A panic anywhere below is turned into an
// internal error reply so the loop keeps running.
func (h *Handler) processLine(ctx context.Context, eng *engine.Engine, bw *bufio.Writer, line string) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			h.l.ErrorContext(ctx, "stdio.line.panic", slog.Any("panic", r))
			err = h.write(bw, protocol.NewErrorResponse(nil, jsonrpc.ErrorCodeInternalError, fmt.Sprintf("internal error: %v", r), nil))
		}
	}()

	msg := protocol.ParseMessage([]byte(line))
	reply := eng.HandleMessage(ctx, msg)
	if reply == nil {
		return nil
	}
	if err := h.write(bw, reply); err != nil {
		return err
	}
	h.l.DebugContext(ctx, "stdio.line.ok", slog.Int64("dur_ms", time.Since(start).Milliseconds()))
	return nil
}

func (h *Handler) write(bw *bufio.Writer, msg protocol.Message) error {
	b, err := protocol.SerializeMessage(msg)
	if err != nil {
		h.l.Error("stdio.write.serialize_fail", slog.String("err", err.Error()))
		b, _ = protocol.SerializeMessage(protocol.NewErrorResponse(replyID(msg), jsonrpc.ErrorCodeInternalError, "internal error", nil))
	}
	if _, err := bw.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("stdio: write: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("stdio: flush: %w", err)
	}
	return nil
}

func replyID(msg protocol.Message) *jsonrpc.RequestID {
	switch m := msg.(type) {
	case *protocol.Response:
		return m.ID
	case *protocol.ErrorResponse:
		return m.ID
	}
	return nil
}
