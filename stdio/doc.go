// Package stdio implements a single-connection MCP transport over
// stdin/stdout. It is intended for embedding servers as subprocesses, local
// development, and environments where spawning a child process and piping JSON
// is simpler than running a network server.
//
// Characteristics
//
//	Connection model : 1 process <-> 1 client
//	Framing          : one JSON-RPC message per line, empty lines skipped
//	Replies          : one line per request, none for notifications
//	Shutdown         : EOF, context cancellation or Handler.Stop
//
// Options allow supplying alternate io.Reader / io.Writer or a custom logger.
//
// Example:
//
//	srv := mcpservice.NewServer(mcpservice.Config{Name: "my-stdio-server", Version: "0.1.0"})
//	srv.Register(tools...)
//	h := stdio.NewHandler(srv)
//	if err := h.Serve(context.Background()); err != nil { log.Fatal(err) }
//
// Logs go to the handler's logger and never to the output stream, which
// carries protocol traffic only.
package stdio
