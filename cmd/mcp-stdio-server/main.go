// Command mcp-stdio-server serves MCP over stdin and stdout. Components are
// declared in a TOML or YAML manifest; without one the built-in echo, store
// and clock modules are exposed.
//
// Standard output carries protocol traffic only. Logs go to standard error.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const serverName = "mcp-stdio-server"

func newRootCmd() *cobra.Command {
	var opts serveOptions

	rootCmd := &cobra.Command{
		Use:           serverName,
		Short:         "Serve MCP over stdio",
		Long:          `Serve Model Context Protocol requests as line-delimited JSON-RPC on stdin and stdout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	opts.bind(rootCmd.Flags())

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Stderr.WriteString(serverName + ": " + err.Error() + "\n")
		os.Exit(1)
	}
}
