package main

import (
	"fmt"

	"github.com/ggoodman/mcp-stdio-server/internal/config"
	"github.com/ggoodman/mcp-stdio-server/storage/memory"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Check a manifest and print the components it declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := config.LoadManifest(args[0])
			if err != nil {
				return err
			}
			store, err := memory.New(1)
			if err != nil {
				return err
			}
			defer store.Close()

			srv, err := m.Build(config.DefaultModules(), config.ModuleDeps{Store: store})
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d tools, %d resources, %d prompts\n",
				m.Server.Name, m.Server.Version, len(srv.Tools()), len(srv.Resources()), len(srv.Prompts()))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), serverName, version)
		},
	}
}
