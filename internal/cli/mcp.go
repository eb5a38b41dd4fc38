package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jdg-tools/jdg/internal/config"
	"github.com/jdg-tools/jdg/internal/diagram"
	"github.com/jdg-tools/jdg/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server over stdio",
		Long: `Start an MCP (Model Context Protocol) server over stdin/stdout.

The server exposes the generate_diagram, file_tree, list_projects,
add_project and open_project tools to MCP clients.

This command is typically started by an MCP client, not run directly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// stdout carries the protocol; logs go to --log or stderr.
			logOut := cmd.ErrOrStderr()
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					return fmt.Errorf("open log file %s: %w", logFile, err)
				}
				defer f.Close()
				logOut = f
			}

			sess, err := newSession(cfg, true, logOut)
			if err != nil {
				return err
			}
			defer sess.Close()

			server := mcp.NewServer(mcp.Options{
				Generator: sess.gen,
				Registry:  config.NewRegistry(cfg.RegistryPath()),
				Tree:      sess.treeOptions(),
				Diagram:   diagram.Options{Vertical: cfg.Diagram.Vertical, Stereotypes: cfg.Diagram.Stereotypes},
				Version:   Version,
				Verbose:   verbose || logFile != "",
				Logger:    stderrLogger(logOut),
			})

			// Handle signals for graceful shutdown.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					cancel()
				case <-ctx.Done():
				}
			}()

			if err := server.Run(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log", "", "path to write server logs")

	return cmd
}
