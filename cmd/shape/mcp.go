package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/shape/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes schema validation to AI agents as MCP tools (validate, list_schemas,
get_schema) and stored schemas as shape://schemas/{name} resources.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		storeSpec, _ := cmd.Flags().GetString("store")

		b, err := openStore(storeSpec, true)
		if err != nil {
			return usageError(err)
		}
		defer b.close()

		srv := mcp.NewServer(b.registry(), logger)

		switch transport {
		case "stdio":
			// Stdout carries JSON-RPC.
			log.SetOutput(os.Stderr)
			logger.Info("starting shape MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return usageError(fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport))
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("store", defaultStore, "Schema store: a directory or a redis:// URL")
}
