package cmd

import (
	"context"
	"fmt"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tasktag/tasktag/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio",
	Long: `Starts a Model Context Protocol server exposing the validate, fix,
move, and tag-partition operations as tools. stdout carries pure JSON-RPC;
all diagnostics go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context())
	},
}

func runMCPServer(ctx context.Context) error {
	fmt.Fprintln(os.Stderr, "tasktag MCP server starting...")

	tagStore, err := GetStore()
	if err != nil {
		return fmt.Errorf("failed to initialize tag store: %w", err)
	}
	defer func() { _ = tagStore.Close() }()

	impl := &mcpsdk.Implementation{
		Name:    "tasktag-mcp",
		Version: version,
	}
	serverOpts := &mcpsdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.InitializedParams) {
			fmt.Fprintln(os.Stderr, "MCP connection established")
			if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "[DEBUG] Client initialized")
			}
		},
	}

	server := mcpsdk.NewServer(impl, serverOpts)
	if err := mcp.RegisterTools(server, tagStore, CurrentTag()); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	if err := server.Run(ctx, mcpsdk.NewStdioTransport()); err != nil {
		return fmt.Errorf("MCP server terminated: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
