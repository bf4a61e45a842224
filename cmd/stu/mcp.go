package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"Stu-Music-Go/pkg/tools"
)

func newMCPCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the Spotify search tool over stdio",
		Long: "Runs the Model Context Protocol server on stdin/stdout. Set mcp.command " +
			"to this binary with args [\"mcp\"] to have the API spawn it per request.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := ctx.spotifyClient()
			if err != nil {
				return err
			}
			signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ctx.logger().WithField("component", "mcp").Info("search tool server running on stdio")
			return tools.Serve(signalCtx, tools.NewServer(sp, ctx.logger()))
		},
	}
}
