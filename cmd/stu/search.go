package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"Stu-Music-Go/pkg/music"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var typeFlag string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search Spotify directly",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := music.ParseSearchType(typeFlag)
			if err != nil {
				return err
			}
			sp, err := ctx.spotifyClient()
			if err != nil {
				return err
			}
			res, err := sp.Search(cmd.Context(), strings.Join(args, " "), t, limit)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			if ctx.wantJSON(cmd) {
				return writeJSON(cmd, res)
			}
			if res.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No results.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), resultsTable(res))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", string(music.TypeTrack), "Result type: track, album, artist or playlist")
	cmd.Flags().IntVarP(&limit, "limit", "n", music.DefaultLimit, "Number of results (1-50)")
	return cmd
}
