package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"Stu-Music-Go/pkg/enrich"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "enrich <track-id>...",
		Short: "Look up MusicBrainz recordings and AcousticBrainz features for tracks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := ctx.spotifyClient()
			if err != nil {
				return err
			}
			store, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := ctx.enricher(sp, store).Enrich(cmd.Context(), args)
			if err != nil {
				return err
			}
			if ctx.wantJSON(cmd) {
				return writeJSON(cmd, res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), enrichTable(res))
			return nil
		},
	}
}

func enrichTable(res []enrich.Result) string {
	rows := make([][]string, 0, len(res))
	for _, r := range res {
		detail := r.Error
		if detail == "" {
			detail = summarizeFeatures(r.Features)
		}
		rows = append(rows, []string{r.TrackID, r.ISRC, r.Title, r.MBID, detail})
	}
	return renderTable([]string{"Track", "ISRC", "Recording", "MBID", "Features"}, rows, nil)
}

// summarizeFeatures lists each classifier's winning value in name order.
func summarizeFeatures(f enrich.Features) string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+f[name].Value)
	}
	return strings.Join(parts, " ")
}
