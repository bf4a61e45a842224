package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"Stu-Music-Go/pkg/agent"
)

func newFindCommand(ctx *commandContext) *cobra.Command {
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "find [query]",
		Short: "Rewrite a natural-language request and search every variant",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				if !isTerminal(os.Stdin) {
					return errors.New("query is required")
				}
				var err error
				if query, err = promptQuery(); err != nil {
					return err
				}
			}

			sp, err := ctx.spotifyClient()
			if err != nil {
				return err
			}
			svc := &agent.Service{
				Tools:    ctx.dialer(sp),
				Rewriter: ctx.rewriter(),
				Log:      ctx.logger(),
			}
			if !noHistory {
				store, err := ctx.openDB()
				if err != nil {
					return err
				}
				defer store.Close()
				svc.History = store
			}

			res, err := svc.FindMusic(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to find music: %w", err)
			}
			if ctx.wantJSON(cmd) {
				return writeJSON(cmd, map[string]any{
					"queries": res.Queries,
					"tracks":  res.Tracks,
					"failed":  res.Failed,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Searched: %s\n", strings.Join(res.Queries, " | "))
			if res.Failed > 0 {
				fmt.Fprintf(out, "%d of %d searches failed\n", res.Failed, len(res.Queries))
			}
			if len(res.Tracks) == 0 {
				fmt.Fprintln(out, "No tracks found.")
				return nil
			}
			fmt.Fprintln(out, trackTable(res.Tracks))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the search in the database")
	return cmd
}

func promptQuery() (string, error) {
	var query string
	err := huh.NewInput().
		Title("What do you want to listen to?").
		Placeholder("moody trip hop for a rainy evening").
		Value(&query).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("enter a request")
			}
			return nil
		}).
		Run()
	if err != nil {
		return "", fmt.Errorf("read query: %w", err)
	}
	return strings.TrimSpace(query), nil
}
