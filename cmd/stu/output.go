package main

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"Stu-Music-Go/pkg/music"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatDuration(ms int) string {
	d := time.Duration(ms) * time.Millisecond
	return strconv.Itoa(int(d.Minutes())) + ":" + twoDigits(int(d.Seconds())%60)
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func trackTable(tracks []music.Track) string {
	rows := make([][]string, 0, len(tracks))
	for i, t := range tracks {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			t.Name,
			t.Artist,
			t.Album,
			formatDuration(t.DurationMS),
			t.ID,
		})
	}
	return renderTable(
		[]string{"#", "Track", "Artist", "Album", "Length", "ID"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

// resultsTable renders whichever list of res is populated.
func resultsTable(res *music.SearchResults) string {
	switch {
	case len(res.Albums) > 0:
		rows := make([][]string, 0, len(res.Albums))
		for _, a := range res.Albums {
			rows = append(rows, []string{a.Name, a.Artist, a.ReleaseDate, a.ID})
		}
		return renderTable([]string{"Album", "Artist", "Released", "ID"}, rows, nil)
	case len(res.Artists) > 0:
		rows := make([][]string, 0, len(res.Artists))
		for _, a := range res.Artists {
			rows = append(rows, []string{a.Name, strings.Join(a.Genres, ", "), strconv.Itoa(a.Popularity), a.ID})
		}
		return renderTable([]string{"Artist", "Genres", "Popularity", "ID"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})
	case len(res.Playlists) > 0:
		rows := make([][]string, 0, len(res.Playlists))
		for _, p := range res.Playlists {
			rows = append(rows, []string{p.Name, p.Owner, strconv.Itoa(p.TracksTotal), p.ID})
		}
		return renderTable([]string{"Playlist", "Owner", "Tracks", "ID"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})
	}
	return trackTable(res.Tracks)
}
