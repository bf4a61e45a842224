package spotify

import (
	"strings"

	"github.com/zmb3/spotify"

	"Stu-Music-Go/pkg/music"
)

const unknownOwner = "Unknown Owner"

// parseSearchResult flattens the page matching t. Pages for other types are
// ignored even if Spotify returned them.
func parseSearchResult(res *spotify.SearchResult, t music.SearchType) *music.SearchResults {
	out := &music.SearchResults{}
	if res == nil {
		return out
	}
	switch t {
	case music.TypeTrack, "":
		if res.Tracks != nil {
			out.Tracks = tracksFrom(res.Tracks.Tracks)
		}
	case music.TypeAlbum:
		if res.Albums != nil {
			out.Albums = make([]music.Album, 0, len(res.Albums.Albums))
			for _, a := range res.Albums.Albums {
				out.Albums = append(out.Albums, music.Album{
					ID:          string(a.ID),
					Name:        a.Name,
					URI:         string(a.URI),
					Artist:      joinArtists(a.Artists),
					ReleaseDate: a.ReleaseDate,
				})
			}
		}
	case music.TypeArtist:
		if res.Artists != nil {
			out.Artists = make([]music.Artist, 0, len(res.Artists.Artists))
			for _, a := range res.Artists.Artists {
				genres := a.Genres
				if genres == nil {
					genres = []string{}
				}
				out.Artists = append(out.Artists, music.Artist{
					ID:         string(a.ID),
					Name:       a.Name,
					URI:        string(a.URI),
					Genres:     genres,
					Popularity: a.Popularity,
				})
			}
		}
	case music.TypePlaylist:
		if res.Playlists != nil {
			out.Playlists = make([]music.Playlist, 0, len(res.Playlists.Playlists))
			for _, p := range res.Playlists.Playlists {
				owner := p.Owner.DisplayName
				if owner == "" {
					owner = unknownOwner
				}
				out.Playlists = append(out.Playlists, music.Playlist{
					ID:          string(p.ID),
					Name:        p.Name,
					URI:         string(p.URI),
					Owner:       owner,
					TracksTotal: int(p.Tracks.Total),
				})
			}
		}
	}
	return out
}

func tracksFrom(items []spotify.FullTrack) []music.Track {
	tracks := make([]music.Track, 0, len(items))
	for _, t := range items {
		tracks = append(tracks, music.Track{
			ID:         string(t.ID),
			Name:       t.Name,
			URI:        string(t.URI),
			Artist:     joinArtists(t.Artists),
			Album:      t.Album.Name,
			DurationMS: t.Duration,
			Popularity: t.Popularity,
		})
	}
	return tracks
}

func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}
