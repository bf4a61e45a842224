package music

import "testing"

func TestParseSearchType(t *testing.T) {
	cases := map[string]SearchType{
		"":         TypeTrack,
		"track":    TypeTrack,
		" Album ":  TypeAlbum,
		"ARTIST":   TypeArtist,
		"playlist": TypePlaylist,
	}
	for in, want := range cases {
		got, err := ParseSearchType(in)
		if err != nil || got != want {
			t.Errorf("ParseSearchType(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseSearchType("episode"); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestClampLimit(t *testing.T) {
	for in, want := range map[int]int{0: 10, -3: 10, 1: 1, 25: 25, 50: 50, 51: 50} {
		if got := ClampLimit(in); got != want {
			t.Errorf("ClampLimit(%d) = %d want %d", in, got, want)
		}
	}
}

func TestSearchResultsLen(t *testing.T) {
	var nilResults *SearchResults
	if nilResults.Len() != 0 {
		t.Error("nil results should have zero length")
	}
	r := &SearchResults{Tracks: []Track{{}, {}}, Artists: []Artist{{}}}
	if r.Len() != 3 {
		t.Errorf("Len = %d", r.Len())
	}
}
