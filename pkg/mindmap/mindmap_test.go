package mindmap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMoveAndReset(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	songs := s.List()
	if len(songs) == 0 {
		t.Fatal("fixture is empty")
	}
	first := songs[0]

	moved, err := s.Move(first.SongName, first.Artist, Coordinates{X: 1, Y: 2, Z: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.Coordinates2 != (Coordinates{X: 1, Y: 2, Z: 3}) || moved.Coordinates != first.Coordinates {
		t.Fatalf("unexpected song after move: %+v", moved)
	}
	if s.List()[0].Coordinates2.X != 1 {
		t.Error("move not visible in List")
	}
	if songs[0].Coordinates2 != first.Coordinates2 {
		t.Error("List returned shared storage")
	}

	s.Reset()
	if s.List()[0] != first {
		t.Errorf("reset did not restore fixture: %+v", s.List()[0])
	}
}

func TestMoveUnknownSong(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Move("Teardrop", "Nobody", Coordinates{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	data := `[{"song_name":"A","artist":"B","coordinates":{"x":1,"y":1,"z":1},"coordinates2":{"x":1,"y":1,"z":1}}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.List(); len(got) != 1 || got[0].SongName != "A" {
		t.Fatalf("unexpected songs: %+v", got)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
