// Package mindmap serves the song layout shown in the mind map view. The
// data is a static fixture; edits live in memory and are lost on restart.
package mindmap

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

//go:embed songs.json
var fixture []byte

// ErrNotFound is returned by Move when no song matches.
var ErrNotFound = errors.New("song not found")

// Coordinates is a point in the map's 3D space.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// SongData is one node of the map. Coordinates is the original layout;
// Coordinates2 is the position after user edits.
type SongData struct {
	SongName     string      `json:"song_name"`
	Artist       string      `json:"artist"`
	Coordinates  Coordinates `json:"coordinates"`
	Coordinates2 Coordinates `json:"coordinates2"`
}

// Store holds the current layout.
type Store struct {
	mu      sync.RWMutex
	initial []SongData
	songs   []SongData
}

// New returns a Store seeded from the embedded fixture.
func New() (*Store, error) {
	return parse(fixture)
}

// Load returns a Store seeded from the JSON file at path, or from the
// embedded fixture when path is empty.
func Load(path string) (*Store, error) {
	if path == "" {
		return New()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mind map fixture: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Store, error) {
	var songs []SongData
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, fmt.Errorf("decode mind map fixture: %w", err)
	}
	s := &Store{initial: songs}
	s.Reset()
	return s, nil
}

// List returns a copy of every song.
func (s *Store) List() []SongData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SongData, len(s.songs))
	copy(out, s.songs)
	return out
}

// Move sets the edited position of the song identified by name and artist.
func (s *Store) Move(song, artist string, c Coordinates) (SongData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.songs {
		if s.songs[i].SongName == song && s.songs[i].Artist == artist {
			s.songs[i].Coordinates2 = c
			return s.songs[i], nil
		}
	}
	return SongData{}, ErrNotFound
}

// Reset discards every edit.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.songs = make([]SongData, len(s.initial))
	copy(s.songs, s.initial)
}
