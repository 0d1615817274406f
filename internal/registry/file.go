package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

type fileEntry struct {
	StickerPackName string `json:"sticker_pack_name"`
}

// FileStore keeps the whole mapping in one JSON file. Every operation reads
// the file; Set rewrites it atomically (temp file + rename) while holding mu,
// so concurrent updates for different users never drop each other.
type FileStore struct {
	path string
	mu   sync.Mutex
	log  zerolog.Logger
}

func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{
		path: path,
		log:  log.With().Str("component", "registry").Str("backend", "file").Logger(),
	}
}

func (s *FileStore) Get(_ context.Context, userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.load()[userID]
	if !ok || e.StickerPackName == "" {
		return "", false
	}
	return e.StickerPackName, true
}

func (s *FileStore) Set(_ context.Context, userID, packName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	data[userID] = fileEntry{StickerPackName: packName}
	if err := s.write(data); err != nil {
		return fmt.Errorf("registry: write %s: %w", s.path, err)
	}
	return nil
}

// load returns an empty mapping when the file is missing or corrupt.
func (s *FileStore) load() map[string]fileEntry {
	data := make(map[string]fileEntry)

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("registry unreadable, treating as empty")
		}
		return data
	}
	if len(raw) == 0 {
		return data
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("registry corrupt, treating as empty")
		return make(map[string]fileEntry)
	}
	return data
}

func (s *FileStore) write(data map[string]fileEntry) error {
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".registry-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
