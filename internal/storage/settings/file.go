package settings

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const fileMode = 0o644

// fileStore keeps settings in a flat YAML map. The file is re-read on every
// Get and rewritten through a temporary file on every Set.
type fileStore struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
	log  *slog.Logger
}

func NewFileStore(path string, log *slog.Logger) *fileStore {
	return NewFileStoreWithFS(afero.NewOsFs(), path, log)
}

func NewFileStoreWithFS(fs afero.Fs, path string, log *slog.Logger) *fileStore {
	return &fileStore{
		fs:   fs,
		path: path,
		log:  log.With(slog.String("item", "FileStore"), slog.String("path", path)),
	}
}

func (s *fileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}

	return values[key], nil
}

func (s *fileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}

	values[key] = value

	if err := s.write(values); err != nil {
		s.log.Error("Cannot save setting", slog.String("key", key), slog.Any("error", err))

		return err
	}

	return nil
}

func (s *fileStore) read() (map[string]string, error) {
	values := make(map[string]string)

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}

		return nil, fmt.Errorf("cannot read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("cannot parse settings file: %w", err)
	}

	return values, nil
}

func (s *fileStore) write(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("cannot marshal settings: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create settings dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, fileMode); err != nil {
		return fmt.Errorf("cannot write settings file: %w", err)
	}

	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)

		return fmt.Errorf("cannot replace settings file: %w", err)
	}

	return nil
}
