package preferences

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type fileDocument struct {
	Units string `yaml:"units"`
}

// FileStore keeps the preference in a small YAML document.
type FileStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) LoadUnits(ctx context.Context) (models.Units, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preferences: %w", err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		invalidStored(s.logger, s.path, string(data))
		return "", false, nil
	}

	units, ok := parseStored(doc.Units)
	if !ok && doc.Units != "" {
		invalidStored(s.logger, s.path, doc.Units)
	}
	return units, ok, nil
}

func (s *FileStore) SaveUnits(ctx context.Context, units models.Units) error {
	data, err := yaml.Marshal(fileDocument{Units: string(units)})
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating preferences dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing preferences: %w", err)
	}

	s.logger.Debug("Unit preference saved", zap.String("path", s.path), zap.String("units", string(units)))
	return nil
}
