package ini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/BartekS5/legacysync/internal/store"
	"github.com/BartekS5/legacysync/pkg/logger"
	"github.com/BartekS5/legacysync/pkg/models"
)

// ErrDataDirNotFound is returned when the legacy data directory is missing.
var ErrDataDirNotFound = errors.New("legacy data directory not found")

// Repository is the persistence the service needs for config entries.
type Repository interface {
	ReplaceFile(ctx context.Context, fileName string, entries []models.ConfigEntry) error
	ListByFile(ctx context.Context, fileName string) ([]models.ConfigEntry, error)
	Find(ctx context.Context, fileName, section, key string) (*models.ConfigEntry, error)
	UpdateValue(ctx context.Context, fileName, section, key, value, actor string, at time.Time) error
}

// FileFailure records a file that could not be loaded.
type FileFailure struct {
	File   string `json:"file" yaml:"file"`
	Reason string `json:"reason" yaml:"reason"`
}

// SyncResult summarizes one directory sync.
type SyncResult struct {
	Directory string        `json:"directory" yaml:"directory"`
	Total     int           `json:"total" yaml:"total"`
	Loaded    int           `json:"loaded" yaml:"loaded"`
	Entries   int           `json:"entries" yaml:"entries"`
	Failures  []FileFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// OK reports whether at least one file was loaded.
func (r *SyncResult) OK() bool { return r != nil && r.Loaded > 0 }

// Service loads legacy INI files into the canonical store and back out.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// LoadFile parses the file at path and replaces every stored entry of that
// file name with the parsed set. It returns the number of entries stored.
func (s *Service) LoadFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open ini file '%s': %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	entries, err := Parse(name, f, s.now(), models.ActorSystem)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ini file '%s': %w", path, err)
	}
	if err := s.repo.ReplaceFile(ctx, name, entries); err != nil {
		return 0, fmt.Errorf("failed to store entries of '%s': %w", name, err)
	}

	logger.Infof("INI file loaded: %s, %d entries", name, len(entries))
	return len(entries), nil
}

// SyncDirectory loads every file in dir matching pattern (top level only).
// A failing file is logged and recorded; the rest are still loaded.
func (s *Service) SyncDirectory(ctx context.Context, dir, pattern string) (*SyncResult, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	result := &SyncResult{Directory: abs}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return result, fmt.Errorf("%w: %s", ErrDataDirNotFound, abs)
	}

	files, err := filepath.Glob(filepath.Join(abs, pattern))
	if err != nil {
		return result, fmt.Errorf("invalid ini pattern '%s': %w", pattern, err)
	}
	sort.Strings(files)
	result.Total = len(files)

	for _, file := range files {
		n, err := s.LoadFile(ctx, file)
		if err != nil {
			logger.Errorf("Error loading INI file %s: %v", file, err)
			result.Failures = append(result.Failures, FileFailure{File: filepath.Base(file), Reason: err.Error()})
			continue
		}
		result.Loaded++
		result.Entries += n
	}

	logger.Infof("INI sync finished: %d/%d files processed", result.Loaded, result.Total)
	return result, nil
}

// Value returns the stored value of file/section/key.
func (s *Service) Value(ctx context.Context, fileName, section, key string) (string, bool, error) {
	e, err := s.repo.Find(ctx, fileName, section, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

// Document returns every stored entry of a file as a section -> key -> value
// document.
func (s *Service) Document(ctx context.Context, fileName string) (*Document, error) {
	entries, err := s.repo.ListByFile(ctx, fileName)
	if err != nil {
		return nil, err
	}
	return DocumentOf(entries), nil
}

// Update changes one stored value. It reports false when the key is unknown.
func (s *Service) Update(ctx context.Context, fileName, section, key, value string) (bool, error) {
	err := s.repo.UpdateValue(ctx, fileName, section, key, value, models.ActorSystem, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Export writes the stored entries of fileName to dest as an INI file.
func (s *Service) Export(ctx context.Context, fileName, dest string) error {
	doc, err := s.Document(ctx, fileName)
	if err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", dest, err)
	}
	if err := Serialize(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("failed to write '%s': %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Infof("Configuration exported to: %s", dest)
	return nil
}
