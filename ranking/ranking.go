// Package ranking keeps the list of best scores.
package ranking

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	// MaxEntries is the length of the ranking.
	MaxEntries = 10
	// DefaultName is used when a score is submitted without a player name.
	DefaultName = "Player"
)

type Entry struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Score int    `yaml:"score"`
}

// Store persists the ranking. Implementations must treat unreadable data as
// an empty ranking.
type Store interface {
	// Submit adds a score and returns the updated ranking.
	Submit(ctx context.Context, name string, score int) ([]Entry, error)
	List(ctx context.Context) ([]Entry, error)
}

// NewEntry returns an entry with a fresh id. Blank names become DefaultName.
func NewEntry(name string, score int) Entry {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	return Entry{ID: uuid.NewString(), Name: name, Score: score}
}

// Insert appends the entry, sorts the list by descending score and keeps the
// first MaxEntries. Ties keep their submission order.
func Insert(list []Entry, e Entry) []Entry {
	out := append(slices.Clone(list), e)
	slices.SortStableFunc(out, func(a, b Entry) int { return cmp.Compare(b.Score, a.Score) })
	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}

type file struct {
	Ranking []Entry `yaml:"ranking"`
}

// FileStore keeps the ranking in a YAML file.
type FileStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewFileStore(path string, l *slog.Logger) *FileStore {
	if l == nil {
		l = slog.Default()
	}
	return &FileStore{path: path, logger: l}
}

func (f *FileStore) List(context.Context) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load(), nil
}

func (f *FileStore) Submit(_ context.Context, name string, score int) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := Insert(f.load(), NewEntry(name, score))
	if err := f.save(list); err != nil {
		return list, err
	}
	return list, nil
}

// load never fails: a missing or corrupt file is an empty ranking.
func (f *FileStore) load() []Entry {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("unable to read ranking", slog.String("path", f.path), slog.String("error", err.Error()))
		}
		return nil
	}
	var r file
	if err := yaml.Unmarshal(data, &r); err != nil {
		f.logger.Warn("corrupt ranking, starting empty", slog.String("path", f.path), slog.String("error", err.Error()))
		return nil
	}
	list := make([]Entry, 0, len(r.Ranking))
	for _, e := range r.Ranking {
		list = Insert(list, e)
	}
	return list
}

func (f *FileStore) save(list []Entry) error {
	data, err := yaml.Marshal(file{Ranking: list})
	if err != nil {
		return fmt.Errorf("failed to encode ranking: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create ranking dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ranking: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace ranking: %w", err)
	}
	return nil
}
