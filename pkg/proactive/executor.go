package proactive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fortitude-run/fortitude/pkg/storage"
)

// StoreExecutor implements Executor by comparing a watched directory's
// files against the research cache: a file with no matching cache
// entry is a GapMissing, and a file whose modification time is newer
// than its matching entry's CreatedAt by more than the staleness
// threshold is a GapStale. A file "has" an entry when a cached entry
// carries the file's relative path as a tag; the pipeline does not set
// such tags, and this executor never writes to the store itself.
type StoreExecutor struct {
	store      storage.Backend
	extensions []string
}

// NewStoreExecutor builds a StoreExecutor. extensions restricts which
// files are considered candidates for research (empty means every
// regular file).
func NewStoreExecutor(store storage.Backend, extensions []string) *StoreExecutor {
	return &StoreExecutor{store: store, extensions: extensions}
}

func (e *StoreExecutor) Scan(ctx context.Context, root string, staleness time.Duration) ([]Notification, error) {
	var notes []Notification

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !e.matchesExtension(path) {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		result, err := e.store.Search(ctx, storage.SearchQuery{
			Filters: storage.SearchFilters{Tags: []string{rel}},
			Limit:   1,
		})
		if err != nil {
			return fmt.Errorf("searching cache for %s: %w", rel, err)
		}

		switch {
		case result.Total == 0:
			notes = append(notes, Notification{
				Kind:       GapMissing,
				Path:       path,
				Detail:     fmt.Sprintf("no research cached for %s", rel),
				DetectedAt: time.Now(),
			})
		case len(result.Entries) > 0 && info.ModTime().Sub(result.Entries[0].CreatedAt) > staleness:
			notes = append(notes, Notification{
				Kind:       GapStale,
				Path:       path,
				Detail:     fmt.Sprintf("cached research for %s predates the latest file change by more than %s", rel, staleness),
				DetectedAt: time.Now(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return notes, nil
}

func (e *StoreExecutor) matchesExtension(path string) bool {
	if len(e.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range e.extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}
