package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Source fetches content payloads by identifier. The bulk queue and
// the CLI both consume this; the host system is free to implement it
// over whatever transport it has.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, id string) (*Input, error)
}

// FileSource serves content payloads from a directory of JSON files,
// one payload per file, identified by file name.
type FileSource struct {
	Dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (s *FileSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FileSource) Fetch(ctx context.Context, id string) (*Input, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(filepath.Join(s.Dir, id))
}

// FindLatest returns the most recently modified JSON payload in dir.
// Used by the CLI when no explicit input is given.
func FindLatest(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(strings.ToLower(f.Name()), ".json") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no content JSON files found in %s", dir)
	}

	return latestFile, nil
}
