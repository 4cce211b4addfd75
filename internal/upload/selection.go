// Package upload tracks the single CSV file queued for ingestion.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/apperror"
)

// Ext is the only accepted suffix. The match is case-sensitive.
const Ext = ".csv"

var (
	ErrNotCSV     = apperror.New(apperror.BadRequest, "only .csv files can be uploaded")
	ErrNoFile     = apperror.New(apperror.BadRequest, "no file selected")
	ErrNotRegular = apperror.New(apperror.BadRequest, "selected path is not a regular file")
)

// Selection holds at most one pending file; selecting another replaces it.
type Selection struct {
	mu   sync.Mutex
	path string
}

// Select queues path. A non-CSV path is rejected and leaves the current
// selection untouched.
func (s *Selection) Select(path string) error {
	if !strings.HasSuffix(path, Ext) {
		return ErrNotCSV
	}
	info, err := os.Stat(path)
	if err != nil {
		return apperror.Wrap(apperror.BadRequest, "cannot read "+path, err)
	}
	if !info.Mode().IsRegular() {
		return ErrNotRegular
	}

	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
	return nil
}

// SelectFirst queues the first CSV among paths, as a drop of several
// files would. It reports whether one was found.
func (s *Selection) SelectFirst(paths []string) (bool, error) {
	for _, p := range paths {
		if strings.HasSuffix(p, Ext) {
			return true, s.Select(p)
		}
	}
	return false, nil
}

func (s *Selection) Pending() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path, s.path != ""
}

func (s *Selection) Clear() {
	s.mu.Lock()
	s.path = ""
	s.mu.Unlock()
}

// Open returns the pending file's base name and content.
func (s *Selection) Open() (string, io.ReadCloser, error) {
	path, ok := s.Pending()
	if !ok {
		return "", nil, ErrNoFile
	}
	f, err := os.Open(path) //nolint:gosec // path chosen by the operator
	if err != nil {
		return "", nil, fmt.Errorf("open %s: %w", path, err)
	}
	return filepath.Base(path), f, nil
}
