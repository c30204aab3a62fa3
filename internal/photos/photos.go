// Package photos keeps uploaded venue photos on local disk.
package photos

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is where the HTTP layer serves the upload directory.
const URLPrefix = "/uploads/"

var (
	ErrNotImage = errors.New("file is not a supported image")
	ErrTooLarge = errors.New("file exceeds upload limit")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Storage struct {
	dir      string
	maxBytes int64
}

// New creates dir if it does not exist.
func New(dir string, maxBytes int64) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Storage{dir: dir, maxBytes: maxBytes}, nil
}

func (s *Storage) Dir() string { return s.dir }

// Stored describes a file written by Save.
type Stored struct {
	FileName string
	URL      string
}

// Save sniffs the content type, then writes r under a fresh name. Partial
// files are removed on failure.
func (s *Storage) Save(venueID int64, r io.Reader) (Stored, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) {
		return Stored{}, fmt.Errorf("reading upload: %w", err)
	}
	ext, ok := extensions[http.DetectContentType(head)]
	if !ok {
		return Stored{}, ErrNotImage
	}

	name := fmt.Sprintf("venue-%d-%s%s", venueID, uuid.NewString(), ext)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Stored{}, fmt.Errorf("creating %s: %w", name, err)
	}

	n, err := io.Copy(f, io.LimitReader(br, s.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return Stored{}, err
		}
		return Stored{}, fmt.Errorf("writing %s: %w", name, err)
	}

	return Stored{FileName: name, URL: URLPrefix + name}, nil
}

// Delete removes a stored file. A file that is already gone is not an error.
func (s *Storage) Delete(fileName string) error {
	if fileName == "" || strings.ContainsAny(fileName, `/\`) || fileName == ".." {
		return fmt.Errorf("invalid file name %q", fileName)
	}
	err := os.Remove(filepath.Join(s.dir, fileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", fileName, err)
	}
	return nil
}
