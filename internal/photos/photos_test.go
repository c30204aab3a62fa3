package photos

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Smallest valid PNG header is enough for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newStorage(t *testing.T, max int64) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "uploads"), max)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSaveAndDelete(t *testing.T) {
	s := newStorage(t, 1<<20)

	st, err := s.Save(7, bytes.NewReader(append(pngHeader, make([]byte, 100)...)))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !strings.HasPrefix(st.FileName, "venue-7-") || !strings.HasSuffix(st.FileName, ".png") {
		t.Errorf("FileName = %q", st.FileName)
	}
	if st.URL != URLPrefix+st.FileName {
		t.Errorf("URL = %q", st.URL)
	}

	info, err := os.Stat(filepath.Join(s.Dir(), st.FileName))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != int64(len(pngHeader)+100) {
		t.Errorf("size = %d", info.Size())
	}

	if err := s.Delete(st.FileName); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), st.FileName)); !os.IsNotExist(err) {
		t.Errorf("file still present after delete: %v", err)
	}
	if err := s.Delete(st.FileName); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestSaveRejectsNonImage(t *testing.T) {
	s := newStorage(t, 1<<20)

	_, err := s.Save(1, strings.NewReader("just some text, not a picture"))
	if !errors.Is(err, ErrNotImage) {
		t.Fatalf("err = %v, want ErrNotImage", err)
	}

	entries, _ := os.ReadDir(s.Dir())
	if len(entries) != 0 {
		t.Errorf("expected no files, got %d", len(entries))
	}
}

func TestSaveRejectsOversized(t *testing.T) {
	s := newStorage(t, 64)

	_, err := s.Save(1, bytes.NewReader(append(pngHeader, make([]byte, 100)...)))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}

	entries, _ := os.ReadDir(s.Dir())
	if len(entries) != 0 {
		t.Errorf("partial file left behind: %d entries", len(entries))
	}
}

func TestDeleteRejectsPaths(t *testing.T) {
	s := newStorage(t, 1<<20)

	for _, name := range []string{"", "..", "../etc/passwd", `a\b`} {
		if err := s.Delete(name); err == nil {
			t.Errorf("Delete(%q) succeeded, want error", name)
		}
	}
}
