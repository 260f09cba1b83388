package session

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/and161185/socialclient/internal/errs"
)

// slotsFile is the on-disk document; []byte values are base64 in JSON.
type slotsFile struct {
	Slots map[string][]byte `json:"slots"`
}

// File keeps all slots in one JSON document with 0600 permissions.
type File struct {
	path string
	mu   sync.Mutex
}

var _ Slot = (*File)(nil)

// DefaultDir returns $XDG_CONFIG_HOME/socialclient or ~/.config/socialclient.
func DefaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "socialclient")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "socialclient")
}

// NewFile returns a file-backed slot stored as dir/slots.json.
func NewFile(dir string) *File {
	return &File{path: filepath.Join(dir, "slots.json")}
}

// Path reports the document location.
func (f *File) Path() string { return f.path }

func (f *File) load() (slotsFile, error) {
	doc := slotsFile{Slots: map[string][]byte{}}
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return doc, err
	}
	if doc.Slots == nil {
		doc.Slots = map[string][]byte{}
	}
	return doc, nil
}

func (f *File) store(doc slotsFile) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".slots-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	v, ok := doc.Slots[key]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return v, nil
}

func (f *File) Put(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	doc.Slots[key] = value
	return f.store(doc)
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Slots[key]; !ok {
		return nil
	}
	delete(doc.Slots, key)
	return f.store(doc)
}
