package confstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/colonyops/pl/pkg/fslock"
)

// Store is a key-value view over the configuration document. Every mutating
// call is an atomic read-modify-write of the whole document.
type Store interface {
	// Get decodes the value at path into dest. Returns an error wrapping
	// ErrNotFound when the path does not exist.
	Get(path string, dest any) error
	// Set replaces the value at path.
	Set(path string, value any) error
	// Append adds value to the list at path.
	Append(path string, value any) error
	// Delete removes path; missing paths are ignored.
	Delete(path string) error
	// Update applies fn to a private copy of the document and persists the
	// result only if fn returns nil.
	Update(fn func(doc *Document) error) error
}

// GetOr decodes path into dest, leaving dest untouched when the path is missing.
func GetOr(s Store, path string, dest any) error {
	err := s.Get(path, dest)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// File is a Store backed by a YAML file on disk. Writers hold an exclusive
// lock on "<path>.lock" and replace the file via rename, so concurrent pl
// invocations (cron and interactive) never observe a partial document.
type File struct {
	path string
}

// NewFile returns a File store for path. The file is not read until first use.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Exists reports whether the backing file exists.
func (f *File) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

func (f *File) lockPath() string {
	return f.path + ".lock"
}

// Load reads and parses the whole document under a shared lock.
func (f *File) Load() (*Document, error) {
	unlock, err := fslock.RLock(f.lockPath())
	if err != nil {
		return nil, err
	}
	defer unlock()

	return f.read()
}

func (f *File) Get(path string, dest any) error {
	doc, err := f.Load()
	if err != nil {
		return err
	}
	return doc.Get(path, dest)
}

func (f *File) Set(path string, value any) error {
	return f.Update(func(doc *Document) error { return doc.Set(path, value) })
}

func (f *File) Append(path string, value any) error {
	return f.Update(func(doc *Document) error { return doc.Append(path, value) })
}

func (f *File) Delete(path string) error {
	return f.Update(func(doc *Document) error { return doc.Delete(path) })
}

func (f *File) Update(fn func(doc *Document) error) error {
	unlock, err := fslock.Lock(f.lockPath())
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}

	if err := fn(doc); err != nil {
		return err
	}

	data, err := doc.Bytes()
	if err != nil {
		return err
	}

	return writeAtomic(f.path, data)
}

// read returns an empty document when the file does not exist yet.
func (f *File) read() (*Document, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDocument(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseDocument(data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
