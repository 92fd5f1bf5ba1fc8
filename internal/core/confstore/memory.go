package confstore

import "sync"

// Memory is an in-process Store used by tests and dry runs.
type Memory struct {
	mu  sync.Mutex
	doc *Document

	// WriteErr, when set, is returned by every mutating call without
	// touching the document.
	WriteErr error
}

// NewMemory returns a Memory store seeded with YAML source.
func NewMemory(src string) (*Memory, error) {
	doc, err := ParseDocument([]byte(src))
	if err != nil {
		return nil, err
	}
	return &Memory{doc: doc}, nil
}

func (m *Memory) Get(path string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Get(path, dest)
}

func (m *Memory) Set(path string, value any) error {
	return m.Update(func(doc *Document) error { return doc.Set(path, value) })
}

func (m *Memory) Append(path string, value any) error {
	return m.Update(func(doc *Document) error { return doc.Append(path, value) })
}

func (m *Memory) Delete(path string) error {
	return m.Update(func(doc *Document) error { return doc.Delete(path) })
}

func (m *Memory) Update(fn func(doc *Document) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil {
		return m.WriteErr
	}

	clone, err := m.doc.Clone()
	if err != nil {
		return err
	}
	if err := fn(clone); err != nil {
		return err
	}
	m.doc = clone
	return nil
}

// YAML returns the current document source.
func (m *Memory) YAML() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := m.doc.Bytes()
	return string(data)
}
