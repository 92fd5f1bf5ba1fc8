// Package confstore implements the configuration document shared by every pl
// command: a YAML file addressed by dotted paths such as
// "settings.todo.ignored".
package confstore

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound is returned when a path does not exist in the document.
	ErrNotFound = errors.New("config path not found")
	// ErrNotMapping is returned when a path walks through a non-mapping value.
	ErrNotMapping = errors.New("config path traverses a non-mapping value")
	// ErrNotSequence is returned when appending to a value that is not a list.
	ErrNotSequence = errors.New("config path is not a sequence")
	// ErrInvalidPath is returned for empty paths or empty path segments.
	ErrInvalidPath = errors.New("invalid config path")
)

// Document is an in-memory YAML document. It preserves key order and
// comments of the parsed source on write.
type Document struct {
	doc *yaml.Node
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{doc: &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
	}}
}

// ParseDocument parses YAML source. Empty input yields an empty document.
func ParseDocument(data []byte) (*Document, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("parse config document: %w", err)
	}

	if n.Kind == 0 || len(n.Content) == 0 {
		return NewDocument(), nil
	}

	root := n.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		n.Content[0] = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		return &Document{doc: &n}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse config document: top level: %w", ErrNotMapping)
	}

	return &Document{doc: &n}, nil
}

// Bytes encodes the document with two-space indentation.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.doc); err != nil {
		return nil, fmt.Errorf("encode config document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config document: %w", err)
	}
	return buf.Bytes(), nil
}

// Clone returns a deep copy made by re-parsing the encoded document.
func (d *Document) Clone() (*Document, error) {
	data, err := d.Bytes()
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

func (d *Document) root() *yaml.Node {
	return d.doc.Content[0]
}

// Has reports whether path exists.
func (d *Document) Has(path string) bool {
	_, err := d.lookup(path)
	return err == nil
}

// Get decodes the value at path into dest.
func (d *Document) Get(path string, dest any) error {
	n, err := d.lookup(path)
	if err != nil {
		return err
	}
	if err := n.Decode(dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Set replaces the value at path, creating intermediate mappings as needed.
func (d *Document) Set(path string, value any) error {
	parent, key, err := d.parentFor(path, true)
	if err != nil {
		return err
	}

	val, err := encodeNode(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if i := indexOf(parent, key); i >= 0 {
		// keep comments attached to the previous value
		val.LineComment = parent.Content[i+1].LineComment
		parent.Content[i+1] = val
		return nil
	}

	parent.Content = append(parent.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		val,
	)
	return nil
}

// Append adds value to the list at path. A missing or null value becomes a
// one-element list.
func (d *Document) Append(path string, value any) error {
	parent, key, err := d.parentFor(path, true)
	if err != nil {
		return err
	}

	val, err := encodeNode(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	i := indexOf(parent, key)
	if i < 0 {
		parent.Content = append(parent.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{val}},
		)
		return nil
	}

	seq := parent.Content[i+1]
	switch {
	case seq.Kind == yaml.SequenceNode:
		seq.Content = append(seq.Content, val)
	case seq.Kind == yaml.ScalarNode && seq.Tag == "!!null":
		parent.Content[i+1] = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{val}}
	default:
		return fmt.Errorf("append %s: %w", path, ErrNotSequence)
	}
	return nil
}

// Delete removes path. Deleting a missing path is a no-op.
func (d *Document) Delete(path string) error {
	parent, key, err := d.parentFor(path, false)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if i := indexOf(parent, key); i >= 0 {
		parent.Content = append(parent.Content[:i], parent.Content[i+2:]...)
	}
	return nil
}

func (d *Document) lookup(path string) (*yaml.Node, error) {
	if path == "" {
		return d.root(), nil
	}

	parent, key, err := d.parentFor(path, false)
	if err != nil {
		return nil, err
	}

	i := indexOf(parent, key)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return parent.Content[i+1], nil
}

// parentFor walks to the mapping that holds the last path segment.
func (d *Document) parentFor(path string, create bool) (*yaml.Node, string, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, "", err
	}

	cur := d.root()
	for j, seg := range segs[:len(segs)-1] {
		i := indexOf(cur, seg)
		if i < 0 {
			if !create {
				return nil, "", fmt.Errorf("%s: %w", path, ErrNotFound)
			}
			child := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			cur.Content = append(cur.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: seg},
				child,
			)
			cur = child
			continue
		}

		next := cur.Content[i+1]
		if next.Kind == yaml.ScalarNode && next.Tag == "!!null" && create {
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			cur.Content[i+1] = next
		}
		if next.Kind != yaml.MappingNode {
			return nil, "", fmt.Errorf("%s at %q: %w", path, strings.Join(segs[:j+1], "."), ErrNotMapping)
		}
		cur = next
	}

	return cur, segs[len(segs)-1], nil
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	segs := strings.Split(path, ".")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segs, nil
}

func indexOf(mapping *yaml.Node, key string) int {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return i
		}
	}
	return -1
}

func encodeNode(value any) (*yaml.Node, error) {
	if n, ok := value.(*yaml.Node); ok {
		return n, nil
	}
	var n yaml.Node
	if err := n.Encode(value); err != nil {
		return nil, err
	}
	return &n, nil
}
