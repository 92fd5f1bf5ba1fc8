package utils

import (
	"bytes"
	"io"
	"sync"
)

// DeferredWriter passes writes through to an underlying writer, except while
// held: then writes are buffered in memory until Release. Safe for
// concurrent use.
type DeferredWriter struct {
	mu   sync.Mutex
	out  io.Writer
	held bool
	buf  bytes.Buffer
}

// NewDeferredWriter returns a pass-through writer for out.
func NewDeferredWriter(out io.Writer) *DeferredWriter {
	return &DeferredWriter{out: out}
}

// Write forwards p, or buffers it while the writer is held.
func (d *DeferredWriter) Write(p []byte) (n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.held || d.out == nil {
		return d.buf.Write(p)
	}
	return d.out.Write(p)
}

// Hold starts buffering writes.
func (d *DeferredWriter) Hold() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.held = true
}

// Release writes everything buffered since Hold and resumes pass-through.
func (d *DeferredWriter) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.held = false
	if d.out == nil {
		return nil
	}
	return d.flush(d.out)
}

// Flush writes all buffered data to w and clears the buffer.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flush(w)
}

func (d *DeferredWriter) flush(w io.Writer) error {
	if d.buf.Len() == 0 {
		return nil
	}
	_, err := d.buf.WriteTo(w)
	return err
}
