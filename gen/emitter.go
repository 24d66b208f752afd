package gen

import (
	"bytes"
	"fmt"
)

// Emitter accumulates indented Go source lines. Methods chain.
type Emitter struct {
	buf    bytes.Buffer
	indent int
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Line writes one line at the current indent.
func (e *Emitter) Line(s string) *Emitter {
	for i := 0; i < e.indent; i++ {
		e.buf.WriteByte('\t')
	}
	e.buf.WriteString(s)
	e.buf.WriteByte('\n')
	return e
}

// Linef writes one formatted line at the current indent.
func (e *Emitter) Linef(format string, args ...any) *Emitter {
	return e.Line(fmt.Sprintf(format, args...))
}

// Blank writes an empty line.
func (e *Emitter) Blank() *Emitter {
	e.buf.WriteByte('\n')
	return e
}

// In increases the indent level.
func (e *Emitter) In() *Emitter {
	e.indent++
	return e
}

// Out decreases the indent level.
func (e *Emitter) Out() *Emitter {
	if e.indent > 0 {
		e.indent--
	}
	return e
}

// Len returns the number of bytes emitted so far.
func (e *Emitter) Len() int {
	return e.buf.Len()
}

// Bytes returns the emitted source.
func (e *Emitter) Bytes() []byte {
	return e.buf.Bytes()
}

// String returns the emitted source as a string.
func (e *Emitter) String() string {
	return e.buf.String()
}

// Reset discards all emitted content.
func (e *Emitter) Reset() *Emitter {
	e.buf.Reset()
	e.indent = 0
	return e
}
