package dialect

import (
	"bytes"
	"fmt"
	"strconv"
)

// Expression is a node that can write itself as SQL for a dialect.
type Expression interface {
	WriteSQL(b *Builder) error
}

// Builder accumulates query text for one dialect. The dialect handle travels
// with the builder so nested expressions render for the same vendor.
type Builder struct {
	d   Dialect
	buf bytes.Buffer
}

// NewBuilder returns an empty builder rendering for d.
func NewBuilder(d Dialect) *Builder {
	return &Builder{d: d}
}

// Dialect returns the dialect the builder renders for.
func (b *Builder) Dialect() Dialect {
	return b.d
}

// Append writes plain text, expressions, integers and stringers in order.
func (b *Builder) Append(parts ...any) error {
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			b.buf.WriteString(v)
		case Expression:
			if err := v.WriteSQL(b); err != nil {
				return err
			}
		case fmt.Stringer:
			b.buf.WriteString(v.String())
		case int:
			b.buf.WriteString(strconv.Itoa(v))
		default:
			return fmt.Errorf("dialect: cannot append %T to a query", part)
		}
	}
	return nil
}

// AppendList writes exprs separated by sep.
func (b *Builder) AppendList(sep string, exprs ...Expression) error {
	for i, e := range exprs {
		if i > 0 {
			b.buf.WriteString(sep)
		}
		if err := e.WriteSQL(b); err != nil {
			return err
		}
	}
	return nil
}

// Atomic runs fn and discards everything it wrote if it fails, so a failed
// render never leaves a partial fragment in the query.
func (b *Builder) Atomic(fn func() error) error {
	mark := b.buf.Len()
	if err := fn(); err != nil {
		b.buf.Truncate(mark)
		return err
	}
	return nil
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int {
	return b.buf.Len()
}

// String returns the accumulated query text.
func (b *Builder) String() string {
	return b.buf.String()
}

// Render writes e for d into a fresh builder and returns the text.
func Render(d Dialect, e Expression) (string, error) {
	b := NewBuilder(d)
	if err := b.Append(e); err != nil {
		return "", err
	}
	return b.String(), nil
}
